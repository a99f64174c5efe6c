package cmd

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/calgarytospace/tcx/internal/cache"
	"github.com/calgarytospace/tcx/internal/config"
	"github.com/calgarytospace/tcx/internal/firmware"
	"github.com/calgarytospace/tcx/internal/output"
	"github.com/calgarytospace/tcx/internal/store"
	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show checkout, index, and cache status",
	Long: `Show the current state of the firmware checkout and telecommand index.

Displays information about:
- Firmware checkout (cloned, HEAD commit)
- Telecommand index (active/removed counts, last scan)
- Parse cache (entries, tracked files, size on disk, last parse time)

Examples:
  tcx status         # Show status
  tcx status --json  # JSON output for scripts`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var statusJSON bool

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Shorthand for --format json")
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := statusFormat()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	repoDir := resolveRepoDir(cfg)

	repo := &output.RepoStatus{Dir: repoDir}
	if firmware.IsCloned(repoDir) {
		repo.Cloned = true
		if commit, err := firmware.HeadCommit(repoDir); err == nil {
			repo.Commit = shortenHash(commit)
		}
	}

	tcxDir, err := config.FindConfigDir(".")
	if err != nil {
		// Not initialized: report the checkout state and say so
		fmt.Fprintln(cmd.OutOrStdout(), "tcx not initialized")
		fmt.Fprintln(cmd.OutOrStdout(), "Run 'tcx init' to get started")
		return nil
	}

	storeDB, err := store.Open(tcxDir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer storeDB.Close()

	index := &output.IndexStatus{}
	index.Telecommands, err = storeDB.CountTelecommands(store.TelecommandFilter{Status: "active"})
	if err != nil {
		return fmt.Errorf("counting telecommands: %w", err)
	}
	index.Removed, err = storeDB.CountTelecommands(store.TelecommandFilter{Status: "removed"})
	if err != nil {
		return fmt.Errorf("counting telecommands: %w", err)
	}

	var lastCorpusHash string
	if scan, err := storeDB.LatestScan(); err == nil {
		index.LastScan = scan.ScannedAt.Format(time.RFC3339)
		index.LastScanCommit = shortenHash(scan.RepoCommit)
		lastCorpusHash = scan.CorpusHash
	} else if err != sql.ErrNoRows {
		return fmt.Errorf("reading scan history: %w", err)
	}

	statusOut := &output.StatusOutput{
		Repo:  repo,
		Index: index,
	}

	if parseCache, err := cache.Open(tcxDir); err == nil {
		if stats, err := parseCache.GetStats(); err == nil {
			cs := &output.CacheStatus{
				Entries: int(stats.ParseCount),
				Files:   int(stats.FileIndexCount),
			}
			if info, err := os.Stat(parseCache.Path()); err == nil {
				cs.SizeBytes = info.Size()
			}
			cs.LastParsed = cacheLastParsed(parseCache, lastCorpusHash)
			statusOut.Cache = cs
		}
		parseCache.Close()
	}

	formatter, err := output.GetFormatter(format)
	if err != nil {
		return fmt.Errorf("failed to get formatter: %w", err)
	}
	return formatter.FormatToWriter(cmd.OutOrStdout(), statusOut)
}

// cacheLastParsed reports when the given corpus was extracted, or empty
// when the parse cache has no entry for it.
func cacheLastParsed(c *cache.Cache, corpusHash string) string {
	if corpusHash == "" {
		return ""
	}
	entry, err := c.GetParseEntry(corpusHash)
	if err != nil {
		return ""
	}
	return entry.ParsedAt.UTC().Format(time.RFC3339)
}

// statusFormat resolves the output format; --json wins over --format.
func statusFormat() (output.Format, error) {
	if statusJSON {
		return output.FormatJSON, nil
	}
	format, _, err := parseOutputOptions()
	return format, err
}
