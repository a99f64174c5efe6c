package cmd

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/calgarytospace/tcx/internal/cache"
	"github.com/calgarytospace/tcx/internal/config"
	"github.com/calgarytospace/tcx/internal/extract"
	"github.com/calgarytospace/tcx/internal/firmware"
	"github.com/calgarytospace/tcx/internal/output"
	"github.com/calgarytospace/tcx/internal/store"
	"github.com/spf13/cobra"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan the firmware and index its telecommand table",
	Long: `Scan reads the firmware checkout, extracts the telecommand dispatch
table, and writes the records into the versioned index.

The scan process:
  1. Discovers C sources in the configured firmware directories
  2. Skips re-parsing when no source file changed since the last scan
  3. Extracts every telecommand definition and its documentation
  4. Compares with the existing index (new/changed/removed)
  5. Commits the refreshed index as a new version

Examples:
  tcx scan                   # Scan the configured firmware checkout
  tcx scan ./firmware        # Scan a specific checkout directory
  tcx scan --dry-run         # Extract and summarize without writing
  tcx scan --force           # Re-parse even when nothing changed`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

// Command-line flags
var (
	scanRepo   string
	scanDryRun bool
	scanForce  bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	// Scan-specific flags
	scanCmd.Flags().StringVar(&scanRepo, "repo", "", "Firmware checkout to scan (default: configured checkout)")
	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "Extract and summarize without writing the index")
	scanCmd.Flags().BoolVar(&scanForce, "force", false, "Re-parse even when no source file changed")
}

// runScan implements the scan command logic
func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Determine the firmware root: positional arg, --repo, then config
	repoRoot := scanRepo
	if len(args) > 0 {
		repoRoot = args[0]
	}
	if repoRoot == "" {
		repoRoot = resolveRepoDir(cfg)
	}

	absRoot, err := filepath.Abs(repoRoot)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	if _, err := os.Stat(absRoot); err != nil {
		return fmt.Errorf("firmware checkout not found at %s: run 'tcx fetch' first", absRoot)
	}

	format, _, err := parseOutputOptions()
	if err != nil {
		return err
	}

	// Find existing .tcx directory or create one
	tcxDir, err := config.FindConfigDir(".")
	if err != nil {
		tcxDir, err = config.EnsureConfigDir(".")
		if err != nil {
			return fmt.Errorf("failed to create .tcx directory: %w", err)
		}
	}

	// Discover and read the C sources
	paths, err := firmware.DiscoverSources(absRoot, cfg.Repo.SourceDirs, cfg.Scan.Exclude)
	if err != nil {
		return fmt.Errorf("discovering sources: %w", err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no C sources found under %s (check repo.source_dirs in config)", absRoot)
	}

	files, err := firmware.ReadSources(paths)
	if err != nil {
		return fmt.Errorf("reading sources: %w", err)
	}

	// Hash each file for incremental change detection
	fileHashes := make(map[string]string, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(absRoot, f.Path)
		if err != nil {
			rel = f.Path
		}
		fileHashes[rel] = extract.ComputeCorpusHash(f.Content)
	}

	parseCache, err := cache.Open(tcxDir)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer parseCache.Close()

	changedFiles, err := parseCache.GetChangedFiles(fileHashes)
	if err != nil {
		return fmt.Errorf("checking file index: %w", err)
	}

	corpus := firmware.Corpus(files)
	corpusHash := extract.ComputeCorpusHash([]byte(corpus))

	// Serve the parse from cache when no file changed since the last scan
	cacheHit := false
	var records []extract.Telecommand
	if !scanForce && len(changedFiles) == 0 {
		if cached, err := parseCache.GetParse(corpusHash); err == nil {
			records = cached
			cacheHit = true
		}
	}

	if records == nil {
		if verbose && len(changedFiles) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d file(s) changed since last scan\n", len(changedFiles))
		}
		loader, err := firmware.NewLoader()
		if err != nil {
			return fmt.Errorf("creating loader: %w", err)
		}
		records, err = loader.Parse(corpus)
		if err != nil {
			return fmt.Errorf("extracting telecommands: %w", err)
		}
	}

	if len(records) == 0 {
		return fmt.Errorf("no telecommand table found under %s", absRoot)
	}

	// Attribute records to the dispatch-table file
	sourceFile := ""
	if defs := firmware.FindDefinitionsFile(paths); defs != "" {
		if rel, err := filepath.Rel(absRoot, defs); err == nil {
			sourceFile = rel
		} else {
			sourceFile = defs
		}
	}

	storeDB, err := store.Open(tcxDir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer storeDB.Close()

	// Classify records against the existing index before writing
	var newCount, changedCount int
	rows := make([]*store.Telecommand, 0, len(records))
	present := make(map[string]bool, len(records))
	for i := range records {
		row := store.FromExtract(&records[i], i, sourceFile)
		rows = append(rows, row)
		present[row.Name] = true

		existing, err := storeDB.GetTelecommand(row.Name)
		if err == sql.ErrNoRows {
			newCount++
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to query telecommands: %w", err)
		}
		if existing.SigHash != row.SigHash || existing.DocHash != row.DocHash {
			changedCount++
		}
	}

	repoCommit := ""
	if firmware.IsCloned(absRoot) {
		if c, err := firmware.HeadCommit(absRoot); err == nil {
			repoCommit = c
		}
	}

	scannedAt := time.Now().UTC()
	summary := &output.ScanOutput{
		ScannedAt:    scannedAt.Format(time.RFC3339),
		RepoCommit:   repoCommit,
		Files:        len(files),
		Telecommands: len(records),
		New:          newCount,
		Changed:      changedCount,
		CacheHit:     cacheHit,
	}

	formatter, err := output.GetFormatter(format)
	if err != nil {
		return fmt.Errorf("failed to get formatter: %w", err)
	}

	if scanDryRun {
		return formatter.FormatToWriter(cmd.OutOrStdout(), summary)
	}

	// Persist the records and archive anything the firmware dropped
	if err := storeDB.UpsertTelecommands(rows); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}

	removed, err := storeDB.ArchiveMissing(present)
	if err != nil {
		return fmt.Errorf("archiving removed telecommands: %w", err)
	}
	summary.Removed = removed

	if err := storeDB.RecordScan(&store.ScanRecord{
		ScannedAt:        scannedAt,
		RepoCommit:       repoCommit,
		CorpusHash:       corpusHash,
		FileCount:        len(files),
		TelecommandCount: len(records),
	}); err != nil {
		return fmt.Errorf("recording scan: %w", err)
	}

	// Version the index so diff and history can reach this state
	msg := fmt.Sprintf("scan: %d telecommands", len(records))
	if repoCommit != "" {
		msg = fmt.Sprintf("scan: %d telecommands at firmware %s", len(records), shortenHash(repoCommit))
	}
	if _, err := storeDB.Commit(msg); err != nil {
		return fmt.Errorf("committing index: %w", err)
	}

	// Refresh the parse cache and file index
	if !cacheHit {
		if err := parseCache.PutParse(corpusHash, records); err != nil && verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: parse cache update failed: %v\n", err)
		}
		if _, err := parseCache.PruneParses(corpusHash); err != nil && verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: parse cache prune failed: %v\n", err)
		}
	}

	entries := make([]cache.FileEntry, 0, len(fileHashes))
	valid := make(map[string]bool, len(fileHashes))
	for rel, hash := range fileHashes {
		entries = append(entries, cache.FileEntry{FilePath: rel, ScanHash: hash, ScannedAt: scannedAt})
		valid[rel] = true
	}
	if err := parseCache.SetBulkFilesScanned(entries); err != nil && verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: file index update failed: %v\n", err)
	}
	if _, err := parseCache.PruneStaleEntries(valid); err != nil && verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: file index prune failed: %v\n", err)
	}

	return formatter.FormatToWriter(cmd.OutOrStdout(), summary)
}
