package cmd

import (
	"fmt"
	"strings"

	"github.com/calgarytospace/tcx/internal/output"
	"github.com/calgarytospace/tcx/internal/store"
	"github.com/spf13/cobra"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [name]",
	Short: "Show index version history",
	Long: `Display how the telecommand index has changed across scans.

With a telecommand name, traces that command through every index version
it appears in, marking where its signature or documentation changed.
Without a name, lists the index versions themselves (one per committed
scan).

Examples:
  tcx history                   # Last 10 index versions
  tcx history --limit 20        # Last 20 index versions
  tcx history obc_reset         # How obc_reset changed over time
  tcx history obc_reset --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of entries to show")
}

// commitLogEntry represents a single index version in the log output
type commitLogEntry struct {
	Commit    string `yaml:"commit" json:"commit"`
	Date      string `yaml:"date" json:"date"`
	Message   string `yaml:"message" json:"message"`
	Committer string `yaml:"committer,omitempty" json:"committer,omitempty"`
}

// commitLogOutput is the output structure for the no-argument form
type commitLogOutput struct {
	Commits []commitLogEntry `yaml:"commits" json:"commits"`
	Total   int              `yaml:"total" json:"total"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	format, _, err := parseOutputOptions()
	if err != nil {
		return err
	}

	storeDB, err := openStore()
	if err != nil {
		return err
	}
	defer storeDB.Close()

	formatter, err := output.GetFormatter(format)
	if err != nil {
		return fmt.Errorf("failed to get formatter: %w", err)
	}

	if len(args) == 0 {
		return runCommitLog(cmd, storeDB, formatter)
	}
	return runTelecommandHistory(cmd, storeDB, formatter, args[0])
}

// runCommitLog lists the committed index versions.
func runCommitLog(cmd *cobra.Command, storeDB *store.Store, formatter output.Formatter) error {
	entries, err := storeDB.DoltLog(historyLimit)
	if err != nil {
		return fmt.Errorf("get history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No index versions found. Run 'tcx scan' to create the first one.")
		return nil
	}

	logOut := commitLogOutput{
		Commits: make([]commitLogEntry, 0, len(entries)),
		Total:   len(entries),
	}
	for _, entry := range entries {
		logOut.Commits = append(logOut.Commits, commitLogEntry{
			Commit:    shortenHash(entry.CommitHash),
			Date:      entry.Date,
			Message:   strings.TrimSpace(entry.Message),
			Committer: entry.Committer,
		})
	}

	return formatter.FormatToWriter(cmd.OutOrStdout(), logOut)
}

// runTelecommandHistory traces one telecommand across index versions.
func runTelecommandHistory(cmd *cobra.Command, storeDB *store.Store, formatter output.Formatter, name string) error {
	// Resolve substring names the same way show does
	row, err := resolveTelecommand(storeDB, name)
	if err != nil {
		return err
	}

	entries, err := storeDB.TelecommandHistory(store.HistoryOptions{
		Name:  row.Name,
		Limit: historyLimit,
	})
	if err != nil {
		return fmt.Errorf("get history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No history for %s: run 'tcx scan' to commit the index\n", row.Name)
		return nil
	}

	historyOut := &output.HistoryOutput{
		Telecommand: row.Name,
		History:     make([]*output.HistoryEntry, 0, len(entries)),
	}
	for _, e := range entries {
		he := &output.HistoryEntry{
			Commit:    shortenHash(e.CommitHash),
			Date:      e.CommitDate,
			Committer: e.Committer,
			Args:      e.ArgumentCount,
			Readiness: e.ReadinessLevel,
			Change:    e.ChangeType,
		}
		if e.SigHash != nil {
			he.SigHash = *e.SigHash
		}
		historyOut.History = append(historyOut.History, he)
	}

	return formatter.FormatToWriter(cmd.OutOrStdout(), historyOut)
}
