package cmd

import (
	"fmt"
	"time"

	"github.com/calgarytospace/tcx/internal/output"
	"github.com/calgarytospace/tcx/internal/store"
	"github.com/spf13/cobra"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show detailed information about a telecommand",
	Long: `Display single telecommand details.

Accepts the full telecommand name, or a unique substring of it.

Information displayed varies by density:
  sparse:  Argument count and readiness level only
  medium:  Handler symbol, status, source file (default)
  dense:   Docstring, argument descriptions, hashes, timestamps

Output Fields:
  - function: C handler symbol the command dispatches to
  - args: Number of arguments the command takes
  - readiness: Readiness level from the firmware table
  - status: Index status (active or removed)
  - source_file: Firmware file the definition was extracted from
  - docstring: Documentation block above the handler (dense only)
  - arg_descriptions: Per-argument descriptions (dense only)
  - hashes: Signature and doc hashes (dense only)
  - timestamps: First and last seen times (dense only)

Examples:
  tcx show hello_world                  # Show one telecommand
  tcx show agenda_delete --density=dense # Full details with docs
  tcx show obc_reset --at HEAD~2        # As of two scans ago
  tcx show obc_reset --format=json      # JSON output`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

var showAt string

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVar(&showAt, "at", "", "Query at specific index version (e.g., HEAD~2, commit hash)")
}

func runShow(cmd *cobra.Command, args []string) error {
	name := args[0]

	if showAt != "" && !store.IsValidRef(showAt) {
		return fmt.Errorf("invalid --at ref %q: must be commit hash, branch, or HEAD~N", showAt)
	}

	format, density, err := parseOutputOptions()
	if err != nil {
		return err
	}

	storeDB, err := openStore()
	if err != nil {
		return err
	}
	defer storeDB.Close()

	var row *store.Telecommand
	if showAt != "" {
		rows, err := storeDB.QueryTelecommandsAt(store.TelecommandFilter{Name: name, Exact: true}, showAt)
		if err != nil {
			return fmt.Errorf("failed to query telecommands: %w", err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("telecommand not found at %s: %q", showAt, name)
		}
		row = rows[0]
	} else {
		row, err = resolveTelecommand(storeDB, name)
		if err != nil {
			return err
		}
	}

	ex := row.ToExtract()
	rec := output.NewRecordOutput(&ex, density)
	rec.Status = row.Status
	if density.IncludesSymbols() && row.SourceFile != "" {
		rec.SourceFile = row.SourceFile
	}
	if density.IncludesTimestamps() {
		rec.Timestamps = &output.Timestamps{
			FirstSeen: row.FirstSeen.Format(time.RFC3339),
			LastSeen:  row.LastSeen.Format(time.RFC3339),
		}
	}

	// Key the record by name so the YAML reads as "name: details"
	result := map[string]*output.RecordOutput{row.Name: rec}

	formatter, err := output.GetFormatter(format)
	if err != nil {
		return fmt.Errorf("failed to get formatter: %w", err)
	}
	return formatter.FormatToWriter(cmd.OutOrStdout(), result)
}
