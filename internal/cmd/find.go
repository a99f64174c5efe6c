package cmd

import (
	"fmt"
	"strings"

	"github.com/calgarytospace/tcx/internal/output"
	"github.com/calgarytospace/tcx/internal/store"
	"github.com/spf13/cobra"
)

// findCmd represents the find command
var findCmd = &cobra.Command{
	Use:   "find [pattern]",
	Short: "Find telecommands by name pattern",
	Long: `List telecommands whose name matches a pattern.

The pattern is a case-insensitive substring match by default. Use --exact
for a whole-name match. Without a pattern, find lists the whole index
(subject to --limit).

Filtering:
  --ready <level>  Filter by readiness level substring (e.g. FOR_OPERATION)
  --status <s>     Filter by index status: active (default) | removed | all

Time Travel:
  --at <ref>       Query the index at a specific version (commit hash, HEAD~N)

Change Tracking:
  --since <ref>    Show telecommands changed since ref (default: HEAD~1 when
                   using --new/--changed/--removed)
  --new            Show only newly added telecommands
  --changed        Show only modified telecommands
  --removed        Show only removed telecommands

Examples:
  tcx find fm_                       # All file-manager telecommands
  tcx find hello_world --exact       # Exact name match
  tcx find --ready FOR_OPERATION     # Only flight-ready commands
  tcx find fm_ --at HEAD~3           # Matches as of three scans ago
  tcx find --new                     # Added since the previous scan
  tcx find --changed --since HEAD~5  # Modified over the last five scans
  tcx find fm_ --density=sparse      # Minimal output
  tcx find fm_ --format=json         # JSON output for parsing`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFind,
}

var (
	findReady   string
	findStatus  string
	findExact   bool
	findLimit   int
	findAt      string // Time travel: query at specific commit/ref
	findSince   string // Change tracking: show telecommands changed since ref
	findNew     bool   // Change tracking: show only new/added telecommands
	findChanged bool   // Change tracking: show only modified telecommands
	findRemoved bool   // Change tracking: show only removed telecommands
)

func init() {
	rootCmd.AddCommand(findCmd)

	findCmd.Flags().StringVar(&findReady, "ready", "", "Filter by readiness level substring")
	findCmd.Flags().StringVar(&findStatus, "status", "active", "Filter by status (active|removed|all)")
	findCmd.Flags().BoolVar(&findExact, "exact", false, "Exact match only (default: substring match)")
	findCmd.Flags().IntVar(&findLimit, "limit", 100, "Maximum results to return")

	// Time travel flag
	findCmd.Flags().StringVar(&findAt, "at", "", "Query at specific index version (e.g., HEAD~2, commit hash)")

	// Change tracking flags
	findCmd.Flags().StringVar(&findSince, "since", "", "Show telecommands changed since ref (e.g., HEAD~5, commit hash)")
	findCmd.Flags().BoolVar(&findNew, "new", false, "Show only newly added telecommands (since HEAD~1 or --since ref)")
	findCmd.Flags().BoolVar(&findChanged, "changed", false, "Show only modified telecommands (since HEAD~1 or --since ref)")
	findCmd.Flags().BoolVar(&findRemoved, "removed", false, "Show only removed telecommands (since HEAD~1 or --since ref)")
}

func runFind(cmd *cobra.Command, args []string) error {
	pattern := ""
	if len(args) > 0 {
		pattern = args[0]
	}

	// Validate --at flag if provided
	if findAt != "" && !store.IsValidRef(findAt) {
		return fmt.Errorf("invalid --at ref %q: must be commit hash, branch, or HEAD~N", findAt)
	}

	// Validate --since flag if provided
	if findSince != "" && !store.IsValidRef(findSince) {
		return fmt.Errorf("invalid --since ref %q: must be commit hash, branch, or HEAD~N", findSince)
	}

	switch findStatus {
	case "active", "removed", "all":
	default:
		return fmt.Errorf("invalid --status %q: must be active, removed, or all", findStatus)
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

	// Change tracking mode (--since, --new, --changed, --removed)
	if findNew || findChanged || findRemoved || findSince != "" {
		return runFindWithChangeTracking(cmd, storeDB, pattern, format, density)
	}

	return runFindByName(cmd, storeDB, pattern, format, density)
}

// runFindWithChangeTracking handles --since, --new, --changed, --removed flags
func runFindWithChangeTracking(cmd *cobra.Command, storeDB *store.Store, pattern string, format output.Format, density output.Density) error {
	fromRef := findSince
	if fromRef == "" {
		fromRef = "HEAD~1" // Default to comparing with the previous scan
	}

	diffResult, err := storeDB.DoltDiff(store.DiffOptions{
		FromRef: fromRef,
		ToRef:   "HEAD",
		Name:    pattern,
	})
	if err != nil {
		return fmt.Errorf("failed to get diff: %w", err)
	}

	// Collect changes based on flags; no specific flag means show all
	showAll := !findNew && !findChanged && !findRemoved

	type changeEntry struct {
		change     store.DiffChange
		changeType string
	}
	var changes []changeEntry

	if showAll || findNew {
		for _, c := range diffResult.Added {
			changes = append(changes, changeEntry{c, "added"})
		}
	}
	if showAll || findChanged {
		for _, c := range diffResult.Modified {
			changes = append(changes, changeEntry{c, "modified"})
		}
	}
	if showAll || findRemoved {
		for _, c := range diffResult.Removed {
			changes = append(changes, changeEntry{c, "removed"})
		}
	}

	if findExact && pattern != "" {
		var filtered []changeEntry
		for _, c := range changes {
			if c.change.Name == pattern {
				filtered = append(filtered, c)
			}
		}
		changes = filtered
	}

	if findLimit > 0 && len(changes) > findLimit {
		changes = changes[:findLimit]
	}

	if len(changes) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No changes found since %s\n", fromRef)
		return nil
	}

	listOutput := &output.ListOutput{
		Results: make(map[string]*output.RecordOutput, len(changes)),
	}
	for _, c := range changes {
		rec := &output.RecordOutput{
			Args:         c.change.ArgumentCount,
			Readiness:    c.change.ReadinessLevel,
			ChangeStatus: c.changeType,
		}
		if density.IncludesSymbols() {
			rec.Function = c.change.FunctionSymbol
		}
		if density.IncludesHashes() {
			rec.Hashes = diffHashes(c.change)
		}
		listOutput.Results[c.change.Name] = rec
		listOutput.Count++
	}

	formatter, err := output.GetFormatter(format)
	if err != nil {
		return fmt.Errorf("failed to get formatter: %w", err)
	}
	return formatter.FormatToWriter(cmd.OutOrStdout(), listOutput)
}

// diffHashes picks the post-change hashes, falling back to the pre-change
// side for removed records.
func diffHashes(c store.DiffChange) *output.Hashes {
	h := &output.Hashes{}
	if c.NewSigHash != nil {
		h.Signature = *c.NewSigHash
	} else if c.OldSigHash != nil {
		h.Signature = *c.OldSigHash
	}
	if c.NewDocHash != nil {
		h.Doc = *c.NewDocHash
	} else if c.OldDocHash != nil {
		h.Doc = *c.OldDocHash
	}
	if h.Signature == "" && h.Doc == "" {
		return nil
	}
	return h
}

// runFindByName performs name-based search over the index
func runFindByName(cmd *cobra.Command, storeDB *store.Store, pattern string, format output.Format, density output.Density) error {
	filter := store.TelecommandFilter{
		Name:      pattern,
		Exact:     findExact,
		Readiness: normalizeReadiness(findReady),
		Limit:     findLimit,
	}
	if findStatus != "all" {
		filter.Status = findStatus
	}

	// Query records (use AS OF if --at specified)
	var rows []*store.Telecommand
	var err error
	if findAt != "" {
		rows, err = storeDB.QueryTelecommandsAt(filter, findAt)
	} else {
		rows, err = storeDB.QueryTelecommands(filter)
	}
	if err != nil {
		return fmt.Errorf("failed to query telecommands: %w", err)
	}

	if len(rows) == 0 {
		if pattern != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "No telecommands match %q\n", pattern)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "No telecommands indexed: run 'tcx scan' first")
		}
		return nil
	}

	listOutput := &output.ListOutput{
		Results: make(map[string]*output.RecordOutput, len(rows)),
		Count:   len(rows),
	}
	for _, row := range rows {
		ex := row.ToExtract()
		rec := output.NewRecordOutput(&ex, density)
		if row.Status != "active" {
			rec.Status = row.Status
		}
		if density.IncludesSymbols() && row.SourceFile != "" {
			rec.SourceFile = row.SourceFile
		}
		listOutput.Results[row.Name] = rec
	}

	formatter, err := output.GetFormatter(format)
	if err != nil {
		return fmt.Errorf("failed to get formatter: %w", err)
	}
	return formatter.FormatToWriter(cmd.OutOrStdout(), listOutput)
}

// normalizeReadiness uppercases a readiness query so users can pass the
// short form (for_operation) seen in mission docs.
func normalizeReadiness(level string) string {
	return strings.ToUpper(strings.TrimSpace(level))
}
