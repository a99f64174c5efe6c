package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/calgarytospace/tcx/internal/preview"
	"github.com/calgarytospace/tcx/internal/store"
	"github.com/spf13/cobra"
)

// previewCmd represents the preview command
var previewCmd = &cobra.Command{
	Use:   "preview <name> [arg...]",
	Short: "Build the uplink string for a telecommand invocation",
	Long: `Render the exact string a telecommand takes on the radio uplink:

  CTS1+hello_world()@tssent=1767322800123!

The argument count is validated against the indexed definition before the
frame is rendered, so a malformed invocation is caught on the ground.
The @tssent timestamp tag is included by default; disable it with
--no-tssent, or pin it to a fixed time with --at for byte-stable output.

Examples:
  tcx preview hello_world                        # No-argument command
  tcx preview fm_write_file /logs/a.txt hello    # Positional arguments
  tcx preview obc_reset --no-tssent              # Omit the send timestamp
  tcx preview hello_world --at 2026-08-24T14:05:00Z
  tcx preview fm_list_directory / --tsexec 1767322900000
  tcx preview fm_read_file /cfg --resp-fname /out/cfg.txt
  tcx preview obc_get_rtc --tag origin=ground2   # Custom @tag=value`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPreview,
}

var (
	previewNoTssent  bool
	previewExecTime  string
	previewRespFname string
	previewTags      []string
	previewPrefix    string
	previewAt        string
)

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().BoolVar(&previewNoTssent, "no-tssent", false, "Omit the @tssent timestamp tag")
	previewCmd.Flags().StringVar(&previewExecTime, "tsexec", "", "Scheduled execution time for the @tsexec tag")
	previewCmd.Flags().StringVar(&previewRespFname, "resp-fname", "", "Satellite file path for the @resp_fname tag")
	previewCmd.Flags().StringArrayVar(&previewTags, "tag", nil, "Extra tag as key=value (can be repeated)")
	previewCmd.Flags().StringVar(&previewPrefix, "prefix", "", "Override the uplink frame prefix")
	previewCmd.Flags().StringVar(&previewAt, "at", "", "Pin the @tssent tag to an RFC3339 time instead of now")
}

func runPreview(cmd *cobra.Command, args []string) error {
	name := args[0]
	cmdArgs := args[1:]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	storeDB, err := openStore()
	if err != nil {
		return err
	}
	defer storeDB.Close()

	row, err := resolveTelecommand(storeDB, name)
	if err != nil {
		return err
	}

	if err := validateArgCount(row, cmdArgs); err != nil {
		return err
	}

	extraTags, err := parseTagFlags(previewTags)
	if err != nil {
		return err
	}

	at, err := parseAtFlag(previewAt)
	if err != nil {
		return err
	}

	prefix := previewPrefix
	if prefix == "" {
		prefix = cfg.Preview.Prefix
	}

	uplink := preview.Generate(row.Name, cmdArgs, preview.Options{
		IncludeTimestamp: !previewNoTssent,
		Timestamp:        at,
		ExecTime:         previewExecTime,
		ResponseFile:     previewRespFname,
		ExtraTags:        extraTags,
		Prefix:           prefix,
	})

	// The frame is the output, not a report about it
	fmt.Fprintln(cmd.OutOrStdout(), uplink)
	return nil
}

// validateArgCount checks an invocation against the indexed definition.
func validateArgCount(row *store.Telecommand, args []string) error {
	if len(args) == row.ArgumentCount {
		return nil
	}
	msg := fmt.Sprintf("%s takes %d argument(s), got %d", row.Name, row.ArgumentCount, len(args))
	if len(row.ArgDescriptions) > 0 {
		var lines []string
		for i, d := range row.ArgDescriptions {
			lines = append(lines, fmt.Sprintf("  %d: %s", i, d))
		}
		msg += "\n" + strings.Join(lines, "\n")
	}
	return fmt.Errorf("%s", msg)
}

// parseAtFlag parses the --at value. Empty means render time.
func parseAtFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	at, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at value %q: expected RFC3339 (e.g. 2026-08-24T14:05:00Z)", s)
	}
	return at, nil
}

// parseTagFlags parses repeated --tag key=value flags.
func parseTagFlags(tags []string) (map[string]string, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(tags))
	for _, t := range tags {
		key, value, ok := strings.Cut(t, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --tag %q: expected key=value", t)
		}
		out[key] = value
	}
	return out, nil
}
