package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/calgarytospace/tcx/internal/jsonscan"
	"github.com/spf13/cobra"
)

// fmtCmd represents the fmt command
var fmtCmd = &cobra.Command{
	Use:   "fmt [file]",
	Short: "Reformat JSON blobs embedded in downlink text",
	Long: `Find JSON objects embedded in free-form downlink text and pretty-print
them in place, leaving the surrounding text untouched.

Satellite responses interleave log lines with single-line JSON payloads;
this makes those payloads readable without disturbing the transcript.
Reads from a file when given, otherwise from standard input.

Examples:
  tcx fmt transcript.log            # Reformatted transcript to stdout
  tcx fmt transcript.log --write    # Rewrite the file in place
  tcx fmt transcript.log --list     # List embedded blobs without output
  cat pass_2026-08-21.log | tcx fmt # Filter a piped transcript`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFmt,
}

var (
	fmtList  bool
	fmtWrite bool
)

func init() {
	rootCmd.AddCommand(fmtCmd)

	fmtCmd.Flags().BoolVar(&fmtList, "list", false, "List embedded JSON blobs instead of reformatting")
	fmtCmd.Flags().BoolVar(&fmtWrite, "write", false, "Rewrite the input file in place (requires a file argument)")
}

func runFmt(cmd *cobra.Command, args []string) error {
	var (
		text string
		path string
	)

	if len(args) > 0 {
		path = args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		text = string(data)
	} else {
		if fmtWrite {
			return fmt.Errorf("--write requires a file argument")
		}
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}

	if fmtList {
		matches := jsonscan.ScanAll(text)
		if len(matches) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No JSON blobs found")
			return nil
		}
		for i, m := range matches {
			fmt.Fprintf(cmd.OutOrStdout(), "%d: bytes %d-%d (%d bytes)\n", i, m.Start, m.End, m.End-m.Start)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d blob(s)\n", len(matches))
		return nil
	}

	formatted := jsonscan.Reformat(text)

	if fmtWrite {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if err := os.WriteFile(path, []byte(formatted), info.Mode().Perm()); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		if verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "Reformatted %s\n", path)
		}
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), formatted)
	return nil
}
