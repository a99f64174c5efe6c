package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/calgarytospace/tcx/internal/extract"
	"github.com/calgarytospace/tcx/internal/output"
	"github.com/calgarytospace/tcx/internal/store"
	"github.com/spf13/cobra"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the telecommand index to CSV",
	Long: `Write every active telecommand to a CSV file for spreadsheets and
mission documentation.

The default filename is timestamped (telecommands_YYYY-MM-DD_HH-MM.csv)
and written to the configured export directory.

Examples:
  tcx export                        # Timestamped CSV in the export dir
  tcx export --out commands.csv     # Explicit output path
  tcx export --stdout               # Write CSV to standard output`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var (
	exportOut    string
	exportStdout bool
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file path (default: timestamped name in export dir)")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "Write CSV to standard output instead of a file")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	storeDB, err := openStore()
	if err != nil {
		return err
	}
	defer storeDB.Close()

	rows, err := storeDB.QueryTelecommands(store.TelecommandFilter{Status: "active"})
	if err != nil {
		return fmt.Errorf("failed to query telecommands: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("no telecommands indexed: run 'tcx scan' first")
	}

	records := make([]extract.Telecommand, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.ToExtract())
	}

	if exportStdout {
		return output.WriteTelecommandCSV(cmd.OutOrStdout(), records)
	}

	path := exportOut
	if path == "" {
		path = filepath.Join(cfg.Output.ExportDir, output.ExportFilename(time.Now()))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := output.WriteTelecommandCSV(f, records); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d telecommands to %s\n", len(records), path)
	return nil
}
