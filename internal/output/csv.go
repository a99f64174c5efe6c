package output

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/calgarytospace/tcx/internal/extract"
)

// csvHeader is the column layout for telecommand CSV exports.
var csvHeader = []string{
	"Name",
	"Function",
	"Number of Args",
	"Readiness Level",
	"Arguments",
	"Docstring",
}

// WriteTelecommandCSV writes telecommand records as CSV, one row per
// record in the given order. Argument descriptions are joined with
// ", " into a single column.
func WriteTelecommandCSV(w io.Writer, records []extract.Telecommand) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for i := range records {
		t := &records[i]
		row := []string{
			t.Name,
			t.FunctionSymbol,
			strconv.Itoa(t.ArgumentCount),
			t.ReadinessLevel,
			strings.Join(t.ArgumentDescriptions, ", "),
			t.Doc(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFilename returns the timestamped default filename for a CSV export.
// Example: telecommands_2026-08-24_14-05.csv
func ExportFilename(t time.Time) string {
	return "telecommands_" + t.Format("2006-01-02_15-04") + ".csv"
}
