package output

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/calgarytospace/tcx/internal/extract"
)

func TestWriteTelecommandCSV(t *testing.T) {
	records := []extract.Telecommand{
		{
			Name:           "hello_world",
			FunctionSymbol: "TCMDEXEC_hello_world",
			ArgumentCount:  0,
			ReadinessLevel: "TCMD_READINESS_LEVEL_FOR_OPERATION",
		},
		{
			Name:                 "agenda_delete_by_tssent",
			FunctionSymbol:       "TCMDEXEC_agenda_delete_by_tssent",
			ArgumentCount:        1,
			ReadinessLevel:       "TCMD_READINESS_LEVEL_FOR_OPERATION",
			FullDoc:              docPtr("@brief Deletes an agenda entry."),
			ArgumentDescriptions: []string{"tssent timestamp of the entry to delete"},
		},
	}

	var buf bytes.Buffer
	if err := WriteTelecommandCSV(&buf, records); err != nil {
		t.Fatalf("WriteTelecommandCSV failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d rows", len(rows))
	}

	header := rows[0]
	if len(header) != 6 {
		t.Fatalf("expected 6 columns, got %d", len(header))
	}
	if header[0] != "Name" || header[3] != "Readiness Level" {
		t.Errorf("unexpected header: %v", header)
	}

	// Rows come out in input order
	if rows[1][0] != "hello_world" {
		t.Errorf("expected first row hello_world, got %s", rows[1][0])
	}
	if rows[1][2] != "0" {
		t.Errorf("expected arg count 0, got %s", rows[1][2])
	}
	if rows[2][0] != "agenda_delete_by_tssent" {
		t.Errorf("expected second row agenda_delete_by_tssent, got %s", rows[2][0])
	}
	if rows[2][4] != "tssent timestamp of the entry to delete" {
		t.Errorf("unexpected arguments column: %s", rows[2][4])
	}
	if rows[2][5] != "@brief Deletes an agenda entry." {
		t.Errorf("unexpected docstring column: %s", rows[2][5])
	}
}

func TestWriteTelecommandCSV_JoinsArgDescriptions(t *testing.T) {
	records := []extract.Telecommand{
		{
			Name:                 "set_rtc",
			FunctionSymbol:       "TCMDEXEC_set_rtc",
			ArgumentCount:        2,
			ReadinessLevel:       "TCMD_READINESS_LEVEL_FOR_TESTING",
			ArgumentDescriptions: []string{"unix epoch ms", "sync source"},
		},
	}

	var buf bytes.Buffer
	if err := WriteTelecommandCSV(&buf, records); err != nil {
		t.Fatalf("WriteTelecommandCSV failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if rows[1][4] != "unix epoch ms, sync source" {
		t.Errorf("expected joined arg descriptions, got %q", rows[1][4])
	}
}

func TestWriteTelecommandCSV_EmptyIndex(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTelecommandCSV(&buf, nil); err != nil {
		t.Fatalf("WriteTelecommandCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 1 {
		t.Errorf("expected header only, got %d lines", len(lines))
	}
}

func TestExportFilename(t *testing.T) {
	at := time.Date(2026, 8, 24, 14, 5, 33, 0, time.UTC)
	got := ExportFilename(at)
	want := "telecommands_2026-08-24_14-05.csv"
	if got != want {
		t.Errorf("ExportFilename = %s, want %s", got, want)
	}
}
