package cmd

import (
	"os"
	"testing"
	"time"

	"github.com/calgarytospace/tcx/internal/cache"
	"github.com/calgarytospace/tcx/internal/extract"
	"github.com/calgarytospace/tcx/internal/output"
)

func TestStatusFormat(t *testing.T) {
	origJSON, origFormat := statusJSON, outputFormat
	defer func() {
		statusJSON, outputFormat = origJSON, origFormat
	}()

	statusJSON, outputFormat = false, "yaml"
	format, err := statusFormat()
	if err != nil {
		t.Fatalf("statusFormat failed: %v", err)
	}
	if format != output.FormatYAML {
		t.Errorf("expected yaml, got %s", format)
	}

	// --json wins over the global --format
	statusJSON = true
	format, err = statusFormat()
	if err != nil {
		t.Fatalf("statusFormat failed: %v", err)
	}
	if format != output.FormatJSON {
		t.Errorf("expected json with --json set, got %s", format)
	}
}

func TestCacheLastParsed(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "tcx-status-test-*")
	if err != nil {
		t.Fatalf("create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	parseCache, err := cache.Open(tmpDir)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer parseCache.Close()

	records := []extract.Telecommand{
		{Name: "hello_world", FunctionSymbol: "TCMDEXEC_hello_world"},
	}
	corpusHash := "a1b2c3d4"
	if err := parseCache.PutParse(corpusHash, records); err != nil {
		t.Fatalf("put parse: %v", err)
	}

	got := cacheLastParsed(parseCache, corpusHash)
	if got == "" {
		t.Fatal("expected a last-parsed timestamp for a cached corpus")
	}
	parsed, err := time.Parse(time.RFC3339, got)
	if err != nil {
		t.Fatalf("last-parsed is not RFC3339: %q", got)
	}
	if time.Since(parsed) > time.Minute {
		t.Errorf("last-parsed timestamp not recent: %v", parsed)
	}

	if got := cacheLastParsed(parseCache, ""); got != "" {
		t.Errorf("expected empty result for no scan, got %q", got)
	}
	if got := cacheLastParsed(parseCache, "deadbeef"); got != "" {
		t.Errorf("expected empty result for unknown corpus, got %q", got)
	}
}
