package cmd

import (
	"testing"
)

func TestShortenHash(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"4f2a1c9d8e7b6a5f", "4f2a1c9"},
		{"4f2a1c9", "4f2a1c9"},
		{"abc", "abc"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := shortenHash(tt.input); got != tt.want {
			t.Errorf("shortenHash(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseOutputOptions(t *testing.T) {
	origFormat, origDensity := outputFormat, outputDensity
	defer func() {
		outputFormat, outputDensity = origFormat, origDensity
	}()

	outputFormat, outputDensity = "json", "dense"
	format, density, err := parseOutputOptions()
	if err != nil {
		t.Fatalf("parseOutputOptions failed: %v", err)
	}
	if format.String() != "json" {
		t.Errorf("expected json format, got %q", format)
	}
	if density.String() != "dense" {
		t.Errorf("expected dense density, got %q", density)
	}

	outputFormat = "xml"
	if _, _, err := parseOutputOptions(); err == nil {
		t.Error("expected error for invalid format")
	}

	outputFormat, outputDensity = "yaml", "extreme"
	if _, _, err := parseOutputOptions(); err == nil {
		t.Error("expected error for invalid density")
	}
}

func TestNormalizeReadiness(t *testing.T) {
	if got := normalizeReadiness(" for_operation "); got != "FOR_OPERATION" {
		t.Errorf("normalizeReadiness = %q, want FOR_OPERATION", got)
	}
	if got := normalizeReadiness(""); got != "" {
		t.Errorf("normalizeReadiness of empty = %q", got)
	}
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration("30m")
	if err != nil {
		t.Fatalf("parseDuration failed: %v", err)
	}
	if d.Minutes() != 30 {
		t.Errorf("expected 30m, got %v", d)
	}

	// "0" and "" disable the timeout
	for _, s := range []string{"0", ""} {
		d, err := parseDuration(s)
		if err != nil {
			t.Fatalf("parseDuration(%q) failed: %v", s, err)
		}
		if d != 0 {
			t.Errorf("parseDuration(%q) = %v, want 0", s, d)
		}
	}

	if _, err := parseDuration("not-a-duration"); err == nil {
		t.Error("expected error for invalid duration")
	}
}
