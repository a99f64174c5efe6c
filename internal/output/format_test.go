package output

import (
	"testing"
)

// TestGetFormatterYAML tests that GetFormatter returns a YAML formatter
func TestGetFormatterYAML(t *testing.T) {
	formatter, err := GetFormatter(FormatYAML)
	if err != nil {
		t.Fatalf("GetFormatter(FormatYAML) failed: %v", err)
	}

	_, ok := formatter.(*YAMLFormatter)
	if !ok {
		t.Errorf("expected *YAMLFormatter, got %T", formatter)
	}
}

// TestGetFormatterJSON tests that GetFormatter returns a JSON formatter
func TestGetFormatterJSON(t *testing.T) {
	formatter, err := GetFormatter(FormatJSON)
	if err != nil {
		t.Fatalf("GetFormatter(FormatJSON) failed: %v", err)
	}

	_, ok := formatter.(*JSONFormatter)
	if !ok {
		t.Errorf("expected *JSONFormatter, got %T", formatter)
	}
}

// TestGetFormatterInvalid tests that GetFormatter returns error for invalid format
func TestGetFormatterInvalid(t *testing.T) {
	_, err := GetFormatter(Format("invalid"))
	if err == nil {
		t.Error("GetFormatter should return error for invalid format")
	}
}

// TestFormatString tests the String() method
func TestFormatString(t *testing.T) {
	tests := []struct {
		format   Format
		expected string
	}{
		{FormatYAML, "yaml"},
		{FormatJSON, "json"},
	}

	for _, tt := range tests {
		if got := tt.format.String(); got != tt.expected {
			t.Errorf("Format(%s).String() = %s, want %s", tt.format, got, tt.expected)
		}
	}
}

// TestDensityString tests the String() method for Density
func TestDensityString(t *testing.T) {
	tests := []struct {
		density  Density
		expected string
	}{
		{DensitySparse, "sparse"},
		{DensityMedium, "medium"},
		{DensityDense, "dense"},
	}

	for _, tt := range tests {
		if got := tt.density.String(); got != tt.expected {
			t.Errorf("Density(%s).String() = %s, want %s", tt.density, got, tt.expected)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"yaml", FormatYAML, false},
		{"YAML", FormatYAML, false},
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"  yaml  ", FormatYAML, false},
		{"csv", "", true},
		{"invalid", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseDensity(t *testing.T) {
	tests := []struct {
		input    string
		expected Density
		wantErr  bool
	}{
		{"sparse", DensitySparse, false},
		{"SPARSE", DensitySparse, false},
		{"medium", DensityMedium, false},
		{"MEDIUM", DensityMedium, false},
		{"dense", DensityDense, false},
		{"DENSE", DensityDense, false},
		{"  medium  ", DensityMedium, false},
		{"invalid", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDensity(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDensity(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.expected {
				t.Errorf("ParseDensity(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDensityIncludesSymbols(t *testing.T) {
	tests := []struct {
		density  Density
		expected bool
	}{
		{DensitySparse, false},
		{DensityMedium, true},
		{DensityDense, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.density), func(t *testing.T) {
			got := tt.density.IncludesSymbols()
			if got != tt.expected {
				t.Errorf("Density(%s).IncludesSymbols() = %v, want %v", tt.density, got, tt.expected)
			}
		})
	}
}

func TestDensityIncludesDocs(t *testing.T) {
	tests := []struct {
		density  Density
		expected bool
	}{
		{DensitySparse, false},
		{DensityMedium, false},
		{DensityDense, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.density), func(t *testing.T) {
			got := tt.density.IncludesDocs()
			if got != tt.expected {
				t.Errorf("Density(%s).IncludesDocs() = %v, want %v", tt.density, got, tt.expected)
			}
		})
	}
}

func TestDensityIncludesHashes(t *testing.T) {
	tests := []struct {
		density  Density
		expected bool
	}{
		{DensitySparse, false},
		{DensityMedium, false},
		{DensityDense, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.density), func(t *testing.T) {
			got := tt.density.IncludesHashes()
			if got != tt.expected {
				t.Errorf("Density(%s).IncludesHashes() = %v, want %v", tt.density, got, tt.expected)
			}
		})
	}
}

func TestDensityIncludesTimestamps(t *testing.T) {
	tests := []struct {
		density  Density
		expected bool
	}{
		{DensitySparse, false},
		{DensityMedium, false},
		{DensityDense, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.density), func(t *testing.T) {
			got := tt.density.IncludesTimestamps()
			if got != tt.expected {
				t.Errorf("Density(%s).IncludesTimestamps() = %v, want %v", tt.density, got, tt.expected)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format   Format
		expected bool
	}{
		{FormatYAML, true},
		{FormatJSON, true},
		{Format("cgf"), false},
		{Format(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			got := ValidateFormat(tt.format)
			if got != tt.expected {
				t.Errorf("ValidateFormat(%s) = %v, want %v", tt.format, got, tt.expected)
			}
		})
	}
}

func TestValidateDensity(t *testing.T) {
	tests := []struct {
		density  Density
		expected bool
	}{
		{DensitySparse, true},
		{DensityMedium, true},
		{DensityDense, true},
		{Density("smart"), false},
		{Density(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.density), func(t *testing.T) {
			got := ValidateDensity(tt.density)
			if got != tt.expected {
				t.Errorf("ValidateDensity(%s) = %v, want %v", tt.density, got, tt.expected)
			}
		})
	}
}

func TestDefaultConstants(t *testing.T) {
	if DefaultFormat != FormatYAML {
		t.Errorf("DefaultFormat should be YAML, got %s", DefaultFormat)
	}

	if DefaultDensity != DensityMedium {
		t.Errorf("DefaultDensity should be medium, got %s", DefaultDensity)
	}
}
