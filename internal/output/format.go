// Package output provides format and density types for tcx.
package output

import (
	"fmt"
	"strings"
)

// Format represents the output format type.
type Format string

const (
	// FormatYAML is the default self-documenting YAML output
	FormatYAML Format = "yaml"

	// FormatJSON is the JSON output format
	FormatJSON Format = "json"
)

// ParseFormat parses a format string into a Format value.
// Accepts: "yaml", "json" (case-insensitive)
// Returns an error for invalid format values.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid format: %q (expected yaml or json)", s)
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// Density represents the level of detail in output.
// Different density levels optimize for different use cases:
//   - Sparse: Minimal tokens for "does this command exist" queries
//   - Medium: Balanced detail for most use cases (default)
//   - Dense: Full detail including docstrings, hashes, timestamps
type Density string

const (
	// DensitySparse provides the minimal record shape
	// Includes: argument count, readiness level
	DensitySparse Density = "sparse"

	// DensityMedium provides balanced detail (default)
	// Includes: everything in sparse + handler symbol, status
	DensityMedium Density = "medium"

	// DensityDense provides full detail
	// Includes: everything in medium + docstrings, hashes, timestamps
	DensityDense Density = "dense"
)

// ParseDensity parses a density string into a Density value.
// Accepts: "sparse", "medium", "dense" (case-insensitive)
// Returns an error for invalid density values.
func ParseDensity(s string) (Density, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sparse":
		return DensitySparse, nil
	case "medium":
		return DensityMedium, nil
	case "dense":
		return DensityDense, nil
	default:
		return "", fmt.Errorf("invalid density: %q (expected sparse, medium, or dense)", s)
	}
}

// String returns the string representation of the density.
func (d Density) String() string {
	return string(d)
}

// IncludesSymbols returns true if this density level includes handler symbols.
func (d Density) IncludesSymbols() bool {
	return d == DensityMedium || d == DensityDense
}

// IncludesDocs returns true if this density level includes docstrings and
// argument descriptions.
func (d Density) IncludesDocs() bool {
	return d == DensityDense
}

// IncludesHashes returns true if this density level includes hashes.
func (d Density) IncludesHashes() bool {
	return d == DensityDense
}

// IncludesTimestamps returns true if this density level includes timestamps.
func (d Density) IncludesTimestamps() bool {
	return d == DensityDense
}

// DefaultFormat is the default output format when none is specified.
const DefaultFormat = FormatYAML

// DefaultDensity is the default density level when none is specified.
const DefaultDensity = DensityMedium

// ValidateFormat checks if a format value is valid.
func ValidateFormat(f Format) bool {
	switch f {
	case FormatYAML, FormatJSON:
		return true
	default:
		return false
	}
}

// ValidateDensity checks if a density value is valid.
func ValidateDensity(d Density) bool {
	switch d {
	case DensitySparse, DensityMedium, DensityDense:
		return true
	default:
		return false
	}
}
