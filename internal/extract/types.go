// Package extract parses the firmware telecommand table out of a C source
// corpus: comment stripping, struct-array extraction, doc comment lookup,
// and argument description parsing.
//
// Everything in this package is a pure text transformation. Inputs and
// outputs are UTF-8 strings, there is no I/O, and the only package state is
// compiled patterns, so all functions are safe for concurrent use.
package extract

// TelecommandTypeName is the C struct type whose array literal defines the
// firmware's telecommand table.
const TelecommandTypeName = "TCMD_TelecommandDefinition_t"

// Telecommand is one entry of the firmware telecommand table, in the order
// it appears in the array literal.
type Telecommand struct {
	// Name is the ground-facing command name (.tcmd_name).
	Name string `json:"name" yaml:"name"`

	// FunctionSymbol is the firmware handler symbol (.tcmd_func).
	FunctionSymbol string `json:"function_symbol" yaml:"function_symbol"`

	// ArgumentCount is the number of arguments the command takes
	// (.number_of_args). Never negative.
	ArgumentCount int `json:"argument_count" yaml:"argument_count"`

	// ReadinessLevel is the flight-readiness marker (.readiness_level),
	// stored as written in the firmware.
	ReadinessLevel string `json:"readiness_level" yaml:"readiness_level"`

	// FullDoc is the /// doc comment found above the handler, markers
	// stripped, lines joined with \n. Nil when no doc comment exists.
	FullDoc *string `json:"full_doc,omitempty" yaml:"full_doc,omitempty"`

	// ArgumentDescriptions lists per-argument descriptions from the doc
	// comment in the order they appear in the text. Nil when the doc has no
	// argument marker; empty but non-nil when the marker exists with no
	// entries.
	ArgumentDescriptions []string `json:"argument_descriptions,omitempty" yaml:"argument_descriptions,omitempty"`
}

// Doc returns the doc comment, or "" when the record has none.
func (t *Telecommand) Doc() string {
	if t.FullDoc == nil {
		return ""
	}
	return *t.FullDoc
}
