package extract

import "fmt"

// StructureCountError is returned when the corpus does not contain exactly
// one telecommand definition array. Count is the number actually found.
type StructureCountError struct {
	Count int
}

// Error implements the error interface.
func (e *StructureCountError) Error() string {
	return fmt.Sprintf("expected exactly 1 %s array, found %d", TelecommandTypeName, e.Count)
}

// FieldMissingError is returned when an array element lacks a required
// designated initializer. Element is the zero-based declaration position.
type FieldMissingError struct {
	Field   string
	Element int
}

// Error implements the error interface.
func (e *FieldMissingError) Error() string {
	return fmt.Sprintf("element %d: missing required field .%s", e.Element, e.Field)
}

// TypeConversionError is returned when a field value cannot be converted to
// its record type.
type TypeConversionError struct {
	Field   string
	Value   string
	Element int
	Err     error
}

// Error implements the error interface.
func (e *TypeConversionError) Error() string {
	return fmt.Sprintf("element %d: field .%s: cannot convert %q: %v", e.Element, e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying conversion error.
func (e *TypeConversionError) Unwrap() error {
	return e.Err
}
