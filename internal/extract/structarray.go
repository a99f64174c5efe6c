package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	arrayRE   = regexp.MustCompile(`(?s)` + TelecommandTypeName + `\s+\w+\s*\[\s*\]\s*=\s*\{(.*?)\};`)
	elementRE = regexp.MustCompile(`(?s)\{([^{}]*)\}`)
	fieldRE   = regexp.MustCompile(`\.(\w+)\s*=\s*([^,]+)`)
)

// fieldSpec binds a C designator to its assignment into a record.
type fieldSpec struct {
	designator string
	assign     func(*Telecommand, string) error
}

// requiredFields are the designators every element must carry. Unknown
// designators are ignored.
var requiredFields = []fieldSpec{
	{"tcmd_name", func(t *Telecommand, v string) error {
		t.Name = v
		return nil
	}},
	{"tcmd_func", func(t *Telecommand, v string) error {
		t.FunctionSymbol = v
		return nil
	}},
	{"number_of_args", func(t *Telecommand, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		t.ArgumentCount = n
		return nil
	}},
	{"readiness_level", func(t *Telecommand, v string) error {
		t.ReadinessLevel = v
		return nil
	}},
}

// ParseArray extracts the telecommand table from comment-stripped source.
// The corpus must contain exactly one TelecommandTypeName array literal; any
// other count is a StructureCountError. Element bodies are flat brace pairs
// with no nesting. Field errors abort the whole parse; no partial records
// are returned.
func ParseArray(stripped string) ([]Telecommand, error) {
	arrays := arrayRE.FindAllStringSubmatch(stripped, -1)
	if len(arrays) != 1 {
		return nil, &StructureCountError{Count: len(arrays)}
	}

	elements := elementRE.FindAllStringSubmatch(arrays[0][1], -1)
	records := make([]Telecommand, 0, len(elements))
	for i, el := range elements {
		rec, err := parseElement(el[1], i)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseElement reads one element body ("{...}" contents) at the given
// declaration position.
func parseElement(body string, index int) (Telecommand, error) {
	fields := make(map[string]string)
	for _, m := range fieldRE.FindAllStringSubmatch(body, -1) {
		fields[m[1]] = trimValue(m[2])
	}

	var rec Telecommand
	for _, spec := range requiredFields {
		raw, ok := fields[spec.designator]
		if !ok {
			return Telecommand{}, &FieldMissingError{Field: spec.designator, Element: index}
		}
		if err := spec.assign(&rec, raw); err != nil {
			return Telecommand{}, &TypeConversionError{Field: spec.designator, Value: raw, Element: index, Err: err}
		}
	}
	return rec, nil
}

// trimValue trims surrounding whitespace, then one surrounding quote pair
// (double or single) if present.
func trimValue(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 {
		first, last := v[0], v[len(v)-1]
		if first == last && (first == '"' || first == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}
