package jsonscan

import (
	"bytes"
	"encoding/json"
	"strings"
)

const indentUnit = "  "

// Reformat pretty-prints every JSON object embedded in text, leaving the
// surrounding prose untouched.
//
// Replacement is textual: each matched region is substituted wherever that
// exact text occurs in the buffer. An object repeated verbatim in prose is
// therefore reformatted at every occurrence, not only at the matched one.
func Reformat(text string) string {
	out := text
	for _, m := range ScanAll(text) {
		out = strings.ReplaceAll(out, m.SourceText, FormatValue(m.Value))
	}
	return out
}

// FormatValue renders a value with two-space indentation. Member order and
// the source form of numbers are preserved.
func FormatValue(v Value) string {
	var sb strings.Builder
	appendValue(&sb, v, 0)
	return sb.String()
}

func appendValue(sb *strings.Builder, v Value, depth int) {
	switch v.Kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		if v.Bool {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindNumber:
		sb.WriteString(v.Number.String())
	case KindString:
		sb.WriteString(quoteString(v.Str))
	case KindArray:
		if len(v.Array) == 0 {
			sb.WriteString("[]")
			return
		}
		sb.WriteString("[\n")
		for i, elem := range v.Array {
			writeIndent(sb, depth+1)
			appendValue(sb, elem, depth+1)
			if i < len(v.Array)-1 {
				sb.WriteByte(',')
			}
			sb.WriteByte('\n')
		}
		writeIndent(sb, depth)
		sb.WriteByte(']')
	case KindObject:
		if len(v.Members) == 0 {
			sb.WriteString("{}")
			return
		}
		sb.WriteString("{\n")
		for i, m := range v.Members {
			writeIndent(sb, depth+1)
			sb.WriteString(quoteString(m.Key))
			sb.WriteString(": ")
			appendValue(sb, m.Value, depth+1)
			if i < len(v.Members)-1 {
				sb.WriteByte(',')
			}
			sb.WriteByte('\n')
		}
		writeIndent(sb, depth)
		sb.WriteByte('}')
	}
}

func writeIndent(sb *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		sb.WriteString(indentUnit)
	}
}

// quoteString renders s as a JSON string literal without HTML escaping.
func quoteString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}
