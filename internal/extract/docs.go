package extract

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	argMarkerRE = regexp.MustCompile(`@param\s+args_str`)
	argLineRE   = regexp.MustCompile(`-\s*Arg\s*\d+\s*:\s*(.*)`)
)

// FindDoc returns the /// doc comment block immediately above the definition
// of symbol in the comment-bearing corpus: a contiguous run of /// lines
// directly followed by a return-type token, the exact symbol, and the
// opening parenthesis. The markers are stripped, each line trimmed, and
// lines rejoined with \n. Absence is not an error.
//
// The pattern is compiled per call because the symbol varies; symbols are
// quoted, so C identifiers with regex metacharacters cannot occur but would
// be harmless.
func FindDoc(corpus, symbol string) (string, bool) {
	re := regexp.MustCompile(fmt.Sprintf(
		`(?m)((?:^[ \t]*///.*\r?\n)+)[ \t]*\w+[ \t]+%s\s*\(`,
		regexp.QuoteMeta(symbol),
	))
	m := re.FindStringSubmatch(corpus)
	if m == nil {
		return "", false
	}

	lines := strings.Split(strings.TrimRight(m[1], "\r\n"), "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "///")
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n"), true
}

// ArgDescriptions parses per-argument descriptions out of a doc comment.
// Returns nil when the doc has no args_str parameter marker. After the
// marker, every "- Arg <N>: <desc>" line contributes its description, in
// textual order regardless of the numeric labels. Marker with no arg lines
// yields an empty, non-nil slice.
func ArgDescriptions(doc string) []string {
	loc := argMarkerRE.FindStringIndex(doc)
	if loc == nil {
		return nil
	}

	descs := []string{}
	for _, m := range argLineRE.FindAllStringSubmatch(doc[loc[1]:], -1) {
		descs = append(descs, strings.TrimSpace(m[1]))
	}
	return descs
}
