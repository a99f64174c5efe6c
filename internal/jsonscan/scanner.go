// Package jsonscan finds and reformats JSON objects embedded in arbitrary
// text, such as telecommand responses and downlinked log lines. Objects are
// located purely by brace scanning, so no framing protocol is required.
package jsonscan

// Match is one JSON object found in a text buffer.
type Match struct {
	Value Value
	// Start is the byte offset of the opening brace, End the offset one
	// past the closing brace, so SourceText == src[Start:End].
	Start      int
	End        int
	SourceText string
}

// Scanner walks a text buffer left to right, pulling out embedded JSON
// objects. For each opening brace, closing-brace candidates are tried from
// the end of the buffer backwards, so the first hit is the longest valid
// object starting there. Regions that never parse are skipped silently.
//
// Candidate probing makes the worst case quadratic in the buffer length.
// The buffers seen here are operator pastes and log tails, small enough
// that the simple strategy holds up.
type Scanner struct {
	src string
	pos int
	cur Match
}

// NewScanner returns a Scanner positioned at the start of src.
func NewScanner(src string) *Scanner {
	return &Scanner{src: src}
}

// Scan advances to the next embedded JSON object. It returns false when no
// further object exists; Match then holds the last successful find.
func (s *Scanner) Scan() bool {
	for i := s.pos; i < len(s.src); i++ {
		if s.src[i] != '{' {
			continue
		}
		for j := len(s.src) - 1; j > i; j-- {
			if s.src[j] != '}' {
				continue
			}
			candidate := s.src[i : j+1]
			v, ok := TryParse(candidate)
			if !ok {
				continue
			}

			s.cur = Match{Value: v, Start: i, End: j + 1, SourceText: candidate}
			s.pos = j + 1
			return true
		}
	}
	s.pos = len(s.src)
	return false
}

// Match returns the object found by the last successful Scan.
func (s *Scanner) Match() Match {
	return s.cur
}

// ScanAll returns every JSON object embedded in src, in text order. Matched
// regions never overlap: scanning resumes after each find.
func ScanAll(src string) []Match {
	var matches []Match
	sc := NewScanner(src)
	for sc.Scan() {
		matches = append(matches, sc.Match())
	}
	return matches
}
