package extract

import "regexp"

var (
	blockCommentRE = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRE  = regexp.MustCompile(`//[^\n]*`)
)

// StripComments removes C comments from src. Each block comment collapses to
// a single newline so surrounding tokens stay separated; line comments
// (including /// doc lines) are cut to end of line, keeping the newline.
// Block comments are stripped first, then line comments. Nested block
// comments are not recognized, same as C itself.
func StripComments(src string) string {
	out := blockCommentRE.ReplaceAllString(src, "\n")
	return lineCommentRE.ReplaceAllString(out, "")
}
