package extract

import (
	"strings"
	"testing"
)

func TestStripComments_BlockComment(t *testing.T) {
	src := "int a; /* comment */ int b;"
	got := StripComments(src)
	want := "int a; \n int b;"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStripComments_MultilineBlockCollapsesToOneNewline(t *testing.T) {
	src := "int a;\n/* line one\n   line two\n   line three */\nint b;"
	got := StripComments(src)
	want := "int a;\n\n\nint b;"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	// The entire block is a single replacement, not one per line.
	if strings.Count(got, "\n") != 3 {
		t.Errorf("expected 3 newlines, got %d in %q", strings.Count(got, "\n"), got)
	}
}

func TestStripComments_LineComment(t *testing.T) {
	src := "int a; // trailing comment\nint b;"
	got := StripComments(src)
	want := "int a; \nint b;"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStripComments_LineCommentKeepsNewline(t *testing.T) {
	src := "// full line comment\nint a;"
	got := StripComments(src)
	want := "\nint a;"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStripComments_DocCommentRun(t *testing.T) {
	src := "/// @brief Telecommand: does a thing.\n/// @param args_str No arguments.\nuint8_t TCMDEXEC_thing(const char *args_str);"
	got := StripComments(src)
	want := "\n\nuint8_t TCMDEXEC_thing(const char *args_str);"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStripComments_BlockPassRunsFirst(t *testing.T) {
	// A block comment containing // is removed wholesale by the block pass.
	src := "int a; /* see http://example.com */ int b;"
	got := StripComments(src)
	want := "int a; \n int b;"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	// A line comment containing /* is removed to end of line; the rest of
	// the file is untouched.
	src = "int a; // open /* marker\nint b;"
	got = StripComments(src)
	want = "int a; \nint b;"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStripComments_LexicalInsideStrings(t *testing.T) {
	// The stripper is purely lexical: comment markers inside string
	// literals are treated as comments too.
	src := `char *url = "http://example.com";` + "\nint a;"
	got := StripComments(src)
	want := `char *url = "http:` + "\nint a;"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStripComments_NoComments(t *testing.T) {
	src := "int a;\nint b;\n"
	if got := StripComments(src); got != src {
		t.Errorf("comment-free input should pass through unchanged, got %q", got)
	}
}

func TestStripComments_Empty(t *testing.T) {
	if got := StripComments(""); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestStripComments_Deterministic(t *testing.T) {
	src := "/* a */ int x; // b\n/* c\nd */ int y;"
	first := StripComments(src)
	second := StripComments(src)
	if first != second {
		t.Errorf("StripComments not deterministic: %q != %q", first, second)
	}
}
