package extract

import (
	"reflect"
	"strings"
	"testing"
)

const documentedSource = `
#include "telecommand_defs.h"

/// @brief Telecommand: Echo back the argument string.
/// @param args_str The argument string passed to the telecommand.
/// - Arg 0: The string to echo back.
/// @param response_output_buf The buffer to write the response to.
/// @return 0 on success, >0 on error.
uint8_t TCMDEXEC_echo_back_args(const char *args_str, char *response_output_buf) {
    return 0;
}

// Plain comment, not a doc block.
uint8_t TCMDEXEC_hello_world(const char *args_str, char *response_output_buf) {
    return 0;
}

/// @brief Telecommand: Reboot the satellite after a delay.
/// @param args_str The argument string.
/// - Arg 0: Delay before reboot, in seconds.
/// - Arg 1: Confirmation code.
uint8_t TCMDEXEC_reboot(const char *args_str, char *response_output_buf) {
    return 0;
}
`

func TestFindDoc_Found(t *testing.T) {
	doc, ok := FindDoc(documentedSource, "TCMDEXEC_echo_back_args")
	if !ok {
		t.Fatal("expected doc comment to be found")
	}

	want := "@brief Telecommand: Echo back the argument string.\n" +
		"@param args_str The argument string passed to the telecommand.\n" +
		"- Arg 0: The string to echo back.\n" +
		"@param response_output_buf The buffer to write the response to.\n" +
		"@return 0 on success, >0 on error."
	if doc != want {
		t.Errorf("expected %q, got %q", want, doc)
	}
}

func TestFindDoc_PicksBlockAboveSymbol(t *testing.T) {
	doc, ok := FindDoc(documentedSource, "TCMDEXEC_reboot")
	if !ok {
		t.Fatal("expected doc comment to be found")
	}

	// The block belongs to reboot, not to an earlier function.
	if !strings.HasPrefix(doc, "@brief Telecommand: Reboot the satellite") {
		t.Errorf("wrong doc block attached: %q", doc)
	}
	if strings.Contains(doc, "Echo back") {
		t.Errorf("doc block from another function attached: %q", doc)
	}
}

func TestFindDoc_NotDocumented(t *testing.T) {
	doc, ok := FindDoc(documentedSource, "TCMDEXEC_hello_world")
	if ok {
		t.Errorf("plain // comments are not doc blocks, got %q", doc)
	}
	if doc != "" {
		t.Errorf("expected empty doc, got %q", doc)
	}
}

func TestFindDoc_UnknownSymbol(t *testing.T) {
	if doc, ok := FindDoc(documentedSource, "TCMDEXEC_does_not_exist"); ok {
		t.Errorf("expected no doc for unknown symbol, got %q", doc)
	}
}

func TestFindDoc_BlankLineBreaksAdjacency(t *testing.T) {
	src := `
/// @brief Orphaned doc block.

uint8_t TCMDEXEC_orphan(const char *args_str) {
    return 0;
}
`
	if doc, ok := FindDoc(src, "TCMDEXEC_orphan"); ok {
		t.Errorf("doc block separated by a blank line should not attach, got %q", doc)
	}
}

func TestFindDoc_ExactSymbolOnly(t *testing.T) {
	src := `
/// @brief Full name doc.
uint8_t TCMDEXEC_hello_world(const char *args_str) {
    return 0;
}
`
	// A prefix of the real symbol must not match.
	if doc, ok := FindDoc(src, "TCMDEXEC_hello"); ok {
		t.Errorf("symbol prefix should not match, got %q", doc)
	}
	// Neither should a suffix.
	if doc, ok := FindDoc(src, "hello_world"); ok {
		t.Errorf("symbol suffix should not match, got %q", doc)
	}
	if _, ok := FindDoc(src, "TCMDEXEC_hello_world"); !ok {
		t.Error("exact symbol should match")
	}
}

func TestFindDoc_IndentedBlock(t *testing.T) {
	src := "    /// @brief Indented doc.\n    /// Second line.\n    uint8_t TCMDEXEC_indented(const char *args_str);\n"
	doc, ok := FindDoc(src, "TCMDEXEC_indented")
	if !ok {
		t.Fatal("expected indented doc block to be found")
	}
	want := "@brief Indented doc.\nSecond line."
	if doc != want {
		t.Errorf("expected %q, got %q", want, doc)
	}
}

func TestFindDoc_CRLF(t *testing.T) {
	src := "/// @brief Windows line endings.\r\n/// Second line.\r\nuint8_t TCMDEXEC_crlf(const char *args_str);\r\n"
	doc, ok := FindDoc(src, "TCMDEXEC_crlf")
	if !ok {
		t.Fatal("expected doc block to be found")
	}
	want := "@brief Windows line endings.\nSecond line."
	if doc != want {
		t.Errorf("expected %q, got %q", want, doc)
	}
}

func TestArgDescriptions_NoMarker(t *testing.T) {
	doc := "@brief Telecommand: No arguments here.\n@return 0 on success."
	if got := ArgDescriptions(doc); got != nil {
		t.Errorf("expected nil without args_str marker, got %v", got)
	}
}

func TestArgDescriptions_MarkerNoArgs(t *testing.T) {
	doc := "@brief Telecommand: Takes no arguments.\n@param args_str Unused."
	got := ArgDescriptions(doc)
	if got == nil {
		t.Fatal("marker present: expected non-nil slice")
	}
	if len(got) != 0 {
		t.Errorf("expected 0 descriptions, got %v", got)
	}
}

func TestArgDescriptions_Ordered(t *testing.T) {
	doc := "@brief Telecommand: Set a config variable.\n" +
		"@param args_str The argument string.\n" +
		"- Arg 0: Name of the variable.\n" +
		"- Arg 1: New value, as a string.\n" +
		"- Arg 2: Persist flag (0 or 1)."
	got := ArgDescriptions(doc)
	want := []string{
		"Name of the variable.",
		"New value, as a string.",
		"Persist flag (0 or 1).",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestArgDescriptions_TextualOrderWins(t *testing.T) {
	// Numeric labels are not trusted. Lines are kept in the order they
	// appear in the doc.
	doc := "@param args_str The argument string.\n" +
		"- Arg 2: Appears first.\n" +
		"- Arg 0: Appears second."
	got := ArgDescriptions(doc)
	want := []string{"Appears first.", "Appears second."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestArgDescriptions_LinesBeforeMarkerIgnored(t *testing.T) {
	doc := "- Arg 0: Listed before the marker, ignored.\n" +
		"@param args_str The argument string.\n" +
		"- Arg 0: Counted."
	got := ArgDescriptions(doc)
	want := []string{"Counted."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestArgDescriptions_SpacingVariants(t *testing.T) {
	doc := "@param args_str The argument string.\n" +
		"-Arg 0:Tight spacing.\n" +
		"-   Arg   12  :   Loose spacing.   "
	got := ArgDescriptions(doc)
	want := []string{"Tight spacing.", "Loose spacing."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
