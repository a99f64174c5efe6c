package cmd

import (
	"testing"
)

func TestNormalizeToolName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"find", "tcx_find"},
		{"tcx_find", "tcx_find"},
		{"show", "tcx_show"},
		{"tcx_show", "tcx_show"},
		{"preview", "tcx_preview"},
		{"reformat", "tcx_reformat"},
		{"export", "tcx_export"},
		{"nonexistent", "tcx_nonexistent"},
	}

	for _, tt := range tests {
		got := normalizeToolName(tt.input)
		if got != tt.want {
			t.Errorf("normalizeToolName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCallCmdRequiresToolOrFlag(t *testing.T) {
	// runCall with no args and no flags should error
	err := runCall(callCmd, []string{})
	if err == nil {
		t.Error("runCall with no args should return error")
	}
}
