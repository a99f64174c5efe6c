package firmware

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestClone_RefusesExistingCheckout(t *testing.T) {
	dest := t.TempDir()
	if err := os.Mkdir(filepath.Join(dest, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}

	err := Clone(DefaultRepoURL, DefaultBranch, dest)
	if !errors.Is(err, ErrAlreadyCloned) {
		t.Errorf("expected ErrAlreadyCloned, got %v", err)
	}
}

func TestClone_MissingParent(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "missing", "firmware")
	if err := Clone(DefaultRepoURL, DefaultBranch, dest); err == nil {
		t.Error("expected error for missing parent directory")
	}
}

func TestUpdate_NotACheckout(t *testing.T) {
	if err := Update(t.TempDir()); err == nil {
		t.Error("expected error for plain directory")
	}
}

func TestIsCloned(t *testing.T) {
	dir := t.TempDir()
	if IsCloned(dir) {
		t.Error("empty directory should not count as a checkout")
	}
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	if !IsCloned(dir) {
		t.Error("directory with .git should count as a checkout")
	}
}

func TestDiscoverSources(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "firmware/Core/Src/main.c"), "int main(void) {}")
	writeFile(t, filepath.Join(root, "firmware/Core/Src/telecommands/telecommand_definitions.c"), "// defs")
	writeFile(t, filepath.Join(root, "firmware/Core/Inc/telecommand_defs.h"), "// header")
	writeFile(t, filepath.Join(root, "firmware/Core/Src/notes.md"), "# notes")
	writeFile(t, filepath.Join(root, "firmware/Core/Src/.hidden.c"), "// hidden")
	writeFile(t, filepath.Join(root, "docs/extra.c"), "// outside configured dirs")

	files, err := DiscoverSources(root, []string{"firmware/Core/Src", "firmware/Core/Inc"}, nil)
	if err != nil {
		t.Fatalf("DiscoverSources failed: %v", err)
	}

	if len(files) != 3 {
		t.Fatalf("expected 3 source files, got %d: %v", len(files), files)
	}
	for _, f := range files {
		switch filepath.Base(f) {
		case "main.c", "telecommand_definitions.c", "telecommand_defs.h":
		default:
			t.Errorf("unexpected file discovered: %s", f)
		}
	}

	// Sorted for stable scan order.
	for i := 1; i < len(files); i++ {
		if files[i-1] > files[i] {
			t.Errorf("files not sorted: %s before %s", files[i-1], files[i])
		}
	}
}

func TestDiscoverSources_ExcludePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Src/keep.c"), "// keep")
	writeFile(t, filepath.Join(root, "Src/generated/skip.c"), "// generated")
	writeFile(t, filepath.Join(root, "Src/skip_test.c"), "// test file")

	files, err := DiscoverSources(root, []string{"Src"}, []string{"generated", "*_test.c"})
	if err != nil {
		t.Fatalf("DiscoverSources failed: %v", err)
	}

	if len(files) != 1 || filepath.Base(files[0]) != "keep.c" {
		t.Errorf("expected only keep.c, got %v", files)
	}
}

func TestDiscoverSources_MissingDirSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Src/a.c"), "// a")

	files, err := DiscoverSources(root, []string{"Src", "DoesNotExist"}, nil)
	if err != nil {
		t.Fatalf("DiscoverSources failed: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("expected 1 file, got %d", len(files))
	}
}

func TestReadSourcesAndCorpus(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.c")
	b := filepath.Join(root, "b.c")
	writeFile(t, a, "int a;")
	writeFile(t, b, "int b;")

	files, err := ReadSources([]string{a, b})
	if err != nil {
		t.Fatalf("ReadSources failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}

	corpus := Corpus(files)
	if corpus != "int a;\nint b;" {
		t.Errorf("unexpected corpus %q", corpus)
	}
}

func TestReadSources_MissingFile(t *testing.T) {
	_, err := ReadSources([]string{filepath.Join(t.TempDir(), "absent.c")})
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFindDefinitionsFile(t *testing.T) {
	paths := []string{
		"/fw/Core/Src/main.c",
		"/fw/Core/Inc/telecommand_definitions.h",
		"/fw/Core/Src/telecommands/telecommand_definitions.c",
		"/fw/Core/Src/uart.c",
	}

	got := FindDefinitionsFile(paths)
	want := "/fw/Core/Src/telecommands/telecommand_definitions.c"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFindDefinitionsFile_NoMatch(t *testing.T) {
	if got := FindDefinitionsFile([]string{"/fw/main.c", "/fw/uart.c"}); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
}
