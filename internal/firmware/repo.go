// Package firmware manages the local checkout of the satellite flight
// software and turns its source tree into a parseable corpus.
package firmware

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const (
	// DefaultRepoURL is the public flight software repository for the
	// CTS-SAT-1 mission.
	DefaultRepoURL = "https://github.com/CalgaryToSpace/CTS-SAT-1-OBC-Firmware.git"
	// DefaultBranch is the branch scans track.
	DefaultBranch = "main"
)

// ErrAlreadyCloned is returned when the destination already holds a git
// checkout.
var ErrAlreadyCloned = errors.New("firmware checkout already exists")

// IsCloned reports whether dir holds a git checkout.
func IsCloned(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Clone performs a shallow clone of the firmware repository into dest.
func Clone(url, branch, dest string) error {
	if IsCloned(dest) {
		return ErrAlreadyCloned
	}
	if parent := filepath.Dir(dest); parent != "." {
		if _, err := os.Stat(parent); err != nil {
			return fmt.Errorf("clone destination parent: %w", err)
		}
	}

	cmd := exec.Command("git", "clone", "--depth", "1", "--branch", branch, url, dest)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git clone: %v: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Update fast-forwards an existing checkout to the remote branch head.
func Update(dir string) error {
	if !IsCloned(dir) {
		return fmt.Errorf("%s is not a firmware checkout", dir)
	}

	cmd := exec.Command("git", "pull", "--ff-only")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git pull: %v: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// HeadCommit returns the checkout's HEAD commit hash.
func HeadCommit(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// DiscoverSources walks the configured source directories under root and
// returns every C source and header, sorted for a stable scan order.
// Missing directories are skipped; firmware branches move files around.
func DiscoverSources(root string, dirs, exclude []string) ([]string, error) {
	var files []string

	for _, d := range dirs {
		base := filepath.Join(root, d)
		info, err := os.Stat(base)
		if err != nil || !info.IsDir() {
			continue
		}

		err = filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				if shouldExcludeDir(path, base, exclude) {
					return filepath.SkipDir
				}
				return nil
			}
			if !isSourceFile(path) {
				return nil
			}
			if shouldExcludeFile(path, base, exclude) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", base, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func isSourceFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".c" || ext == ".h"
}

func shouldExcludeDir(path, basePath string, patterns []string) bool {
	base := filepath.Base(path)

	// Always exclude hidden directories
	if strings.HasPrefix(base, ".") && base != "." {
		return true
	}

	relPath := getRelativePath(path, basePath)
	for _, pattern := range patterns {
		dirPattern := strings.TrimSuffix(pattern, "/**")
		dirPattern = strings.TrimSuffix(dirPattern, "/*")

		if base == dirPattern || relPath == dirPattern {
			return true
		}
		if matched, _ := filepath.Match(dirPattern, relPath); matched {
			return true
		}
		if matched, _ := filepath.Match(dirPattern, base); matched {
			return true
		}
	}
	return false
}

func shouldExcludeFile(path, basePath string, patterns []string) bool {
	base := filepath.Base(path)

	// Always exclude hidden files
	if strings.HasPrefix(base, ".") {
		return true
	}

	relPath := getRelativePath(path, basePath)
	for _, pattern := range patterns {
		if strings.Contains(pattern, "**") {
			simplePattern := strings.ReplaceAll(pattern, "**/", "")
			simplePattern = strings.ReplaceAll(simplePattern, "**", "")
			if matched, _ := filepath.Match(simplePattern, base); matched {
				return true
			}
		}
		if matched, _ := filepath.Match(pattern, relPath); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// getRelativePath returns path relative to basePath.
func getRelativePath(path, basePath string) string {
	rel, err := filepath.Rel(basePath, path)
	if err != nil {
		return path
	}
	return rel
}

// SourceFile is one file of the firmware tree, read into memory.
type SourceFile struct {
	Path    string
	Content []byte
}

// ReadSources loads every path into memory, in the given order.
func ReadSources(paths []string) ([]SourceFile, error) {
	files := make([]SourceFile, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		files = append(files, SourceFile{Path: p, Content: content})
	}
	return files, nil
}

// Corpus joins source file contents into one parseable text.
func Corpus(files []SourceFile) string {
	var sb strings.Builder
	for i, f := range files {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.Write(f.Content)
	}
	return sb.String()
}

var definitionsRE = regexp.MustCompile(`(?i)telecommand.*def`)

// FindDefinitionsFile picks the file that holds the telecommand dispatch
// table, by naming convention. Returns "" when no name matches.
func FindDefinitionsFile(paths []string) string {
	for _, p := range paths {
		name := filepath.Base(p)
		if filepath.Ext(name) == ".c" && definitionsRE.MatchString(name) {
			return p
		}
	}
	return ""
}
