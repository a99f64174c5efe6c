package cache

import (
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/calgarytospace/tcx/internal/extract"
)

func setupTestCache(t *testing.T) (*Cache, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "tcx-cache-test-*")
	if err != nil {
		t.Fatalf("create temp dir: %v", err)
	}

	cache, err := Open(tmpDir)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("open cache: %v", err)
	}

	cleanup := func() {
		cache.Close()
		os.RemoveAll(tmpDir)
	}

	return cache, cleanup
}

func sampleRecords() []extract.Telecommand {
	doc := "@brief Says hello."
	return []extract.Telecommand{
		{
			Name:           "hello_world",
			FunctionSymbol: "TCMDEXEC_hello_world",
			ArgumentCount:  0,
			ReadinessLevel: "TCMD_READINESS_LEVEL_FOR_OPERATION",
			FullDoc:        &doc,
		},
		{
			Name:           "echo_back_args",
			FunctionSymbol: "TCMDEXEC_echo_back_args",
			ArgumentCount:  1,
			ReadinessLevel: "TCMD_READINESS_LEVEL_FOR_TESTING",
		},
	}
}

func TestCacheOpenClose(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "tcx-cache-test-*")
	if err != nil {
		t.Fatalf("create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Open cache
	cache, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	// Verify path
	expectedPath := filepath.Join(tmpDir, "cache.db")
	if cache.Path() != expectedPath {
		t.Errorf("path = %q, want %q", cache.Path(), expectedPath)
	}

	// Verify DB is accessible
	if cache.DB() == nil {
		t.Error("DB() returned nil")
	}

	// Close
	if err := cache.Close(); err != nil {
		t.Errorf("close: %v", err)
	}

	// Reopen should work
	cache2, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("reopen cache: %v", err)
	}
	defer cache2.Close()
}

func TestParsePutAndGet(t *testing.T) {
	cache, cleanup := setupTestCache(t)
	defer cleanup()

	records := sampleRecords()
	hash := extract.ComputeCorpusHash([]byte("corpus contents"))

	if err := cache.PutParse(hash, records); err != nil {
		t.Fatalf("put parse: %v", err)
	}

	got, err := cache.GetParse(hash)
	if err != nil {
		t.Fatalf("get parse: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Name != "hello_world" {
		t.Errorf("expected hello_world first, got %s", got[0].Name)
	}
	if got[0].FullDoc == nil || *got[0].FullDoc != "@brief Says hello." {
		t.Error("docstring did not survive the cache round trip")
	}
	if got[1].FullDoc != nil {
		t.Error("undocumented record should stay undocumented")
	}
	if got[1].ArgumentCount != 1 {
		t.Errorf("expected arg count 1, got %d", got[1].ArgumentCount)
	}
}

func TestParseNotFound(t *testing.T) {
	cache, cleanup := setupTestCache(t)
	defer cleanup()

	_, err := cache.GetParse("deadbeef")
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestParseOverwrite(t *testing.T) {
	cache, cleanup := setupTestCache(t)
	defer cleanup()

	hash := "cafe0123"
	if err := cache.PutParse(hash, sampleRecords()); err != nil {
		t.Fatalf("put parse: %v", err)
	}

	// Re-put with fewer records under the same hash
	if err := cache.PutParse(hash, sampleRecords()[:1]); err != nil {
		t.Fatalf("overwrite parse: %v", err)
	}

	got, err := cache.GetParse(hash)
	if err != nil {
		t.Fatalf("get parse: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 record after overwrite, got %d", len(got))
	}
}

func TestParseEntryMetadata(t *testing.T) {
	cache, cleanup := setupTestCache(t)
	defer cleanup()

	hash := "feed4567"
	before := time.Now().Add(-time.Minute)
	if err := cache.PutParse(hash, sampleRecords()); err != nil {
		t.Fatalf("put parse: %v", err)
	}

	entry, err := cache.GetParseEntry(hash)
	if err != nil {
		t.Fatalf("get parse entry: %v", err)
	}

	if entry.CorpusHash != hash {
		t.Errorf("corpus hash = %q, want %q", entry.CorpusHash, hash)
	}
	if entry.TelecommandCount != 2 {
		t.Errorf("telecommand count = %d, want 2", entry.TelecommandCount)
	}
	if entry.ParsedAt.Before(before) {
		t.Errorf("parsed_at %v should be recent", entry.ParsedAt)
	}
	if len(entry.Records) != 2 {
		t.Errorf("expected 2 records in entry, got %d", len(entry.Records))
	}
}

func TestPruneParses(t *testing.T) {
	cache, cleanup := setupTestCache(t)
	defer cleanup()

	cache.PutParse("hash-old-1", sampleRecords())
	cache.PutParse("hash-old-2", sampleRecords())
	cache.PutParse("hash-current", sampleRecords())

	pruned, err := cache.PruneParses("hash-current")
	if err != nil {
		t.Fatalf("prune parses: %v", err)
	}
	if pruned != 2 {
		t.Errorf("expected 2 pruned entries, got %d", pruned)
	}

	if _, err := cache.GetParse("hash-current"); err != nil {
		t.Errorf("kept hash should still resolve: %v", err)
	}
	if _, err := cache.GetParse("hash-old-1"); err != sql.ErrNoRows {
		t.Errorf("pruned hash should be gone, got %v", err)
	}
}

func TestFileIndexSetAndGet(t *testing.T) {
	cache, cleanup := setupTestCache(t)
	defer cleanup()

	path := "firmware/Core/Src/telecommand_definitions.c"
	if err := cache.SetFileScanned(path, "abc12345"); err != nil {
		t.Fatalf("set file scanned: %v", err)
	}

	hash, err := cache.GetFileHash(path)
	if err != nil {
		t.Fatalf("get file hash: %v", err)
	}
	if hash != "abc12345" {
		t.Errorf("hash = %q, want abc12345", hash)
	}
}

func TestFileHashNotFound(t *testing.T) {
	cache, cleanup := setupTestCache(t)
	defer cleanup()

	_, err := cache.GetFileHash("never/scanned.c")
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestIsFileChanged(t *testing.T) {
	cache, cleanup := setupTestCache(t)
	defer cleanup()

	path := "firmware/Core/Src/main.c"

	// Never scanned counts as changed
	changed, err := cache.IsFileChanged(path, "hash-v1")
	if err != nil {
		t.Fatalf("is file changed: %v", err)
	}
	if !changed {
		t.Error("unscanned file should count as changed")
	}

	cache.SetFileScanned(path, "hash-v1")

	// Same hash: unchanged
	changed, err = cache.IsFileChanged(path, "hash-v1")
	if err != nil {
		t.Fatalf("is file changed: %v", err)
	}
	if changed {
		t.Error("same hash should not count as changed")
	}

	// Different hash: changed
	changed, err = cache.IsFileChanged(path, "hash-v2")
	if err != nil {
		t.Fatalf("is file changed: %v", err)
	}
	if !changed {
		t.Error("different hash should count as changed")
	}
}

func TestSetBulkFilesScanned(t *testing.T) {
	cache, cleanup := setupTestCache(t)
	defer cleanup()

	entries := []FileEntry{
		{FilePath: "a.c", ScanHash: "hash-a"},
		{FilePath: "b.c", ScanHash: "hash-b"},
		{FilePath: "c.h", ScanHash: "hash-c"},
	}
	if err := cache.SetBulkFilesScanned(entries); err != nil {
		t.Fatalf("bulk set: %v", err)
	}

	all, err := cache.GetAllFileEntries()
	if err != nil {
		t.Fatalf("get all entries: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}

	// Entries come back ordered by path
	if all[0].FilePath != "a.c" || all[2].FilePath != "c.h" {
		t.Errorf("entries not ordered by path: %v", all)
	}
	if all[1].ScanHash != "hash-b" {
		t.Errorf("expected hash-b, got %s", all[1].ScanHash)
	}
	if all[0].ScannedAt.IsZero() {
		t.Error("bulk set should fill in scan time")
	}
}

func TestGetChangedFiles(t *testing.T) {
	cache, cleanup := setupTestCache(t)
	defer cleanup()

	cache.SetFileScanned("unchanged.c", "same-hash")
	cache.SetFileScanned("modified.c", "old-hash")

	changed, err := cache.GetChangedFiles(map[string]string{
		"unchanged.c": "same-hash",
		"modified.c":  "new-hash",
		"brand-new.c": "any-hash",
	})
	if err != nil {
		t.Fatalf("get changed files: %v", err)
	}

	sort.Strings(changed)
	if len(changed) != 2 {
		t.Fatalf("expected 2 changed files, got %v", changed)
	}
	if changed[0] != "brand-new.c" || changed[1] != "modified.c" {
		t.Errorf("unexpected changed set: %v", changed)
	}
}

func TestPruneStaleEntries(t *testing.T) {
	cache, cleanup := setupTestCache(t)
	defer cleanup()

	cache.SetFileScanned("keep.c", "h1")
	cache.SetFileScanned("deleted.c", "h2")
	cache.SetFileScanned("also_deleted.h", "h3")

	pruned, err := cache.PruneStaleEntries(map[string]bool{"keep.c": true})
	if err != nil {
		t.Fatalf("prune stale entries: %v", err)
	}
	if pruned != 2 {
		t.Errorf("expected 2 pruned, got %d", pruned)
	}

	all, err := cache.GetAllFileEntries()
	if err != nil {
		t.Fatalf("get all entries: %v", err)
	}
	if len(all) != 1 || all[0].FilePath != "keep.c" {
		t.Errorf("expected only keep.c to remain, got %v", all)
	}
}

func TestDeleteFileEntry(t *testing.T) {
	cache, cleanup := setupTestCache(t)
	defer cleanup()

	cache.SetFileScanned("gone.c", "h1")
	if err := cache.DeleteFileEntry("gone.c"); err != nil {
		t.Fatalf("delete file entry: %v", err)
	}

	_, err := cache.GetFileHash("gone.c")
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows after delete, got %v", err)
	}
}

func TestCacheClear(t *testing.T) {
	cache, cleanup := setupTestCache(t)
	defer cleanup()

	// Add some data
	cache.PutParse("somehash", sampleRecords())
	cache.SetFileScanned("test.c", "abc123")

	// Verify data exists
	stats, err := cache.GetStats()
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.ParseCount != 1 || stats.FileIndexCount != 1 {
		t.Fatalf("expected 1 parse and 1 file, got %d and %d", stats.ParseCount, stats.FileIndexCount)
	}

	// Clear
	if err := cache.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	// Verify cleared
	stats, err = cache.GetStats()
	if err != nil {
		t.Fatalf("get stats after clear: %v", err)
	}
	if stats.ParseCount != 0 || stats.FileIndexCount != 0 {
		t.Errorf("expected 0 parses and 0 files, got %d and %d", stats.ParseCount, stats.FileIndexCount)
	}
}
