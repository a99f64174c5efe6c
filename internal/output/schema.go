// Package output provides the YAML/JSON output schema for tcx.
//
// This package defines the structured output types for telecommand
// queries. Records are keyed by telecommand name so a reader can scan
// straight to the command they care about.
package output

import (
	"github.com/calgarytospace/tcx/internal/extract"
)

// RecordOutput represents a single telecommand for tcx show and tcx find.
// The telecommand name becomes the top-level YAML key.
type RecordOutput struct {
	// Function is the C handler symbol the telecommand dispatches to
	// Example: "TCMDEXEC_hello_world"
	Function string `yaml:"function,omitempty" json:"function,omitempty"`

	// Args is the number of arguments the telecommand takes
	Args int `yaml:"args" json:"args"`

	// Readiness is the readiness level string from the firmware table
	// Example: "TCMD_READINESS_LEVEL_FOR_OPERATION"
	Readiness string `yaml:"readiness" json:"readiness"`

	// Status is the index status: active or removed
	Status string `yaml:"status,omitempty" json:"status,omitempty"`

	// SourceFile is the firmware file the definition was extracted from
	SourceFile string `yaml:"source_file,omitempty" json:"source_file,omitempty"`

	// Docstring is the joined /// documentation block above the handler
	// (dense mode only, omitted when the handler is undocumented)
	Docstring string `yaml:"docstring,omitempty" json:"docstring,omitempty"`

	// ArgDescriptions lists the per-argument descriptions from the
	// docstring in textual order (dense mode only)
	ArgDescriptions []string `yaml:"arg_descriptions,omitempty" json:"arg_descriptions,omitempty"`

	// Hashes contains signature and doc hashes (dense mode only)
	Hashes *Hashes `yaml:"hashes,omitempty" json:"hashes,omitempty"`

	// Timestamps contains first/last seen times (dense mode only)
	Timestamps *Timestamps `yaml:"timestamps,omitempty" json:"timestamps,omitempty"`

	// ChangeStatus indicates how the record changed relative to a ref
	// (--since flag). Values: "added", "modified", "removed", or empty.
	ChangeStatus string `yaml:"change_status,omitempty" json:"change_status,omitempty"`
}

// Hashes contains signature and doc content hashes.
type Hashes struct {
	// Signature is the 8-char hash over name, symbol, arg count, readiness
	Signature string `yaml:"signature,omitempty" json:"signature,omitempty"`

	// Doc is the 8-char hash over the docstring and argument descriptions
	Doc string `yaml:"doc,omitempty" json:"doc,omitempty"`
}

// Timestamps contains first and last seen times.
type Timestamps struct {
	// FirstSeen is when the telecommand first appeared in a scan
	FirstSeen string `yaml:"first_seen,omitempty" json:"first_seen,omitempty"`

	// LastSeen is when the telecommand was last confirmed by a scan
	LastSeen string `yaml:"last_seen,omitempty" json:"last_seen,omitempty"`
}

// ListOutput represents list results for tcx find.
// Results are a map where telecommand names are keys.
type ListOutput struct {
	// Results contains record outputs keyed by telecommand name
	Results map[string]*RecordOutput `yaml:"results" json:"results"`

	// Count is the total number of results
	Count int `yaml:"count" json:"count"`
}

// HistoryOutput represents version history results for tcx history.
type HistoryOutput struct {
	// Telecommand is the name being traced
	Telecommand string `yaml:"telecommand" json:"telecommand"`

	// History contains one entry per commit that touched the record,
	// newest first
	History []*HistoryEntry `yaml:"history" json:"history"`
}

// HistoryEntry represents a single commit in a telecommand's history.
type HistoryEntry struct {
	// Commit is the commit hash
	Commit string `yaml:"commit" json:"commit"`

	// Date is the commit date
	Date string `yaml:"date" json:"date"`

	// Committer is who made the commit
	Committer string `yaml:"committer,omitempty" json:"committer,omitempty"`

	// Args is the argument count at this commit
	Args int `yaml:"args" json:"args"`

	// Readiness is the readiness level at this commit
	Readiness string `yaml:"readiness" json:"readiness"`

	// SigHash is the signature hash at this commit
	SigHash string `yaml:"sig_hash,omitempty" json:"sig_hash,omitempty"`

	// Change classifies the entry relative to the next older one:
	// "current", "modified", "unchanged", or "added"
	Change string `yaml:"change,omitempty" json:"change,omitempty"`
}

// ScanOutput represents the summary of a tcx scan run.
type ScanOutput struct {
	// ScannedAt is when the scan ran
	ScannedAt string `yaml:"scanned_at" json:"scanned_at"`

	// RepoCommit is the firmware checkout HEAD at scan time
	RepoCommit string `yaml:"repo_commit,omitempty" json:"repo_commit,omitempty"`

	// Files is the number of source files scanned
	Files int `yaml:"files" json:"files"`

	// Telecommands is the number of records extracted
	Telecommands int `yaml:"telecommands" json:"telecommands"`

	// New is the number of records not seen before
	New int `yaml:"new" json:"new"`

	// Changed is the number of records whose signature or doc changed
	Changed int `yaml:"changed" json:"changed"`

	// Removed is the number of records archived by this scan
	Removed int `yaml:"removed" json:"removed"`

	// CacheHit indicates the parse was served from the corpus cache
	CacheHit bool `yaml:"cache_hit,omitempty" json:"cache_hit,omitempty"`
}

// StatusOutput represents tcx status results.
type StatusOutput struct {
	// Repo describes the firmware checkout
	Repo *RepoStatus `yaml:"repo" json:"repo"`

	// Index describes the telecommand index
	Index *IndexStatus `yaml:"index" json:"index"`

	// Cache describes the parse cache
	Cache *CacheStatus `yaml:"cache,omitempty" json:"cache,omitempty"`
}

// RepoStatus describes the firmware checkout state.
type RepoStatus struct {
	// Dir is the checkout directory
	Dir string `yaml:"dir" json:"dir"`

	// Cloned indicates whether the checkout exists
	Cloned bool `yaml:"cloned" json:"cloned"`

	// Commit is the checkout HEAD commit (when cloned)
	Commit string `yaml:"commit,omitempty" json:"commit,omitempty"`
}

// IndexStatus describes the telecommand index state.
type IndexStatus struct {
	// Telecommands is the number of active records
	Telecommands int `yaml:"telecommands" json:"telecommands"`

	// Removed is the number of archived records
	Removed int `yaml:"removed" json:"removed"`

	// LastScan is when the index was last refreshed
	LastScan string `yaml:"last_scan,omitempty" json:"last_scan,omitempty"`

	// LastScanCommit is the firmware commit of the last scan
	LastScanCommit string `yaml:"last_scan_commit,omitempty" json:"last_scan_commit,omitempty"`
}

// CacheStatus describes the parse cache state.
type CacheStatus struct {
	// Entries is the number of cached corpus parses
	Entries int `yaml:"entries" json:"entries"`

	// Files is the number of tracked file hashes
	Files int `yaml:"files" json:"files"`

	// SizeBytes is the cache database size on disk
	SizeBytes int64 `yaml:"size_bytes,omitempty" json:"size_bytes,omitempty"`

	// LastParsed is when the last scan's corpus was extracted (RFC3339)
	LastParsed string `yaml:"last_parsed,omitempty" json:"last_parsed,omitempty"`
}

// NewRecordOutput builds a RecordOutput from an extracted telecommand,
// shaped according to the density level. Store-derived fields (status,
// source file, timestamps) are left for the caller to fill in.
func NewRecordOutput(t *extract.Telecommand, density Density) *RecordOutput {
	rec := &RecordOutput{
		Args:      t.ArgumentCount,
		Readiness: t.ReadinessLevel,
	}

	if density.IncludesSymbols() {
		rec.Function = t.FunctionSymbol
	}

	if density.IncludesDocs() {
		rec.Docstring = t.Doc()
		if len(t.ArgumentDescriptions) > 0 {
			rec.ArgDescriptions = t.ArgumentDescriptions
		}
	}

	if density.IncludesHashes() {
		rec.Hashes = &Hashes{
			Signature: extract.ComputeSigHash(t),
			Doc:       extract.ComputeDocHash(t),
		}
	}

	return rec
}

// NewListOutput builds a ListOutput from extracted telecommands.
func NewListOutput(records []extract.Telecommand, density Density) *ListOutput {
	results := make(map[string]*RecordOutput, len(records))
	for i := range records {
		results[records[i].Name] = NewRecordOutput(&records[i], density)
	}
	return &ListOutput{
		Results: results,
		Count:   len(records),
	}
}
