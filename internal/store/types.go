package store

import (
	"encoding/json"
	"time"

	"github.com/calgarytospace/tcx/internal/extract"
)

// Telecommand represents one indexed telecommand row.
type Telecommand struct {
	Name            string    `json:"name"`
	FunctionSymbol  string    `json:"function_symbol"`
	ArgumentCount   int       `json:"argument_count"`
	ReadinessLevel  string    `json:"readiness_level"`
	FullDoc         *string   `json:"full_doc,omitempty"`
	ArgDescriptions []string  `json:"arg_descriptions,omitempty"`
	Ordinal         int       `json:"ordinal"`
	SourceFile      string    `json:"source_file,omitempty"`
	SigHash         string    `json:"sig_hash,omitempty"` // 8-char hash
	DocHash         string    `json:"doc_hash,omitempty"` // 8-char hash
	Status          string    `json:"status"`             // active, removed
	FirstSeen       time.Time `json:"first_seen"`
	LastSeen        time.Time `json:"last_seen"`
}

// ScanRecord represents one scan run over the firmware tree.
type ScanRecord struct {
	ID               int       `json:"id"`
	ScannedAt        time.Time `json:"scanned_at"`
	RepoCommit       string    `json:"repo_commit,omitempty"`
	CorpusHash       string    `json:"corpus_hash,omitempty"`
	FileCount        int       `json:"file_count"`
	TelecommandCount int       `json:"telecommand_count"`
}

// TelecommandFilter contains filters for querying telecommands.
type TelecommandFilter struct {
	Name      string // filter by name (contains match, or exact when Exact)
	Exact     bool   // require an exact name match
	Readiness string // filter by readiness level (substring match)
	Status    string // active, removed
	Limit     int    // max results (0 = no limit)
	Offset    int    // pagination offset
}

// FromExtract converts an extracted telecommand into a store row, filling
// in the ordinal, source file, and content hashes.
func FromExtract(t *extract.Telecommand, ordinal int, sourceFile string) *Telecommand {
	return &Telecommand{
		Name:            t.Name,
		FunctionSymbol:  t.FunctionSymbol,
		ArgumentCount:   t.ArgumentCount,
		ReadinessLevel:  t.ReadinessLevel,
		FullDoc:         t.FullDoc,
		ArgDescriptions: t.ArgumentDescriptions,
		Ordinal:         ordinal,
		SourceFile:      sourceFile,
		SigHash:         extract.ComputeSigHash(t),
		DocHash:         extract.ComputeDocHash(t),
		Status:          "active",
	}
}

// ToExtract converts a store row back into an extracted telecommand.
func (t *Telecommand) ToExtract() extract.Telecommand {
	return extract.Telecommand{
		Name:                 t.Name,
		FunctionSymbol:       t.FunctionSymbol,
		ArgumentCount:        t.ArgumentCount,
		ReadinessLevel:       t.ReadinessLevel,
		FullDoc:              t.FullDoc,
		ArgumentDescriptions: t.ArgDescriptions,
	}
}

// marshalArgDescriptions serializes argument descriptions for the
// arg_descriptions column. Nil slices map to the SQL NULL case via "".
func marshalArgDescriptions(descs []string) (string, error) {
	if descs == nil {
		return "", nil
	}
	data, err := json.Marshal(descs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// unmarshalArgDescriptions parses the arg_descriptions column.
func unmarshalArgDescriptions(data string) ([]string, error) {
	if data == "" {
		return nil, nil
	}
	var descs []string
	if err := json.Unmarshal([]byte(data), &descs); err != nil {
		return nil, err
	}
	return descs, nil
}
