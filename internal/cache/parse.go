package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/calgarytospace/tcx/internal/extract"
)

// ParseEntry holds a cached extraction result for one corpus hash.
type ParseEntry struct {
	CorpusHash       string
	ParsedAt         time.Time
	TelecommandCount int
	Records          []extract.Telecommand
}

// PutParse stores an extraction result keyed by the corpus hash.
// Records are serialized as JSON.
func (c *Cache) PutParse(corpusHash string, records []extract.Telecommand) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	_, err = c.db.Exec(`
		INSERT OR REPLACE INTO parse_cache (corpus_hash, parsed_at, telecommand_count, records)
		VALUES (?, ?, ?, ?)`,
		corpusHash, time.Now().Format(time.RFC3339), len(records), string(data),
	)
	if err != nil {
		return fmt.Errorf("put parse %s: %w", corpusHash, err)
	}
	return nil
}

// GetParse retrieves a cached extraction result by corpus hash.
// Returns sql.ErrNoRows if the corpus has not been parsed.
func (c *Cache) GetParse(corpusHash string) ([]extract.Telecommand, error) {
	var data string
	err := c.db.QueryRow(
		"SELECT records FROM parse_cache WHERE corpus_hash = ?", corpusHash,
	).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get parse %s: %w", corpusHash, err)
	}

	var records []extract.Telecommand
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, fmt.Errorf("unmarshal records %s: %w", corpusHash, err)
	}
	return records, nil
}

// GetParseEntry retrieves the full parse entry including metadata.
// Returns sql.ErrNoRows if the corpus has not been parsed.
func (c *Cache) GetParseEntry(corpusHash string) (*ParseEntry, error) {
	var entry ParseEntry
	var parsedAt, data string
	err := c.db.QueryRow(`
		SELECT corpus_hash, parsed_at, telecommand_count, records
		FROM parse_cache WHERE corpus_hash = ?`,
		corpusHash).Scan(&entry.CorpusHash, &parsedAt, &entry.TelecommandCount, &data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get parse entry %s: %w", corpusHash, err)
	}

	entry.ParsedAt, _ = time.Parse(time.RFC3339, parsedAt)
	if err := json.Unmarshal([]byte(data), &entry.Records); err != nil {
		return nil, fmt.Errorf("unmarshal records %s: %w", corpusHash, err)
	}
	return &entry, nil
}

// PruneParses removes all parse entries except the one with the given
// corpus hash. Returns the number of entries removed.
func (c *Cache) PruneParses(keepHash string) (int, error) {
	res, err := c.db.Exec("DELETE FROM parse_cache WHERE corpus_hash != ?", keepHash)
	if err != nil {
		return 0, fmt.Errorf("prune parse cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune parse cache: %w", err)
	}
	return int(n), nil
}
