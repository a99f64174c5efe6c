package cache

// schemaSQL defines the SQLite schema for the cache database.
// Tables:
//   - parse_cache: stores extracted telecommand tables keyed by corpus hash
//   - file_index: tracks file scan state for incremental scanning
const schemaSQL = `
CREATE TABLE IF NOT EXISTS parse_cache (
    corpus_hash TEXT PRIMARY KEY,
    parsed_at TEXT NOT NULL,
    telecommand_count INTEGER NOT NULL DEFAULT 0,
    records TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS file_index (
    file_path TEXT PRIMARY KEY,
    scan_hash TEXT NOT NULL,
    scanned_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_parse_cache_parsed_at ON parse_cache(parsed_at DESC);
`

// initSchema creates the database tables and indexes if they don't exist.
func (c *Cache) initSchema() error {
	_, err := c.db.Exec(schemaSQL)
	return err
}
