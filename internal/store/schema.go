package store

import "strings"

// schemaSQL defines the Dolt (MySQL dialect) schema for the telecommand index.
const schemaSQL = `
-- telecommand records, one row per telecommand name
CREATE TABLE IF NOT EXISTS telecommands (
    name VARCHAR(255) PRIMARY KEY,
    function_symbol VARCHAR(255) NOT NULL,
    argument_count INT NOT NULL DEFAULT 0,
    readiness_level VARCHAR(255) NOT NULL,
    full_doc TEXT,                        -- joined /// docstring, NULL when undocumented
    arg_descriptions TEXT,                -- JSON array of argument descriptions
    ordinal INT NOT NULL DEFAULT 0,       -- position in the firmware table
    source_file VARCHAR(512),
    sig_hash VARCHAR(20),                 -- 8-char signature hash
    doc_hash VARCHAR(20),                 -- 8-char doc hash
    status VARCHAR(16) NOT NULL DEFAULT 'active',  -- active, removed
    first_seen TEXT,
    last_seen TEXT,
    INDEX idx_telecommands_status (status),
    INDEX idx_telecommands_readiness (readiness_level)
);

-- scan runs, one row per tcx scan
CREATE TABLE IF NOT EXISTS scans (
    id INT AUTO_INCREMENT PRIMARY KEY,
    scanned_at TEXT NOT NULL,
    repo_commit VARCHAR(64),              -- firmware checkout HEAD at scan time
    corpus_hash VARCHAR(20),              -- 8-char hash over the joined corpus
    file_count INT NOT NULL DEFAULT 0,
    telecommand_count INT NOT NULL DEFAULT 0
);
`

// initSchema creates the database tables and indexes if they don't exist.
// The Dolt driver rejects multi-statement Exec calls, so each statement in
// schemaSQL is executed separately.
func (s *Store) initSchema() error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
