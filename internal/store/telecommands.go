package store

import (
	"database/sql"
	"fmt"
	"time"
)

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanTelecommand reads one telecommand row in column order.
func scanTelecommand(r rowScanner) (*Telecommand, error) {
	var t Telecommand
	var fullDoc, argDescs, sourceFile, sigHash, docHash sql.NullString
	var firstSeen, lastSeen sql.NullString

	err := r.Scan(
		&t.Name, &t.FunctionSymbol, &t.ArgumentCount, &t.ReadinessLevel,
		&fullDoc, &argDescs, &t.Ordinal, &sourceFile, &sigHash, &docHash,
		&t.Status, &firstSeen, &lastSeen)
	if err != nil {
		return nil, err
	}

	if fullDoc.Valid {
		t.FullDoc = &fullDoc.String
	}
	if argDescs.Valid {
		descs, err := unmarshalArgDescriptions(argDescs.String)
		if err != nil {
			return nil, fmt.Errorf("parse arg descriptions for %s: %w", t.Name, err)
		}
		t.ArgDescriptions = descs
	}
	if sourceFile.Valid {
		t.SourceFile = sourceFile.String
	}
	if sigHash.Valid {
		t.SigHash = sigHash.String
	}
	if docHash.Valid {
		t.DocHash = docHash.String
	}
	if firstSeen.Valid {
		t.FirstSeen, _ = time.Parse(time.RFC3339, firstSeen.String)
	}
	if lastSeen.Valid {
		t.LastSeen, _ = time.Parse(time.RFC3339, lastSeen.String)
	}

	return &t, nil
}

const telecommandColumns = `name, function_symbol, argument_count, readiness_level,
	full_doc, arg_descriptions, ordinal, source_file, sig_hash, doc_hash,
	status, first_seen, last_seen`

// UpsertTelecommands inserts or updates telecommand rows in a single
// transaction. Existing rows keep their first_seen timestamp; everything
// else is refreshed and the row is reactivated.
func (s *Store) UpsertTelecommands(rows []*Telecommand) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO telecommands (name, function_symbol, argument_count, readiness_level,
			full_doc, arg_descriptions, ordinal, source_file, sig_hash, doc_hash,
			status, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'active', ?, ?)
		ON DUPLICATE KEY UPDATE
			function_symbol = VALUES(function_symbol),
			argument_count = VALUES(argument_count),
			readiness_level = VALUES(readiness_level),
			full_doc = VALUES(full_doc),
			arg_descriptions = VALUES(arg_descriptions),
			ordinal = VALUES(ordinal),
			source_file = VALUES(source_file),
			sig_hash = VALUES(sig_hash),
			doc_hash = VALUES(doc_hash),
			status = 'active',
			last_seen = VALUES(last_seen)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare statement: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for i, t := range rows {
		argDescs, err := marshalArgDescriptions(t.ArgDescriptions)
		if err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("marshal arg descriptions %d (%s): %w", i, t.Name, err)
		}

		var argDescsArg interface{}
		if argDescs != "" {
			argDescsArg = argDescs
		}

		_, err = stmt.Exec(
			t.Name, t.FunctionSymbol, t.ArgumentCount, t.ReadinessLevel,
			t.FullDoc, argDescsArg, t.Ordinal, t.SourceFile, t.SigHash, t.DocHash,
			now, now)
		if err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("upsert telecommand %d (%s): %w", i, t.Name, err)
		}
	}

	stmt.Close()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction (%d telecommands): %w", len(rows), err)
	}

	return nil
}

// GetTelecommand retrieves a telecommand by exact name.
// Returns sql.ErrNoRows if not found.
func (s *Store) GetTelecommand(name string) (*Telecommand, error) {
	row := s.db.QueryRow(
		"SELECT "+telecommandColumns+" FROM telecommands WHERE name = ?", name)
	return scanTelecommand(row)
}

// QueryTelecommands returns telecommands matching the filter, ordered by
// their position in the firmware table.
func (s *Store) QueryTelecommands(filter TelecommandFilter) ([]*Telecommand, error) {
	query := "SELECT " + telecommandColumns + " FROM telecommands WHERE 1=1"
	args := []interface{}{}

	if filter.Name != "" {
		if filter.Exact {
			query += " AND name = ?"
			args = append(args, filter.Name)
		} else {
			query += " AND name LIKE ?"
			args = append(args, "%"+filter.Name+"%")
		}
	}
	if filter.Readiness != "" {
		query += " AND readiness_level LIKE ?"
		args = append(args, "%"+filter.Readiness+"%")
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	query += " ORDER BY ordinal, name"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Telecommand
	for rows.Next() {
		t, err := scanTelecommand(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// CountTelecommands returns the count of telecommands matching the filter.
func (s *Store) CountTelecommands(filter TelecommandFilter) (int, error) {
	query := "SELECT COUNT(*) FROM telecommands WHERE 1=1"
	args := []interface{}{}

	if filter.Name != "" {
		if filter.Exact {
			query += " AND name = ?"
			args = append(args, filter.Name)
		} else {
			query += " AND name LIKE ?"
			args = append(args, "%"+filter.Name+"%")
		}
	}
	if filter.Readiness != "" {
		query += " AND readiness_level LIKE ?"
		args = append(args, "%"+filter.Readiness+"%")
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	var count int
	err := s.db.QueryRow(query, args...).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// ArchiveMissing marks active telecommands absent from the present set as
// removed. Used after a scan to archive records that disappeared from the
// firmware table. Returns the number of archived rows.
func (s *Store) ArchiveMissing(present map[string]bool) (int, error) {
	active, err := s.QueryTelecommands(TelecommandFilter{Status: "active"})
	if err != nil {
		return 0, fmt.Errorf("query active telecommands: %w", err)
	}

	var missing []string
	for _, t := range active {
		if !present[t.Name] {
			missing = append(missing, t.Name)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, name := range missing {
		_, err := tx.Exec(
			"UPDATE telecommands SET status = 'removed', last_seen = ? WHERE name = ?",
			now, name)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("archive telecommand %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return len(missing), nil
}

// RecordScan stores a scan run.
func (s *Store) RecordScan(rec *ScanRecord) error {
	scannedAt := rec.ScannedAt
	if scannedAt.IsZero() {
		scannedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO scans (scanned_at, repo_commit, corpus_hash, file_count, telecommand_count)
		VALUES (?, ?, ?, ?, ?)`,
		scannedAt.Format(time.RFC3339), rec.RepoCommit, rec.CorpusHash,
		rec.FileCount, rec.TelecommandCount)
	if err != nil {
		return fmt.Errorf("record scan: %w", err)
	}
	return nil
}

// LatestScan returns the most recent scan run.
// Returns sql.ErrNoRows if no scan has been recorded.
func (s *Store) LatestScan() (*ScanRecord, error) {
	var rec ScanRecord
	var scannedAt string
	var repoCommit, corpusHash sql.NullString

	err := s.db.QueryRow(`
		SELECT id, scanned_at, repo_commit, corpus_hash, file_count, telecommand_count
		FROM scans ORDER BY id DESC LIMIT 1`).Scan(
		&rec.ID, &scannedAt, &repoCommit, &corpusHash, &rec.FileCount, &rec.TelecommandCount)
	if err != nil {
		return nil, err
	}

	rec.ScannedAt, _ = time.Parse(time.RFC3339, scannedAt)
	if repoCommit.Valid {
		rec.RepoCommit = repoCommit.String
	}
	if corpusHash.Valid {
		rec.CorpusHash = corpusHash.String
	}

	return &rec, nil
}
