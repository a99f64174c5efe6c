package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// DiffChange represents a single telecommand change from a Dolt diff.
type DiffChange struct {
	DiffType       string  // "added", "modified", "removed"
	Name           string  // telecommand name
	FunctionSymbol string  // handler symbol
	ReadinessLevel string  // readiness level (new side when available)
	ArgumentCount  int     // argument count (new side when available)
	OldSigHash     *string // previous signature hash (for modified/removed)
	NewSigHash     *string // new signature hash (for added/modified)
	OldDocHash     *string // previous doc hash
	NewDocHash     *string // new doc hash
}

// DiffResult contains the complete diff output with categorized changes.
type DiffResult struct {
	FromRef  string       // the "from" reference (commit, branch, tag)
	ToRef    string       // the "to" reference
	Added    []DiffChange // telecommands added
	Modified []DiffChange // telecommands modified
	Removed  []DiffChange // telecommands removed
}

// DiffOptions specifies options for the Dolt diff query.
type DiffOptions struct {
	FromRef string // "from" commit/branch/tag (default: "HEAD~1")
	ToRef   string // "to" commit/branch/tag (default: "WORKING")
	Table   string // table to diff (default: "telecommands")
	Name    string // filter to telecommand names containing this (optional)
}

// DoltDiff queries the Dolt diff between two refs for a given table.
// Returns categorized changes (added, modified, removed).
func (s *Store) DoltDiff(opts DiffOptions) (*DiffResult, error) {
	// Set defaults
	if opts.FromRef == "" {
		opts.FromRef = "HEAD~1"
	}
	if opts.ToRef == "" {
		opts.ToRef = "WORKING"
	}
	if opts.Table == "" {
		opts.Table = "telecommands"
	}

	result := &DiffResult{
		FromRef:  opts.FromRef,
		ToRef:    opts.ToRef,
		Added:    []DiffChange{},
		Modified: []DiffChange{},
		Removed:  []DiffChange{},
	}

	// Validate refs to prevent SQL injection (only allow safe characters)
	if !IsValidRef(opts.FromRef) || !IsValidRef(opts.ToRef) || !IsValidRef(opts.Table) {
		return nil, fmt.Errorf("invalid ref format")
	}

	// Check if we have enough commit history for HEAD~N refs
	if strings.HasPrefix(opts.FromRef, "HEAD~") {
		count, err := s.commitCount()
		if err != nil {
			return result, nil // No history, return empty
		}
		var n int
		if _, err := fmt.Sscanf(opts.FromRef, "HEAD~%d", &n); err == nil {
			if count <= n {
				return result, nil // Not enough history
			}
		}
	}

	// Build the DOLT_DIFF query
	// Note: DOLT_DIFF doesn't support bind variables, so we use string
	// formatting with validated inputs for the table function arguments
	query := fmt.Sprintf(`
		SELECT
			diff_type,
			COALESCE(to_name, from_name) as name,
			COALESCE(to_function_symbol, from_function_symbol) as function_symbol,
			COALESCE(to_readiness_level, from_readiness_level) as readiness_level,
			COALESCE(to_argument_count, from_argument_count) as argument_count,
			from_sig_hash,
			to_sig_hash,
			from_doc_hash,
			to_doc_hash
		FROM DOLT_DIFF('%s', '%s', '%s')
		WHERE 1=1
	`, opts.FromRef, opts.ToRef, opts.Table)

	var args []interface{}

	// Add filters if specified (these can use bind variables)
	if opts.Name != "" {
		query += " AND (to_name LIKE ? OR from_name LIKE ?)"
		pattern := "%" + opts.Name + "%"
		args = append(args, pattern, pattern)
	}

	query += " ORDER BY diff_type, name"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		// Check if this is a "no commits" error (new repo with no history)
		if strings.Contains(err.Error(), "cannot resolve") ||
			strings.Contains(err.Error(), "HEAD~1") ||
			strings.Contains(err.Error(), "no such commit") {
			// No history yet - return empty result
			return result, nil
		}
		return nil, fmt.Errorf("dolt diff query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var change DiffChange
		var oldSig, newSig, oldDoc, newDoc sql.NullString
		var argCount sql.NullInt64

		err := rows.Scan(
			&change.DiffType,
			&change.Name,
			&change.FunctionSymbol,
			&change.ReadinessLevel,
			&argCount,
			&oldSig,
			&newSig,
			&oldDoc,
			&newDoc,
		)
		if err != nil {
			return nil, fmt.Errorf("scan diff row: %w", err)
		}

		if argCount.Valid {
			change.ArgumentCount = int(argCount.Int64)
		}
		if oldSig.Valid {
			change.OldSigHash = &oldSig.String
		}
		if newSig.Valid {
			change.NewSigHash = &newSig.String
		}
		if oldDoc.Valid {
			change.OldDocHash = &oldDoc.String
		}
		if newDoc.Valid {
			change.NewDocHash = &newDoc.String
		}

		// Categorize by diff type
		switch change.DiffType {
		case "added":
			result.Added = append(result.Added, change)
		case "modified":
			result.Modified = append(result.Modified, change)
		case "removed":
			result.Removed = append(result.Removed, change)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diff rows: %w", err)
	}

	return result, nil
}

// IsValidRef checks whether a ref string is safe to interpolate into a
// Dolt query.
// Refs can contain alphanumeric, _, -, ., /, ~, and ^ characters.
func IsValidRef(ref string) bool {
	if ref == "" {
		return false
	}
	for _, c := range ref {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') || c == '_' || c == '-' ||
			c == '.' || c == '/' || c == '~' || c == '^') {
			return false
		}
	}
	return true
}

// DoltDiffSummary returns a quick summary of changes between two refs.
func (s *Store) DoltDiffSummary(fromRef, toRef string) (added, modified, removed int, err error) {
	if fromRef == "" {
		fromRef = "HEAD~1"
	}
	if toRef == "" {
		toRef = "WORKING"
	}

	// Validate refs to prevent SQL injection
	if !IsValidRef(fromRef) || !IsValidRef(toRef) {
		return 0, 0, 0, fmt.Errorf("invalid ref format")
	}

	// Check if we have enough commit history for HEAD~N refs
	if strings.HasPrefix(fromRef, "HEAD~") {
		count, err := s.commitCount()
		if err != nil {
			return 0, 0, 0, nil // No history, return empty
		}
		var n int
		if _, err := fmt.Sscanf(fromRef, "HEAD~%d", &n); err == nil {
			if count <= n {
				return 0, 0, 0, nil // Not enough history
			}
		}
	}

	// Note: DOLT_DIFF doesn't support bind variables
	query := fmt.Sprintf(`
		SELECT
			SUM(CASE WHEN diff_type = 'added' THEN 1 ELSE 0 END) as added,
			SUM(CASE WHEN diff_type = 'modified' THEN 1 ELSE 0 END) as modified,
			SUM(CASE WHEN diff_type = 'removed' THEN 1 ELSE 0 END) as removed
		FROM DOLT_DIFF('%s', '%s', 'telecommands')
	`, fromRef, toRef)

	var addedNull, modifiedNull, removedNull sql.NullInt64
	err = s.db.QueryRow(query).Scan(&addedNull, &modifiedNull, &removedNull)
	if err != nil {
		// Handle no history case
		if strings.Contains(err.Error(), "cannot resolve") ||
			strings.Contains(err.Error(), "HEAD~") ||
			strings.Contains(err.Error(), "no such commit") ||
			strings.Contains(err.Error(), "invalid ancestor spec") {
			return 0, 0, 0, nil
		}
		return 0, 0, 0, fmt.Errorf("diff summary: %w", err)
	}

	if addedNull.Valid {
		added = int(addedNull.Int64)
	}
	if modifiedNull.Valid {
		modified = int(modifiedNull.Int64)
	}
	if removedNull.Valid {
		removed = int(removedNull.Int64)
	}

	return added, modified, removed, nil
}

// commitCount returns the number of commits in the Dolt log.
func (s *Store) commitCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM dolt_log").Scan(&count)
	return count, err
}

// Commit creates a Dolt commit of all working changes with the given
// message. Returns the new commit hash, or "" when there was nothing
// to commit.
func (s *Store) Commit(message string) (string, error) {
	var hash string
	err := s.db.QueryRow("CALL DOLT_COMMIT('-Am', ?)", message).Scan(&hash)
	if err != nil {
		if strings.Contains(err.Error(), "nothing to commit") {
			return "", nil
		}
		return "", fmt.Errorf("dolt commit: %w", err)
	}
	return hash, nil
}

// DoltLogEntry represents one commit in the Dolt history.
type DoltLogEntry struct {
	CommitHash string
	Committer  string
	Email      string
	Date       string
	Message    string
}

// DoltLog returns recent Dolt commits.
func (s *Store) DoltLog(limit int) ([]DoltLogEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT commit_hash, committer, email, date, message
		FROM dolt_log
		ORDER BY date DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("dolt log query: %w", err)
	}
	defer rows.Close()

	var entries []DoltLogEntry
	for rows.Next() {
		var entry DoltLogEntry
		err := rows.Scan(&entry.CommitHash, &entry.Committer, &entry.Email, &entry.Date, &entry.Message)
		if err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// QueryTelecommandsAt returns telecommands as they existed at the given
// ref, using Dolt's AS OF time travel.
func (s *Store) QueryTelecommandsAt(filter TelecommandFilter, ref string) ([]*Telecommand, error) {
	if !IsValidRef(ref) {
		return nil, fmt.Errorf("invalid ref format")
	}

	// Note: AS OF requires the ref in the table reference, not as a
	// function argument
	query := fmt.Sprintf(
		"SELECT "+telecommandColumns+" FROM telecommands AS OF '%s' WHERE 1=1", ref)
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
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	query += " ORDER BY ordinal, name"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query at %s: %w", ref, err)
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

	return records, rows.Err()
}

// HistoryEntry represents a single historical state of a telecommand.
type HistoryEntry struct {
	CommitHash     string  // Dolt commit hash
	CommitDate     string  // When the commit was made
	Committer      string  // Who made the commit
	ArgumentCount  int     // Argument count at this commit
	ReadinessLevel string  // Readiness level at this commit
	SigHash        *string // Signature hash at this commit
	DocHash        *string // Doc hash at this commit
	ChangeType     string  // "current", "modified", "unchanged", "added"
}

// HistoryOptions specifies options for telecommand history queries.
type HistoryOptions struct {
	Name  string // The telecommand name to get history for
	Limit int    // Max entries to return (default 20)
}

// TelecommandHistory returns the commit history for a specific telecommand.
// Queries dolt_history_telecommands and computes change types between
// versions.
func (s *Store) TelecommandHistory(opts HistoryOptions) ([]HistoryEntry, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("telecommand name required")
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	query := `
		SELECT
			commit_hash,
			commit_date,
			committer,
			argument_count,
			readiness_level,
			sig_hash,
			doc_hash
		FROM dolt_history_telecommands
		WHERE name = ?
		ORDER BY commit_date DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, opts.Name, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("telecommand history query: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	var prevSigHash, prevDocHash *string

	for rows.Next() {
		var entry HistoryEntry
		var commitDate interface{}
		var sigHash, docHash sql.NullString

		err := rows.Scan(
			&entry.CommitHash,
			&commitDate,
			&entry.Committer,
			&entry.ArgumentCount,
			&entry.ReadinessLevel,
			&sigHash,
			&docHash,
		)
		if err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}

		entry.CommitDate = fmt.Sprintf("%v", commitDate)
		if sigHash.Valid {
			entry.SigHash = &sigHash.String
		}
		if docHash.Valid {
			entry.DocHash = &docHash.String
		}

		// Determine change type by comparing with the previous (newer)
		// entry. Iteration runs newest to oldest.
		if prevSigHash == nil && prevDocHash == nil && len(entries) == 0 {
			entry.ChangeType = "current"
		} else if !nullStrEqual(entry.SigHash, prevSigHash) || !nullStrEqual(entry.DocHash, prevDocHash) {
			entry.ChangeType = "modified"
		} else {
			entry.ChangeType = "unchanged"
		}

		prevSigHash = entry.SigHash
		prevDocHash = entry.DocHash

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}

	// Mark the oldest entry as "added" (first appearance)
	if len(entries) > 0 {
		entries[len(entries)-1].ChangeType = "added"
	}

	return entries, nil
}

// nullStrEqual compares two nullable strings for equality.
func nullStrEqual(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
