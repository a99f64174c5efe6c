// Package store provides Dolt-backed persistence for the telecommand index.
// The store is located at .tcx/index/ (a Dolt repository) and provides
// storage with version control capabilities including history, diff, and
// time-travel queries over past firmware scans.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/dolthub/driver"
)

// Store manages the .tcx/index/ Dolt database holding the telecommand
// index with version control capabilities.
type Store struct {
	db     *sql.DB
	dbPath string // Path to the Dolt repo directory (.tcx/index/)
}

// Open opens or creates the store database at the specified .tcx directory.
// It auto-creates the directory if it doesn't exist and initializes the
// schema if the database is new. The Dolt database is stored in .tcx/index/.
func Open(tcxDir string) (*Store, error) {
	// Create .tcx directory if it doesn't exist
	if err := os.MkdirAll(tcxDir, 0755); err != nil {
		return nil, fmt.Errorf("create .tcx directory: %w", err)
	}

	// Dolt repo lives in .tcx/index/
	dbPath := filepath.Join(tcxDir, "index")

	// Create the Dolt repo directory if needed
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("create dolt directory: %w", err)
	}

	// First, connect without specifying database to create it if needed
	initDSN := fmt.Sprintf("file://%s?commitname=tcx&commitemail=tcx@localhost", dbPath)
	initDB, err := sql.Open("dolt", initDSN)
	if err != nil {
		return nil, fmt.Errorf("open dolt for init: %w", err)
	}

	// Create database if it doesn't exist
	_, err = initDB.Exec("CREATE DATABASE IF NOT EXISTS tcx")
	if err != nil {
		initDB.Close()
		return nil, fmt.Errorf("create database: %w", err)
	}
	initDB.Close()

	// Now connect to the specific database
	dsn := fmt.Sprintf("file://%s?commitname=tcx&commitemail=tcx@localhost&database=tcx", dbPath)
	db, err := sql.Open("dolt", dsn)
	if err != nil {
		return nil, fmt.Errorf("open dolt db: %w", err)
	}

	store := &Store{db: db, dbPath: dbPath}

	// Initialize schema
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// OpenDefault opens the store in the default .tcx directory in the current
// working directory.
func OpenDefault() (*Store, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	tcxDir := filepath.Join(cwd, ".tcx")
	return Open(tcxDir)
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying database connection for advanced operations.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the Dolt repository path.
func (s *Store) Path() string {
	return s.dbPath
}
