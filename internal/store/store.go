// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists typed paper summaries and source-section
// fragments in SQLite and serves the pipeline's retrieval interfaces.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-engine/pkg/types"
)

const (
	summariesDir = "summaries"
	indexDir     = "index"
	dbFile       = "engine.db"
)

// Store manages the summary index SQLite database.
type Store struct {
	db      *sql.DB
	dataDir string
}

// NewStore opens or creates the database at dataDir/index/engine.db,
// creating the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dataDir: cfg.DataDir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS summaries (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			category TEXT NOT NULL,
			paper_id TEXT NOT NULL,
			text TEXT NOT NULL,
			source_sections TEXT,
			topics TEXT,
			embedding TEXT NOT NULL,
			UNIQUE(category, paper_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_category ON summaries(category)`,
		`CREATE TABLE IF NOT EXISTS fragments (
			paper_id TEXT NOT NULL,
			section TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			text TEXT NOT NULL,
			PRIMARY KEY (paper_id, section, chunk_index)
		)`,
		`CREATE TABLE IF NOT EXISTS ingest_status (
			paper_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}
