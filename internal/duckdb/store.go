// Package duckdb exports comparison results into a DuckDB database for
// ad-hoc SQL. Only derived results are stored; input annotations are not.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding comparison runs.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id BIGINT PRIMARY KEY,
			created_at TIMESTAMP,
			ref_path VARCHAR,
			ref_size BIGINT,
			ref_mtime TIMESTAMP,
			pred_path VARCHAR,
			pred_size BIGINT,
			pred_mtime TIMESTAMP,
			overlap_threshold DOUBLE,
			full_match_threshold DOUBLE,
			exact_boundaries BOOLEAN,
			segments VARCHAR,
			same_strand BOOLEAN,
			reasonable_threshold DOUBLE,
			multi_parent VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS gene_matches (
			run_id BIGINT,
			ref_gene_id VARCHAR,
			pred_gene_id VARCHAR,
			candidate VARCHAR,
			seqid VARCHAR,
			overlap BIGINT,
			ratio DOUBLE,
			matched BOOLEAN
		)`,
		`CREATE TABLE IF NOT EXISTS exon_results (
			run_id BIGINT,
			ref_gene_id VARCHAR,
			pred_gene_id VARCHAR,
			ref_transcript_id VARCHAR,
			pred_transcript_id VARCHAR,
			feature_type VARCHAR,
			status VARCHAR,
			ref_start BIGINT,
			ref_end BIGINT,
			pred_start BIGINT,
			pred_end BIGINT,
			overlap BIGINT,
			ratio DOUBLE
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
