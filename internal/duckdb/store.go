// Package duckdb resolves coordinates against annotation regions with SQL in
// an in-memory DuckDB database. It is an independent check of the scan
// matcher and a source of per-chromosome statistics; nothing is written to disk.
package duckdb

import (
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/inodb/coordmatch/internal/region"
)

const (
	kindExon   = "exon"
	kindIntron = "intron"
)

// Store manages an in-memory DuckDB connection holding one run's regions
// and coordinates.
type Store struct {
	db *sql.DB

	exons   []region.Region
	introns []region.Region
}

// Open creates an in-memory DuckDB database with an empty schema.
func Open() (*Store, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db}
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

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS regions (
		kind VARCHAR,
		ord BIGINT,
		chrom VARCHAR,
		source VARCHAR,
		feature VARCHAR,
		start_pos BIGINT,
		end_pos BIGINT,
		strand VARCHAR,
		attributes VARCHAR,
		name VARCHAR,
		PRIMARY KEY (kind, ord)
	)`); err != nil {
		return err
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS coordinates (
		ord BIGINT PRIMARY KEY,
		chrom VARCHAR,
		pos BIGINT
	)`)
	return err
}
