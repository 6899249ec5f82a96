// Package repository provides SQLite-backed storage for the
// target-discovery engine's persisted state: papers, chunks (with
// embeddings), canonical entities and mentions, knowledge-graph facts,
// target scores, and ingestion audit rows.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nishad/oncotarget/internal/apperrors"
)

// DB wraps a SQLite connection tuned for the ingestion/scoring workload.
type DB struct {
	*sql.DB
	path string
}

// Open opens (creating if necessary) the SQLite database at path, applies
// WAL/pragma tuning, and creates the schema if absent. Pragma choices
// mirror the teacher's internal/database.Initialize, adapted for a
// read-heavy scoring workload alongside write-heavy ingestion: foreign
// keys stay ON (unlike the teacher's import-time OFF) since cross-table
// referential integrity between chunks/entities/facts is load-bearing
// here, not merely advisory.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", path+"?_journal=WAL&_timeout=5000&_sync=NORMAL&_fk=1")
	if err != nil {
		return nil, apperrors.WrapMsg("repository.Open", "open sqlite database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = 50000",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA mmap_size = 536870912",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			return nil, apperrors.WrapMsg("repository.Open", fmt.Sprintf("set pragma %q", p), err)
		}
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{DB: sqlDB, path: path}
	if err := db.createSchema(); err != nil {
		return nil, apperrors.WrapMsg("repository.Open", "create schema", err)
	}
	if err := db.createFTSTable(); err != nil {
		return nil, apperrors.WrapMsg("repository.Open", "create fts table", err)
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.DB.Close()
}

// Ping verifies connectivity.
func (db *DB) Ping(ctx context.Context) error {
	return db.DB.PingContext(ctx)
}
