package hashindex

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store persists hash index entries in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// SourceCount is the number of hashed files stored for one source.
type SourceCount struct {
	SourceID  string
	Algorithm string
	Files     int
	IndexedAt time.Time
}

// Open creates or connects to the hash database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create hash db directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// ReplaceSource atomically swaps all stored entries of sourceID for records.
func (s *Store) ReplaceSource(ctx context.Context, sourceID string, algorithm Algorithm, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM file_hashes WHERE source_id = ?", sourceID); err != nil {
		return fmt.Errorf("clear source %s: %w", sourceID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO file_hashes (source_id, path, hash, size, algorithm, indexed_at)
         VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, sourceID, r.Path, r.Hash, r.Size, string(algorithm), now); err != nil {
			return fmt.Errorf("insert %s: %w", r.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// DeleteSource removes every stored entry of sourceID.
func (s *Store) DeleteSource(ctx context.Context, sourceID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM file_hashes WHERE source_id = ?", sourceID)
	if err != nil {
		return 0, fmt.Errorf("delete source %s: %w", sourceID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// Load rebuilds an Index from every stored entry hashed with algorithm.
func (s *Store) Load(ctx context.Context, algorithm Algorithm) (*Index, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT source_id, path, hash, size FROM file_hashes WHERE algorithm = ? ORDER BY rowid",
		string(algorithm))
	if err != nil {
		return nil, fmt.Errorf("query hashes: %w", err)
	}
	defer rows.Close()

	idx := New()
	for rows.Next() {
		var (
			e    Entry
			hash string
		)
		if err := rows.Scan(&e.SourceID, &e.Path, &hash, &e.Size); err != nil {
			return nil, fmt.Errorf("scan hash row: %w", err)
		}
		idx.Add(hash, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hashes: %w", err)
	}
	return idx, nil
}

// Sources lists per-source file counts.
func (s *Store) Sources(ctx context.Context) ([]SourceCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_id, algorithm, COUNT(1), MAX(indexed_at)
         FROM file_hashes GROUP BY source_id, algorithm ORDER BY source_id`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var out []SourceCount
	for rows.Next() {
		var (
			sc        SourceCount
			indexedAt string
		)
		if err := rows.Scan(&sc.SourceID, &sc.Algorithm, &sc.Files, &indexedAt); err != nil {
			return nil, fmt.Errorf("scan source row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, indexedAt); err == nil {
			sc.IndexedAt = t
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
