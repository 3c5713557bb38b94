// Package store persists scan results in SQLite so repeated scans can skip
// files whose content hash is unchanged. The cache holds annotations before
// any diff scoping or filtering; those always run after retrieval.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jward/burl/internal/tags"
)

// Store is the SQLite data access layer for the scan cache.
type Store struct {
	db *sql.DB
}

// File is one cached file record.
type File struct {
	ID          int64
	Path        string
	Language    string
	Hash        string
	LastScanned time.Time
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS files (
  id            INTEGER PRIMARY KEY,
  path          TEXT NOT NULL UNIQUE,
  language      TEXT NOT NULL,
  hash          TEXT,
  last_scanned  TIMESTAMP
);

CREATE TABLE IF NOT EXISTS annotations (
  id        INTEGER PRIMARY KEY,
  file_id   INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
  line      INTEGER NOT NULL,
  tag       TEXT NOT NULL,
  text      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_annotations_file ON annotations(file_id);

CREATE TABLE IF NOT EXISTS metadata (
  key   TEXT PRIMARY KEY,
  value TEXT
);
`

// FileByPath returns the cached file record for path, or nil if absent.
func (s *Store) FileByPath(path string) (*File, error) {
	row := s.db.QueryRow(
		`SELECT id, path, language, hash, last_scanned FROM files WHERE path = ?`, path)
	var f File
	err := row.Scan(&f.ID, &f.Path, &f.Language, &f.Hash, &f.LastScanned)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup file %s: %w", path, err)
	}
	return &f, nil
}

// InsertFile inserts a file record and returns its ID.
func (s *Store) InsertFile(f *File) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO files (path, language, hash, last_scanned) VALUES (?, ?, ?, ?)`,
		f.Path, f.Language, f.Hash, f.LastScanned)
	if err != nil {
		return 0, fmt.Errorf("insert file %s: %w", f.Path, err)
	}
	return res.LastInsertId()
}

// DeleteFile removes a file record and its annotations.
func (s *Store) DeleteFile(fileID int64) error {
	if _, err := s.db.Exec(`DELETE FROM annotations WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("delete annotations: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM files WHERE id = ?`, fileID); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// InsertAnnotations writes a file's annotations in one transaction.
func (s *Store) InsertAnnotations(fileID int64, annotations []tags.Annotation) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(
		`INSERT INTO annotations (file_id, line, tag, text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()
	for _, a := range annotations {
		if _, err := stmt.Exec(fileID, a.Line, a.Tag, a.Text); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert annotation: %w", err)
		}
	}
	return tx.Commit()
}

// AnnotationsByFile returns a file's cached annotations in insertion order.
// The stored rows carry no path, so the caller supplies it.
func (s *Store) AnnotationsByFile(fileID int64, path string) ([]tags.Annotation, error) {
	rows, err := s.db.Query(
		`SELECT line, tag, text FROM annotations WHERE file_id = ? ORDER BY id`, fileID)
	if err != nil {
		return nil, fmt.Errorf("query annotations: %w", err)
	}
	defer rows.Close()

	var annotations []tags.Annotation
	for rows.Next() {
		a := tags.Annotation{File: path}
		if err := rows.Scan(&a.Line, &a.Tag, &a.Text); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		annotations = append(annotations, a)
	}
	return annotations, rows.Err()
}

// GetMetadata returns the value for key, or "" when unset.
func (s *Store) GetMetadata(key string) (string, error) {
	row := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key)
	var value string
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get metadata %s: %w", key, err)
	}
	return value, nil
}

// SetMetadata upserts a metadata key.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set metadata %s: %w", key, err)
	}
	return nil
}

// Reset deletes every cached file, annotation, and metadata row. Used when
// the configured tag set no longer matches the one the cache was built with.
func (s *Store) Reset() error {
	for _, table := range []string{"annotations", "files", "metadata"} {
		if _, err := s.db.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}
