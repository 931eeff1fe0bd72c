// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the SQLite-backed artifact repository.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ph0sec/viper/internal/output"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrFileNotStored = errors.New("file not stored")
	ErrInvalidKey    = errors.New("invalid lookup key")
	ErrDatabaseError = errors.New("database error")
)

// lookupColumns maps Find keys to columns of the files table.
var lookupColumns = map[string]string{
	"sha256": "sha256",
	"sha1":   "sha1",
	"md5":    "md5",
	"name":   "name",
}

// =============================================================================
// TYPES
// =============================================================================

// File is a stored artifact.
type File struct {
	ID        int64
	Name      string
	Size      int64
	MD5       string
	SHA1      string
	SHA256    string
	CreatedAt time.Time
}

// Analysis is one recorded module run.
type Analysis struct {
	ID       string
	CmdLine  string
	Results  []output.Entry
	StoredAt time.Time
}

// =============================================================================
// STORE
// =============================================================================

// Store is the artifact repository of one project.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return err
	}
	_, err := s.db.Exec(InitMetadata)
	return err
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Find reports whether a stored file matches value for key
// (one of sha256, sha1, md5, name).
func (s *Store) Find(key, value string) (bool, error) {
	column, ok := lookupColumns[key]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	var n int
	query := "SELECT COUNT(*) FROM files WHERE " + column + " = ?"
	if err := s.db.QueryRow(query, value).Scan(&n); err != nil {
		return false, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return n > 0, nil
}

// AddFile stores an artifact. Storing the same sha256 twice is a no-op and
// reports added=false.
func (s *Store) AddFile(f File) (added bool, err error) {
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO files (name, size, md5, sha1, sha256, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		f.Name, f.Size, f.MD5, f.SHA1, f.SHA256, time.Now().Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return n > 0, nil
}

// GetFile returns the stored file with the given sha256.
func (s *Store) GetFile(sha256 string) (*File, error) {
	var f File
	var created int64
	err := s.db.QueryRow(
		`SELECT id, name, size, md5, sha1, sha256, created_at FROM files WHERE sha256 = ?`,
		sha256,
	).Scan(&f.ID, &f.Name, &f.Size, &f.MD5, &f.SHA1, &f.SHA256, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFileNotStored
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	f.CreatedAt = time.Unix(created, 0)
	return &f, nil
}

// Search returns the stored files whose key column matches pattern, newest
// first. Names match as a glob (SQLite GLOB: *, ?, [...]); hashes match
// exactly. Key "all" returns every file.
func (s *Store) Search(key, pattern string) ([]File, error) {
	query := `SELECT id, name, size, md5, sha1, sha256, created_at FROM files`
	var args []any
	switch key {
	case "all":
	case "name":
		query += " WHERE name GLOB ?"
		args = append(args, pattern)
	default:
		column, ok := lookupColumns[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
		query += " WHERE " + column + " = ?"
		args = append(args, pattern)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		var created int64
		if err := rows.Scan(&f.ID, &f.Name, &f.Size, &f.MD5, &f.SHA1, &f.SHA256, &created); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		f.CreatedAt = time.Unix(created, 0)
		files = append(files, f)
	}
	return files, rows.Err()
}

// FileCount returns the number of stored files.
func (s *Store) FileCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM files").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return n, nil
}

// AddAnalysis records the output of a module run against a stored file.
// Returns ErrFileNotStored when the file is not in the repository.
func (s *Store) AddAnalysis(sha256, cmdLine string, results []output.Entry) error {
	file, err := s.GetFile(sha256)
	if err != nil {
		return err
	}

	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO analyses (id, file_id, cmd_line, results, stored_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), file.ID, cmdLine, string(data), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// Analyses returns the recorded module runs for a file, oldest first.
func (s *Store) Analyses(sha256 string) ([]Analysis, error) {
	rows, err := s.db.Query(
		`SELECT a.id, a.cmd_line, a.results, a.stored_at
		 FROM analyses a JOIN files f ON f.id = a.file_id
		 WHERE f.sha256 = ?
		 ORDER BY a.stored_at, a.rowid`,
		sha256,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		var a Analysis
		var results string
		var stored int64
		if err := rows.Scan(&a.ID, &a.CmdLine, &results, &stored); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		if err := json.Unmarshal([]byte(results), &a.Results); err != nil {
			return nil, fmt.Errorf("failed to decode results of %s: %w", a.ID, err)
		}
		a.StoredAt = time.Unix(stored, 0)
		out = append(out, a)
	}
	return out, rows.Err()
}
