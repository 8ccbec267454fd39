package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentools/metricskey"

	// sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore returns a Store backed by a SQLite database at dbPath.
// The parent directory and the documents table are created when missing.
func NewSQLiteStore(dbPath string) (Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create database directory")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		name TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to initialize documents table")
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Load(ctx context.Context, name string, v any) (bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, name).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to query document: %s", name)
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return false, errors.Wrapf(err, "failed to unmarshal document: %s", name)
	}
	return true, nil
}

func (s *sqliteStore) Save(ctx context.Context, name string, v any) error {
	started := time.Now()
	defer metricskey.PerfStoreSave.MeasureSince(started, "sqlite")

	bs, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal document: %s", name)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (name, body, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP`,
		name, string(bs))
	if err != nil {
		return errors.Wrapf(err, "failed to store document: %s", name)
	}
	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, name)
	if err != nil {
		return errors.Wrapf(err, "failed to delete document: %s", name)
	}
	return nil
}

func (s *sqliteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM documents ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list documents")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "failed to scan document name")
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close closes the underlying database.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}
