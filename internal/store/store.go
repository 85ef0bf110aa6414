// Package store archives finished quiz sessions and LLM calls in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a session id is not archived.
var ErrNotFound = errors.New("not found")

// Store is the SQLite archive.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	seq *sequenceCounter
}

// pragmas are applied to every pooled connection through the DSN.
var pragmas = []string{
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
}

// Open connects to the database at dsn (a file path or a "file:" URI) and
// migrates it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(ctx, drv); err != nil {
		db.Close()
		return nil, err
	}
	seq, err := newSequenceCounter(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, drv: drv, seq: seq}, nil
}

func migrate(ctx context.Context, drv *entsql.Driver) error {
	m, err := schema.NewMigrate(drv, schema.WithDropIndex(false), schema.WithDropColumn(false))
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

func withPragmas(dsn string) string {
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + q.Encode()
}

// DB exposes the connection pool for ad hoc queries.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.drv.Close() }

// DefaultDBPath resolves the database file in priority order:
// TIMEDQUIZ_DB, $XDG_DATA_HOME/timedquiz/timedquiz.db,
// ~/.local/share/timedquiz/timedquiz.db. The parent directory is created.
func DefaultDBPath() (string, error) {
	if p := os.Getenv("TIMEDQUIZ_DB"); p != "" {
		return p, ensureDir(p)
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	p := filepath.Join(dataHome, "timedquiz", "timedquiz.db")
	return p, ensureDir(p)
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
