/*
Package sqlite provides a SQLite-backed local key-value store.

PURPOSE:
  The local persistence layer of the tracker. It plays the role a browser's
  local storage would: a small key-value table where one key holds the full
  JSON-encoded entry list. In remote mode the same store keeps the local
  backup copy that reads fall back to.

INTERFACES IMPLEMENTED:
  attendance.Store: Load/Save of the whole entry list under RecordsKey

KEY TABLES:
  kv: key TEXT PRIMARY KEY, value TEXT, updated_at TEXT

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Readers don't block the writer
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./worklog.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  entries, err := store.Load(ctx)

SEE ALSO:
  - attendance/store.go: Store contract
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/worklog/attendance"
)

// RecordsKey is the key holding the entry list.
const RecordsKey = "work-tracker-records"

// Store implements attendance.Store on a SQLite key-value table.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	key string
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A :memory: database exists per connection; pin the pool to one.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, key: RecordsKey}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// KEY-VALUE ACCESS
// =============================================================================

// Get returns the value for key and whether it exists.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Put sets key to value, replacing any previous value.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, key, string(value), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// =============================================================================
// ENTRY STORE (attendance.Store interface)
// =============================================================================

// Load returns the stored entry list. A missing key is an empty list.
func (s *Store) Load(ctx context.Context) ([]attendance.Entry, error) {
	data, ok, err := s.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []attendance.Entry{}, nil
	}
	return attendance.DecodeEntries(data)
}

// Save replaces the stored entry list.
func (s *Store) Save(ctx context.Context, entries []attendance.Entry) error {
	data, err := attendance.EncodeEntries(entries)
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}
	return s.Put(ctx, s.key, data)
}
