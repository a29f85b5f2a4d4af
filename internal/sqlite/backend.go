package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/restroom/pkg/types"
)

// DatabaseFile is the name of the SQLite file inside DataDir.
const DatabaseFile = "restroom.db"

// timeLayout is fixed width so stored timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Backend implements types.Store on SQLite. Mutations hold the write lock
// and run in one transaction each; reads hold the read lock and run in a
// transaction so they see a consistent snapshot.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	cache    *facilityCache
	log      zerolog.Logger
	now      func() time.Time
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used for backend events.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Backend) { b.log = l }
}

// WithClock overrides the time source. Tests use it to control timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		log: zerolog.Nop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach opens (or creates) DataDir/restroom.db and applies the schema.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("%w: create data dir: %v", types.ErrStorageFailure, err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)
	dsn := "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", types.ErrStorageFailure, dbPath, err)
	}
	// Writers are serialized by mu; one connection keeps pragmas and avoids
	// SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		db.Close()
		return err
	}

	cache, err := newFacilityCache(config.FacilityCacheSize)
	if err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.cache = cache
	b.attached = true

	b.log.Debug().Str("path", dbPath).Msg("store attached")
	return nil
}

// applySchema creates missing tables and indexes.
func applySchema(db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("%w: create table: %v", types.ErrStorageFailure, err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("%w: create index: %v", types.ErrStorageFailure, err)
		}
	}
	return nil
}

// Detach closes the SQLite connection. After Detach, all operations return
// ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return fmt.Errorf("%w: close: %v", types.ErrStorageFailure, err)
		}
		b.db = nil
	}
	b.cache = nil
	b.attached = false

	b.log.Debug().Msg("store detached")
	return nil
}

// write runs fn in a transaction under the write lock. Any error from fn
// rolls the transaction back; nothing from a failed call is committed.
func (b *Backend) write(ctx context.Context, fn func(tx *sql.Tx) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit", err)
	}
	return nil
}

// read runs fn in a transaction under the read lock.
func (b *Backend) read(ctx context.Context, fn func(tx *sql.Tx) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin", err)
	}
	defer tx.Rollback()

	return fn(tx)
}

// Counts returns the number of rows per table.
func (b *Backend) Counts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(types.StandardTableNames))
	err := b.read(ctx, func(tx *sql.Tx) error {
		for _, name := range types.StandardTableNames {
			var n int
			if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+name).Scan(&n); err != nil {
				return storageErr("count "+name, err)
			}
			counts[name] = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// storageErr wraps a driver error as ErrStorageFailure.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", types.ErrStorageFailure, op, err)
}

// newUUID generates a UUID v7 string.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// stamp returns the current time in UTC from the backend clock.
func (b *Backend) stamp() time.Time {
	return b.now().UTC()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
