// Package db is the workout store: a single-file SQLite database holding
// workouts, exercise sets, exercises and the weekly routine.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/benoctopus/titan/internal/models"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrValidation is returned when an input is rejected before touching storage
	ErrValidation = eris.New("validation failed")
	// ErrNotFound is returned when an update or lookup references a missing record
	ErrNotFound = eris.New("record not found")
	// ErrStorageUnavailable is returned when the database cannot be opened or
	// initialized, or when a transaction fails because the file is locked,
	// read-only, full or unreadable
	ErrStorageUnavailable = eris.New("storage unavailable")
)

// DefaultBusyTimeout is how long a writer waits for another handle's lock
const DefaultBusyTimeout = 5 * time.Second

// DefaultLimit caps list queries when the caller passes a non-positive limit
const DefaultLimit = 10

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// DayPolicy selects how GetExercisesForDay recalls a weekday's exercises
type DayPolicy string

const (
	// DayPolicyLatestSession returns the exercises of the most recently completed
	// workout tagged with the weekday, so removed exercises do not come back.
	DayPolicyLatestSession DayPolicy = "latest-session"
	// DayPolicyRecency returns every exercise ever logged on the weekday,
	// most recently used first.
	DayPolicyRecency DayPolicy = "recency"
)

// ParseDayPolicy validates a policy name; empty selects the default
func ParseDayPolicy(s string) (DayPolicy, error) {
	switch DayPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DayPolicyLatestSession:
		return DayPolicyLatestSession, nil
	case DayPolicyRecency:
		return DayPolicyRecency, nil
	default:
		return "", eris.Wrapf(ErrValidation, "unknown day policy %q (must be one of: latest-session, recency)", s)
	}
}

// Store owns the database handle. It is safe for concurrent use except for
// Wipe and Close, which must not overlap other calls.
type Store struct {
	db        *sql.DB
	path      string
	logger    *zap.Logger
	now       func() time.Time
	dayPolicy DayPolicy
	busy      time.Duration
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the structured logger used by the store
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDayPolicy selects the weekday recall policy
func WithDayPolicy(policy DayPolicy) Option {
	return func(s *Store) {
		if policy != "" {
			s.dayPolicy = policy
		}
	}
}

// WithBusyTimeout bounds how long a write waits on a lock held elsewhere
// before failing with ErrStorageUnavailable
func WithBusyTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.busy = d
		}
	}
}

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens (creating if needed) the database at path and applies migrations
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:      path,
		logger:    zap.NewNop(),
		now:       time.Now,
		dayPolicy: DayPolicyLatestSession,
		busy:      DefaultBusyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := s.openDB(ctx)
	if err != nil {
		return nil, err
	}
	s.db = db

	s.logger.Debug("opened workout store", zap.String("path", path), zap.String("day_policy", string(s.dayPolicy)))
	return s, nil
}

// openDB opens a connection pool for s.path and runs migrations on it
func (s *Store) openDB(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(s.path, s.busy))
	if err != nil {
		return nil, eris.Wrapf(ErrStorageUnavailable, "failed to open database %s: %v", s.path, err)
	}

	// One connection serializes every statement and transaction, which is what
	// makes set numbering inside LogSet atomic.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, eris.Wrapf(ErrStorageUnavailable, "failed to ping database %s: %v", s.path, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, eris.Wrapf(ErrStorageUnavailable, "failed to enable foreign keys: %v", err)
	}

	if err := RunMigrations(ctx, db, s.logger); err != nil {
		db.Close()
		return nil, eris.Wrapf(ErrStorageUnavailable, "failed to migrate database: %v", err)
	}

	return db, nil
}

// dsn appends the driver parameters the store relies on
func dsn(path string, busy time.Duration) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	// _time_format=sqlite writes DATETIME columns in a fixed layout, so UTC
	// timestamps sort correctly as text. _txlock=immediate takes the write lock
	// at BEGIN, where busy_timeout applies; a deferred transaction that later
	// upgrades its lock fails with SQLITE_BUSY without waiting.
	return fmt.Sprintf("%s%s_time_format=sqlite&_txlock=immediate&_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)",
		path, sep, busy.Milliseconds())
}

// Close releases the database handle
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return eris.Wrap(err, "failed to close database")
	}
	return nil
}

// Path returns the database location the store was opened with
func (s *Store) Path() string {
	return s.path
}

// DayPolicy returns the weekday recall policy in effect
func (s *Store) DayPolicy() DayPolicy {
	return s.dayPolicy
}

// DB exposes the underlying handle for tests and diagnostics
func (s *Store) DB() *sql.DB {
	return s.db
}

// Wipe deletes the entire database and reinitializes an empty one in its place.
// Reads issued after Wipe see an empty store.
func (s *Store) Wipe(ctx context.Context) error {
	if err := s.db.Close(); err != nil {
		return eris.Wrap(err, "failed to close database before wipe")
	}

	var removeErr error
	if !isMemoryPath(s.path) {
		for _, suffix := range []string{"", "-wal", "-shm", "-journal"} {
			if err := os.Remove(s.path + suffix); err != nil && !os.IsNotExist(err) {
				removeErr = eris.Wrapf(err, "failed to remove database file: %s", s.path+suffix)
				break
			}
		}
	}

	db, err := s.openDB(ctx)
	if err != nil {
		return eris.Wrap(err, "failed to reinitialize database after wipe")
	}
	s.db = db

	if removeErr != nil {
		return removeErr
	}

	s.logger.Info("wiped workout store", zap.String("path", s.path))
	return nil
}

func isMemoryPath(path string) bool {
	return path == MemoryPath || strings.HasPrefix(path, ":memory:?") || strings.Contains(path, "mode=memory")
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageError(err, "failed to begin transaction")
	}

	if err := fn(tx); err != nil {
		//nolint:errcheck // Rollback in error path
		tx.Rollback()
		if isStorageFault(err) {
			return eris.Wrapf(ErrStorageUnavailable, "%v", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageError(err, "failed to commit transaction")
	}
	return nil
}

// storageError wraps err with ErrStorageUnavailable when the driver reports a
// lock, I/O or permission fault, and with msg alone otherwise
func storageError(err error, msg string) error {
	if isStorageFault(err) {
		return eris.Wrapf(ErrStorageUnavailable, "%s: %v", msg, err)
	}
	return eris.Wrap(err, msg)
}

// isStorageFault reports whether err carries a SQLite result code meaning the
// database file itself cannot be used right now
func isStorageFault(err error) bool {
	var serr *sqlite.Error
	if !eris.As(err, &serr) {
		return false
	}
	// Extended codes keep the primary code in the low byte.
	switch serr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_IOERR,
		sqlite3.SQLITE_FULL, sqlite3.SQLITE_READONLY, sqlite3.SQLITE_CANTOPEN:
		return true
	}
	return false
}

// timestamp returns the current instant in UTC for persisted timestamps
func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

// today returns the local calendar date used on workouts
func (s *Store) today() string {
	return s.now().Format(models.DateLayout)
}

// limitOrDefault normalizes a caller supplied limit
func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

// nullableDay converts an optional weekday to a driver value
func nullableDay(day *int) any {
	if day == nil {
		return nil
	}
	return *day
}

// dayPtr converts a scanned nullable weekday back to a pointer
func dayPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	d := int(v.Int64)
	return &d
}

// validateDay rejects weekday indexes outside 0-6
func validateDay(day *int) error {
	if day != nil && !models.ValidDay(*day) {
		return eris.Wrapf(ErrValidation, "day of week must be between 0 and 6, got %d", *day)
	}
	return nil
}
