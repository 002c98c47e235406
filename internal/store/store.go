package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// DefaultCommitEvery is how many processed files a Batch groups into one
// transaction before committing.
const DefaultCommitEvery = 250

var (
	// ErrLocked means another process holds the store's write lock.
	ErrLocked = errors.New("integrity store is locked by another writer")
	// ErrNotFound means the database file does not exist.
	ErrNotFound = errors.New("integrity store not found")
)

// Store manages integrity record persistence backed by SQLite.
type Store struct {
	db          *sql.DB
	path        string
	lock        *flock.Flock
	readOnly    bool
	commitEvery int
}

// Open initializes or connects to the database at path for writing. The
// single-writer rule is enforced with a lock file beside the database; a
// second writable open fails with ErrLocked.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	lock := flock.New(LockPath(path))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{db: db, path: path, lock: lock, commitEvery: DefaultCommitEvery}, nil
}

// OpenReadOnly connects to an existing database without taking the write
// lock. Callers are expected to run against a quiescent store. A missing
// database fails with ErrNotFound.
func OpenReadOnly(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat store: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db read-only: %w", err)
	}

	return &Store{db: db, path: path, readOnly: true, commitEvery: DefaultCommitEvery}, nil
}

// LockPath returns the write-lock file guarding the database at path.
func LockPath(path string) string {
	return path + ".lock"
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// SetCommitEvery overrides the batch commit cadence. Values below one keep
// the default.
func (s *Store) SetCommitEvery(n int) {
	if n >= 1 {
		s.commitEvery = n
	}
}

// Close releases the database connection and, for writable stores, the lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

// Get returns the record stored at the exact path, or nil when absent.
func (s *Store) Get(ctx context.Context, path string) (*FileRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM files WHERE path = ?`, path)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// GetByHash returns every record sharing the digest, ordered by path. The
// hash index is non-unique: distinct paths with identical bytes each keep
// their own row.
func (s *Store) GetByHash(ctx context.Context, hash string) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM files WHERE hash = ? ORDER BY path`, hash)
	if err != nil {
		return nil, fmt.Errorf("query by hash: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// All enumerates every stored record ordered by path.
func (s *Store) All(ctx context.Context) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("query all records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

func collectRecords(rows *sql.Rows) ([]FileRecord, error) {
	var records []FileRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*FileRecord, error) {
	var rec FileRecord
	if err := scanner.Scan(
		&rec.Path,
		&rec.Filename,
		&rec.Size,
		&rec.MTimeNS,
		&rec.Hash,
		&rec.HashAlgo,
		&rec.LastSeen,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}
