package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Batch groups store writes into bounded transactions. Every commitEvery
// writes the open transaction is committed and a fresh one begun, so a
// mid-run crash loses at most the uncommitted tail. Batches are not safe for
// concurrent use; the store assumes a single writer.
type Batch struct {
	store   *Store
	tx      *sql.Tx
	pending int
}

// Begin starts a write batch. Fails on read-only stores.
func (s *Store) Begin(ctx context.Context) (*Batch, error) {
	if s.readOnly {
		return nil, errors.New("store is read-only")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	return &Batch{store: s, tx: tx}, nil
}

// Upsert inserts or fully overwrites the record for rec.Path. Records are
// written whole; there is no partial update path.
func (b *Batch) Upsert(ctx context.Context, rec FileRecord) error {
	_, err := b.tx.ExecContext(
		ctx,
		`INSERT INTO files (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(path) DO UPDATE SET
             filename  = excluded.filename,
             size      = excluded.size,
             mtime_ns  = excluded.mtime_ns,
             hash      = excluded.hash,
             hash_algo = excluded.hash_algo,
             last_seen = excluded.last_seen`,
		rec.Path,
		rec.Filename,
		rec.Size,
		rec.MTimeNS,
		rec.Hash,
		rec.HashAlgo,
		rec.LastSeen,
	)
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return b.advance(ctx)
}

// TouchLastSeen refreshes only a record's last_seen column, the cheap path
// taken when the metadata fingerprint says nothing changed.
func (b *Batch) TouchLastSeen(ctx context.Context, path string, lastSeen int64) error {
	_, err := b.tx.ExecContext(ctx, `UPDATE files SET last_seen = ? WHERE path = ?`, lastSeen, path)
	if err != nil {
		return fmt.Errorf("touch last_seen: %w", err)
	}
	return b.advance(ctx)
}

func (b *Batch) advance(ctx context.Context) error {
	b.pending++
	if b.pending < b.store.commitEvery {
		return nil
	}
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	tx, err := b.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin next batch: %w", err)
	}
	b.tx = tx
	b.pending = 0
	return nil
}

// Commit flushes the open transaction. The batch must not be used after.
func (b *Batch) Commit() error {
	if b.tx == nil {
		return nil
	}
	err := b.tx.Commit()
	b.tx = nil
	if err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Close rolls back anything uncommitted. Safe to call after Commit.
func (b *Batch) Close() error {
	if b.tx == nil {
		return nil
	}
	err := b.tx.Rollback()
	b.tx = nil
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback batch: %w", err)
	}
	return nil
}
