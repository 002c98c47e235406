// Package indexer implements index mode: it reconciles a directory walk
// against the integrity store, hashing only files whose (size, mtime)
// fingerprint changed.
//
// The fingerprint shortcut is the deliberate cost/coverage trade of this
// mode: a content substitution that preserves both size and mtime slips past
// an index run. Verify mode re-hashes everything and exists to catch exactly
// that case.
package indexer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"driftwatch/internal/hashing"
	"driftwatch/internal/report"
	"driftwatch/internal/scan"
	"driftwatch/internal/store"
	"driftwatch/internal/walker"
)

// Options controls a run.
type Options struct {
	// Exclude drops files by extension before any stat or hash work.
	Exclude scan.ExtSet
	// CaptureDetails fills the report's added/updated/errors lists.
	CaptureDetails bool
	// ChunkSize bounds the hashing read buffer; <= 0 uses the default.
	ChunkSize int
	// SkipPaths are absolute paths excluded outright, used to keep the
	// store's own files and the report destination out of the scan.
	SkipPaths []string
}

// Indexer runs index mode against one store. It holds no record state of its
// own; everything persistent lives in the store.
type Indexer struct {
	store  *store.Store
	logger *slog.Logger
	opts   Options
	skip   map[string]struct{}
}

// New builds an Indexer. The logger must not be nil.
func New(st *store.Store, logger *slog.Logger, opts Options) *Indexer {
	skip := make(map[string]struct{}, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		if abs, err := filepath.Abs(p); err == nil {
			skip[abs] = struct{}{}
		}
	}
	return &Indexer{store: st, logger: logger, opts: opts, skip: skip}
}

// Run walks root and brings the store up to date. Per-file stat and hash
// failures are recovered and counted; root and store failures abort the run.
// Cancellation stops between files and already committed batches survive.
func (ix *Indexer) Run(ctx context.Context, root string) (*report.IndexReport, error) {
	root, err := scan.ResolveRoot(root)
	if err != nil {
		return nil, err
	}

	rep := report.NewIndex(root, ix.store.Path(), ix.opts.Exclude.Sorted())
	runStarted := rep.RunStarted.Unix()

	batch, err := ix.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer batch.Close()

	walkErr := walker.Walk(root, walker.LogObserver(ix.logger), func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := ix.skip[path]; ok {
			rep.Stats.Excluded++
			return nil
		}
		if ix.opts.Exclude.Excluded(path) {
			rep.Stats.Excluded++
			return nil
		}
		rep.Stats.Scanned++

		info, err := os.Stat(path)
		if err != nil {
			ix.fileError(rep, path, err)
			return nil
		}
		size := info.Size()
		mtimeNS := info.ModTime().UnixNano()

		existing, err := ix.store.Get(ctx, path)
		if err != nil {
			return err
		}
		if existing != nil && existing.Size == size && existing.MTimeNS == mtimeNS {
			if err := batch.TouchLastSeen(ctx, path, runStarted); err != nil {
				return err
			}
			rep.Stats.Unchanged++
			return nil
		}

		digest, err := hashing.SumFile(path, ix.opts.ChunkSize)
		if err != nil {
			ix.fileError(rep, path, err)
			return nil
		}

		rec := store.FileRecord{
			Path:     path,
			Filename: filepath.Base(path),
			Size:     size,
			MTimeNS:  mtimeNS,
			Hash:     digest,
			HashAlgo: hashing.Algo,
			LastSeen: runStarted,
		}
		if err := batch.Upsert(ctx, rec); err != nil {
			return err
		}

		if existing != nil {
			rep.Stats.HashedUpdated++
			if ix.opts.CaptureDetails {
				rep.Updated = append(rep.Updated, report.UpdatedFile{
					Path:         path,
					Size:         size,
					MTimeNS:      mtimeNS,
					Hash:         digest,
					PreviousHash: existing.Hash,
				})
			}
		} else {
			rep.Stats.HashedNew++
			if ix.opts.CaptureDetails {
				rep.Added = append(rep.Added, report.AddedFile{
					Path:    path,
					Size:    size,
					MTimeNS: mtimeNS,
					Hash:    digest,
				})
			}
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	if err := batch.Commit(); err != nil {
		return nil, err
	}

	rep.Finish()
	ix.logger.Info("index run finished",
		slog.String("root", root),
		slog.Int("scanned", rep.Stats.Scanned),
		slog.Int("new", rep.Stats.HashedNew),
		slog.Int("updated", rep.Stats.HashedUpdated),
		slog.Int("unchanged", rep.Stats.Unchanged),
		slog.Int("errors", rep.Stats.Errors),
	)
	return rep, nil
}

func (ix *Indexer) fileError(rep *report.IndexReport, path string, err error) {
	rep.Stats.Errors++
	ix.logger.Warn("skipping file", slog.String("path", path), slog.String("error", err.Error()))
	if ix.opts.CaptureDetails {
		rep.Errors = append(rep.Errors, report.FileError{Path: path, Error: err.Error()})
	}
}
