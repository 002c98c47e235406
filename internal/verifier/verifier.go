// Package verifier implements verify mode: every walked file is re-hashed
// and reconciled against the store hash-first, so a file whose bytes moved
// to a new path counts as verified instead of one missing plus one
// untracked entry. Records left unmatched after the walk and absent from
// disk are reported missing.
package verifier

import (
	"context"
	"fmt"
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
	// CaptureDetails fills the report's mismatched/missing/untracked/errors
	// lists.
	CaptureDetails bool
	// ChunkSize bounds the hashing read buffer; <= 0 uses the default.
	ChunkSize int
	// SkipPaths are absolute paths excluded outright, used to keep the
	// store's own files and the report destination out of the scan.
	SkipPaths []string
}

// Verifier runs verify mode against a read-only store assumed quiescent for
// the duration of the run.
type Verifier struct {
	store  *store.Store
	logger *slog.Logger
	opts   Options
	skip   map[string]struct{}
}

// New builds a Verifier. The logger must not be nil.
func New(st *store.Store, logger *slog.Logger, opts Options) *Verifier {
	skip := make(map[string]struct{}, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		if abs, err := filepath.Abs(p); err == nil {
			skip[abs] = struct{}{}
		}
	}
	return &Verifier{store: st, logger: logger, opts: opts, skip: skip}
}

// Run walks root, hashes every non-excluded file, and classifies each as
// verified, mismatched, or untracked; stored records under root that were
// never matched by hash or path and no longer exist on disk are classified
// missing. Per-file failures are recovered and counted; root and store
// failures abort the run.
func (v *Verifier) Run(ctx context.Context, root string) (*report.VerifyReport, error) {
	root, err := scan.ResolveRoot(root)
	if err != nil {
		return nil, err
	}

	rep := report.NewVerify(root, v.store.Path(), v.opts.Exclude.Sorted())

	dbEntries, err := v.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	rep.Stats.DBEntries = dbEntries

	// A matched hash or path excludes the record from the missing sweep.
	matchedHashes := make(map[string]struct{})
	matchedPaths := make(map[string]struct{})

	walkErr := walker.Walk(root, walker.LogObserver(v.logger), func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := v.skip[path]; ok {
			rep.Stats.Excluded++
			return nil
		}
		if v.opts.Exclude.Excluded(path) {
			rep.Stats.Excluded++
			return nil
		}
		rep.Stats.Scanned++

		info, err := os.Stat(path)
		if err != nil {
			v.fileError(rep, path, err)
			return nil
		}

		// No fingerprint shortcut here: verification exists to catch
		// corruption a metadata-only check would miss.
		digest, err := hashing.SumFile(path, v.opts.ChunkSize)
		if err != nil {
			v.fileError(rep, path, err)
			return nil
		}

		candidates, err := v.store.GetByHash(ctx, digest)
		if err != nil {
			return err
		}
		if len(candidates) > 0 {
			// The filename preference is a best-effort tie-break among
			// interchangeable same-content records, not a guarantee.
			chosen := candidates[0]
			filename := filepath.Base(path)
			for _, c := range candidates {
				if c.Filename == filename {
					chosen = c
					break
				}
			}
			matchedHashes[digest] = struct{}{}
			matchedPaths[chosen.Path] = struct{}{}

			if chosen.HashAlgo != hashing.Algo {
				v.fileError(rep, path, fmt.Errorf("unsupported hash algorithm: %s", chosen.HashAlgo))
				return nil
			}
			rep.Stats.Verified++
			if chosen.Path != path {
				v.logger.Debug("file moved", slog.String("from", chosen.Path), slog.String("to", path))
			}
			return nil
		}

		rec, err := v.store.Get(ctx, path)
		if err != nil {
			return err
		}
		if rec != nil {
			matchedPaths[path] = struct{}{}
			if rec.HashAlgo != hashing.Algo {
				v.fileError(rep, path, fmt.Errorf("unsupported hash algorithm: %s", rec.HashAlgo))
				return nil
			}
			if rec.Hash != digest {
				rep.Stats.Mismatched++
				if v.opts.CaptureDetails {
					rep.Mismatched = append(rep.Mismatched, report.MismatchedFile{
						Path:         path,
						Size:         info.Size(),
						MTimeNS:      info.ModTime().UnixNano(),
						ExpectedHash: rec.Hash,
						ActualHash:   digest,
					})
				}
				return nil
			}
			// Equal hash at an exact path is already covered by the
			// hash-first lookup, so this is unreachable in practice.
			rep.Stats.Verified++
			return nil
		}

		rep.Stats.Untracked++
		if v.opts.CaptureDetails {
			rep.Untracked = append(rep.Untracked, report.UntrackedFile{
				Path:    path,
				Size:    info.Size(),
				MTimeNS: info.ModTime().UnixNano(),
			})
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	records, err := v.store.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if !scan.IsUnderRoot(rec.Path, root) {
			continue
		}
		if v.opts.Exclude.Excluded(rec.Path) {
			continue
		}
		if _, ok := v.skip[rec.Path]; ok {
			continue
		}
		if _, ok := matchedHashes[rec.Hash]; ok {
			continue
		}
		if _, ok := matchedPaths[rec.Path]; ok {
			continue
		}
		// Stat, not Lstat: a record whose path now resolves through a live
		// symlink still exists, while a dangling symlink counts missing.
		if _, err := os.Stat(rec.Path); err == nil {
			continue
		}
		rep.Stats.Missing++
		if v.opts.CaptureDetails {
			rep.Missing = append(rep.Missing, report.MissingFile{Path: rec.Path})
		}
	}

	rep.Finish()
	v.logger.Info("verify run finished",
		slog.String("root", root),
		slog.Int("scanned", rep.Stats.Scanned),
		slog.Int("verified", rep.Stats.Verified),
		slog.Int("mismatched", rep.Stats.Mismatched),
		slog.Int("missing", rep.Stats.Missing),
		slog.Int("untracked", rep.Stats.Untracked),
		slog.Int("errors", rep.Stats.Errors),
	)
	return rep, nil
}

func (v *Verifier) fileError(rep *report.VerifyReport, path string, err error) {
	rep.Stats.Errors++
	v.logger.Warn("skipping file", slog.String("path", path), slog.String("error", err.Error()))
	if v.opts.CaptureDetails {
		rep.Errors = append(rep.Errors, report.FileError{Path: path, Error: err.Error()})
	}
}
