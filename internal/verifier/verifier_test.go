package verifier_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"driftwatch/internal/indexer"
	"driftwatch/internal/logging"
	"driftwatch/internal/report"
	"driftwatch/internal/scan"
	"driftwatch/internal/store"
	"driftwatch/internal/testsupport"
	"driftwatch/internal/verifier"
)

func sha256Hex(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func indexTree(t *testing.T, st *store.Store, root string, opts indexer.Options) {
	t.Helper()
	if _, err := indexer.New(st, logging.NewNop(), opts).Run(context.Background(), root); err != nil {
		t.Fatalf("index run: %v", err)
	}
}

func runVerify(t *testing.T, st *store.Store, root string, opts verifier.Options) *report.VerifyReport {
	t.Helper()
	rep, err := verifier.New(st, logging.NewNop(), opts).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("verify run: %v", err)
	}
	return rep
}

func TestVerifyRoundTrip(t *testing.T) {
	st := testsupport.MustOpenStore(t)
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "a.txt"), "alpha")
	testsupport.WriteFile(t, filepath.Join(root, "sub", "b.txt"), "beta")

	indexTree(t, st, root, indexer.Options{})
	rep := runVerify(t, st, root, verifier.Options{CaptureDetails: true})

	if rep.Stats.Verified != 2 || rep.Stats.Mismatched != 0 || rep.Stats.Missing != 0 || rep.Stats.Untracked != 0 {
		t.Fatalf("stats = %+v", rep.Stats)
	}
	if rep.Stats.DBEntries != 2 {
		t.Fatalf("db_entries = %d, want 2", rep.Stats.DBEntries)
	}
	if rep.Failed() {
		t.Fatal("clean verify must not fail")
	}
}

func TestVerifyToleratesMove(t *testing.T) {
	st := testsupport.MustOpenStore(t)
	root := t.TempDir()
	oldPath := filepath.Join(root, "old", "photo.jpg")
	testsupport.WriteFile(t, oldPath, "pixels")

	indexTree(t, st, root, indexer.Options{})

	newPath := filepath.Join(root, "new", "photo.jpg")
	testsupport.WriteFile(t, newPath, "pixels")
	if err := os.RemoveAll(filepath.Join(root, "old")); err != nil {
		t.Fatalf("remove old dir: %v", err)
	}

	rep := runVerify(t, st, root, verifier.Options{CaptureDetails: true})
	if rep.Stats.Verified != 1 {
		t.Fatalf("verified = %d, want 1", rep.Stats.Verified)
	}
	if rep.Stats.Missing != 0 || rep.Stats.Untracked != 0 {
		t.Fatalf("move reported as drift: %+v", rep.Stats)
	}
	if rep.Failed() {
		t.Fatal("move must not fail verification")
	}
}

func TestVerifyPrefersExactFilenameAmongHashMatches(t *testing.T) {
	st := testsupport.MustOpenStore(t)
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "one", "a.jpg"), "pixels")
	testsupport.WriteFile(t, filepath.Join(root, "two", "b.jpg"), "pixels")

	indexTree(t, st, root, indexer.Options{})

	// Drop one copy; its record must be claimed via the surviving file's
	// hash match so neither shows up missing.
	if err := os.RemoveAll(filepath.Join(root, "one")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	rep := runVerify(t, st, root, verifier.Options{CaptureDetails: true})
	if rep.Stats.Verified != 1 {
		t.Fatalf("verified = %d, want 1", rep.Stats.Verified)
	}
	if rep.Stats.Missing != 0 {
		t.Fatalf("missing = %d, want 0 (hash already matched)", rep.Stats.Missing)
	}
}

func TestVerifyDetectsModification(t *testing.T) {
	st := testsupport.MustOpenStore(t)
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	testsupport.WriteFile(t, path, "alpha")

	indexTree(t, st, root, indexer.Options{})
	testsupport.Rewrite(t, path, "beta")

	rep := runVerify(t, st, root, verifier.Options{CaptureDetails: true})
	if rep.Stats.Mismatched != 1 || rep.Stats.Verified != 0 {
		t.Fatalf("stats = %+v", rep.Stats)
	}
	if len(rep.Mismatched) != 1 {
		t.Fatalf("mismatched details = %+v", rep.Mismatched)
	}
	detail := rep.Mismatched[0]
	if detail.Path != path {
		t.Fatalf("mismatched path = %s, want %s", detail.Path, path)
	}
	if detail.ExpectedHash != sha256Hex("alpha") || detail.ActualHash != sha256Hex("beta") {
		t.Fatalf("hashes = %s / %s", detail.ExpectedHash, detail.ActualHash)
	}
	if rep.Stats.Missing != 0 {
		t.Fatal("modified file double-counted as missing")
	}
	if !rep.Failed() {
		t.Fatal("mismatch must fail verification")
	}
}

func TestVerifyDetectsMissing(t *testing.T) {
	st := testsupport.MustOpenStore(t)
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	testsupport.WriteFile(t, path, "alpha")
	testsupport.WriteFile(t, filepath.Join(root, "b.txt"), "beta")

	indexTree(t, st, root, indexer.Options{})
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	rep := runVerify(t, st, root, verifier.Options{CaptureDetails: true})
	if rep.Stats.Missing != 1 || rep.Stats.Verified != 1 {
		t.Fatalf("stats = %+v", rep.Stats)
	}
	if len(rep.Missing) != 1 || rep.Missing[0].Path != path {
		t.Fatalf("missing details = %+v", rep.Missing)
	}
	if !rep.Failed() {
		t.Fatal("missing file must fail verification")
	}
}

func TestVerifyDanglingSymlinkCountsMissing(t *testing.T) {
	st := testsupport.MustOpenStore(t)
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	testsupport.WriteFile(t, path, "alpha")

	indexTree(t, st, root, indexer.Options{})
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "gone"), path); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	rep := runVerify(t, st, root, verifier.Options{CaptureDetails: true})
	if rep.Stats.Missing != 1 {
		t.Fatalf("stats = %+v, want the dangling symlink's record missing", rep.Stats)
	}
	if len(rep.Missing) != 1 || rep.Missing[0].Path != path {
		t.Fatalf("missing details = %+v", rep.Missing)
	}
}

func TestVerifyDetectsUntracked(t *testing.T) {
	st := testsupport.MustOpenStore(t)
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "a.txt"), "alpha")

	indexTree(t, st, root, indexer.Options{})
	testsupport.WriteFile(t, filepath.Join(root, "new.txt"), "fresh")

	rep := runVerify(t, st, root, verifier.Options{CaptureDetails: true})
	if rep.Stats.Untracked != 1 || rep.Stats.Verified != 1 {
		t.Fatalf("stats = %+v", rep.Stats)
	}
	if len(rep.Untracked) != 1 || rep.Untracked[0].Path != filepath.Join(root, "new.txt") {
		t.Fatalf("untracked details = %+v", rep.Untracked)
	}
	if rep.Failed() {
		t.Fatal("untracked alone must not fail verification")
	}
}

func TestVerifyExclusionSymmetry(t *testing.T) {
	st := testsupport.MustOpenStore(t)
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "keep.txt"), "keep")
	testsupport.WriteFile(t, filepath.Join(root, "drop.tmp"), "drop")

	exclude := scan.ParseExtensions([]string{".tmp"})
	indexTree(t, st, root, indexer.Options{Exclude: exclude})

	rep := runVerify(t, st, root, verifier.Options{Exclude: exclude, CaptureDetails: true})
	if rep.Stats.Excluded != 1 {
		t.Fatalf("excluded = %d, want 1", rep.Stats.Excluded)
	}
	if rep.Stats.Untracked != 0 {
		t.Fatalf("excluded file surfaced as untracked: %+v", rep.Stats)
	}
	for _, entry := range rep.Untracked {
		if filepath.Ext(entry.Path) == ".tmp" {
			t.Fatalf("excluded file leaked into details: %s", entry.Path)
		}
	}
}

func TestVerifyExcludedDeletedRecordNotMissing(t *testing.T) {
	st := testsupport.MustOpenStore(t)
	root := t.TempDir()
	path := filepath.Join(root, "old.tmp")
	testsupport.WriteFile(t, path, "scratch")

	// Indexed without exclusions, later verified with .tmp excluded: the
	// stale record must not resurface as missing.
	indexTree(t, st, root, indexer.Options{})
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	rep := runVerify(t, st, root, verifier.Options{
		Exclude:        scan.ParseExtensions([]string{".tmp"}),
		CaptureDetails: true,
	})
	if rep.Stats.Missing != 0 {
		t.Fatalf("missing = %d, want 0", rep.Stats.Missing)
	}
}

func TestVerifyIgnoresRecordsOutsideRoot(t *testing.T) {
	st := testsupport.MustOpenStore(t)
	rootA := t.TempDir()
	rootB := t.TempDir()
	pathA := filepath.Join(rootA, "a.txt")
	testsupport.WriteFile(t, pathA, "alpha")
	testsupport.WriteFile(t, filepath.Join(rootB, "b.txt"), "beta")

	indexTree(t, st, rootA, indexer.Options{})
	indexTree(t, st, rootB, indexer.Options{})
	if err := os.Remove(pathA); err != nil {
		t.Fatalf("remove: %v", err)
	}

	rep := runVerify(t, st, rootB, verifier.Options{CaptureDetails: true})
	if rep.Stats.Missing != 0 {
		t.Fatalf("record outside scanned root counted missing: %+v", rep.Stats)
	}
}

func TestVerifyRejectsLegacyHashAlgo(t *testing.T) {
	st := testsupport.MustOpenStore(t)
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	testsupport.WriteFile(t, path, "alpha")

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	ctx := context.Background()
	batch, err := st.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	err = batch.Upsert(ctx, store.FileRecord{
		Path:     path,
		Filename: "a.txt",
		Size:     info.Size(),
		MTimeNS:  info.ModTime().UnixNano(),
		Hash:     "0123456789abcdef",
		HashAlgo: "md5",
		LastSeen: 1,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := batch.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	rep := runVerify(t, st, root, verifier.Options{CaptureDetails: true})
	if rep.Stats.Errors != 1 {
		t.Fatalf("errors = %d, want 1: %+v", rep.Stats.Errors, rep.Errors)
	}
	if rep.Stats.Mismatched != 0 || rep.Stats.Missing != 0 {
		t.Fatalf("legacy record misclassified: %+v", rep.Stats)
	}
	if !rep.Failed() {
		t.Fatal("legacy algorithm error must fail verification")
	}
}

func TestVerifyMissingStoreFails(t *testing.T) {
	_, err := store.OpenReadOnly(filepath.Join(t.TempDir(), "absent.db"))
	if err == nil {
		t.Fatal("expected open of missing store to fail")
	}
}
