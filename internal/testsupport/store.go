package testsupport

import (
	"path/filepath"
	"testing"

	"driftwatch/internal/store"
)

// MustOpenStore opens a writable store in a per-test temp directory and
// registers cleanup.
func MustOpenStore(t testing.TB) *store.Store {
	t.Helper()
	return MustOpenStoreAt(t, filepath.Join(t.TempDir(), "integrity.db"))
}

// MustOpenStoreAt opens a writable store at path and registers cleanup.
func MustOpenStoreAt(t testing.TB, path string) *store.Store {
	t.Helper()

	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}
