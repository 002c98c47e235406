// Package report defines the fixed-shape run summaries produced by index and
// verify runs. Reports are ephemeral: the engine fills them in and an outer
// layer decides whether to render, serialize, or discard them.
package report

import (
	"time"

	"github.com/google/uuid"

	"driftwatch/internal/hashing"
)

// Mode names for the report header.
const (
	ModeIndex  = "index"
	ModeVerify = "verify"
)

// Header carries the fields common to both run modes.
type Header struct {
	RunID           string    `json:"run_id"`
	RunStarted      time.Time `json:"run_started"`
	RunFinished     time.Time `json:"run_finished"`
	DurationSeconds int64     `json:"duration_seconds"`
	Root            string    `json:"root"`
	DB              string    `json:"db"`
	HashAlgo        string    `json:"hash_algo"`
	Mode            string    `json:"mode"`
	ExcludeExts     []string  `json:"exclude_exts"`
}

func newHeader(mode, root, db string, excludeExts []string) Header {
	if excludeExts == nil {
		excludeExts = []string{}
	}
	return Header{
		RunID:       uuid.NewString(),
		RunStarted:  time.Now().UTC(),
		Root:        root,
		DB:          db,
		HashAlgo:    hashing.Algo,
		Mode:        mode,
		ExcludeExts: excludeExts,
	}
}

func (h *Header) finish() {
	h.RunFinished = time.Now().UTC()
	h.DurationSeconds = int64(h.RunFinished.Sub(h.RunStarted) / time.Second)
}

// IndexStats counts per-file outcomes of an index run.
type IndexStats struct {
	Scanned       int `json:"scanned"`
	Excluded      int `json:"excluded"`
	HashedNew     int `json:"hashed_new"`
	HashedUpdated int `json:"hashed_updated"`
	Unchanged     int `json:"unchanged"`
	Errors        int `json:"errors"`
}

// VerifyStats counts per-file outcomes of a verify run.
type VerifyStats struct {
	Scanned    int   `json:"scanned"`
	Excluded   int   `json:"excluded"`
	Verified   int   `json:"verified"`
	Mismatched int   `json:"mismatched"`
	Missing    int   `json:"missing"`
	Untracked  int   `json:"untracked"`
	Errors     int   `json:"errors"`
	DBEntries  int64 `json:"db_entries"`
}

// AddedFile details a file first observed this run.
type AddedFile struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	MTimeNS int64  `json:"mtime_ns"`
	Hash    string `json:"hash"`
}

// UpdatedFile details a re-hashed file whose fingerprint changed.
type UpdatedFile struct {
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	MTimeNS      int64  `json:"mtime_ns"`
	Hash         string `json:"hash"`
	PreviousHash string `json:"previous_hash"`
}

// FileError details a per-file failure the run recovered from.
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// MismatchedFile details content drift at a stable path.
type MismatchedFile struct {
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	MTimeNS      int64  `json:"mtime_ns"`
	ExpectedHash string `json:"expected_hash"`
	ActualHash   string `json:"actual_hash"`
}

// MissingFile details a stored record with no filesystem entry left.
type MissingFile struct {
	Path string `json:"path"`
}

// UntrackedFile details on-disk content with no index entry.
type UntrackedFile struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	MTimeNS int64  `json:"mtime_ns"`
}

// IndexReport is the result of one index run.
type IndexReport struct {
	Header
	Stats   IndexStats    `json:"stats"`
	Added   []AddedFile   `json:"added,omitempty"`
	Updated []UpdatedFile `json:"updated,omitempty"`
	Errors  []FileError   `json:"errors,omitempty"`
}

// NewIndex starts an index report with a fresh run ID and start time.
func NewIndex(root, db string, excludeExts []string) *IndexReport {
	return &IndexReport{Header: newHeader(ModeIndex, root, db, excludeExts)}
}

// Finish stamps the end time and duration.
func (r *IndexReport) Finish() {
	r.finish()
}

// VerifyReport is the result of one verify run.
type VerifyReport struct {
	Header
	Stats      VerifyStats      `json:"stats"`
	Mismatched []MismatchedFile `json:"mismatched,omitempty"`
	Missing    []MissingFile    `json:"missing,omitempty"`
	Untracked  []UntrackedFile  `json:"untracked,omitempty"`
	Errors     []FileError      `json:"errors,omitempty"`
}

// NewVerify starts a verify report with a fresh run ID and start time.
func NewVerify(root, db string, excludeExts []string) *VerifyReport {
	return &VerifyReport{Header: newHeader(ModeVerify, root, db, excludeExts)}
}

// Finish stamps the end time and duration.
func (r *VerifyReport) Finish() {
	r.finish()
}

// Failed reports whether a caller should treat the verify run as failed.
func (r *VerifyReport) Failed() bool {
	return r.Stats.Mismatched > 0 || r.Stats.Missing > 0 || r.Stats.Errors > 0
}
