package store

// FileRecord is one persisted row: the last observed size, mtime, and
// content digest for an absolute path. The hash always corresponds to the
// exact bytes observed at the stored (size, mtime); rows are written whole,
// never field by field.
type FileRecord struct {
	// Path is the absolute, canonical file path and the table's unique key.
	Path string
	// Filename is the base name, kept so the verifier can prefer an
	// exact-name candidate among several records sharing one hash.
	Filename string
	// Size in bytes.
	Size int64
	// MTimeNS is the modification time in nanoseconds since the epoch,
	// precise enough to distinguish sub-second changes.
	MTimeNS int64
	// Hash is the lowercase hex digest of the full file contents.
	Hash string
	// HashAlgo tags the digest function. Readers reject unknown tags.
	HashAlgo string
	// LastSeen is the epoch-seconds start time of the most recent index run
	// that observed the path; non-decreasing across runs.
	LastSeen int64
}
