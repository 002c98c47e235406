// Package hashing produces streaming content digests with bounded memory.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Algo tags every digest this package produces. Stored records carrying a
// different tag are legacy data and must be rejected by readers, never
// reinterpreted.
const Algo = "sha256"

// DefaultChunkSize bounds the read buffer used while hashing, keeping peak
// memory independent of file size.
const DefaultChunkSize = 8 * 1024 * 1024

// SumFile reads the file at path in chunkSize pieces and returns the
// lowercase hex SHA-256 digest of its full contents. A chunkSize <= 0 uses
// DefaultChunkSize. Open and read failures are returned wrapped so callers
// can classify them as per-file errors.
func SumFile(path string, chunkSize int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer f.Close()

	digest, err := sum(f, chunkSize)
	if err != nil {
		return "", fmt.Errorf("read for hashing: %w", err)
	}
	return digest, nil
}

// sum drains r through a chunkSize buffer. The explicit read loop keeps the
// buffer in charge of read sizes; io.Copy would hand *os.File sources to an
// internal fast path with its own buffer.
func sum(r io.Reader, chunkSize int) (string, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	h := sha256.New()
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
