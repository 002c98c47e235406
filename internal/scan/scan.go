// Package scan holds the small pieces shared by index and verify runs:
// extension exclusion sets and path containment checks.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ExtSet is a set of lowercase, dot-prefixed file extensions. The zero value
// excludes nothing.
type ExtSet map[string]struct{}

// ParseExtensions normalizes extension tokens into an ExtSet. Each token may
// itself be a comma-separated list, matching how the flag is supplied both
// repeated and joined. Empty tokens are dropped.
func ParseExtensions(tokens []string) ExtSet {
	set := make(ExtSet)
	for _, token := range tokens {
		for _, part := range strings.Split(token, ",") {
			ext := NormalizeExt(part)
			if ext == "" {
				continue
			}
			set[ext] = struct{}{}
		}
	}
	return set
}

// NormalizeExt lowercases an extension token and ensures a leading dot.
// Blank tokens normalize to the empty string.
func NormalizeExt(token string) string {
	ext := strings.ToLower(strings.TrimSpace(token))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Excluded reports whether the path's extension is in the set.
func (s ExtSet) Excluded(path string) bool {
	if len(s) == 0 {
		return false
	}
	_, ok := s[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Sorted returns the set's members in lexical order for stable report output.
func (s ExtSet) Sorted() []string {
	exts := make([]string, 0, len(s))
	for ext := range s {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ResolveRoot makes root absolute and confirms it is an existing directory.
// Both run modes refuse to start otherwise.
func ResolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("root directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root path %s is not a directory", abs)
	}
	return abs, nil
}

// IsUnderRoot reports whether path sits at or below root. Both paths must be
// absolute and cleaned; no symlink resolution is attempted.
func IsUnderRoot(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
