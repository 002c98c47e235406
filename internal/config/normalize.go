package config

import (
	"fmt"
	"strings"

	"driftwatch/internal/scan"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = defaultDBPath
	}
	if c.Store.Path, err = expandPath(c.Store.Path); err != nil {
		return fmt.Errorf("store.path: %w", err)
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeScan() {
	if c.Scan.ChunkSizeMiB == 0 {
		c.Scan.ChunkSizeMiB = defaultChunkSizeMiB
	}
	if c.Store.CommitEvery == 0 {
		c.Store.CommitEvery = defaultCommitEvery
	}

	normalized := make([]string, 0, len(c.Scan.ExcludeExts))
	seen := make(map[string]struct{}, len(c.Scan.ExcludeExts))
	for _, token := range c.Scan.ExcludeExts {
		ext := scan.NormalizeExt(token)
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		normalized = append(normalized, ext)
	}
	c.Scan.ExcludeExts = normalized
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
