package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStore() error {
	if c.Store.Path == "" {
		return errors.New("store.path must be set")
	}
	if c.Store.CommitEvery < 1 {
		return fmt.Errorf("store.commit_every must be at least 1, got %d", c.Store.CommitEvery)
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.ChunkSizeMiB < 1 {
		return fmt.Errorf("scan.chunk_size_mib must be at least 1, got %d", c.Scan.ChunkSizeMiB)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
