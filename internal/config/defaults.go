package config

const (
	defaultDBPath       = "~/.local/share/driftwatch/integrity.db"
	defaultCommitEvery  = 250
	defaultChunkSizeMiB = 8
	defaultLogDir       = "~/.local/share/driftwatch/logs"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Store: Store{
			Path:        defaultDBPath,
			CommitEvery: defaultCommitEvery,
		},
		Scan: Scan{
			ChunkSizeMiB: defaultChunkSizeMiB,
			ExcludeExts:  []string{},
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
			Dir:    defaultLogDir,
		},
	}
}
