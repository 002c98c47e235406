package main

import (
	"driftwatch/internal/config"
	"driftwatch/internal/store"
)

func resolveDBPath(cfg *config.Config, dbFlag string) (string, error) {
	if dbFlag != "" {
		return config.ExpandPath(dbFlag)
	}
	return cfg.Store.Path, nil
}

func resolveReportPath(reportFlag string) (string, error) {
	if reportFlag == "" {
		return "", nil
	}
	return config.ExpandPath(reportFlag)
}

// storeSkipPaths keeps the database, its SQLite siblings, the write lock,
// and the report destination out of the scan when they live under the root.
func storeSkipPaths(dbPath, reportPath string) []string {
	skip := []string{
		dbPath,
		dbPath + "-wal",
		dbPath + "-shm",
		store.LockPath(dbPath),
	}
	if reportPath != "" {
		skip = append(skip, reportPath)
	}
	return skip
}
