// Package walker traverses a directory tree without following symlinks and
// isolates per-directory read failures so a single unreadable entry cannot
// abort a scan.
package walker

import (
	"log/slog"
	"os"
	"path/filepath"
)

// Observer receives traversal errors that the walk recovers from.
type Observer interface {
	WalkError(path string, err error)
}

// LogObserver adapts a slog.Logger into an Observer.
func LogObserver(logger *slog.Logger) Observer {
	return logObserver{logger: logger}
}

type logObserver struct {
	logger *slog.Logger
}

func (o logObserver) WalkError(path string, err error) {
	if o.logger == nil {
		return
	}
	o.logger.Warn("skipping unreadable entry", slog.String("path", path), slog.String("error", err.Error()))
}

// Walk visits every regular file below root, calling visit with the absolute
// path. Symlinks are never followed: a symlinked directory is not descended
// into and a symlinked file is not visited, which keeps cycles and
// double-visits impossible. Directory read errors go to obs and the walk
// continues. A non-nil error from visit stops the walk and is returned, so
// callers can abort on context cancellation.
//
// Visit order is unspecified and a fresh call starts a fresh traversal.
func Walk(root string, obs Observer, visit func(path string) error) error {
	stack := []string{root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			if obs != nil {
				obs.WalkError(dir, err)
			}
			continue
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			switch {
			case entry.IsDir():
				stack = append(stack, path)
			case entry.Type().IsRegular():
				if err := visit(path); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
