package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readLogFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(data)
}

func TestNewJSONWritesStructuredLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := New(Options{Level: "info", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("indexed", "files", 3)

	line := strings.TrimSpace(readLogFile(t, path))
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line not JSON: %v (%q)", err, line)
	}
	if entry["msg"] != "indexed" {
		t.Fatalf("msg = %v", entry["msg"])
	}
	if entry["files"] != float64(3) {
		t.Fatalf("files = %v", entry["files"])
	}
}

func TestNewConsoleFormatsKeyValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := New(Options{Level: "debug", Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Warn("hash mismatch", "path", "/data/a.bin")

	out := readLogFile(t, path)
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "hash mismatch") {
		t.Fatalf("unexpected console line: %q", out)
	}
	if !strings.Contains(out, "path=/data/a.bin") {
		t.Fatalf("missing attr in console line: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := New(Options{Level: "warn", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Debug("quiet")
	logger.Info("quiet too")
	logger.Error("loud")

	out := readLogFile(t, path)
	if strings.Contains(out, "quiet") {
		t.Fatalf("filtered levels leaked: %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Fatalf("error line missing: %q", out)
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	cases := map[string]string{
		"debug":   "DEBUG",
		"WARN":    "WARN",
		" error ": "ERROR",
		"":        "INFO",
		"bogus":   "INFO",
	}
	for input, want := range cases {
		if got := parseLevel(input).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should not enable any standard level")
	}
}
