package report_test

import (
	"encoding/json"
	"testing"

	"driftwatch/internal/report"
)

func TestFailed(t *testing.T) {
	cases := []struct {
		name  string
		stats report.VerifyStats
		want  bool
	}{
		{"clean", report.VerifyStats{Verified: 5}, false},
		{"untracked only", report.VerifyStats{Untracked: 2}, false},
		{"mismatched", report.VerifyStats{Mismatched: 1}, true},
		{"missing", report.VerifyStats{Missing: 1}, true},
		{"errors", report.VerifyStats{Errors: 1}, true},
	}
	for _, tc := range cases {
		rep := report.NewVerify("/data", "/db/integrity.db", nil)
		rep.Stats = tc.stats
		if got := rep.Failed(); got != tc.want {
			t.Errorf("%s: Failed() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIndexReportJSONShape(t *testing.T) {
	rep := report.NewIndex("/data", "/db/integrity.db", []string{".tmp"})
	rep.Stats.Scanned = 2
	rep.Added = append(rep.Added, report.AddedFile{Path: "/data/a.txt", Size: 5, MTimeNS: 7, Hash: "abcd"})
	rep.Finish()

	data, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"run_id", "run_started", "run_finished", "duration_seconds", "root", "db", "hash_algo", "mode", "exclude_exts", "stats", "added"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if decoded["mode"] != "index" {
		t.Fatalf("mode = %v", decoded["mode"])
	}
	if decoded["hash_algo"] != "sha256" {
		t.Fatalf("hash_algo = %v", decoded["hash_algo"])
	}
	if _, ok := decoded["updated"]; ok {
		t.Fatal("empty detail list must be omitted")
	}
}

func TestVerifyReportOmitsDetailsWhenEmpty(t *testing.T) {
	rep := report.NewVerify("/data", "/db/integrity.db", nil)
	rep.Finish()

	data, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"mismatched", "missing", "untracked", "errors"} {
		if _, ok := decoded[key]; ok {
			t.Errorf("empty %q list must be omitted", key)
		}
	}
	if exts, ok := decoded["exclude_exts"].([]any); !ok || len(exts) != 0 {
		t.Fatalf("exclude_exts = %v, want empty list", decoded["exclude_exts"])
	}
	if decoded["run_id"] == "" {
		t.Fatal("run_id must be set")
	}
}
