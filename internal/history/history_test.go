package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/socialpipe/runloop/internal/executor"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "history.json"), true)
}

// =============================================================================
// Tests: Append / Records
// =============================================================================

func TestStore_AppendAndRead(t *testing.T) {
	s := newTestStore(t)

	err := s.Append(executor.Outcome{
		Timestamp: "20250101_120000",
		ExitCode:  0,
		LogPath:   "/logs/run_20250101_120000_main.log",
		Duration:  42 * time.Second,
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	records, err := s.Records()
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}

	r := records[0]
	if r.Timestamp != "20250101_120000" || r.ExitCode != 0 || r.Failed {
		t.Errorf("record = %+v", r)
	}
	if r.DurationMS != 42000 {
		t.Errorf("DurationMS = %d, want 42000", r.DurationMS)
	}
	if !r.DryRun {
		t.Error("DryRun not recorded")
	}
}

func TestStore_AppendFailure(t *testing.T) {
	s := newTestStore(t)

	err := s.Append(executor.Outcome{
		Timestamp: "20250101_120100",
		ExitCode:  -1,
		Failed:    true,
		Err:       errors.New("exec: no such file"),
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	records, _ := s.Records()
	if len(records) != 1 || !records[0].Failed {
		t.Fatalf("records = %+v", records)
	}
	if records[0].Error != "exec: no such file" {
		t.Errorf("Error = %q", records[0].Error)
	}
}

func TestStore_MissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)
	records, err := s.Records()
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len = %d, want 0", len(records))
	}
}

func TestStore_CreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "nested", "deep", "history.json"), false)

	if err := s.Append(executor.Outcome{Timestamp: "20250101_120000"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "nested", "deep", "history.json")); err != nil {
		t.Errorf("history file not created: %v", err)
	}
}

// =============================================================================
// Tests: compaction
// =============================================================================

func TestCompact_TrimsByCount(t *testing.T) {
	now := time.Now()
	records := make([]Record, maxRecords+25)
	for i := range records {
		records[i] = Record{ExitCode: i, RecordedAt: now}
	}

	out := compact(records, now)
	if len(out) != maxRecords {
		t.Fatalf("len = %d, want %d", len(out), maxRecords)
	}
	// The newest records survive.
	if out[len(out)-1].ExitCode != maxRecords+24 {
		t.Errorf("last record = %+v, want newest", out[len(out)-1])
	}
}

func TestCompact_TrimsByAge(t *testing.T) {
	now := time.Now()
	records := []Record{
		{Timestamp: "old", RecordedAt: now.Add(-maxAge - time.Hour)},
		{Timestamp: "fresh", RecordedAt: now.Add(-time.Hour)},
	}

	out := compact(records, now)
	if len(out) != 1 || out[0].Timestamp != "fresh" {
		t.Errorf("compact = %+v, want only fresh record", out)
	}
}

func TestStore_CompactsOnAppend(t *testing.T) {
	s := newTestStore(t)
	base := time.Now()

	// Seed clock far in the past, then append a fresh record.
	s.now = func() time.Time { return base.Add(-maxAge - time.Hour) }
	if err := s.Append(executor.Outcome{Timestamp: "ancient"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	s.now = func() time.Time { return base }
	if err := s.Append(executor.Outcome{Timestamp: "fresh"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	records, _ := s.Records()
	if len(records) != 1 || records[0].Timestamp != "fresh" {
		t.Errorf("records = %+v, want only fresh", records)
	}
}
