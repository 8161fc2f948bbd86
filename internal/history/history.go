// Package history persists a compact JSON record of past runs.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/socialpipe/runloop/internal/executor"
)

// Keep history small and readable: trim by age and count to avoid
// unbounded files.
const (
	maxRecords = 500
	maxAge     = 90 * 24 * time.Hour
)

// Record is one run as stored in the history file.
type Record struct {
	Timestamp  string    `json:"timestamp"` // Run timestamp, YYYYMMDD_HHMMSS
	RecordedAt time.Time `json:"recorded_at"`
	ExitCode   int       `json:"exit_code"`
	Failed     bool      `json:"failed"`
	Error      string    `json:"error,omitempty"`
	LogPath    string    `json:"log_path,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	DryRun     bool      `json:"dry_run"`
}

// Store appends run records to a single JSON file.
type Store struct {
	mu     sync.Mutex
	path   string
	dryRun bool
	now    func() time.Time // Overridable in tests
}

// NewStore creates a Store writing to the given file path.
func NewStore(path string, dryRun bool) *Store {
	return &Store{
		path:   path,
		dryRun: dryRun,
		now:    time.Now,
	}
}

// Append records one run outcome. The file is read, compacted, and
// rewritten; run cadence is minutes apart so the extra IO is nothing.
func (s *Store) Append(o executor.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}

	rec := Record{
		Timestamp:  o.Timestamp,
		RecordedAt: s.now(),
		ExitCode:   o.ExitCode,
		Failed:     o.Failed,
		LogPath:    o.LogPath,
		DurationMS: o.Duration.Milliseconds(),
		DryRun:     s.dryRun,
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
	}

	records = append(records, rec)
	return s.write(compact(records, s.now()))
}

// Records returns the current history, oldest first.
func (s *Store) Records() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) read() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("read history file: %w", err)
	}
	if len(data) == 0 {
		return []Record{}, nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	return records, nil
}

func (s *Store) write(records []Record) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}
	return nil
}

// compact drops records past the age cutoff, then trims to the newest
// maxRecords entries.
func compact(records []Record, now time.Time) []Record {
	if len(records) == 0 {
		return records
	}

	cutoff := now.Add(-maxAge)
	filtered := make([]Record, 0, len(records))
	for _, r := range records {
		if r.RecordedAt.After(cutoff) {
			filtered = append(filtered, r)
		}
	}

	if len(filtered) > maxRecords {
		filtered = filtered[len(filtered)-maxRecords:]
	}
	return filtered
}
