package autostart

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/socialpipe/runloop/internal/logging"
)

// =============================================================================
// Fake systemctl for testing
// =============================================================================

type fakeSystemctl struct {
	calls   []string
	failOn  string // subcommand to fail
	failOut string // output for the failure
}

func (f *fakeSystemctl) runner() CommandRunner {
	return func(ctx context.Context, args ...string) ([]byte, error) {
		f.calls = append(f.calls, strings.Join(args, " "))
		if f.failOn != "" && args[0] == f.failOn {
			return []byte(f.failOut), errors.New("exit status 1")
		}
		return nil, nil
	}
}

func (f *fakeSystemctl) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func newTestRegistrar(t *testing.T, fake *fakeSystemctl) *SystemdRegistrar {
	t.Helper()
	return &SystemdRegistrar{
		unitDir: t.TempDir(),
		run:     fake.runner(),
		logger:  logging.NewLoggerWithWriter(io.Discard, "json", "error"),
	}
}

func testTask() Task {
	return Task{
		Name:        "runloop",
		Description: "recurring worker runner",
		ExecStart:   "/usr/local/bin/runloop -min 15 -max 40",
		WorkingDir:  "/srv/pipeline",
	}
}

// =============================================================================
// Tests: Register
// =============================================================================

func TestRegister_WritesUnitFile(t *testing.T) {
	fake := &fakeSystemctl{}
	r := newTestRegistrar(t, fake)

	if err := r.Register(context.Background(), testTask()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(r.unitDir, "runloop.service"))
	if err != nil {
		t.Fatalf("unit file not written: %v", err)
	}

	unit := string(data)
	for _, want := range []string{
		"ExecStart=/usr/local/bin/runloop -min 15 -max 40",
		"WorkingDirectory=/srv/pipeline",
		"WantedBy=default.target",
		"Description=recurring worker runner",
	} {
		if !strings.Contains(unit, want) {
			t.Errorf("unit file missing %q:\n%s", want, unit)
		}
	}

	// The loop must be re-launched in continuous mode, never one-shot.
	if strings.Contains(unit, "-once") {
		t.Error("unit file launches one-shot mode")
	}

	if fake.count("daemon-reload") == 0 {
		t.Error("daemon-reload never invoked")
	}
	if fake.count("enable runloop.service") != 1 {
		t.Errorf("enable invoked %d times, want 1", fake.count("enable runloop.service"))
	}
}

func TestRegister_Idempotent(t *testing.T) {
	fake := &fakeSystemctl{}
	r := newTestRegistrar(t, fake)

	for i := 0; i < 2; i++ {
		if err := r.Register(context.Background(), testTask()); err != nil {
			t.Fatalf("Register #%d: %v", i+1, err)
		}
	}

	// Exactly one unit file on disk.
	entries, err := os.ReadDir(r.unitDir)
	if err != nil {
		t.Fatalf("read unit dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "runloop.service" {
		t.Errorf("unit dir = %v, want exactly runloop.service", entries)
	}

	// Each Register disables the old registration before enabling.
	if got := fake.count("disable runloop.service"); got != 2 {
		t.Errorf("disable invoked %d times, want 2", got)
	}
	if got := fake.count("enable runloop.service"); got != 2 {
		t.Errorf("enable invoked %d times, want 2", got)
	}
}

func TestRegister_EnableFailure(t *testing.T) {
	fake := &fakeSystemctl{failOn: "enable", failOut: "Failed to enable unit"}
	r := newTestRegistrar(t, fake)

	err := r.Register(context.Background(), testTask())
	if err == nil || !strings.Contains(err.Error(), "enable") {
		t.Errorf("Register = %v, want enable error", err)
	}
}

// =============================================================================
// Tests: Unregister
// =============================================================================

func TestUnregister_MissingIsSilent(t *testing.T) {
	fake := &fakeSystemctl{failOn: "disable", failOut: "Unit runloop.service does not exist."}
	r := newTestRegistrar(t, fake)

	if err := r.Unregister(context.Background(), "runloop"); err != nil {
		t.Errorf("Unregister of missing task = %v, want nil", err)
	}
}

func TestUnregister_RemovesUnitFile(t *testing.T) {
	fake := &fakeSystemctl{}
	r := newTestRegistrar(t, fake)

	if err := r.Register(context.Background(), testTask()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Unregister(context.Background(), "runloop"); err != nil {
		t.Fatalf("Unregister: %v", err)
	}

	if _, err := os.Stat(filepath.Join(r.unitDir, "runloop.service")); !os.IsNotExist(err) {
		t.Error("unit file still present after Unregister")
	}
}

func TestUnregister_RealFailurePropagates(t *testing.T) {
	fake := &fakeSystemctl{failOn: "disable", failOut: "Access denied"}
	r := newTestRegistrar(t, fake)

	if err := r.Unregister(context.Background(), "runloop"); err == nil {
		t.Error("Unregister = nil, want propagated disable error")
	}
}

// =============================================================================
// Tests: not-found classification
// =============================================================================

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		out  string
		want bool
	}{
		{"Unit foo.service does not exist.", true},
		{"Failed to disable: No such file or directory", true},
		{"Unit foo.service not loaded.", true},
		{"foo.service: not-found", true},
		{"Access denied", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isNotFound([]byte(tt.out)); got != tt.want {
			t.Errorf("isNotFound(%q) = %v, want %v", tt.out, got, tt.want)
		}
	}
}
