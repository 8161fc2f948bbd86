package config

import (
	"strings"
	"testing"
)

// =============================================================================
// Tests: DefaultConfig
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MinMinutes != 15 {
		t.Errorf("MinMinutes = %d, want 15", cfg.MinMinutes)
	}
	if cfg.MaxMinutes != 40 {
		t.Errorf("MaxMinutes = %d, want 40", cfg.MaxMinutes)
	}
	if cfg.Once {
		t.Error("Once = true, want false (continuous loop by default)")
	}
	if !cfg.DryRun {
		t.Error("DryRun = false, want true (safety default)")
	}
	if cfg.Profile != DefaultProfile {
		t.Errorf("Profile = %q, want %q", cfg.Profile, DefaultProfile)
	}
	if cfg.LogDir == "" {
		t.Error("LogDir is empty")
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

// =============================================================================
// Table-Driven Tests: Validate
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantErr   bool
		wantField string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "min equals max",
			mutate:  func(c *Config) { c.MinMinutes = 20; c.MaxMinutes = 20 },
			wantErr: false,
		},
		{
			name:      "min greater than max",
			mutate:    func(c *Config) { c.MinMinutes = 40; c.MaxMinutes = 15 },
			wantErr:   true,
			wantField: "max",
		},
		{
			name:      "zero min",
			mutate:    func(c *Config) { c.MinMinutes = 0 },
			wantErr:   true,
			wantField: "min",
		},
		{
			name:      "negative min",
			mutate:    func(c *Config) { c.MinMinutes = -5; c.MaxMinutes = 10 },
			wantErr:   true,
			wantField: "min",
		},
		{
			name:      "negative max runs",
			mutate:    func(c *Config) { c.MaxRuns = -1 },
			wantErr:   true,
			wantField: "max-runs",
		},
		{
			name:      "empty worker",
			mutate:    func(c *Config) { c.WorkerPath = "" },
			wantErr:   true,
			wantField: "worker",
		},
		{
			name:      "empty entrypoint",
			mutate:    func(c *Config) { c.EntryPoint = "" },
			wantErr:   true,
			wantField: "entrypoint",
		},
		{
			name:      "empty profile",
			mutate:    func(c *Config) { c.Profile = "" },
			wantErr:   true,
			wantField: "profile",
		},
		{
			name:      "empty log dir",
			mutate:    func(c *Config) { c.LogDir = "" },
			wantErr:   true,
			wantField: "log-dir",
		},
		{
			name:      "bad log format",
			mutate:    func(c *Config) { c.LogFormat = "yaml" },
			wantErr:   true,
			wantField: "log-format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr && err == nil {
				t.Fatal("Validate returned nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Validate returned %v, want nil", err)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("error %q does not mention field %q", err, tt.wantField)
			}
		})
	}
}

func TestValidate_CollectsMultipleErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinMinutes = 0
	cfg.WorkerPath = ""
	cfg.LogFormat = "xml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate returned nil, want joined errors")
	}

	for _, field := range []string{"min", "worker", "log-format"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("joined error missing %q: %v", field, err)
		}
	}
}

func TestValidationError_Error(t *testing.T) {
	e := ValidationError{Field: "max", Message: "must be >= min"}
	if got := e.Error(); got != "max: must be >= min" {
		t.Errorf("Error() = %q", got)
	}
}
