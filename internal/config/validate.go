package config

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or an error describing the problem.
// Interval bounds are never swapped or clamped: min > max is a hard error.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.MinMinutes < 1 {
		errs = append(errs, ValidationError{
			Field:   "min",
			Message: "must be at least 1 minute",
		})
	}

	if cfg.MaxMinutes < cfg.MinMinutes {
		errs = append(errs, ValidationError{
			Field:   "max",
			Message: fmt.Sprintf("must be >= min (got min=%d max=%d)", cfg.MinMinutes, cfg.MaxMinutes),
		})
	}

	if cfg.MaxRuns < 0 {
		errs = append(errs, ValidationError{
			Field:   "max-runs",
			Message: "must be >= 0 (0 = unlimited)",
		})
	}

	if cfg.WorkerPath == "" {
		errs = append(errs, ValidationError{
			Field:   "worker",
			Message: "worker program is required",
		})
	}

	if cfg.EntryPoint == "" {
		errs = append(errs, ValidationError{
			Field:   "entrypoint",
			Message: "entry point argument is required",
		})
	}

	if cfg.Profile == "" {
		errs = append(errs, ValidationError{
			Field:   "profile",
			Message: "profile identifier is required",
		})
	}

	if cfg.LogDir == "" {
		errs = append(errs, ValidationError{
			Field:   "log-dir",
			Message: "log directory is required",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.LogFormat] {
		errs = append(errs, ValidationError{
			Field:   "log-format",
			Message: fmt.Sprintf("must be 'json' or 'text' (got %q)", cfg.LogFormat),
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
