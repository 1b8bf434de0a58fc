package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gobwas/glob"

	"github.com/gofhir/fhircodes/pkg/logger"
)

// Validation errors.
var (
	ErrEmptyDirectory = errors.New("directory must not be empty")
	ErrInvalidPattern = errors.New("invalid pattern")
	ErrInvalidWorkers = errors.New("workers must be at least 1")
	ErrInvalidLog     = errors.New("invalid log setting")
)

// Validate checks cfg and returns every problem found.
func Validate(cfg *Config) error {
	var errs []error

	for name, dir := range map[string]string{
		"input.dir":        cfg.Input.Dir,
		"output.table_dir": cfg.Output.TableDir,
		"output.data_dir":  cfg.Output.DataDir,
	} {
		if strings.TrimSpace(dir) == "" {
			errs = append(errs, fmt.Errorf("%s: %w", name, ErrEmptyDirectory))
		}
	}

	if _, err := glob.Compile(cfg.Input.Pattern, '/'); err != nil {
		errs = append(errs, fmt.Errorf("%w: input.pattern %q: %v", ErrInvalidPattern, cfg.Input.Pattern, err))
	}
	if _, err := regexp.Compile(cfg.Extract.SectionPattern); err != nil {
		errs = append(errs, fmt.Errorf("%w: extract.section_pattern %q: %v", ErrInvalidPattern, cfg.Extract.SectionPattern, err))
	}
	if cfg.Extract.Workers < 1 {
		errs = append(errs, fmt.Errorf("%w, got %d", ErrInvalidWorkers, cfg.Extract.Workers))
	}

	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidLog, err))
	}
	if cfg.Log.Format != "console" && cfg.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("%w: format must be 'console' or 'json', got %q", ErrInvalidLog, cfg.Log.Format))
	}

	return errors.Join(errs...)
}
