package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	clerrors "github.com/relicta-tech/conlang/internal/errors"
)

// ValidationError contains all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if len(e.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("Errors:\n  - %s", strings.Join(e.Errors, "\n  - ")))
	}

	if len(e.Warnings) > 0 {
		parts = append(parts, fmt.Sprintf("Warnings:\n  - %s", strings.Join(e.Warnings, "\n  - ")))
	}

	return fmt.Sprintf("configuration validation failed:\n%s", strings.Join(parts, "\n"))
}

// HasErrors returns true if there are validation errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// HasWarnings returns true if there are validation warnings.
func (e *ValidationError) HasWarnings() bool {
	return len(e.Warnings) > 0
}

// Addf adds a formatted error to the validation error.
func (e *ValidationError) Addf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

// Warnf adds a formatted warning to the validation error.
func (e *ValidationError) Warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// Validator validates configuration.
type Validator struct {
	errors *ValidationError
	warnTo io.Writer
}

// NewValidator creates a new configuration validator. Warnings are printed
// to stderr.
func NewValidator() *Validator {
	return &Validator{
		errors: &ValidationError{},
		warnTo: os.Stderr,
	}
}

// WithWarningWriter redirects warning output.
func (v *Validator) WithWarningWriter(w io.Writer) *Validator {
	v.warnTo = w
	return v
}

// Result returns the collected errors and warnings.
func (v *Validator) Result() *ValidationError {
	return v.errors
}

// Validate validates the configuration.
func (v *Validator) Validate(cfg *Config) error {
	v.validateLanguage(cfg.Language)
	v.validateCheck(cfg.Check)
	v.validateOutput(cfg.Output)

	if v.errors.HasWarnings() && v.warnTo != nil {
		fmt.Fprintf(v.warnTo, "\n⚠️  Configuration Warnings:\n")
		for _, warning := range v.errors.Warnings {
			fmt.Fprintf(v.warnTo, "  - %s\n", warning)
		}
		fmt.Fprintf(v.warnTo, "\n")
	}

	if v.errors.HasErrors() {
		return clerrors.Validation("config.Validate", v.errors.Error())
	}

	return nil
}

// validateLanguage validates the language document settings.
func (v *Validator) validateLanguage(cfg LanguageConfig) {
	if cfg.File == "" {
		v.errors.Addf("language.file: must not be empty")
		return
	}

	validExts := []string{".yaml", ".yml", ".toml"}
	if ext := strings.ToLower(filepath.Ext(cfg.File)); !slices.Contains(validExts, ext) {
		v.errors.Addf("language.file: extension must be one of %v, got %q", validExts, ext)
	}
}

// validateCheck validates check command settings.
func (v *Validator) validateCheck(cfg CheckConfig) {
	if cfg.WatchDebounce < 0 {
		v.errors.Addf("check.watch_debounce: must not be negative, got %s", cfg.WatchDebounce)
	}
	if cfg.WatchDebounce > 10*time.Second {
		v.errors.Warnf("check.watch_debounce: %s is unusually long", cfg.WatchDebounce)
	}
}

// validateOutput validates output configuration.
func (v *Validator) validateOutput(cfg OutputConfig) {
	validFormats := []string{"text", "json"}
	if !slices.Contains(validFormats, cfg.Format) {
		v.errors.Addf("output.format: must be one of %v, got %q", validFormats, cfg.Format)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, cfg.LogLevel) {
		v.errors.Addf("output.log_level: must be one of %v, got %q", validLevels, cfg.LogLevel)
	}

	if cfg.LogFile != "" {
		dir := filepath.Dir(cfg.LogFile)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			v.errors.Warnf("output.log_file: directory %q does not exist", dir)
		}
	}
}

// Validate validates a configuration with a fresh validator.
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}
