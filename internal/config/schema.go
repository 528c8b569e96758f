// Package config provides configuration management for conlang.
package config

import "time"

// Config represents the complete conlang configuration.
type Config struct {
	// Language configures the language document.
	Language LanguageConfig `mapstructure:"language" json:"language" yaml:"language"`
	// Compile configures rule compilation.
	Compile CompileConfig `mapstructure:"compile" json:"compile" yaml:"compile"`
	// Check configures the check command.
	Check CheckConfig `mapstructure:"check" json:"check" yaml:"check"`
	// Output configures output formatting.
	Output OutputConfig `mapstructure:"output" json:"output" yaml:"output"`
}

// LanguageConfig configures where the language document lives.
type LanguageConfig struct {
	// File is the path of the language document (.yaml, .yml or .toml).
	// Supports ${VAR} expansion.
	File string `mapstructure:"file" json:"file" yaml:"file"`
}

// CompileConfig configures rule compilation.
type CompileConfig struct {
	// Normalize rewrites document and rule text in Unicode NFC before use.
	Normalize bool `mapstructure:"normalize" json:"normalize" yaml:"normalize"`
}

// CheckConfig configures the check command.
type CheckConfig struct {
	// FailOnBroken makes check exit non-zero when any rule is broken.
	FailOnBroken bool `mapstructure:"fail_on_broken" json:"fail_on_broken" yaml:"fail_on_broken"`
	// WatchDebounce is how long check --watch waits after the last change.
	WatchDebounce time.Duration `mapstructure:"watch_debounce" json:"watch_debounce" yaml:"watch_debounce"`
}

// OutputConfig configures output formatting.
type OutputConfig struct {
	// Format is the output format (text, json).
	Format string `mapstructure:"format" json:"format" yaml:"format"`
	// Color enables colored output.
	Color bool `mapstructure:"color" json:"color" yaml:"color"`
	// Verbose enables verbose output.
	Verbose bool `mapstructure:"verbose" json:"verbose" yaml:"verbose"`
	// LogFile is the path to write logs.
	LogFile string `mapstructure:"log_file" json:"log_file,omitempty" yaml:"log_file,omitempty"`
	// LogLevel sets the logging level (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level" json:"log_level" yaml:"log_level"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Language: LanguageConfig{
			File: "language.yaml",
		},
		Compile: CompileConfig{
			Normalize: true,
		},
		Check: CheckConfig{
			FailOnBroken:  true,
			WatchDebounce: 300 * time.Millisecond,
		},
		Output: OutputConfig{
			Format:   "text",
			Color:    true,
			Verbose:  false,
			LogLevel: "info",
		},
	}
}

// ConfigFileNames are the supported configuration file names.
var ConfigFileNames = []string{"conlang", ".conlang"}

// ConfigFileExtensions are the supported configuration file extensions.
var ConfigFileExtensions = []string{
	"yaml",
	"yml",
	"toml",
	"json",
}
