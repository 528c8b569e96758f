package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/relicta-tech/conlang/internal/config"
)

// Options holds the CLI runtime options and dependencies.
// Commands read flags and write output through it so tests can run the
// command tree against buffers.
type Options struct {
	// Version information
	Version VersionInfo

	// Global flags
	ConfigFile string
	LangFile   string
	Verbose    bool
	JSONOutput bool
	NoColor    bool
	LogLevel   string

	// Runtime state
	ConfigUsed string
	Config     *config.Config
	Logger     *log.Logger
	LogFile    *os.File
	Styles     Styles

	// I/O streams (for testing)
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
}

// VersionInfo holds version metadata.
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// Styles holds the CLI styling configuration.
type Styles struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Subtle  lipgloss.Style
	Bold    lipgloss.Style
}

// DefaultStyles returns the default CLI styles.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		Subtle:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Bold:    lipgloss.NewStyle().Bold(true),
	}
}

// NewOptions creates a new Options instance with default values.
func NewOptions() *Options {
	return &Options{
		Styles: DefaultStyles(),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Stdin:  os.Stdin,
		Logger: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			ReportCaller:    false,
		}),
	}
}

// SetVersion sets the version information.
func (o *Options) SetVersion(version, commit, date string) {
	o.Version.Version = version
	o.Version.Commit = commit
	o.Version.Date = date
}

// IsJSON returns true if JSON output is enabled.
func (o *Options) IsJSON() bool {
	return o.JSONOutput || (o.Config != nil && o.Config.Output.Format == "json")
}

// IsVerbose returns true if verbose output is enabled.
func (o *Options) IsVerbose() bool {
	return o.Verbose || (o.Config != nil && o.Config.Output.Verbose)
}

// Cleanup closes any open resources.
func (o *Options) Cleanup() {
	if o.LogFile != nil {
		o.LogFile.Close()
		o.LogFile = nil
	}
}

// PrintSuccess prints a success message.
func (o *Options) PrintSuccess(msg string) {
	o.println(o.Styles.Success.Render("✓ " + msg))
}

// PrintError prints an error message.
func (o *Options) PrintError(msg string) {
	o.println(o.Styles.Error.Render("✗ " + msg))
}

// PrintWarning prints a warning message.
func (o *Options) PrintWarning(msg string) {
	o.println(o.Styles.Warning.Render("⚠ " + msg))
}

// PrintInfo prints an info message.
func (o *Options) PrintInfo(msg string) {
	o.println(o.Styles.Info.Render("ℹ " + msg))
}

// PrintTitle prints a title.
func (o *Options) PrintTitle(msg string) {
	o.println(o.Styles.Title.Render(msg))
}

// PrintSubtle prints subtle/muted text.
func (o *Options) PrintSubtle(msg string) {
	o.println(o.Styles.Subtle.Render(msg))
}

// Printf prints unstyled formatted text.
func (o *Options) Printf(format string, args ...any) {
	if o.Stdout != nil {
		fmt.Fprintf(o.Stdout, format, args...)
	}
}

// PrintJSON writes v as indented JSON.
func (o *Options) PrintJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	o.println(string(data))
	return nil
}

func (o *Options) println(s string) {
	if o.Stdout != nil {
		_, _ = o.Stdout.Write([]byte(s + "\n"))
	}
}
