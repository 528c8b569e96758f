// Package cli provides the command-line interface for conlang.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/relicta-tech/conlang/internal/config"
)

var (
	// opts is the process-wide option set used by Execute.
	opts = NewOptions()

	// rootCmd represents the base command when called without any subcommands.
	rootCmd = newRootCmd(opts)
)

// SetVersionInfo sets the version information from main.
func SetVersionInfo(version, commit, date string) {
	opts.SetVersion(version, commit, date)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with a context for graceful shutdown.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// Cleanup closes any open resources. Should be called before program exit.
func Cleanup() {
	opts.Cleanup()
}

// newRootCmd builds the command tree around o.
func newRootCmd(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conlang",
		Short: "Sound change rules for constructed languages",
		Long: `conlang compiles sound change rules against the phoneme inventory of a
constructed language.

A rule has the shape target→replacement/before_after, for example
t→d/V_V voices t between vowels. Group names and abbreviations, bracketed
alternatives like [ae], and the word boundary # are understood.

The language itself lives in a YAML or TOML document holding its
categories, rewrites, romanization, rules and lexicon.

Get started with 'conlang init' to create a configuration and a sample
language.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip config loading for commands that do not need it
			switch cmd.Name() {
			case "version", "help", "completion":
				return nil
			}
			return o.initConfig(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.ConfigFile, "config", "c", "", "config file (default: conlang.yaml)")
	flags.StringVarP(&o.LangFile, "lang", "l", "", "language document (overrides language.file)")
	flags.BoolVarP(&o.Verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVar(&o.JSONOutput, "json", false, "output results as JSON")
	flags.BoolVar(&o.NoColor, "no-color", false, "disable colored output")
	flags.StringVar(&o.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")

	cmd.SetOut(o.Stdout)
	cmd.SetErr(o.Stderr)

	cmd.AddCommand(
		newVersionCmd(o),
		newInitCmd(o),
		newCompileCmd(o),
		newCheckCmd(o),
		newInventoryCmd(o),
		newExportCmd(o),
	)
	return cmd
}

// loadAndValidateConfig loads and validates the configuration.
func (o *Options) loadAndValidateConfig(cmd *cobra.Command) error {
	loader := config.NewLoader()
	if o.ConfigFile != "" {
		loader.WithConfigPath(o.ConfigFile)
	}

	// Bind flags to viper
	v := loader.Viper()
	flags := cmd.Flags()
	_ = v.BindPFlag("output.verbose", flags.Lookup("verbose"))
	_ = v.BindPFlag("output.log_level", flags.Lookup("log-level"))
	if f := flags.Lookup("lang"); f != nil && f.Changed {
		_ = v.BindPFlag("language.file", f)
	}

	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.NewValidator().WithWarningWriter(o.Stderr).Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	o.Config = cfg
	o.ConfigUsed = loader.GetConfigPath()
	return nil
}

// applyGlobalFlags applies global CLI flags to the configuration.
func (o *Options) applyGlobalFlags() {
	if o.Verbose {
		o.Config.Output.Verbose = true
	}
	if o.JSONOutput {
		o.Config.Output.Format = "json"
	}
	if o.NoColor {
		o.Config.Output.Color = false
	}
	if !o.Config.Output.Color {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// configureLoggerFormat configures the logger format based on settings.
func (o *Options) configureLoggerFormat() {
	o.Logger.SetOutput(o.Stderr)
	if o.IsJSON() {
		o.Logger.SetFormatter(log.JSONFormatter)
		o.Logger.SetReportTimestamp(true)
	} else {
		o.Logger.SetFormatter(log.TextFormatter)
	}
}

// configureLogLevel sets the logger level based on configuration.
func (o *Options) configureLogLevel() {
	switch o.Config.Output.LogLevel {
	case "debug":
		o.Logger.SetLevel(log.DebugLevel)
	case "warn":
		o.Logger.SetLevel(log.WarnLevel)
	case "error":
		o.Logger.SetLevel(log.ErrorLevel)
	default:
		o.Logger.SetLevel(log.InfoLevel)
	}

	if o.Config.Output.Verbose {
		o.Logger.SetLevel(log.DebugLevel)
	}
}

// configureLogFile sets up log file output if specified.
func (o *Options) configureLogFile() error {
	if o.Config.Output.LogFile == "" {
		return nil
	}

	o.Cleanup()
	f, err := os.OpenFile(o.Config.Output.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	o.LogFile = f
	o.Logger.SetOutput(f)
	return nil
}

// initConfig reads in config file and ENV variables if set.
func (o *Options) initConfig(cmd *cobra.Command) error {
	if err := o.loadAndValidateConfig(cmd); err != nil {
		return err
	}

	o.applyGlobalFlags()
	o.configureLoggerFormat()
	o.configureLogLevel()

	if err := o.configureLogFile(); err != nil {
		return err
	}

	o.Logger.Debug("configuration loaded",
		"file", o.ConfigUsed,
		"language", o.Config.Language.File,
		"format", o.Config.Output.Format)
	return nil
}

// newVersionCmd prints version information.
func newVersionCmd(o *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			o.Printf("conlang %s\n", o.Version.Version)
			if o.Verbose {
				o.Printf("  commit: %s\n", o.Version.Commit)
				o.Printf("  built:  %s\n", o.Version.Date)
			}
		},
	}
}
