package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	clerrors "github.com/relicta-tech/conlang/internal/errors"
)

type checkOptions struct {
	watch bool
}

func newCheckCmd(o *Options) *cobra.Command {
	co := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that every rule of the language compiles",
		Long: `Load the language document, compile its rule list and report the rules
that did not compile.

With --watch the document is checked again every time it changes, until
interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runCheck(cmd.Context(), co)
		},
	}
	cmd.Flags().BoolVarP(&co.watch, "watch", "w", false, "re-check whenever the language document changes")
	return cmd
}

// checkReport summarizes one check of the language document.
type checkReport struct {
	File     string        `json:"file"`
	Name     string        `json:"name,omitempty"`
	Phonemes int           `json:"phonemes"`
	Groups   int           `json:"groups"`
	Rules    int           `json:"rules"`
	Invalid  []string      `json:"invalid,omitempty"`
	Broken   []brokenEntry `json:"broken,omitempty"`
}

type brokenEntry struct {
	Line  string `json:"line"`
	Error string `json:"error"`
}

// failed reports whether any rule is broken or references removed entries.
func (r *checkReport) failed() bool {
	return len(r.Broken) > 0 || len(r.Invalid) > 0
}

func (o *Options) runCheck(ctx context.Context, co *checkOptions) error {
	err := o.checkOnce()
	if !co.watch {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	path := o.languageFile()
	o.PrintInfo(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", path))
	return watchFile(ctx, path, o.Config.Check.WatchDebounce, func() {
		o.Printf("\n[%s] Change detected: %s\n", time.Now().Format("15:04:05"), filepath.Base(path))
		if err := o.checkOnce(); err != nil {
			o.Logger.Debug("check failed", "error", err)
		}
	}, func(err error) {
		o.Logger.Warn("watch error", "error", err)
	})
}

// checkOnce checks the document and prints the report.
func (o *Options) checkOnce() error {
	const op = "cli.check"

	p, err := o.loadProject(false)
	if err != nil {
		o.PrintError(err.Error())
		return err
	}

	report := &checkReport{
		File:     o.languageFile(),
		Name:     p.Name,
		Phonemes: p.Language.PhonemeCount(),
		Groups:   p.Language.GroupCount(),
		Rules:    p.Book.Len(),
	}
	for _, sc := range p.Book.Rules() {
		if sc.Invalid(p.Language, p.Pool) {
			report.Invalid = append(report.Invalid, sc.Text(p.Language, p.Pool))
		}
	}
	for _, br := range p.Book.BrokenRules() {
		o.Logger.Warn("broken rule", "rule", br.Line)
		report.Broken = append(report.Broken, brokenEntry{Line: br.Line, Error: br.Err.Error()})
	}

	if o.IsJSON() {
		if err := o.PrintJSON(report); err != nil {
			return err
		}
	} else {
		o.printCheckReport(report)
	}

	if report.failed() && o.Config.Check.FailOnBroken {
		return clerrors.Validationf(op, "%d of %d rules are broken",
			len(report.Broken)+len(report.Invalid), report.Rules+len(report.Broken))
	}
	return nil
}

func (o *Options) printCheckReport(r *checkReport) {
	title := r.File
	if r.Name != "" {
		title = fmt.Sprintf("%s (%s)", r.Name, r.File)
	}
	o.PrintTitle(title)
	o.PrintSubtle(fmt.Sprintf("%d phonemes in %d groups", r.Phonemes, r.Groups))

	if !r.failed() {
		o.PrintSuccess(fmt.Sprintf("%d rules compiled", r.Rules))
		return
	}

	o.PrintWarning(fmt.Sprintf("%d rules compiled, %d broken", r.Rules-len(r.Invalid), len(r.Broken)+len(r.Invalid)))
	for _, b := range r.Broken {
		o.PrintError(b.Line)
		o.PrintSubtle("  " + b.Error)
	}
	for _, text := range r.Invalid {
		o.PrintError(text)
		o.PrintSubtle("  references a removed phoneme or group")
	}
}

// watchFile calls onChange once per burst of writes to path, after the
// burst has been quiet for debounce. The parent directory is watched so
// editors that save by renaming a temp file are still seen. It returns when
// ctx is done.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func(), onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return clerrors.IOWrap(err, "cli.watch", "failed to create watcher")
	}
	defer func() { _ = watcher.Close() }()

	target, err := filepath.Abs(path)
	if err != nil {
		return clerrors.IOWrap(err, "cli.watch", "failed to resolve path")
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return clerrors.IOWrap(err, "cli.watch", "failed to watch directory")
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if onError != nil {
				onError(err)
			}

		case <-ctx.Done():
			return nil
		}
	}
}
