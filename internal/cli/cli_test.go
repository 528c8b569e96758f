package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relicta-tech/conlang/internal/config"
	clerrors "github.com/relicta-tech/conlang/internal/errors"
	"github.com/relicta-tech/conlang/internal/langfile"
)

type testCLI struct {
	opts   *Options
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestCLI(stdin string) *testCLI {
	var stdout, stderr bytes.Buffer
	o := NewOptions()
	o.Stdout = &stdout
	o.Stderr = &stderr
	o.Stdin = strings.NewReader(stdin)
	o.Logger = log.NewWithOptions(&stderr, log.Options{})
	return &testCLI{opts: o, stdout: &stdout, stderr: &stderr}
}

func (c *testCLI) run(args ...string) error {
	cmd := newRootCmd(c.opts)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	return cmd.ExecuteContext(context.Background())
}

// writeLanguage saves doc to a temp directory and returns its path.
func writeLanguage(t *testing.T, doc *langfile.Document) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lang.yaml")
	require.NoError(t, langfile.Save(path, doc))
	return path
}

func TestRootCommand_Silence(t *testing.T) {
	cmd := newRootCmd(NewOptions())
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)

	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"version", "init", "compile", "check", "inventory", "export"})
}

func TestVersionCommand(t *testing.T) {
	c := newTestCLI("")
	c.opts.SetVersion("1.2.3", "abc123", "2026-01-01")

	require.NoError(t, c.run("version"))
	assert.Equal(t, "conlang 1.2.3\n", c.stdout.String())

	c = newTestCLI("")
	c.opts.SetVersion("1.2.3", "abc123", "2026-01-01")
	require.NoError(t, c.run("version", "--verbose"))
	assert.Contains(t, c.stdout.String(), "commit: abc123")
	assert.Contains(t, c.stdout.String(), "built:  2026-01-01")
}

func TestCompile_Text(t *testing.T) {
	path := writeLanguage(t, sampleDocument())
	c := newTestCLI("")

	require.NoError(t, c.run("--lang", path, "compile", "t→d/V_V", "t/d/V_V"))

	out := c.stdout.String()
	assert.Equal(t, 2, strings.Count(out, "✓ t→d/V_V"))
	assert.Contains(t, out, "t→d/Vowel (V)_Vowel (V)")
}

func TestCompile_Verbose(t *testing.T) {
	path := writeLanguage(t, sampleDocument())
	c := newTestCLI("")

	require.NoError(t, c.run("--lang", path, "-v", "compile", "[ae]→i/_#"))

	out := c.stdout.String()
	assert.Contains(t, out, "any(a(phoneme) e(phoneme))")
	assert.Contains(t, out, "#(boundary)")
}

func TestCompile_JSON(t *testing.T) {
	path := writeLanguage(t, sampleDocument())
	c := newTestCLI("")

	require.NoError(t, c.run("--lang", path, "--json", "compile", "t→d/V_#"))

	var results []compileResult
	require.NoError(t, json.Unmarshal(c.stdout.Bytes(), &results))
	require.Len(t, results, 1)

	res := results[0]
	assert.True(t, res.OK)
	assert.Equal(t, "t→d/V_#", res.Text)
	assert.Equal(t, "t→d/Vowel (V)_#", res.Display)
	require.Len(t, res.Fields, 4)
	assert.Equal(t, "target", res.Fields[0].Field)
	assert.Equal(t, "phoneme", res.Fields[0].Elements[0].Kind)
	assert.Equal(t, "group", res.Fields[2].Elements[0].Kind)
	assert.True(t, res.Fields[3].HasBoundary)
	assert.False(t, res.Fields[2].HasBoundary)
}

func TestCompile_Failure(t *testing.T) {
	path := writeLanguage(t, sampleDocument())
	c := newTestCLI("")

	err := c.run("--lang", path, "compile", "t→d/_#V", "t→d")
	require.Error(t, err)
	assert.True(t, clerrors.IsKind(err, clerrors.KindValidation))
	assert.Contains(t, err.Error(), "2 of 2 rules failed")

	out := c.stdout.String()
	assert.Contains(t, out, "✗ t→d/_#V")
	assert.Contains(t, out, "env-end: boundary not at end at offset 0")
	assert.Contains(t, out, "malformed sound change")
}

func TestCompile_SampleAffricate(t *testing.T) {
	path := writeLanguage(t, sampleDocument())
	c := newTestCLI("")

	require.NoError(t, c.run("--lang", path, "--json", "compile", "k→tʃ/_[ie]"))

	var results []compileResult
	require.NoError(t, json.Unmarshal(c.stdout.Bytes(), &results))
	require.Len(t, results, 1)

	repl := results[0].Fields[1].Elements
	require.Len(t, repl, 1)
	assert.Equal(t, "phoneme", repl[0].Kind)
	assert.Equal(t, "tʃ", repl[0].Text)
	assert.False(t, repl[0].Representative)
}

func TestCompile_FailureJSON(t *testing.T) {
	path := writeLanguage(t, sampleDocument())
	c := newTestCLI("")

	require.Error(t, c.run("--lang", path, "--json", "compile", "#t→d/_"))

	var results []compileResult
	require.NoError(t, json.Unmarshal(c.stdout.Bytes(), &results))
	require.Len(t, results, 1)
	assert.False(t, results[0].OK)
	require.Len(t, results[0].Problems, 1)
	assert.Equal(t, fieldProblem{Field: "target", Kind: "boundary not allowed", Offset: 0}, results[0].Problems[0])
}

func TestCompile_MissingDocument(t *testing.T) {
	c := newTestCLI("")
	path := filepath.Join(t.TempDir(), "none.yaml")

	require.NoError(t, c.run("--lang", path, "--json", "compile", "ab→c/_"))

	var results []compileResult
	require.NoError(t, json.Unmarshal(c.stdout.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "ab→c/_", results[0].Text)
	for _, e := range results[0].Fields[0].Elements {
		assert.True(t, e.Representative)
	}
	assert.Contains(t, c.stderr.String(), "language document not found")
}

func TestCompile_Stdin(t *testing.T) {
	path := writeLanguage(t, sampleDocument())
	c := newTestCLI("t→d/V_V\n\n  k→tʃ/_[ie]  \n")

	require.NoError(t, c.run("--lang", path, "compile"))
	assert.Contains(t, c.stdout.String(), "✓ t→d/V_V")
	assert.Contains(t, c.stdout.String(), "✓ k→tʃ/_[ie]")

	c = newTestCLI("")
	err := c.run("--lang", path, "compile")
	assert.True(t, clerrors.IsKind(err, clerrors.KindValidation))
}

func TestCompile_Normalize(t *testing.T) {
	doc := sampleDocument()
	doc.Categories = append(doc.Categories, langfile.Category{Abbrev: "E", Members: []string{"e\u0301"}})
	path := writeLanguage(t, doc)

	c := newTestCLI("")
	require.NoError(t, c.run("--lang", path, "--json", "compile", "\u00e9→e/_"))

	var results []compileResult
	require.NoError(t, json.Unmarshal(c.stdout.Bytes(), &results))
	require.Len(t, results[0].Fields[0].Elements, 1)
	assert.False(t, results[0].Fields[0].Elements[0].Representative)
}

func TestCompile_Add(t *testing.T) {
	path := writeLanguage(t, sampleDocument())
	c := newTestCLI("")

	require.NoError(t, c.run("--lang", path, "compile", "--add", "s/h/#_V"))

	doc, err := langfile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s→h/#_V", doc.Rules[len(doc.Rules)-1])
	assert.Len(t, doc.Rules, len(sampleDocument().Rules)+1)

	// nothing is written when a rule fails
	c = newTestCLI("")
	require.Error(t, c.run("--lang", path, "compile", "--add", "s→h/V_V", "s→h/_##"))
	again, err := langfile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, doc.Rules, again.Rules)

	// --add needs an existing document
	c = newTestCLI("")
	err = c.run("--lang", filepath.Join(t.TempDir(), "none.yaml"), "compile", "--add", "a→b/_")
	assert.True(t, clerrors.IsKind(err, clerrors.KindIO))
}

func TestCheck(t *testing.T) {
	path := writeLanguage(t, sampleDocument())
	c := newTestCLI("")

	require.NoError(t, c.run("--lang", path, "check"))
	out := c.stdout.String()
	assert.Contains(t, out, "Proto-Example")
	assert.Contains(t, out, "12 phonemes in 2 groups")
	assert.Contains(t, out, "3 rules compiled")
}

func TestCheck_Broken(t *testing.T) {
	doc := sampleDocument()
	doc.Rules = append(doc.Rules, "t→d_V", "a→e/_#V")
	path := writeLanguage(t, doc)

	c := newTestCLI("")
	err := c.run("--lang", path, "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 5 rules are broken")
	assert.Contains(t, c.stdout.String(), "✗ t→d_V")
	assert.Contains(t, c.stdout.String(), "✗ a→e/_#V")

	// fail_on_broken: false only reports
	cfgPath := filepath.Join(t.TempDir(), "conlang.yaml")
	cfg := config.DefaultConfig()
	cfg.Check.FailOnBroken = false
	require.NoError(t, config.WriteConfig(cfg, cfgPath))

	c = newTestCLI("")
	require.NoError(t, c.run("--config", cfgPath, "--lang", path, "--json", "check"))

	var report checkReport
	require.NoError(t, json.Unmarshal(c.stdout.Bytes(), &report))
	assert.Equal(t, 3, report.Rules)
	require.Len(t, report.Broken, 2)
	assert.Equal(t, "t→d_V", report.Broken[0].Line)
	assert.Contains(t, report.Broken[1].Error, "boundary not at end")
}

func TestCheck_MissingDocument(t *testing.T) {
	c := newTestCLI("")
	err := c.run("--lang", filepath.Join(t.TempDir(), "none.toml"), "check")
	assert.True(t, clerrors.IsKind(err, clerrors.KindIO))
}

func TestCheck_LanguageFromConfig(t *testing.T) {
	dir := t.TempDir()
	langPath := filepath.Join(dir, "proto.toml")
	require.NoError(t, langfile.Save(langPath, sampleDocument()))

	cfg := config.DefaultConfig()
	cfg.Language.File = langPath
	cfgPath := filepath.Join(dir, "conlang.yaml")
	require.NoError(t, config.WriteConfig(cfg, cfgPath))

	c := newTestCLI("")
	require.NoError(t, c.run("--config", cfgPath, "check"))
	assert.Contains(t, c.stdout.String(), "proto.toml")
}

func TestInvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "conlang.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output:\n  format: xml\n"), 0600))

	c := newTestCLI("")
	err := c.run("--config", cfgPath, "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestInventory(t *testing.T) {
	path := writeLanguage(t, sampleDocument())

	c := newTestCLI("")
	require.NoError(t, c.run("--lang", path, "inventory"))
	out := c.stdout.String()
	assert.Contains(t, out, "Vowel (V): a, e, i, o, u")
	assert.Contains(t, out, "tʃ [ch]")
	assert.Contains(t, out, "tʃ = ch")

	c = newTestCLI("")
	require.NoError(t, c.run("--lang", path, "--json", "inv"))
	var view inventoryView
	require.NoError(t, json.Unmarshal(c.stdout.Bytes(), &view))
	require.Len(t, view.Groups, 2)
	assert.Equal(t, "C", view.Groups[1].Abbrev)
	assert.Len(t, view.Groups[1].Members, 7)
	assert.Equal(t, 12, view.Phonemes)
}

func TestExport(t *testing.T) {
	path := writeLanguage(t, sampleDocument())

	c := newTestCLI("")
	require.NoError(t, c.run("--lang", path, "export", "--format", "toml", "--name", "Renamed"))
	doc, err := langfile.Decode(c.stdout.Bytes(), langfile.FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", doc.Name)
	assert.Equal(t, sampleDocument().Rules, doc.Rules)

	out := filepath.Join(t.TempDir(), "sub", "proto.toml")
	c = newTestCLI("")
	require.NoError(t, c.run("--lang", path, "export", "--out", out))
	assert.Contains(t, c.stdout.String(), "Exported to")

	loaded, err := langfile.Load(out)
	require.NoError(t, err)
	assert.Equal(t, "Proto-Example", loaded.Name)
	assert.Equal(t, []string{"a", "e", "i", "o", "u"}, loaded.Categories[0].Members)

	c = newTestCLI("")
	err = c.run("--lang", path, "export", "--format", "xml")
	assert.True(t, clerrors.IsKind(err, clerrors.KindValidation))
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	c := newTestCLI("")
	require.NoError(t, c.run("init", "--dir", dir))
	assert.FileExists(t, filepath.Join(dir, "conlang.yaml"))
	assert.FileExists(t, filepath.Join(dir, "language.yaml"))

	c = newTestCLI("")
	err := c.run("init", "--dir", dir)
	assert.True(t, clerrors.IsKind(err, clerrors.KindValidation))

	c = newTestCLI("")
	require.NoError(t, c.run("init", "--dir", dir, "--force"))

	c = newTestCLI("")
	require.NoError(t, c.run("--lang", filepath.Join(dir, "language.yaml"), "check"))
	assert.Contains(t, c.stdout.String(), "3 rules compiled")

	// any supported config name blocks init
	other := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(other, ".conlang.toml"), []byte("[output]\nformat = \"text\"\n"), 0600))
	c = newTestCLI("")
	err = c.run("init", "--dir", other)
	assert.True(t, clerrors.IsKind(err, clerrors.KindValidation))
	assert.NoFileExists(t, filepath.Join(other, "language.yaml"))
}

func TestConfigUsedIsLogged(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "conlang.yaml")
	require.NoError(t, config.WriteConfig(config.DefaultConfig(), cfgPath))

	c := newTestCLI("")
	require.NoError(t, c.run("--config", cfgPath, "--log-level", "debug", "--lang", writeLanguage(t, sampleDocument()), "check"))
	assert.Equal(t, cfgPath, c.opts.ConfigUsed)
	assert.Contains(t, c.stderr.String(), "configuration loaded")
}

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lang.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: a\n"), 0600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var changes atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, 50*time.Millisecond, func() { changes.Add(1) }, nil)
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0600))
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("name: b\n"), 0600))
	}

	assert.Eventually(t, func() bool { return changes.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), changes.Load(), "a burst of writes is debounced into one check")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watchFile did not stop after cancel")
	}
}

func TestWatchFile_MissingDirectory(t *testing.T) {
	err := watchFile(context.Background(), "/nonexistent/dir/lang.yaml", time.Millisecond, func() {}, nil)
	assert.True(t, clerrors.IsKind(err, clerrors.KindIO))
}
