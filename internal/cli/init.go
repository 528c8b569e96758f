package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/relicta-tech/conlang/internal/config"
	clerrors "github.com/relicta-tech/conlang/internal/errors"
	"github.com/relicta-tech/conlang/internal/inventory"
	"github.com/relicta-tech/conlang/internal/langfile"
)

type initOptions struct {
	dir   string
	force bool
}

func newInitCmd(o *Options) *cobra.Command {
	in := &initOptions{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration and a sample language",
		Long: `Create conlang.yaml and a small sample language document in the target
directory. Existing files are left alone unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runInit(in)
		},
	}
	cmd.Flags().StringVar(&in.dir, "dir", ".", "directory to initialize")
	cmd.Flags().BoolVar(&in.force, "force", false, "overwrite existing files")
	return cmd
}

// sampleDocument is the language written by init.
func sampleDocument() *langfile.Document {
	return &langfile.Document{
		Name: "Proto-Example",
		Categories: []langfile.Category{
			{Abbrev: "V", Name: "Vowel", Phonemes: "aeiou"},
			{Abbrev: "C", Name: "Consonant", Phonemes: "p tʃ t k m n s"},
		},
		Rewrites:     []inventory.Rewrite{{From: "tʃ", To: "ch"}},
		Romanization: map[string]string{"tʃ": "ch"},
		Rules: []string{
			"t→d/V_V",
			"k→tʃ/_[ie]",
			"[ae]→i/_#",
		},
		Lexicon: []string{"kata", "tike", "mase"},
	}
}

func (o *Options) runInit(in *initOptions) error {
	const op = "cli.init"

	cfg := config.DefaultConfig()
	cfgPath := filepath.Join(in.dir, "conlang.yaml")
	langPath := filepath.Join(in.dir, cfg.Language.File)

	if !in.force {
		if config.ConfigExists(in.dir) {
			return clerrors.Validationf(op, "a configuration already exists in %s (use --force to overwrite)", in.dir)
		}
		if _, err := os.Stat(langPath); err == nil {
			return clerrors.Validationf(op, "%s already exists (use --force to overwrite)", langPath)
		}
	}

	if err := os.MkdirAll(in.dir, 0o755); err != nil { // #nosec G301 -- project directory
		return clerrors.IOWrap(err, op, "failed to create directory")
	}
	if err := config.WriteConfig(cfg, cfgPath); err != nil {
		return err
	}
	if err := langfile.Save(langPath, sampleDocument()); err != nil {
		return err
	}

	o.PrintSuccess("Created " + cfgPath)
	o.PrintSuccess("Created " + langPath)
	o.PrintInfo("Run 'conlang check' to compile the sample rules")
	return nil
}
