package cli

import (
	"github.com/spf13/cobra"

	"github.com/relicta-tech/conlang/internal/fileutil"
	"github.com/relicta-tech/conlang/internal/langfile"
)

type exportOptions struct {
	format string
	out    string
	name   string
}

func newExportCmd(o *Options) *cobra.Command {
	eo := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the language back out in canonical form",
		Long: `Load the language document and write it back out. Rules are written in
their canonical form, categories list their members explicitly and broken
rules are kept as written.

The format defaults to the extension of --out, or YAML on stdout.`,
		Example: `  conlang export --format toml
  conlang export --out proto.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runExport(eo)
		},
	}
	cmd.Flags().StringVarP(&eo.format, "format", "f", "", "output format (yaml, toml)")
	cmd.Flags().StringVarP(&eo.out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&eo.name, "name", "", "rename the language")
	return cmd
}

func (o *Options) runExport(eo *exportOptions) error {
	format, err := exportFormat(eo)
	if err != nil {
		return err
	}

	p, err := o.loadProject(false)
	if err != nil {
		return err
	}

	data, err := langfile.Encode(langfile.Export(p, eo.name), format)
	if err != nil {
		return err
	}

	if eo.out == "" {
		o.Printf("%s", data)
		return nil
	}
	if err := fileutil.WriteFileAtomic(eo.out, data, 0o644); err != nil {
		return err
	}
	o.PrintSuccess("Exported to " + eo.out)
	return nil
}

func exportFormat(eo *exportOptions) (langfile.Format, error) {
	switch {
	case eo.format != "":
		return langfile.ParseFormat(eo.format)
	case eo.out != "":
		return langfile.DetectFormat(eo.out)
	default:
		return langfile.FormatYAML, nil
	}
}
