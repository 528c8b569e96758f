package cli

import (
	"errors"
	"io/fs"

	"golang.org/x/text/unicode/norm"

	"github.com/relicta-tech/conlang/internal/langfile"
)

// languageFile returns the configured language document path.
func (o *Options) languageFile() string {
	if o.LangFile != "" {
		return o.LangFile
	}
	if o.Config != nil {
		return o.Config.Language.File
	}
	return ""
}

// loadProject reads and builds the configured language document. With
// allowMissing an absent document yields an empty project, so rules can be
// compiled before any inventory exists.
func (o *Options) loadProject(allowMissing bool) (*langfile.Project, error) {
	path := o.languageFile()

	doc, err := langfile.Load(path)
	if err != nil {
		if allowMissing && errors.Is(err, fs.ErrNotExist) {
			o.Logger.Warn("language document not found, using an empty inventory", "file", path)
			return langfile.NewProject(""), nil
		}
		return nil, err
	}

	if o.normalize() {
		doc.Normalize()
	}

	p, err := doc.Build()
	if err != nil {
		return nil, err
	}

	o.Logger.Debug("language loaded",
		"file", path,
		"phonemes", p.Language.PhonemeCount(),
		"groups", p.Language.GroupCount(),
		"rules", p.Book.Len(),
		"broken", len(p.Book.BrokenRules()))
	return p, nil
}

// normalize reports whether input text is folded to NFC.
func (o *Options) normalize() bool {
	return o.Config == nil || o.Config.Compile.Normalize
}

// ruleText prepares a rule typed on the command line for compilation.
func (o *Options) ruleText(text string) string {
	if o.normalize() {
		return norm.NFC.String(text)
	}
	return text
}
