package langfile

import (
	"strings"

	clerrors "github.com/relicta-tech/conlang/internal/errors"
	"github.com/relicta-tech/conlang/internal/inventory"
	"github.com/relicta-tech/conlang/internal/soundchange"
)

// Project is a language built from a document: its inventory, the
// representative pool shared by all rules, and the compiled rule book.
type Project struct {
	Name     string
	Language *inventory.Language
	Pool     *inventory.Pool
	Rewrites *inventory.RewriteRules
	Book     *soundchange.Book
	Lexicon  []string
}

// NewProject returns a project with an empty inventory.
func NewProject(name string) *Project {
	return &Project{
		Name:     name,
		Language: inventory.New(),
		Pool:     inventory.NewPool(),
		Rewrites: inventory.NewRewriteRules(),
		Book:     soundchange.NewBook(),
	}
}

// Compiler returns a rule compiler bound to the project inventory.
func (p *Project) Compiler() *soundchange.Compiler {
	return soundchange.NewCompiler(p.Language, p.Pool, p.Rewrites)
}

// Build imports the document into a project. Rules that fail to compile end
// up in the book's broken list rather than failing the build.
func (d *Document) Build() (*Project, error) {
	const op = "langfile.Build"

	rewrites := inventory.NewRewriteRules(d.Rewrites...)

	categories := make([]inventory.Category, 0, len(d.Categories))
	for _, c := range d.Categories {
		members, err := parsePhonemes(c.Members)
		if err != nil {
			return nil, clerrors.Wrapf(err, clerrors.KindValidation, op, "category %q", c.Abbrev)
		}
		categories = append(categories, inventory.Category{
			Abbrev:   c.Abbrev,
			Name:     c.Name,
			Members:  c.Phonemes,
			Phonemes: members,
		})
	}

	lang, err := inventory.Import(categories, d.Romanization, rewrites)
	if err != nil {
		return nil, err
	}

	loose, err := parsePhonemes(d.Phonemes)
	if err != nil {
		return nil, clerrors.Wrap(err, clerrors.KindValidation, op, "ungrouped phonemes")
	}
	for _, p := range loose {
		lang.Intern(p, d.Romanization)
	}

	p := &Project{
		Name:     d.Name,
		Language: lang,
		Pool:     inventory.NewPool(),
		Rewrites: rewrites,
		Book:     soundchange.NewBook(),
	}
	p.Book.Compile(p.Compiler(), d.Rules)

	for _, word := range d.Lexicon {
		if word = strings.TrimSpace(word); word != "" {
			p.Lexicon = append(p.Lexicon, word)
		}
	}
	return p, nil
}

func parsePhonemes(entries []string) ([]inventory.Phoneme, error) {
	out := make([]inventory.Phoneme, 0, len(entries))
	for _, e := range entries {
		p, err := inventory.ParsePhoneme(e)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Export converts a project back to a document. Categories list their
// members explicitly, graphemes go to the romanization table, and the rules
// are the canonical text of every active rule followed by the broken lines
// as they were written.
func Export(p *Project, name string) *Document {
	if name == "" {
		name = p.Name
	}
	doc := &Document{Name: name}

	for _, gk := range p.Language.Groups() {
		g, err := p.Language.Group(gk)
		if err != nil {
			continue
		}
		c := Category{Abbrev: string(g.Name.Abbrev), Name: g.Name.Name}
		for _, pk := range g.Members {
			if ph, err := p.Language.Phoneme(pk); err == nil {
				c.Members = append(c.Members, ph.Symbol)
			}
		}
		doc.Categories = append(doc.Categories, c)
	}

	for _, pk := range p.Language.Ungrouped() {
		if ph, err := p.Language.Phoneme(pk); err == nil {
			doc.Phonemes = append(doc.Phonemes, ph.Symbol)
		}
	}

	for _, pk := range p.Language.Phonemes() {
		ph, err := p.Language.Phoneme(pk)
		if err != nil || ph.Grapheme == "" {
			continue
		}
		if doc.Romanization == nil {
			doc.Romanization = make(map[string]string)
		}
		if _, exists := doc.Romanization[ph.Symbol]; !exists {
			doc.Romanization[ph.Symbol] = ph.Grapheme
		}
	}

	doc.Rewrites = p.Rewrites.Pairs()
	doc.Rules = p.Book.Strings(p.Language, p.Pool)
	for _, br := range p.Book.BrokenRules() {
		doc.Rules = append(doc.Rules, br.Line)
	}
	doc.Lexicon = append([]string(nil), p.Lexicon...)
	return doc
}
