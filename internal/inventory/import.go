package inventory

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	clerrors "github.com/relicta-tech/conlang/internal/errors"
)

// Category is one raw "A=members" line of a language document. Members is
// segmented with SplitCategory; Phonemes lists further members explicitly.
// Name, when set, overrides the full name found through the rewrites.
type Category struct {
	Abbrev   string
	Name     string
	Members  string
	Phonemes []Phoneme
}

// SplitCategory segments the member text of a category into phoneme symbols.
//
// Whitespace-separated text is split on whitespace. Otherwise each position
// takes the first rewrite source that starts there, or one grapheme cluster.
func SplitCategory(text string, rewrites *RewriteRules) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if strings.ContainsFunc(text, unicode.IsSpace) {
		return strings.Fields(text)
	}

	sources := rewrites.Sources()
	var out []string
	for rest := text; rest != ""; {
		token := ""
		for _, src := range sources {
			if src != "" && strings.HasPrefix(rest, src) {
				token = src
				break
			}
		}
		if token == "" {
			token, _, _, _ = uniseg.FirstGraphemeClusterInString(rest, -1)
		}
		out = append(out, token)
		rest = rest[len(token):]
	}
	return out
}

// Import builds a language from raw categories. A rewrite whose target is a
// category abbreviation gives that group its full name; romanization maps
// symbols to graphemes. Identical symbols in different categories share one
// phoneme.
func Import(categories []Category, romanization map[string]string, rewrites *RewriteRules) (*Language, error) {
	const op = "inventory.Import"

	lang := New()
	for _, c := range categories {
		abbrevText := strings.TrimSpace(c.Abbrev)
		abbrev, size := utf8.DecodeRuneInString(abbrevText)
		if size == 0 {
			return nil, clerrors.Validation(op, "category without abbreviation")
		}

		name := AbbrevName(abbrev)
		if full, ok := rewrites.ByTo(abbrevText); ok && full != "" {
			name = FullName(full, abbrev)
		}
		if full := strings.TrimSpace(c.Name); full != "" {
			name = FullName(full, abbrev)
		}

		var members []PhonemeKey
		for _, sym := range SplitCategory(c.Members, rewrites) {
			members = append(members, lang.Intern(Phoneme{Symbol: sym}, romanization))
		}
		for _, p := range c.Phonemes {
			if p.Symbol == "" {
				return nil, clerrors.Validationf(op, "category %q has an empty phoneme", abbrevText)
			}
			members = append(members, lang.Intern(p, romanization))
		}

		if _, err := lang.AddGroup(name, members...); err != nil {
			return nil, clerrors.Wrapf(err, clerrors.KindInternal, op, "category %q", abbrevText)
		}
	}
	return lang, nil
}

// Intern returns the phoneme with p's symbol, adding p when there is none.
// A missing grapheme is taken from romanization.
func (l *Language) Intern(p Phoneme, romanization map[string]string) PhonemeKey {
	if k, ok := l.Lookup(p.Symbol); ok {
		return k
	}
	if p.Grapheme == "" {
		p.Grapheme = romanization[p.Symbol]
	}
	return l.AddPhoneme(p)
}
