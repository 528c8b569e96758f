package soundchange

import (
	"strings"
	"unicode"

	"github.com/relicta-tech/conlang/internal/inventory"
)

// Arrow is the operator used when rendering rules.
const Arrow = "→"

// splitRule splits "T→R/S_E" (or "T/R/S_E") into its four field texts.
func splitRule(text string) ([4]string, bool) {
	var parts [4]string

	text = strings.TrimSpace(text)
	if text == "" || strings.ContainsFunc(text, unicode.IsSpace) {
		return parts, false
	}

	arrow := strings.IndexAny(text, "/"+Arrow)
	if arrow < 0 {
		return parts, false
	}
	width := len("/")
	if strings.HasPrefix(text[arrow:], Arrow) {
		width = len(Arrow)
	}

	target := text[:arrow]
	replacement, env, ok := strings.Cut(text[arrow+width:], "/")
	if !ok {
		return parts, false
	}
	start, end, ok := strings.Cut(env, "_")
	if !ok {
		return parts, false
	}

	parts = [4]string{target, replacement, start, end}
	for _, p := range parts {
		if strings.ContainsAny(p, "/_"+Arrow) {
			return [4]string{}, false
		}
	}
	return parts, true
}

// SoundChange is a compiled rule. Fields and elements are kept in step:
// boundary metadata is always derived from the element lists.
type SoundChange struct {
	fields   [4]Field
	elements [4][]Element
}

// New returns a rule with four empty fields.
func New() *SoundChange {
	return FromElements(nil, nil, nil, nil)
}

// FromElements builds a rule from raw element lists without parsing,
// recomputing the boundary metadata of each field.
func FromElements(target, replacement, envStart, envEnd []Element) *SoundChange {
	sc := &SoundChange{}
	for i, elems := range [4][]Element{target, replacement, envStart, envEnd} {
		sc.set(FieldKinds[i], cloneElements(elems))
	}
	return sc
}

func (sc *SoundChange) set(kind FieldKind, elems []Element) {
	if elems == nil {
		elems = []Element{}
	}
	sc.elements[kind] = elems
	sc.fields[kind] = fieldFor(kind, elems)
}

// Field returns the metadata of one field, or the zero Field for an
// unknown kind.
func (sc *SoundChange) Field(kind FieldKind) Field {
	if !kind.valid() {
		return Field{}
	}
	return sc.fields[kind]
}

// Elements returns a copy of one field's elements, or nil for an unknown
// kind.
func (sc *SoundChange) Elements(kind FieldKind) []Element {
	if !kind.valid() {
		return nil
	}
	return cloneElements(sc.elements[kind])
}

// Equal reports whether both rules have identical element trees.
func (sc *SoundChange) Equal(o *SoundChange) bool {
	for _, kind := range FieldKinds {
		if !equalElements(sc.elements[kind], o.elements[kind]) {
			return false
		}
	}
	return true
}

// Text renders the canonical rule text: phoneme symbols and group
// abbreviations. A group is written by its full name instead when its
// abbreviation, together with the text after it, would be matched first by
// an earlier group. Compiling the result against the same inventory gives
// the same element tree. Elements whose keys no longer resolve render as "?".
func (sc *SoundChange) Text(lang *inventory.Language, pool *inventory.Pool) string {
	return sc.render(renderer{lang: lang, pool: pool})
}

// Display renders the rule for people, preferring graphemes over symbols and
// writing groups in their "name (a)" form.
func (sc *SoundChange) Display(lang *inventory.Language, pool *inventory.Pool) string {
	return sc.render(renderer{lang: lang, pool: pool, graphemes: true})
}

func (sc *SoundChange) render(r renderer) string {
	var b strings.Builder
	r.elements(&b, sc.elements[Target])
	b.WriteString(Arrow)
	r.elements(&b, sc.elements[Replacement])
	b.WriteByte('/')
	r.elements(&b, sc.elements[EnvStart])
	b.WriteByte('_')
	r.elements(&b, sc.elements[EnvEnd])
	return b.String()
}

// Invalid reports whether any element references a phoneme or group that no
// longer exists.
func (sc *SoundChange) Invalid(lang *inventory.Language, pool *inventory.Pool) bool {
	r := renderer{lang: lang, pool: pool}
	for _, elems := range sc.elements {
		if r.stale(elems) {
			return true
		}
	}
	return false
}

// ElementText renders a single element the way Text does.
func ElementText(e Element, lang *inventory.Language, pool *inventory.Pool) string {
	return renderer{lang: lang, pool: pool}.element(e, "")
}

const staleText = "?"

type renderer struct {
	lang      *inventory.Language
	pool      *inventory.Pool
	graphemes bool
}

func (r renderer) elements(b *strings.Builder, elems []Element) {
	b.WriteString(r.join(elems))
}

// join renders elems back to front so each element sees the text that will
// follow it.
func (r renderer) join(elems []Element) string {
	rest := ""
	for i := len(elems) - 1; i >= 0; i-- {
		rest = r.element(elems[i], rest) + rest
	}
	return rest
}

func (r renderer) element(e Element, rest string) string {
	switch e.Kind {
	case ElementPhoneme:
		p, ok := r.phoneme(e)
		switch {
		case !ok:
			return staleText
		case r.graphemes:
			return p.Text()
		default:
			return p.Symbol
		}
	case ElementGroup:
		if r.lang == nil {
			return staleText
		}
		g, err := r.lang.Group(e.Group)
		if err != nil {
			return staleText
		}
		if r.graphemes {
			return g.Name.String()
		}
		abbrev := string(g.Name.Abbrev)
		if g.Name.IsFull() && r.shadowed(e.Group, abbrev+rest) {
			return g.Name.Name
		}
		return abbrev
	case ElementBoundary:
		return "#"
	case ElementAny:
		return "[" + r.join(e.Any) + "]"
	}
	return ""
}

// shadowed reports whether a group scanned before gk would match the start
// of text.
func (r renderer) shadowed(gk inventory.GroupKey, text string) bool {
	for _, other := range r.lang.Groups() {
		if other == gk {
			return false
		}
		g, err := r.lang.Group(other)
		if err != nil {
			continue
		}
		if g.Name.Matches(text) {
			return true
		}
		for _, pk := range g.Members {
			if p, err := r.lang.Phoneme(pk); err == nil && p.Symbol != "" && strings.HasPrefix(text, p.Symbol) {
				return true
			}
		}
	}
	return false
}

func (r renderer) phoneme(e Element) (inventory.Phoneme, bool) {
	var (
		p   inventory.Phoneme
		err error
	)
	switch {
	case e.Representative && r.pool != nil:
		p, err = r.pool.Phoneme(e.Phoneme)
	case !e.Representative && r.lang != nil:
		p, err = r.lang.Phoneme(e.Phoneme)
	default:
		return p, false
	}
	return p, err == nil
}

func (r renderer) stale(elems []Element) bool {
	for _, e := range elems {
		switch e.Kind {
		case ElementPhoneme:
			if _, ok := r.phoneme(e); !ok {
				return true
			}
		case ElementGroup:
			if r.lang == nil || !r.lang.HasGroup(e.Group) {
				return true
			}
		case ElementAny:
			if r.stale(e.Any) {
				return true
			}
		}
	}
	return false
}
