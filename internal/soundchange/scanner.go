package soundchange

import (
	"strings"
	"unicode/utf8"

	"github.com/relicta-tech/conlang/internal/inventory"
)

// scanner matches inventory entries at a cursor. It makes one pass over the
// groups in inventory order and advances on every match, so a single call
// can emit several elements. Matches are not chosen by overall length.
type scanner struct {
	lang *inventory.Language
}

// scan returns the elements matched starting at pos and the new cursor.
// The cursor is unchanged when nothing matched.
func (s scanner) scan(text string, pos int) ([]Element, int) {
	if s.lang == nil {
		return nil, pos
	}

	var out []Element
	for _, gk := range s.lang.Groups() {
		if pos >= len(text) {
			return out, pos
		}
		g, err := s.lang.Group(gk)
		if err != nil {
			continue
		}

		rest := text[pos:]
		if g.Name.IsFull() && strings.HasPrefix(rest, g.Name.Name) {
			out = append(out, GroupRef(gk))
			pos += len(g.Name.Name)
			continue
		}
		if r, size := utf8.DecodeRuneInString(rest); size > 0 && r == g.Name.Abbrev {
			out = append(out, GroupRef(gk))
			pos += size
			continue
		}

		out, pos = s.phonemes(text, pos, g.Members, out)
	}

	// phonemes outside every group are still literal inventory entries
	if pos < len(text) {
		out, pos = s.phonemes(text, pos, s.lang.Ungrouped(), out)
	}
	return out, pos
}

func (s scanner) phonemes(text string, pos int, keys []inventory.PhonemeKey, out []Element) ([]Element, int) {
	for _, pk := range keys {
		if pos >= len(text) {
			break
		}
		p, err := s.lang.Phoneme(pk)
		if err != nil || p.Symbol == "" {
			continue
		}
		if strings.HasPrefix(text[pos:], p.Symbol) {
			out = append(out, PhonemeRef(pk, false))
			pos += len(p.Symbol)
		}
	}
	return out, pos
}

// matchesGroup reports whether text starts with any group name or
// abbreviation.
func (s scanner) matchesGroup(text string) bool {
	if s.lang == nil {
		return false
	}
	for _, gk := range s.lang.Groups() {
		g, err := s.lang.Group(gk)
		if err == nil && g.Name.Matches(text) {
			return true
		}
	}
	return false
}
