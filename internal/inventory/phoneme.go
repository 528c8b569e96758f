package inventory

import (
	"strings"
	"unicode"

	clerrors "github.com/relicta-tech/conlang/internal/errors"
)

// PhonemeKey is a stable handle to a phoneme. It stays valid exactly as long
// as the phoneme it names exists.
type PhonemeKey struct{ k key }

// String returns a compact form of the key for logs and JSON output.
func (k PhonemeKey) String() string { return "p" + k.k.String() }

// IsZero reports whether k was never assigned.
func (k PhonemeKey) IsZero() bool { return k.k.gen == 0 }

// Less orders keys by allocation slot.
func (k PhonemeKey) Less(o PhonemeKey) bool { return k.k.less(o.k) }

// Phoneme is one sound unit of the inventory.
type Phoneme struct {
	// Symbol is the canonical surface form used in rule text.
	Symbol string `json:"symbol"`
	// Grapheme is the optional display spelling.
	Grapheme string `json:"grapheme,omitempty"`
}

// String returns "symbol" or "symbol [grapheme]".
func (p Phoneme) String() string {
	if p.Grapheme == "" {
		return p.Symbol
	}
	return p.Symbol + " [" + p.Grapheme + "]"
}

// Text returns the grapheme when one is set, otherwise the symbol.
func (p Phoneme) Text() string {
	if p.Grapheme != "" {
		return p.Grapheme
	}
	return p.Symbol
}

// ParsePhoneme parses the "symbol" or "symbol [grapheme]" form.
func ParsePhoneme(text string) (Phoneme, error) {
	const op = "inventory.ParsePhoneme"

	text = strings.TrimSpace(text)
	symbol, rest, hasGrapheme := strings.Cut(text, "[")
	symbol = strings.TrimSpace(symbol)

	if symbol == "" {
		return Phoneme{}, clerrors.Validationf(op, "missing symbol in %q", text)
	}
	if strings.ContainsFunc(symbol, unicode.IsSpace) || strings.Contains(symbol, "]") {
		return Phoneme{}, clerrors.Validationf(op, "invalid symbol %q", symbol)
	}
	if !hasGrapheme {
		return Phoneme{Symbol: symbol}, nil
	}

	grapheme, tail, closed := strings.Cut(rest, "]")
	grapheme = strings.TrimSpace(grapheme)
	if !closed || strings.TrimSpace(tail) != "" {
		return Phoneme{}, clerrors.Validationf(op, "unterminated grapheme in %q", text)
	}
	if grapheme == "" || strings.ContainsAny(grapheme, "[]") {
		return Phoneme{}, clerrors.Validationf(op, "invalid grapheme in %q", text)
	}
	return Phoneme{Symbol: symbol, Grapheme: grapheme}, nil
}
