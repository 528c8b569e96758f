package inventory

import (
	"strings"
	"unicode/utf8"

	clerrors "github.com/relicta-tech/conlang/internal/errors"
)

// GroupKey is a stable handle to a group.
type GroupKey struct{ k key }

// String returns a compact form of the key for logs and JSON output.
func (k GroupKey) String() string { return "g" + k.k.String() }

// IsZero reports whether k was never assigned.
func (k GroupKey) IsZero() bool { return k.k.gen == 0 }

// GroupName names a phoneme class. A full name carries a display name and a
// one-character abbreviation; a bare name is the abbreviation alone.
type GroupName struct {
	Name   string
	Abbrev rune
}

// FullName returns a group name with both a display name and an abbreviation.
func FullName(name string, abbrev rune) GroupName {
	return GroupName{Name: name, Abbrev: abbrev}
}

// AbbrevName returns an abbreviation-only group name.
func AbbrevName(abbrev rune) GroupName {
	return GroupName{Abbrev: abbrev}
}

// IsFull reports whether the name has a display name.
func (n GroupName) IsFull() bool { return n.Name != "" }

// String returns "name (a)" for full names and "a" otherwise.
func (n GroupName) String() string {
	if n.IsFull() {
		return n.Name + " (" + string(n.Abbrev) + ")"
	}
	return string(n.Abbrev)
}

// Matches reports whether text begins with the display name or the
// abbreviation.
func (n GroupName) Matches(text string) bool {
	if n.IsFull() && strings.HasPrefix(text, n.Name) {
		return true
	}
	r, size := utf8.DecodeRuneInString(text)
	return size > 0 && r == n.Abbrev
}

// ParseGroupName parses "name (a)" or a single character.
func ParseGroupName(text string) (GroupName, error) {
	const op = "inventory.ParseGroupName"

	text = strings.TrimSpace(text)
	if text == "" {
		return GroupName{}, clerrors.Validation(op, "empty group name")
	}

	if strings.HasSuffix(text, ")") {
		open := strings.LastIndex(text, "(")
		if open < 0 {
			return GroupName{}, clerrors.Validationf(op, "unbalanced parenthesis in %q", text)
		}
		name := strings.TrimSpace(text[:open])
		inner := strings.TrimSpace(text[open+1 : len(text)-1])
		if name == "" {
			return GroupName{}, clerrors.Validationf(op, "missing name in %q", text)
		}
		if utf8.RuneCountInString(inner) != 1 {
			return GroupName{}, clerrors.Validationf(op, "abbreviation must be one character in %q", text)
		}
		r, _ := utf8.DecodeRuneInString(inner)
		return FullName(name, r), nil
	}

	if utf8.RuneCountInString(text) != 1 {
		return GroupName{}, clerrors.Validationf(op, "expected \"name (a)\" or a single character, got %q", text)
	}
	r, _ := utf8.DecodeRuneInString(text)
	return AbbrevName(r), nil
}

// Group is a read-only view of a group.
type Group struct {
	Key     GroupKey
	Name    GroupName
	Members []PhonemeKey
}

type group struct {
	name    GroupName
	members []PhonemeKey
}

func (g *group) indexOf(p PhonemeKey) (int, bool) {
	lo, hi := 0, len(g.members)
	for lo < hi {
		mid := (lo + hi) / 2
		if g.members[mid].Less(p) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, lo < len(g.members) && g.members[lo] == p
}

func (g *group) add(p PhonemeKey) {
	i, found := g.indexOf(p)
	if found {
		return
	}
	g.members = append(g.members, PhonemeKey{})
	copy(g.members[i+1:], g.members[i:])
	g.members[i] = p
}

func (g *group) remove(p PhonemeKey) bool {
	i, found := g.indexOf(p)
	if !found {
		return false
	}
	g.members = append(g.members[:i], g.members[i+1:]...)
	return true
}
