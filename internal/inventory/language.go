// Package inventory holds the phoneme and group inventory of one constructed
// language together with the auxiliary representative symbol pool.
//
// Phonemes and groups live in generation-tagged arenas. A key stays valid
// exactly as long as the value it names; removing a phoneme also removes it
// from every group that lists it.
package inventory

import (
	clerrors "github.com/relicta-tech/conlang/internal/errors"
)

// Language owns every phoneme and group of one constructed language.
type Language struct {
	phonemes arena[Phoneme]
	groups   arena[group]
	// symbols maps phoneme symbols to keys so imports deduplicate.
	symbols map[string]PhonemeKey
}

// New returns an empty language.
func New() *Language {
	return &Language{symbols: make(map[string]PhonemeKey)}
}

// AddPhoneme stores p and returns its key.
func (l *Language) AddPhoneme(p Phoneme) PhonemeKey {
	k := PhonemeKey{l.phonemes.insert(p)}
	if _, exists := l.symbols[p.Symbol]; !exists {
		l.symbols[p.Symbol] = k
	}
	return k
}

// SetPhoneme replaces the phoneme stored under k.
func (l *Language) SetPhoneme(k PhonemeKey, p Phoneme) error {
	cur, ok := l.phonemes.get(k.k)
	if !ok {
		return clerrors.NotFound("inventory.SetPhoneme", "stale phoneme key "+k.String())
	}
	old := cur.Symbol
	*cur = p
	if old != p.Symbol {
		l.unindex(old, k)
		if _, exists := l.symbols[p.Symbol]; !exists {
			l.symbols[p.Symbol] = k
		}
	}
	return nil
}

// RemovePhoneme deletes the phoneme and drops it from every group.
func (l *Language) RemovePhoneme(k PhonemeKey) (Phoneme, error) {
	p, ok := l.phonemes.remove(k.k)
	if !ok {
		return Phoneme{}, clerrors.NotFound("inventory.RemovePhoneme", "stale phoneme key "+k.String())
	}
	for _, gk := range l.groups.keys() {
		g, _ := l.groups.get(gk)
		g.remove(k)
	}
	l.unindex(p.Symbol, k)
	return p, nil
}

// unindex drops symbol from the lookup table when it points at k and
// re-points it at another phoneme sharing the same symbol, if any.
func (l *Language) unindex(symbol string, k PhonemeKey) {
	if cur, ok := l.symbols[symbol]; !ok || cur != k {
		return
	}
	delete(l.symbols, symbol)
	for _, pk := range l.phonemes.keys() {
		p, _ := l.phonemes.get(pk)
		if p.Symbol == symbol {
			l.symbols[symbol] = PhonemeKey{pk}
			return
		}
	}
}

// Phoneme resolves k.
func (l *Language) Phoneme(k PhonemeKey) (Phoneme, error) {
	p, ok := l.phonemes.get(k.k)
	if !ok {
		return Phoneme{}, clerrors.NotFound("inventory.Phoneme", "stale phoneme key "+k.String())
	}
	return *p, nil
}

// HasPhoneme reports whether k resolves.
func (l *Language) HasPhoneme(k PhonemeKey) bool {
	_, ok := l.phonemes.get(k.k)
	return ok
}

// Phonemes returns every phoneme key in allocation slot order.
func (l *Language) Phonemes() []PhonemeKey {
	keys := l.phonemes.keys()
	out := make([]PhonemeKey, len(keys))
	for i, k := range keys {
		out[i] = PhonemeKey{k}
	}
	return out
}

// PhonemeCount returns the number of phonemes.
func (l *Language) PhonemeCount() int { return l.phonemes.len() }

// Lookup returns the phoneme whose symbol is exactly symbol.
func (l *Language) Lookup(symbol string) (PhonemeKey, bool) {
	k, ok := l.symbols[symbol]
	return k, ok
}

// HasSymbol reports whether any phoneme uses symbol.
func (l *Language) HasSymbol(symbol string) bool {
	_, ok := l.symbols[symbol]
	return ok
}

// AddGroup creates a group with the given members. Stale member keys are
// rejected.
func (l *Language) AddGroup(name GroupName, members ...PhonemeKey) (GroupKey, error) {
	g := group{name: name}
	for _, m := range members {
		if !l.HasPhoneme(m) {
			return GroupKey{}, clerrors.NotFound("inventory.AddGroup", "stale phoneme key "+m.String())
		}
		g.add(m)
	}
	return GroupKey{l.groups.insert(g)}, nil
}

// RenameGroup changes a group's name.
func (l *Language) RenameGroup(k GroupKey, name GroupName) error {
	g, ok := l.groups.get(k.k)
	if !ok {
		return clerrors.NotFound("inventory.RenameGroup", "stale group key "+k.String())
	}
	g.name = name
	return nil
}

// RemoveGroup deletes a group. Its member phonemes are untouched.
func (l *Language) RemoveGroup(k GroupKey) error {
	if _, ok := l.groups.remove(k.k); !ok {
		return clerrors.NotFound("inventory.RemoveGroup", "stale group key "+k.String())
	}
	return nil
}

// Group resolves k into a snapshot of the group.
func (l *Language) Group(k GroupKey) (Group, error) {
	g, ok := l.groups.get(k.k)
	if !ok {
		return Group{}, clerrors.NotFound("inventory.Group", "stale group key "+k.String())
	}
	return Group{
		Key:     k,
		Name:    g.name,
		Members: append([]PhonemeKey(nil), g.members...),
	}, nil
}

// HasGroup reports whether k resolves.
func (l *Language) HasGroup(k GroupKey) bool {
	_, ok := l.groups.get(k.k)
	return ok
}

// Groups returns every group key in allocation slot order.
func (l *Language) Groups() []GroupKey {
	keys := l.groups.keys()
	out := make([]GroupKey, len(keys))
	for i, k := range keys {
		out[i] = GroupKey{k}
	}
	return out
}

// GroupCount returns the number of groups.
func (l *Language) GroupCount() int { return l.groups.len() }

// AddMember puts phoneme p in group g.
func (l *Language) AddMember(g GroupKey, p PhonemeKey) error {
	const op = "inventory.AddMember"
	grp, ok := l.groups.get(g.k)
	if !ok {
		return clerrors.NotFound(op, "stale group key "+g.String())
	}
	if !l.HasPhoneme(p) {
		return clerrors.NotFound(op, "stale phoneme key "+p.String())
	}
	grp.add(p)
	return nil
}

// RemoveMember takes phoneme p out of group g. It reports whether p was a
// member.
func (l *Language) RemoveMember(g GroupKey, p PhonemeKey) (bool, error) {
	grp, ok := l.groups.get(g.k)
	if !ok {
		return false, clerrors.NotFound("inventory.RemoveMember", "stale group key "+g.String())
	}
	return grp.remove(p), nil
}

// Members returns the member phonemes of g in key order.
func (l *Language) Members(g GroupKey) ([]PhonemeKey, error) {
	grp, ok := l.groups.get(g.k)
	if !ok {
		return nil, clerrors.NotFound("inventory.Members", "stale group key "+g.String())
	}
	return append([]PhonemeKey(nil), grp.members...), nil
}

// Ungrouped returns the phonemes that belong to no group, in slot order.
func (l *Language) Ungrouped() []PhonemeKey {
	grouped := make(map[PhonemeKey]struct{})
	for _, gk := range l.groups.keys() {
		g, _ := l.groups.get(gk)
		for _, m := range g.members {
			grouped[m] = struct{}{}
		}
	}
	var out []PhonemeKey
	for _, k := range l.Phonemes() {
		if _, ok := grouped[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

// RemovePhonemesWhere removes every phoneme for which drop returns true.
// Keys are collected before the first removal, so drop may inspect the
// language freely. It returns the number removed.
func (l *Language) RemovePhonemesWhere(drop func(PhonemeKey, Phoneme) bool) int {
	n := 0
	for _, k := range l.Phonemes() {
		p, err := l.Phoneme(k)
		if err != nil || !drop(k, p) {
			continue
		}
		if _, err := l.RemovePhoneme(k); err == nil {
			n++
		}
	}
	return n
}

// RemoveGroupsWhere removes every group for which drop returns true.
func (l *Language) RemoveGroupsWhere(drop func(Group) bool) int {
	n := 0
	for _, k := range l.Groups() {
		g, err := l.Group(k)
		if err != nil || !drop(g) {
			continue
		}
		if l.RemoveGroup(k) == nil {
			n++
		}
	}
	return n
}
