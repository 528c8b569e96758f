package inventory

import (
	clerrors "github.com/relicta-tech/conlang/internal/errors"
)

// Representative is a placeholder phoneme allocated for rule text that
// matches nothing in the inventory.
type Representative struct {
	Phoneme Phoneme
	Usage   int
}

// Pool stores representative phonemes. Every allocation creates a new entry,
// even when an earlier entry holds the same text.
type Pool struct {
	entries arena[Representative]
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Allocate stores text as a new representative with usage 1.
func (p *Pool) Allocate(text string) PhonemeKey {
	return PhonemeKey{p.entries.insert(Representative{
		Phoneme: Phoneme{Symbol: text},
		Usage:   1,
	})}
}

// IncrementUsage bumps the usage counter of k.
func (p *Pool) IncrementUsage(k PhonemeKey) error {
	r, ok := p.entries.get(k.k)
	if !ok {
		return clerrors.NotFound("inventory.IncrementUsage", "stale representative key "+k.String())
	}
	r.Usage++
	return nil
}

// Usage returns the usage counter of k.
func (p *Pool) Usage(k PhonemeKey) (int, error) {
	r, ok := p.entries.get(k.k)
	if !ok {
		return 0, clerrors.NotFound("inventory.Usage", "stale representative key "+k.String())
	}
	return r.Usage, nil
}

// Phoneme resolves k.
func (p *Pool) Phoneme(k PhonemeKey) (Phoneme, error) {
	r, ok := p.entries.get(k.k)
	if !ok {
		return Phoneme{}, clerrors.NotFound("inventory.Pool.Phoneme", "stale representative key "+k.String())
	}
	return r.Phoneme, nil
}

// Release drops k from the pool.
func (p *Pool) Release(k PhonemeKey) bool {
	_, ok := p.entries.remove(k.k)
	return ok
}

// Len returns the number of live entries.
func (p *Pool) Len() int { return p.entries.len() }

// Keys returns the live keys in slot order.
func (p *Pool) Keys() []PhonemeKey {
	keys := p.entries.keys()
	out := make([]PhonemeKey, len(keys))
	for i, k := range keys {
		out[i] = PhonemeKey{k}
	}
	return out
}
