package inventory

// Rewrite is one "from|to" pair.
type Rewrite struct {
	From string `json:"from" yaml:"from" toml:"from"`
	To   string `json:"to" yaml:"to" toml:"to"`
}

// RewriteRules is an ordered one-to-one table of rewrite pairs. Each side is
// unique: adding a pair evicts any earlier pair sharing either side. A nil
// *RewriteRules is an empty table.
type RewriteRules struct {
	pairs []Rewrite
}

// NewRewriteRules builds a table from pairs, applying Add in order.
func NewRewriteRules(pairs ...Rewrite) *RewriteRules {
	r := &RewriteRules{}
	for _, p := range pairs {
		r.Add(p.From, p.To)
	}
	return r
}

// Add inserts from|to. Existing pairs with the same from or the same to are
// removed first; the new pair goes last.
func (r *RewriteRules) Add(from, to string) {
	kept := r.pairs[:0]
	for _, p := range r.pairs {
		if p.From != from && p.To != to {
			kept = append(kept, p)
		}
	}
	r.pairs = append(kept, Rewrite{From: from, To: to})
}

// Pairs returns a copy of the table in insertion order.
func (r *RewriteRules) Pairs() []Rewrite {
	if r == nil {
		return nil
	}
	return append([]Rewrite(nil), r.pairs...)
}

// Len returns the number of pairs.
func (r *RewriteRules) Len() int {
	if r == nil {
		return 0
	}
	return len(r.pairs)
}

// ByFrom returns the target of the pair whose source is from.
func (r *RewriteRules) ByFrom(from string) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, p := range r.pairs {
		if p.From == from {
			return p.To, true
		}
	}
	return "", false
}

// ByTo returns the source of the pair whose target is to.
func (r *RewriteRules) ByTo(to string) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, p := range r.pairs {
		if p.To == to {
			return p.From, true
		}
	}
	return "", false
}

// Sources returns every source string in insertion order.
func (r *RewriteRules) Sources() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.pairs))
	for i, p := range r.pairs {
		out[i] = p.From
	}
	return out
}
