package soundchange

import (
	"strings"

	clerrors "github.com/relicta-tech/conlang/internal/errors"
	"github.com/relicta-tech/conlang/internal/inventory"
)

// BrokenRule is a rule line that did not compile.
type BrokenRule struct {
	Line string
	Err  error
}

// Book is the ordered list of active rules of a language together with the
// lines that failed to compile.
type Book struct {
	rules  []*SoundChange
	broken []BrokenRule
}

// NewBook returns an empty book.
func NewBook() *Book {
	return &Book{}
}

// Compile compiles every non-blank line. Failing lines are recorded as broken
// and never stop the remaining lines. It returns the number of rules added.
func (b *Book) Compile(c *Compiler, lines []string) int {
	added := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sc, err := c.Compile(line)
		if err != nil {
			b.broken = append(b.broken, BrokenRule{Line: line, Err: err})
			continue
		}
		b.rules = append(b.rules, sc)
		added++
	}
	return added
}

// Add appends a compiled rule.
func (b *Book) Add(sc *SoundChange) {
	b.rules = append(b.rules, sc)
}

// Len returns the number of active rules.
func (b *Book) Len() int { return len(b.rules) }

// Rules returns the active rules in order.
func (b *Book) Rules() []*SoundChange {
	return append([]*SoundChange(nil), b.rules...)
}

// Rule returns the active rule at i.
func (b *Book) Rule(i int) (*SoundChange, error) {
	if err := b.check("soundchange.Book.Rule", i); err != nil {
		return nil, err
	}
	return b.rules[i], nil
}

// Remove deletes the active rule at i.
func (b *Book) Remove(i int) error {
	if err := b.check("soundchange.Book.Remove", i); err != nil {
		return err
	}
	b.rules = append(b.rules[:i], b.rules[i+1:]...)
	return nil
}

// MoveUp swaps rule i with its predecessor. Moving the first rule is a no-op.
func (b *Book) MoveUp(i int) error {
	if err := b.check("soundchange.Book.MoveUp", i); err != nil {
		return err
	}
	if i > 0 {
		b.rules[i-1], b.rules[i] = b.rules[i], b.rules[i-1]
	}
	return nil
}

// MoveDown swaps rule i with its successor. Moving the last rule is a no-op.
func (b *Book) MoveDown(i int) error {
	if err := b.check("soundchange.Book.MoveDown", i); err != nil {
		return err
	}
	if i < len(b.rules)-1 {
		b.rules[i+1], b.rules[i] = b.rules[i], b.rules[i+1]
	}
	return nil
}

// Strings renders every active rule in canonical text.
func (b *Book) Strings(lang *inventory.Language, pool *inventory.Pool) []string {
	out := make([]string, len(b.rules))
	for i, sc := range b.rules {
		out[i] = sc.Text(lang, pool)
	}
	return out
}

// Broken returns the error text of every broken line.
func (b *Book) Broken() []string {
	out := make([]string, len(b.broken))
	for i, br := range b.broken {
		out[i] = br.Err.Error()
	}
	return out
}

// BrokenRules returns the broken lines with their errors.
func (b *Book) BrokenRules() []BrokenRule {
	return append([]BrokenRule(nil), b.broken...)
}

func (b *Book) check(op string, i int) error {
	if i < 0 || i >= len(b.rules) {
		return clerrors.Validationf(op, "rule index %d out of range [0,%d)", i, len(b.rules))
	}
	return nil
}
