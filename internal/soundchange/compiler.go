package soundchange

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/relicta-tech/conlang/internal/inventory"
)

// Compiler turns rule text into SoundChange values against one inventory.
// Unmatched text is allocated in the pool, including text in rules that end
// up failing.
type Compiler struct {
	lang     *inventory.Language
	pool     *inventory.Pool
	rewrites *inventory.RewriteRules
	scan     scanner
}

// NewCompiler creates a compiler. A nil language compiles every symbol to a
// representative; a nil pool gets a fresh one.
func NewCompiler(lang *inventory.Language, pool *inventory.Pool, rewrites *inventory.RewriteRules) *Compiler {
	if pool == nil {
		pool = inventory.NewPool()
	}
	return &Compiler{
		lang:     lang,
		pool:     pool,
		rewrites: rewrites,
		scan:     scanner{lang: lang},
	}
}

// Pool returns the representative pool the compiler allocates into.
func (c *Compiler) Pool() *inventory.Pool {
	return c.pool
}

// Compile compiles one rule line. Every field is compiled even when an
// earlier one fails; the returned *ParseError lists all problems.
func (c *Compiler) Compile(text string) (*SoundChange, error) {
	parts, ok := splitRule(text)
	if !ok {
		return nil, formatError(text)
	}

	var (
		elems [4][]Element
		errs  []FieldParseError
	)
	for i, kind := range FieldKinds {
		var fieldErrs []FieldParseError
		elems[i], fieldErrs = c.CompileField(kind, parts[i])
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return nil, &ParseError{Kind: ParseField, Text: text, Fields: errs}
	}
	return FromElements(elems[0], elems[1], elems[2], elems[3]), nil
}

// CompileField compiles the text of a single field.
func (c *Compiler) CompileField(kind FieldKind, text string) ([]Element, []FieldParseError) {
	st := &fieldState{c: c, kind: kind}
	elems := st.compile(text, 0, true, true, false)
	if elems == nil {
		elems = []Element{}
	}
	return elems, st.errs
}

// Parse compiles text with a throwaway compiler.
func Parse(text string, lang *inventory.Language, pool *inventory.Pool, rewrites *inventory.RewriteRules) (*SoundChange, error) {
	return NewCompiler(lang, pool, rewrites).Compile(text)
}

// fieldState carries per-field bookkeeping through bracket recursion.
type fieldState struct {
	c          *Compiler
	kind       FieldKind
	boundaries int
	errs       []FieldParseError
}

func (st *fieldState) fail(kind FieldErrorKind, offset int) {
	st.errs = append(st.errs, FieldParseError{Field: st.kind, Kind: kind, Offset: offset})
}

// compile consumes text. base is the offset of text within the field. For a
// nested call head and tail are the position of the enclosing disjunction
// and apply to every alternative.
func (st *fieldState) compile(text string, base int, head, tail, nested bool) []Element {
	var out []Element
	emitted := func() {
		if !nested {
			head = false
		}
	}

	for pos := 0; pos < len(text); {
		if elems, next := st.c.scan.scan(text, pos); next > pos {
			out = append(out, elems...)
			pos = next
			emitted()
			continue
		}

		switch text[pos] {
		case '[':
			if nested {
				st.fail(NestedBrackets, base+pos)
				pos++
				continue
			}
			if end := strings.IndexByte(text[pos+1:], ']'); end >= 0 {
				closing := pos + 1 + end
				inner := st.compile(text[pos+1:closing], base+pos+1, head, closing+1 == len(text), true)
				out = append(out, Any(inner...))
				pos = closing + 1
				emitted()
				continue
			}
		case '#':
			atTail := tail
			if !nested {
				atTail = pos+1 == len(text)
			}
			if st.boundary(base+pos, head, atTail) {
				out = append(out, Boundary())
			}
			pos++
			emitted()
			continue
		}

		token := st.c.representative(text[pos:])
		out = append(out, PhonemeRef(st.c.pool.Allocate(token), true))
		pos += len(token)
		emitted()
	}
	return out
}

// boundary validates a '#' and reports whether it is accepted. Every '#'
// counts toward the field total, accepted or not.
func (st *fieldState) boundary(offset int, head, tail bool) bool {
	st.boundaries++
	if st.boundaries > 1 {
		st.fail(MultipleBoundaries, offset)
		return false
	}
	switch st.kind {
	case EnvStart:
		if !head {
			st.fail(BoundaryNotAtStart, offset)
			return false
		}
	case EnvEnd:
		if !tail {
			st.fail(BoundaryNotAtEnd, offset)
			return false
		}
	default:
		st.fail(BoundaryNotAllowed, offset)
		return false
	}
	return true
}

// representative picks the text of one unmatched token at the start of rest:
// the first rewrite source that is neither a known symbol nor a group name,
// else one grapheme cluster.
func (c *Compiler) representative(rest string) string {
	for _, src := range c.rewrites.Sources() {
		if src == "" || !strings.HasPrefix(rest, src) {
			continue
		}
		if c.lang != nil && c.lang.HasSymbol(src) {
			continue
		}
		if c.scan.matchesGroup(src) {
			continue
		}
		return src
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(rest, -1)
	return cluster
}
