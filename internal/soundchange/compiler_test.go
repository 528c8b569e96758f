package soundchange

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relicta-tech/conlang/internal/inventory"
)

type fixture struct {
	lang  *inventory.Language
	pool  *inventory.Pool
	c     *Compiler
	vowel inventory.GroupKey
	a, e  inventory.PhonemeKey
	t     inventory.PhonemeKey
	n     inventory.PhonemeKey
}

// newFixture builds an inventory with group Vowel (V) = {a, e} and the
// ungrouped phonemes t and n.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{lang: inventory.New(), pool: inventory.NewPool()}
	f.a = f.lang.AddPhoneme(inventory.Phoneme{Symbol: "a"})
	f.e = f.lang.AddPhoneme(inventory.Phoneme{Symbol: "e", Grapheme: "é"})
	f.t = f.lang.AddPhoneme(inventory.Phoneme{Symbol: "t"})
	f.n = f.lang.AddPhoneme(inventory.Phoneme{Symbol: "n"})

	var err error
	f.vowel, err = f.lang.AddGroup(inventory.FullName("Vowel", 'V'), f.a, f.e)
	require.NoError(t, err)

	f.c = NewCompiler(f.lang, f.pool, nil)
	return f
}

func (f *fixture) text(t *testing.T, elems []Element) string {
	t.Helper()
	out := ""
	for _, e := range elems {
		out += ElementText(e, f.lang, f.pool)
	}
	return out
}

func fieldErrorKinds(errs []FieldParseError) []FieldErrorKind {
	out := make([]FieldErrorKind, len(errs))
	for i, e := range errs {
		out[i] = e.Kind
	}
	return out
}

func TestCompile_EndToEnd(t *testing.T) {
	f := newFixture(t)

	sc, err := f.c.Compile("t→d/V_#")
	require.NoError(t, err)

	assert.Equal(t, []Element{PhonemeRef(f.t, false)}, sc.Elements(Target))

	repl := sc.Elements(Replacement)
	require.Len(t, repl, 1)
	assert.Equal(t, ElementPhoneme, repl[0].Kind)
	assert.True(t, repl[0].Representative)
	assert.Equal(t, "d", f.text(t, repl))

	assert.Equal(t, []Element{GroupRef(f.vowel)}, sc.Elements(EnvStart))
	assert.Equal(t, []Element{Boundary()}, sc.Elements(EnvEnd))
	assert.True(t, sc.Field(EnvEnd).HasBoundary)
	assert.False(t, sc.Field(EnvStart).HasBoundary)

	assert.Equal(t, "t→d/V_#", sc.Text(f.lang, f.pool))
	assert.Equal(t, "t→d/Vowel (V)_#", sc.Display(f.lang, f.pool))
}

func TestCompile_SlashArrow(t *testing.T) {
	f := newFixture(t)

	sc, err := f.c.Compile("a/e/t_n")
	require.NoError(t, err)
	assert.Equal(t, "a→e/t_n", sc.Text(f.lang, f.pool))
	assert.Equal(t, "a→é/t_n", sc.Display(f.lang, f.pool))
}

func TestCompile_Format(t *testing.T) {
	f := newFixture(t)

	tests := []string{
		"t→d_V",
		"",
		"t→d/V",
		"t d/V_#",
		"td",
		"t→d/V_#_a",
		"t→d/V_#/a",
		"t/d→e/V_#",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := f.c.Compile(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFormat)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, ParseFormat, pe.Kind)
			assert.Equal(t, input, pe.Text)
		})
	}
}

func TestCompile_EmptyFields(t *testing.T) {
	f := newFixture(t)

	sc, err := f.c.Compile("a→/_")
	require.NoError(t, err)
	assert.Empty(t, sc.Elements(Replacement))
	assert.Empty(t, sc.Elements(EnvStart))
	assert.Equal(t, "a→/_", sc.Text(f.lang, f.pool))
}

func TestCompileField_Boundaries(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		kind     FieldKind
		input    string
		wantErrs []FieldErrorKind
		boundary bool
	}{
		{name: "start at head", kind: EnvStart, input: "#V", boundary: true},
		{name: "start not at head", kind: EnvStart, input: "V#", wantErrs: []FieldErrorKind{BoundaryNotAtStart}},
		{name: "end at tail", kind: EnvEnd, input: "V#", boundary: true},
		{name: "end not at tail", kind: EnvEnd, input: "#V", wantErrs: []FieldErrorKind{BoundaryNotAtEnd}},
		{name: "target", kind: Target, input: "#", wantErrs: []FieldErrorKind{BoundaryNotAllowed}},
		{name: "replacement", kind: Replacement, input: "#", wantErrs: []FieldErrorKind{BoundaryNotAllowed}},
		{name: "double start", kind: EnvStart, input: "##", wantErrs: []FieldErrorKind{MultipleBoundaries}},
		{name: "double end", kind: EnvEnd, input: "##", wantErrs: []FieldErrorKind{BoundaryNotAtEnd, MultipleBoundaries}},
		{name: "double target", kind: Target, input: "##", wantErrs: []FieldErrorKind{BoundaryNotAllowed, MultipleBoundaries}},
		{name: "bracket at head", kind: EnvStart, input: "[#t]a", boundary: true},
		{name: "bracket at tail", kind: EnvEnd, input: "a[t#]", boundary: true},
		{name: "bracket not at tail", kind: EnvEnd, input: "[t#]a", wantErrs: []FieldErrorKind{BoundaryNotAtEnd}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			elems, errs := f.c.CompileField(tt.kind, tt.input)
			if tt.wantErrs != nil {
				assert.Equal(t, tt.wantErrs, fieldErrorKinds(errs))
				for _, fe := range errs {
					assert.Equal(t, tt.kind, fe.Field)
				}
				return
			}
			require.Empty(t, errs)
			assert.Equal(t, tt.boundary, fieldFor(tt.kind, elems).HasBoundary)
		})
	}
}

func TestCompileField_DoubleBoundaryEveryField(t *testing.T) {
	f := newFixture(t)
	for _, kind := range FieldKinds {
		t.Run(kind.String(), func(t *testing.T) {
			_, errs := f.c.CompileField(kind, "##")
			assert.Contains(t, fieldErrorKinds(errs), MultipleBoundaries)
		})
	}
}

func TestCompileField_Brackets(t *testing.T) {
	f := newFixture(t)

	elems, errs := f.c.CompileField(Target, "[Vn]")
	require.Empty(t, errs)
	assert.Equal(t, []Element{Any(GroupRef(f.vowel), PhonemeRef(f.n, false))}, elems)

	_, errs = f.c.CompileField(Target, "[[V]]")
	require.Len(t, errs, 1)
	assert.Equal(t, NestedBrackets, errs[0].Kind)
	assert.Equal(t, 1, errs[0].Offset)

	// an unclosed bracket is an ordinary unknown symbol
	elems, errs = f.c.CompileField(Target, "[a")
	require.Empty(t, errs)
	require.Len(t, elems, 2)
	assert.True(t, elems[0].Representative)
	assert.Equal(t, "[a", f.text(t, elems))
}

func TestCompileField_UnknownSymbol(t *testing.T) {
	f := newFixture(t)

	elems, errs := f.c.CompileField(Target, "x")
	require.Empty(t, errs)
	require.Len(t, elems, 1)
	assert.Equal(t, ElementPhoneme, elems[0].Kind)
	assert.True(t, elems[0].Representative)
	assert.Equal(t, "x", f.text(t, elems))
}

func TestCompileField_RepresentativesNeverDeduplicated(t *testing.T) {
	f := newFixture(t)

	elems, errs := f.c.CompileField(Target, "xx")
	require.Empty(t, errs)
	require.Len(t, elems, 2)
	assert.NotEqual(t, elems[0].Phoneme, elems[1].Phoneme)
	assert.Equal(t, 2, f.pool.Len())

	usage, err := f.pool.Usage(elems[0].Phoneme)
	require.NoError(t, err)
	assert.Equal(t, 1, usage)
}

func TestCompileField_GraphemeClusterFallback(t *testing.T) {
	f := newFixture(t)

	// "x" followed by a combining acute accent is one cluster
	elems, errs := f.c.CompileField(Target, "x\u0301a")
	require.Empty(t, errs)
	require.Len(t, elems, 2)
	assert.Equal(t, "x\u0301", ElementText(elems[0], f.lang, f.pool))
	assert.Equal(t, PhonemeRef(f.a, false), elems[1])
}

func TestCompileField_RewriteSourceFallback(t *testing.T) {
	f := newFixture(t)
	rewrites := inventory.NewRewriteRules(
		inventory.Rewrite{From: "Vx", To: "q"},
		inventory.Rewrite{From: "sh", To: "ʃ"},
		inventory.Rewrite{From: "t", To: "tt"},
	)
	c := NewCompiler(f.lang, f.pool, rewrites)

	elems, errs := c.CompileField(Target, "sha")
	require.Empty(t, errs)
	require.Len(t, elems, 2)
	assert.True(t, elems[0].Representative)
	assert.Equal(t, "sh", ElementText(elems[0], f.lang, f.pool))
	assert.Equal(t, PhonemeRef(f.a, false), elems[1])
}

func TestScanner_InventoryOrder(t *testing.T) {
	lang := inventory.New()
	s := lang.AddPhoneme(inventory.Phoneme{Symbol: "s"})
	ts := lang.AddPhoneme(inventory.Phoneme{Symbol: "ts"})
	tk := lang.AddPhoneme(inventory.Phoneme{Symbol: "t"})
	_, err := lang.AddGroup(inventory.AbbrevName('C'), tk, s, ts)
	require.NoError(t, err)

	// members are visited in key order, so "s" and "ts" come before "t";
	// at "ts" the pass tries "s" (no), "ts" (yes)
	elems, next := scanner{lang: lang}.scan("ts", 0)
	assert.Equal(t, 2, next)
	assert.Equal(t, []Element{PhonemeRef(ts, false)}, elems)

	// one pass may emit several matches
	elems, next = scanner{lang: lang}.scan("sts", 0)
	assert.Equal(t, 3, next)
	assert.Equal(t, []Element{PhonemeRef(s, false), PhonemeRef(ts, false)}, elems)
}

func TestCompile_AggregatesFieldErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.c.Compile("#→[[a]]/a#_#a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrField)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ParseField, pe.Kind)
	assert.True(t, pe.Has(Target, BoundaryNotAllowed))
	assert.True(t, pe.Has(Replacement, NestedBrackets))
	assert.True(t, pe.Has(EnvStart, BoundaryNotAtStart))
	assert.True(t, pe.Has(EnvEnd, BoundaryNotAtEnd))

	var fe *FieldParseError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, Target, fe.Field)
}

func TestCompile_RoundTrip(t *testing.T) {
	f := newFixture(t)

	rules := []string{
		"t→d/V_#",
		"[ae]→x/#t_n",
		"Vt→tV/[#n]_[at#]",
		"n→/a_",
		"aa→e/_",
	}
	for _, rule := range rules {
		t.Run(rule, func(t *testing.T) {
			first, err := f.c.Compile(rule)
			require.NoError(t, err)
			text := first.Text(f.lang, f.pool)

			second, err := f.c.Compile(text)
			require.NoError(t, err)
			assert.Equal(t, text, second.Text(f.lang, f.pool))

			for _, kind := range FieldKinds {
				assertSameShape(t, first.Elements(kind), second.Elements(kind))
				assert.Equal(t, first.Field(kind), second.Field(kind))
			}
		})
	}
}

func TestCompile_RoundTripShadowedAbbreviation(t *testing.T) {
	lang := inventory.New()
	a := lang.AddPhoneme(inventory.Phoneme{Symbol: "a"})
	va, err := lang.AddGroup(inventory.FullName("Va", 'W'))
	require.NoError(t, err)
	vowel, err := lang.AddGroup(inventory.FullName("Vowel", 'V'), a)
	require.NoError(t, err)
	c := NewCompiler(lang, nil, nil)

	first, err := c.Compile("Vowela→/_")
	require.NoError(t, err)
	assert.Equal(t, []Element{GroupRef(vowel), PhonemeRef(a, false)}, first.Elements(Target))

	text := first.Text(lang, c.Pool())
	assert.Equal(t, "Vowela→/_", text)

	second, err := c.Compile(text)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))

	// the abbreviation is kept when nothing earlier matches
	plain, err := c.Compile("V→/_W")
	require.NoError(t, err)
	assert.Equal(t, "V→/_W", plain.Text(lang, c.Pool()))
	assert.Equal(t, []Element{GroupRef(va)}, plain.Elements(EnvEnd))
}

// assertSameShape compares element trees, allowing representative keys to
// differ.
func assertSameShape(t *testing.T, want, got []Element) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		w, g := want[i], got[i]
		require.Equal(t, w.Kind, g.Kind)
		switch w.Kind {
		case ElementPhoneme:
			assert.Equal(t, w.Representative, g.Representative)
			if !w.Representative {
				assert.Equal(t, w.Phoneme, g.Phoneme)
			}
		case ElementGroup:
			assert.Equal(t, w.Group, g.Group)
		case ElementAny:
			assertSameShape(t, w.Any, g.Any)
		}
	}
}

func TestParse_NilLanguage(t *testing.T) {
	sc, err := Parse("a→b/c_#", nil, nil, nil)
	require.NoError(t, err)
	for _, kind := range FieldKinds[:3] {
		elems := sc.Elements(kind)
		require.Len(t, elems, 1)
		assert.True(t, elems[0].Representative)
	}
	assert.True(t, sc.Field(EnvEnd).HasBoundary)
}

func TestSoundChange_InvalidAfterRemoval(t *testing.T) {
	f := newFixture(t)

	sc, err := f.c.Compile("t→d/V_n")
	require.NoError(t, err)
	assert.False(t, sc.Invalid(f.lang, f.pool))

	_, err = f.lang.RemovePhoneme(f.n)
	require.NoError(t, err)
	assert.True(t, sc.Invalid(f.lang, f.pool))
	assert.Equal(t, "t→d/V_?", sc.Text(f.lang, f.pool))

	require.NoError(t, f.lang.RemoveGroup(f.vowel))
	assert.Equal(t, "t→d/?_?", sc.Text(f.lang, f.pool))
}
