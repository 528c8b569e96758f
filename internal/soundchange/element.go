// Package soundchange compiles phonological rule text such as
//
//	t→d/V_#
//
// into structured rules checked against a phoneme inventory.
//
// A rule has four fields: target, replacement, the environment before the
// target and the environment after it. Each field compiles to a list of
// elements. An element is a phoneme, a group, a word boundary (#) or a
// bracketed disjunction ([...]) of other elements. Text that matches nothing
// in the inventory becomes a representative phoneme allocated in a pool.
package soundchange

import (
	"github.com/relicta-tech/conlang/internal/inventory"
)

// ElementKind discriminates Element values.
type ElementKind uint8

const (
	// ElementPhoneme references a phoneme, either from the language or from
	// the representative pool.
	ElementPhoneme ElementKind = iota
	// ElementGroup references a group.
	ElementGroup
	// ElementBoundary is the word edge marker.
	ElementBoundary
	// ElementAny is a bracketed disjunction.
	ElementAny
)

// String returns the kind name.
func (k ElementKind) String() string {
	switch k {
	case ElementPhoneme:
		return "phoneme"
	case ElementGroup:
		return "group"
	case ElementBoundary:
		return "boundary"
	case ElementAny:
		return "any"
	default:
		return "unknown"
	}
}

// Element is one compiled token of a field.
type Element struct {
	Kind ElementKind
	// Phoneme is set for ElementPhoneme. Representative selects the pool
	// instead of the language.
	Phoneme        inventory.PhonemeKey
	Representative bool
	// Group is set for ElementGroup.
	Group inventory.GroupKey
	// Any holds the alternatives of ElementAny. It never contains another Any.
	Any []Element
}

// PhonemeRef returns a phoneme element.
func PhonemeRef(k inventory.PhonemeKey, representative bool) Element {
	return Element{Kind: ElementPhoneme, Phoneme: k, Representative: representative}
}

// GroupRef returns a group element.
func GroupRef(k inventory.GroupKey) Element {
	return Element{Kind: ElementGroup, Group: k}
}

// Boundary returns the word boundary element.
func Boundary() Element {
	return Element{Kind: ElementBoundary}
}

// Any returns a disjunction of elems.
func Any(elems ...Element) Element {
	if elems == nil {
		elems = []Element{}
	}
	return Element{Kind: ElementAny, Any: elems}
}

// ContainsBoundary reports whether e is a boundary or a disjunction holding one.
func (e Element) ContainsBoundary() bool {
	switch e.Kind {
	case ElementBoundary:
		return true
	case ElementAny:
		for _, inner := range e.Any {
			if inner.ContainsBoundary() {
				return true
			}
		}
	}
	return false
}

// Equal reports whether e and o have the same shape and keys.
func (e Element) Equal(o Element) bool {
	if e.Kind != o.Kind {
		return false
	}
	switch e.Kind {
	case ElementPhoneme:
		return e.Phoneme == o.Phoneme && e.Representative == o.Representative
	case ElementGroup:
		return e.Group == o.Group
	case ElementAny:
		return equalElements(e.Any, o.Any)
	default:
		return true
	}
}

func equalElements(a, b []Element) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func cloneElements(elems []Element) []Element {
	if elems == nil {
		return nil
	}
	out := make([]Element, len(elems))
	for i, e := range elems {
		out[i] = e
		if e.Kind == ElementAny {
			out[i].Any = cloneElements(e.Any)
		}
	}
	return out
}

func countBoundaries(elems []Element) int {
	n := 0
	for _, e := range elems {
		switch e.Kind {
		case ElementBoundary:
			n++
		case ElementAny:
			n += countBoundaries(e.Any)
		}
	}
	return n
}
