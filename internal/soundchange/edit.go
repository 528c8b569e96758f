package soundchange

import (
	clerrors "github.com/relicta-tech/conlang/internal/errors"
)

// Position describes where an element would be inserted. Head and Tail mark
// the field edges; Nested marks insertion inside a disjunction, which takes
// the edge flags of the disjunction itself.
type Position struct {
	Head   bool
	Tail   bool
	Nested bool
}

// CanInsert reports whether e may be inserted into field at pos.
func CanInsert(field Field, pos Position, e Element) bool {
	if !pos.Nested {
		// nothing goes before a leading or after a trailing boundary
		if field.Kind == EnvStart && field.HasBoundary && pos.Head {
			return false
		}
		if field.Kind == EnvEnd && field.HasBoundary && pos.Tail {
			return false
		}
	}

	switch e.Kind {
	case ElementPhoneme:
		return !e.Representative || field.Kind == Replacement
	case ElementGroup:
		return true
	case ElementAny:
		if pos.Nested || countBoundaries(e.Any) > 1 {
			return false
		}
		inner := Position{Head: pos.Head, Tail: pos.Tail, Nested: true}
		for _, alt := range e.Any {
			if !CanInsert(field, inner, alt) {
				return false
			}
		}
		return true
	case ElementBoundary:
		if field.HasBoundary {
			return false
		}
		switch field.Kind {
		case EnvStart:
			return pos.Head
		case EnvEnd:
			return pos.Tail
		}
	}
	return false
}

// SetElements replaces one field's elements and recomputes its metadata.
func (sc *SoundChange) SetElements(kind FieldKind, elems []Element) error {
	if err := checkKind("soundchange.SetElements", kind); err != nil {
		return err
	}
	sc.set(kind, cloneElements(elems))
	return nil
}

// InsertHead prepends e to a field.
func (sc *SoundChange) InsertHead(kind FieldKind, e Element) error {
	if err := checkKind("soundchange.InsertHead", kind); err != nil {
		return err
	}
	elems := sc.elements[kind]
	pos := Position{Head: true, Tail: len(elems) == 0}
	if !CanInsert(sc.fields[kind], pos, e) {
		return rejectInsert("soundchange.InsertHead", kind, e)
	}
	sc.set(kind, append([]Element{cloneElement(e)}, elems...))
	return nil
}

// InsertTail appends e to a field.
func (sc *SoundChange) InsertTail(kind FieldKind, e Element) error {
	if err := checkKind("soundchange.InsertTail", kind); err != nil {
		return err
	}
	elems := sc.elements[kind]
	pos := Position{Head: len(elems) == 0, Tail: true}
	if !CanInsert(sc.fields[kind], pos, e) {
		return rejectInsert("soundchange.InsertTail", kind, e)
	}
	sc.set(kind, append(elems, cloneElement(e)))
	return nil
}

// InsertInto appends e to the disjunction at index anyIndex of a field.
func (sc *SoundChange) InsertInto(kind FieldKind, anyIndex int, e Element) error {
	const op = "soundchange.InsertInto"
	if err := checkKind(op, kind); err != nil {
		return err
	}
	elems := sc.elements[kind]
	if anyIndex < 0 || anyIndex >= len(elems) || elems[anyIndex].Kind != ElementAny {
		return clerrors.Validationf(op, "%s has no disjunction at index %d", kind, anyIndex)
	}
	pos := Position{Head: anyIndex == 0, Tail: anyIndex == len(elems)-1, Nested: true}
	if !CanInsert(sc.fields[kind], pos, e) {
		return rejectInsert(op, kind, e)
	}
	elems[anyIndex].Any = append(elems[anyIndex].Any, cloneElement(e))
	sc.set(kind, elems)
	return nil
}

// Remove deletes the element at index of a field and returns it.
func (sc *SoundChange) Remove(kind FieldKind, index int) (Element, error) {
	if err := checkKind("soundchange.Remove", kind); err != nil {
		return Element{}, err
	}
	elems := sc.elements[kind]
	if index < 0 || index >= len(elems) {
		return Element{}, clerrors.Validationf("soundchange.Remove", "%s index %d out of range", kind, index)
	}
	removed := elems[index]
	sc.set(kind, append(elems[:index], elems[index+1:]...))
	return removed, nil
}

// RemoveFrom deletes alternative index of the disjunction at anyIndex.
func (sc *SoundChange) RemoveFrom(kind FieldKind, anyIndex, index int) (Element, error) {
	const op = "soundchange.RemoveFrom"
	if err := checkKind(op, kind); err != nil {
		return Element{}, err
	}
	elems := sc.elements[kind]
	if anyIndex < 0 || anyIndex >= len(elems) || elems[anyIndex].Kind != ElementAny {
		return Element{}, clerrors.Validationf(op, "%s has no disjunction at index %d", kind, anyIndex)
	}
	alts := elems[anyIndex].Any
	if index < 0 || index >= len(alts) {
		return Element{}, clerrors.Validationf(op, "%s disjunction index %d out of range", kind, index)
	}
	removed := alts[index]
	elems[anyIndex].Any = append(alts[:index], alts[index+1:]...)
	sc.set(kind, elems)
	return removed, nil
}

func cloneElement(e Element) Element {
	if e.Kind == ElementAny {
		e.Any = cloneElements(e.Any)
	}
	return e
}

func checkKind(op string, kind FieldKind) error {
	if !kind.valid() {
		return clerrors.Validationf(op, "unknown field %d", kind)
	}
	return nil
}

func rejectInsert(op string, kind FieldKind, e Element) error {
	return clerrors.Validationf(op, "cannot insert %s into %s here", e.Kind, kind)
}
