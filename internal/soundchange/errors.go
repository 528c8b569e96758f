package soundchange

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by ParseError through errors.Is.
var (
	// ErrFormat reports rule text that does not have the
	// target/replacement/start_end shape.
	ErrFormat = errors.New("malformed sound change")
	// ErrField reports that one or more fields failed to compile.
	ErrField = errors.New("invalid sound change field")
)

// FieldErrorKind classifies a field compilation failure.
type FieldErrorKind uint8

const (
	// NestedBrackets is a '[' inside a bracketed disjunction.
	NestedBrackets FieldErrorKind = iota
	// MultipleBoundaries is a second '#' in the same field.
	MultipleBoundaries
	// BoundaryNotAtStart is a '#' in EnvStart that is not the first token.
	BoundaryNotAtStart
	// BoundaryNotAtEnd is a '#' in EnvEnd that is not the last token.
	BoundaryNotAtEnd
	// BoundaryNotAllowed is a '#' in Target or Replacement.
	BoundaryNotAllowed
)

// String returns a short description.
func (k FieldErrorKind) String() string {
	switch k {
	case NestedBrackets:
		return "nested brackets"
	case MultipleBoundaries:
		return "multiple boundaries"
	case BoundaryNotAtStart:
		return "boundary not at start"
	case BoundaryNotAtEnd:
		return "boundary not at end"
	case BoundaryNotAllowed:
		return "boundary not allowed"
	default:
		return "unknown"
	}
}

// FieldParseError is one problem found in one field. Offset is the byte
// offset within the field text.
type FieldParseError struct {
	Field  FieldKind
	Kind   FieldErrorKind
	Offset int
}

func (e *FieldParseError) Error() string {
	return fmt.Sprintf("%s: %s at offset %d", e.Field, e.Kind, e.Offset)
}

// ParseErrorKind discriminates ParseError values.
type ParseErrorKind uint8

const (
	// ParseFormat is a rule that could not be split into its four fields.
	ParseFormat ParseErrorKind = iota
	// ParseField is a rule where at least one field failed to compile.
	ParseField
)

// ParseError reports a rule line that did not compile.
type ParseError struct {
	Kind ParseErrorKind
	// Text is the rule text as given.
	Text string
	// Fields lists every field problem in field order. Empty for ParseFormat.
	Fields []FieldParseError
}

func (e *ParseError) Error() string {
	if e.Kind == ParseFormat {
		return fmt.Sprintf("%v: %q", ErrFormat, e.Text)
	}
	parts := make([]string, len(e.Fields))
	for i := range e.Fields {
		parts[i] = e.Fields[i].Error()
	}
	return fmt.Sprintf("%v %q: %s", ErrField, e.Text, strings.Join(parts, "; "))
}

// Unwrap exposes the sentinel and each field error.
func (e *ParseError) Unwrap() []error {
	if e.Kind == ParseFormat {
		return []error{ErrFormat}
	}
	out := make([]error, 0, len(e.Fields)+1)
	out = append(out, ErrField)
	for i := range e.Fields {
		out = append(out, &e.Fields[i])
	}
	return out
}

// Has reports whether any field failed with kind k.
func (e *ParseError) Has(field FieldKind, k FieldErrorKind) bool {
	for _, fe := range e.Fields {
		if fe.Field == field && fe.Kind == k {
			return true
		}
	}
	return false
}

func formatError(text string) *ParseError {
	return &ParseError{Kind: ParseFormat, Text: text}
}
