package soundchange

// FieldKind names one of the four rule positions.
type FieldKind uint8

const (
	// Target is the sequence being changed.
	Target FieldKind = iota
	// Replacement is what the target becomes.
	Replacement
	// EnvStart is the environment before the target.
	EnvStart
	// EnvEnd is the environment after the target.
	EnvEnd
)

// FieldKinds lists the fields in rule order.
var FieldKinds = [...]FieldKind{Target, Replacement, EnvStart, EnvEnd}

// String returns the field name.
func (k FieldKind) String() string {
	switch k {
	case Target:
		return "target"
	case Replacement:
		return "replacement"
	case EnvStart:
		return "env-start"
	case EnvEnd:
		return "env-end"
	default:
		return "unknown"
	}
}

func (k FieldKind) valid() bool {
	return k <= EnvEnd
}

// Field is the metadata of one rule position. HasBoundary is only ever set
// on EnvStart and EnvEnd.
type Field struct {
	Kind        FieldKind
	HasBoundary bool
}

// fieldFor derives field metadata from a compiled element list. EnvStart has
// a boundary when its first element holds one, EnvEnd when its last does.
func fieldFor(kind FieldKind, elems []Element) Field {
	f := Field{Kind: kind}
	if len(elems) == 0 {
		return f
	}
	switch kind {
	case EnvStart:
		f.HasBoundary = elems[0].ContainsBoundary()
	case EnvEnd:
		f.HasBoundary = elems[len(elems)-1].ContainsBoundary()
	}
	return f
}
