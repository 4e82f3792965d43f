package types

import (
	"fmt"
	"strings"
)

// LiteralParser turns literal text into a value. The boolean reports
// whether the text was a valid literal of the type.
type LiteralParser func(s string) (any, bool)

// Type is a named script type. Types form a single-inheritance tree rooted
// at the registry's object type; assignability follows that tree.
type Type struct {
	singular string
	plural   string
	super    *Type
	parser   LiteralParser
	accepts  func(any) bool
	format   func(any) string
	depth    int
}

// Spec describes a type to register.
type Spec struct {
	// Name is the pluralizable name, e.g. "number@s" or "m@ouse@ice".
	Name    string
	Super   *Type
	Parser  LiteralParser
	Accepts func(any) bool
	Format  func(any) string
}

func (t *Type) Name() string   { return t.singular }
func (t *Type) Plural() string { return t.plural }
func (t *Type) Super() *Type   { return t.super }
func (t *Type) String() string { return t.singular }

// LiteralParser returns the type's literal parser, or nil.
func (t *Type) LiteralParser() LiteralParser { return t.parser }

// IsAssignableFrom reports whether values of o can be used where t is
// expected, i.e. o is t or one of its descendants.
func (t *Type) IsAssignableFrom(o *Type) bool {
	for c := o; c != nil; c = c.super {
		if c == t {
			return true
		}
	}
	return false
}

// Accepts reports whether v is a runtime value of this type.
func (t *Type) Accepts(v any) bool {
	if t.accepts == nil {
		return t.super == nil
	}
	return t.accepts(v)
}

// Format renders a value of this type for display.
func (t *Type) Format(v any) string {
	if t.format != nil {
		return t.format(v)
	}
	if t.super != nil {
		return t.super.Format(v)
	}
	return fmt.Sprint(v)
}

// PatternType is a type together with its expected cardinality, as written
// inside a %placeholder%.
type PatternType struct {
	Type   *Type
	Single bool
}

func (p PatternType) String() string {
	if p.Type == nil {
		return "<nil>"
	}
	if p.Single {
		return p.Type.singular
	}
	return p.Type.plural
}

// Forms splits a pluralizable name into its singular and plural forms.
//
//	"number@s"    -> "number", "numbers"
//	"m@ouse@ice"  -> "mouse", "mice"
//	"sheep"       -> "sheep", "sheep"
func Forms(pluralizable string) (string, string, error) {
	var singular, plural []string
	for _, word := range strings.Fields(pluralizable) {
		split := strings.Split(word, "@")
		switch len(split) {
		case 1:
			singular = append(singular, word)
			plural = append(plural, word)
		case 2:
			singular = append(singular, split[0])
			plural = append(plural, split[0]+split[1])
		case 3:
			singular = append(singular, split[0]+split[1])
			plural = append(plural, split[0]+split[2])
		default:
			return "", "", fmt.Errorf("invalid pluralized word: %s", word)
		}
	}
	if len(singular) == 0 {
		return "", "", fmt.Errorf("empty type name")
	}
	return strings.Join(singular, " "), strings.Join(plural, " "), nil
}
