package types

import (
	"math/big"
	"strconv"
	"strings"
)

// Names of the default types.
const (
	NumberName  = "number@s"
	IntegerName = "integer@s"
	StringName  = "string@s"
	BooleanName = "boolean@s"
)

// Defaults bundles the types registered by NewDefaultRegistry.
type Defaults struct {
	Object  *Type
	Number  *Type
	Integer *Type
	String  *Type
	Boolean *Type
}

// NewDefaultRegistry returns a registry with object, number, integer, string
// and boolean types, registered in that order, plus their converters and
// comparators.
func NewDefaultRegistry() (*Registry, Defaults) {
	r := NewRegistry()
	d := Defaults{Object: r.Object()}

	d.Number = r.MustRegister(Spec{
		Name:    NumberName,
		Parser:  ParseNumber,
		Accepts: IsNumber,
		Format:  FormatNumber,
	})
	d.Integer = r.MustRegister(Spec{
		Name:    IntegerName,
		Super:   d.Number,
		Parser:  ParseInteger,
		Accepts: IsInteger,
	})
	d.String = r.MustRegister(Spec{
		Name:    StringName,
		Parser:  ParseString,
		Accepts: func(v any) bool { _, ok := v.(string); return ok },
		Format:  func(v any) string { return v.(string) },
	})
	d.Boolean = r.MustRegister(Spec{
		Name:    BooleanName,
		Parser:  ParseBoolean,
		Accepts: func(v any) bool { _, ok := v.(bool); return ok },
		Format:  func(v any) string { return strconv.FormatBool(v.(bool)) },
	})

	r.RegisterConverter(d.Number, d.String, func(v any) (any, bool) {
		return FormatNumber(v), true
	})
	r.RegisterConverter(d.Boolean, d.String, func(v any) (any, bool) {
		return strconv.FormatBool(v.(bool)), true
	})

	r.RegisterComparator(d.Number, d.Number, &Comparator{Compare: CompareNumbers, Ordered: true})
	r.RegisterComparator(d.String, d.String, &Comparator{
		Ordered: true,
		Compare: func(a, b any) Relation {
			return RelationOf(strings.Compare(a.(string), b.(string)))
		},
	})
	r.RegisterComparator(d.Boolean, d.Boolean, &Comparator{
		Compare: func(a, b any) Relation {
			if a.(bool) == b.(bool) {
				return Equal
			}
			return NotEqual
		},
	})
	return r, d
}

// ParseString parses a double-quoted string literal. A doubled quote inside
// the literal stands for one quote character.
func ParseString(s string) (any, bool) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return nil, false
	}
	body := s[1 : len(s)-1]
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '"' {
			if i+1 >= len(body) || body[i+1] != '"' {
				return nil, false
			}
			i++
		}
		sb.WriteByte(body[i])
	}
	return sb.String(), true
}

// ParseBoolean parses true or false, ignoring case.
func ParseBoolean(s string) (any, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return nil, false
}

// NewInt is a small helper for building integer values.
func NewInt(n int64) *big.Int { return big.NewInt(n) }
