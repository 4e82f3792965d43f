// Package lang defines the expression model produced by the resolver and
// the interfaces a registered syntax implements.
package lang

import (
	"strings"

	"github.com/gnolang/sklang/types"
)

// Expression is a resolved, typed expression.
type Expression interface {
	// ReturnType is the type of the values the expression produces.
	ReturnType() *types.Type
	// IsSingle reports whether the expression produces at most one value.
	IsSingle() bool
	String() string
}

// Literal is an expression whose values are known at parse time.
type Literal interface {
	Expression
	Values() []any
}

// SyntaxElement is implemented by every registered syntax. Init receives the
// placeholder expressions in pattern order, the index of the pattern that
// matched and the parse context. An error rejects the match; returning an
// *errs.Error of kind SemanticError reports a typing problem to the user.
type SyntaxElement interface {
	Init(exprs []Expression, matchedPattern int, ctx *ParseContext) error
}

// Simplifier is implemented by syntaxes that can fold themselves, typically
// into a Literal when all operands are literals.
type Simplifier interface {
	Simplify() Expression
}

// SimpleLiteral is a literal holding one or more values of a single type.
type SimpleLiteral struct {
	typ    *types.Type
	values []any
	single bool
}

var _ Literal = (*SimpleLiteral)(nil)

// NewLiteral returns a single-valued literal.
func NewLiteral(t *types.Type, v any) *SimpleLiteral {
	return &SimpleLiteral{typ: t, values: []any{v}, single: true}
}

// NewPluralLiteral returns a literal holding zero or more values.
func NewPluralLiteral(t *types.Type, values []any) *SimpleLiteral {
	return &SimpleLiteral{typ: t, values: values}
}

func (l *SimpleLiteral) ReturnType() *types.Type { return l.typ }
func (l *SimpleLiteral) IsSingle() bool          { return l.single }
func (l *SimpleLiteral) Values() []any           { return l.values }

// Value returns the first value, or nil when there is none.
func (l *SimpleLiteral) Value() any {
	if len(l.values) == 0 {
		return nil
	}
	return l.values[0]
}

func (l *SimpleLiteral) String() string {
	parts := make([]string, len(l.values))
	for i, v := range l.values {
		parts[i] = l.typ.Format(v)
	}
	return joinList(parts, true)
}

// ExpressionList is a comma/and/or separated list of expressions.
type ExpressionList struct {
	Elements []Expression
	And      bool
	typ      *types.Type
}

var _ Expression = (*ExpressionList)(nil)

// NewExpressionList returns a list of the given elements typed as t.
func NewExpressionList(t *types.Type, elements []Expression, and bool) *ExpressionList {
	return &ExpressionList{Elements: elements, And: and, typ: t}
}

func (l *ExpressionList) ReturnType() *types.Type { return l.typ }

// IsSingle is true for an "or" list of single expressions, since exactly one
// of its elements is chosen.
func (l *ExpressionList) IsSingle() bool {
	if l.And {
		return false
	}
	for _, e := range l.Elements {
		if !e.IsSingle() {
			return false
		}
	}
	return true
}

func (l *ExpressionList) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return joinList(parts, l.And)
}

// LiteralList is an expression list whose elements are all literals.
type LiteralList struct {
	ExpressionList
}

var _ Literal = (*LiteralList)(nil)

// NewLiteralList returns a list of literal elements typed as t.
func NewLiteralList(t *types.Type, elements []Literal, and bool) *LiteralList {
	exprs := make([]Expression, len(elements))
	for i, e := range elements {
		exprs[i] = e
	}
	return &LiteralList{ExpressionList{Elements: exprs, And: and, typ: t}}
}

// Values returns the values of all elements. For an "or" list this is the
// set of alternatives.
func (l *LiteralList) Values() []any {
	var out []any
	for _, e := range l.Elements {
		out = append(out, e.(Literal).Values()...)
	}
	return out
}

func joinList(parts []string, and bool) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	conj := " or "
	if and {
		conj = " and "
	}
	return strings.Join(parts[:len(parts)-1], ", ") + conj + parts[len(parts)-1]
}

// Variable is a reference to a named variable. Its values are only known at
// run time, so it takes on the type it was resolved against.
type Variable struct {
	Name  string
	Local bool
	List  bool
	typ   *types.Type
}

var _ Expression = (*Variable)(nil)

// NewVariable returns a variable reference typed as t.
func NewVariable(name string, local, list bool, t *types.Type) *Variable {
	return &Variable{Name: name, Local: local, List: list, typ: t}
}

func (v *Variable) ReturnType() *types.Type { return v.typ }
func (v *Variable) IsSingle() bool          { return !v.List }

func (v *Variable) String() string {
	if v.Local {
		return "{_" + v.Name + "}"
	}
	return "{" + v.Name + "}"
}

// Converted wraps an expression whose values are converted to another type
// when it is evaluated.
type Converted struct {
	Source Expression
	To     *types.Type
	Conv   types.Converter
}

var _ Expression = (*Converted)(nil)

func (c *Converted) ReturnType() *types.Type { return c.To }
func (c *Converted) IsSingle() bool          { return c.Source.IsSingle() }
func (c *Converted) String() string          { return c.Source.String() }
