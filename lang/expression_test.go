package lang

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gnolang/sklang/types"
)

func TestLiteralString(t *testing.T) {
	_, d := types.NewDefaultRegistry()

	tests := []struct {
		name string
		expr Expression
		want string
	}{
		{name: "single", expr: NewLiteral(d.Number, big.NewInt(3)), want: "3"},
		{name: "plural", expr: NewPluralLiteral(d.Integer, []any{big.NewInt(1), big.NewInt(2), big.NewInt(3)}), want: "1, 2 and 3"},
		{name: "empty", expr: NewPluralLiteral(d.Integer, nil), want: ""},
		{
			name: "or list",
			expr: NewLiteralList(d.Number, []Literal{NewLiteral(d.Number, big.NewInt(1)), NewLiteral(d.Number, big.NewInt(2))}, false),
			want: "1 or 2",
		},
		{name: "local variable", expr: NewVariable("x", true, false, d.Object), want: "{_x}"},
		{name: "list variable", expr: NewVariable("xs::*", false, true, d.Object), want: "{xs::*}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expr.String())
		})
	}
}

func TestListCardinality(t *testing.T) {
	_, d := types.NewDefaultRegistry()
	one := NewLiteral(d.Number, big.NewInt(1))
	two := NewLiteral(d.Number, big.NewInt(2))

	and := NewLiteralList(d.Number, []Literal{one, two}, true)
	or := NewLiteralList(d.Number, []Literal{one, two}, false)
	assert.False(t, and.IsSingle())
	assert.True(t, or.IsSingle())
	assert.Equal(t, []any{big.NewInt(1), big.NewInt(2)}, and.Values())

	mixed := NewExpressionList(d.Object, []Expression{one, NewVariable("xs::*", false, true, d.Object)}, false)
	assert.False(t, mixed.IsSingle())
	assert.Equal(t, "1 or {xs::*}", mixed.String())
}
