// Package syntaxes provides a small built-in catalogue of expression
// syntaxes: arithmetic, comparison, ranges, boolean helpers and string
// length. It is used by the command line tools and as a reference for
// writing syntaxes.
package syntaxes

import (
	"fmt"

	"github.com/gnolang/sklang/lang"
	"github.com/gnolang/sklang/syntax"
	"github.com/gnolang/sklang/types"
)

// Names of the built-in syntaxes, usable in configuration.
const (
	NameArithmetic = "arithmetic"
	NameCompare    = "compare"
	NameRange      = "range"
	NameWhether    = "whether"
	NameNot        = "not"
	NameLength     = "length"
	NameSum        = "sum"
)

// Register adds the built-in syntaxes to reg using the default arithmetic
// operations. The type registry of reg must contain the default types.
func Register(reg *syntax.Registry) error {
	return RegisterWith(reg, DefaultOperations())
}

// RegisterWith is like Register with a custom operation table.
func RegisterWith(reg *syntax.Registry, ops Operations) error {
	t := reg.Types()
	number, err := lookup(t, "number")
	if err != nil {
		return err
	}
	integer, err := lookup(t, "integer")
	if err != nil {
		return err
	}
	boolean, err := lookup(t, "boolean")
	if err != nil {
		return err
	}

	specs := []syntax.Spec{
		{
			Name:       NameArithmetic,
			New:        func() lang.SyntaxElement { return &Arithmetic{ops: ops, number: number} },
			ReturnType: "number",
			Patterns:   arithmeticPatterns(),
		},
		{
			Name:        NameCompare,
			New:         func() lang.SyntaxElement { return &Compare{boolean: boolean} },
			ReturnType:  "boolean",
			Conditional: true,
			Patterns:    comparePatterns,
		},
		{
			Name:       NameRange,
			New:        func() lang.SyntaxElement { return &Range{integer: integer} },
			ReturnType: "integers",
			Patterns:   []string{"range from %number% to %number%"},
		},
		{
			Name:       NameWhether,
			New:        func() lang.SyntaxElement { return &Whether{boolean: boolean} },
			ReturnType: "boolean",
			Patterns:   []string{"whether %=boolean%"},
		},
		{
			Name:        NameNot,
			New:         func() lang.SyntaxElement { return &Not{boolean: boolean} },
			ReturnType:  "boolean",
			Conditional: true,
			Patterns:    []string{"not %=boolean%"},
		},
		{
			Name:       NameLength,
			New:        func() lang.SyntaxElement { return &Length{integer: integer} },
			ReturnType: "integer",
			Patterns:   []string{"[the ]length of %string%"},
		},
		{
			Name:       NameSum,
			New:        func() lang.SyntaxElement { return &Sum{number: number} },
			ReturnType: "number",
			Patterns:   []string{"[the ]sum of %numbers%"},
		},
	}
	for _, spec := range specs {
		if _, err := reg.RegisterExpression(spec); err != nil {
			return err
		}
	}
	return nil
}

func lookup(t *types.Registry, name string) (*types.Type, error) {
	typ, ok := t.ByName(name)
	if !ok {
		return nil, fmt.Errorf("built-in syntaxes need the %q type", name)
	}
	return typ, nil
}
