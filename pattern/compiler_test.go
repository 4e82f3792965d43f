package pattern

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/sklang/errs"
	"github.com/gnolang/sklang/types"
)

func TestCompile(t *testing.T) {
	reg, d := types.NewDefaultRegistry()
	number := types.PatternType{Type: d.Number, Single: true}
	numbers := types.PatternType{Type: d.Number, Single: false}
	boolean := types.PatternType{Type: d.Boolean, Single: true}

	tests := []struct {
		name  string
		input string
		want  Node
	}{
		{
			name:  "plain text",
			input: "hello world",
			want:  NewText("hello world"),
		},
		{
			name:  "optional",
			input: "[optional]",
			want:  NewOptional(NewText("optional")),
		},
		{
			name:  "choice",
			input: "(a|b)",
			want:  NewChoice(Alternative{Node: NewText("a")}, Alternative{Node: NewText("b")}),
		},
		{
			name:  "choice with mark",
			input: "(1:a|b)",
			want:  NewChoice(Alternative{Node: NewText("a"), Mark: 1}, Alternative{Node: NewText("b")}),
		},
		{
			name:  "binary and hex marks",
			input: "(0b101:a|0x1F:b)",
			want:  NewChoice(Alternative{Node: NewText("a"), Mark: 5}, Alternative{Node: NewText("b"), Mark: 31}),
		},
		{
			name:  "hash mark shorthand",
			input: "(:add|:remove)",
			want: NewChoice(
				Alternative{Node: NewText("add"), Mark: hashMark("add")},
				Alternative{Node: NewText("remove"), Mark: hashMark("remove")},
			),
		},
		{
			name:  "marked optional",
			input: "[2:all]",
			want:  NewOptional(NewChoice(Alternative{Node: NewText("all"), Mark: 2})),
		},
		{
			name:  "optional with bars is not a marked optional",
			input: "[1:a|b]",
			want: NewOptional(NewChoice(
				Alternative{Node: NewText("a"), Mark: 1},
				Alternative{Node: NewText("b")},
			)),
		},
		{
			name:  "top level bars",
			input: "a|b",
			want:  NewChoice(Alternative{Node: NewText("a")}, Alternative{Node: NewText("b")}),
		},
		{
			name:  "escape",
			input: `2 \> 1`,
			want:  NewText("2 > 1"),
		},
		{
			name:  "placeholders and text",
			input: "range from %number% to %numbers%",
			want: NewSequence(
				NewText("range from "),
				&PlaceholderNode{Types: []types.PatternType{number}},
				NewText(" to "),
				&PlaceholderNode{Types: []types.PatternType{numbers}},
			),
		},
		{
			name:  "placeholder flags",
			input: "%-*=boolean%",
			want: &PlaceholderNode{
				Types:              []types.PatternType{boolean},
				Acceptance:         AcceptLiterals,
				Nullable:           true,
				AcceptsConditional: true,
			},
		},
		{
			name:  "multiple placeholder types",
			input: "%~number/boolean%",
			want: &PlaceholderNode{
				Types:      []types.PatternType{number, boolean},
				Acceptance: AcceptExpressions,
			},
		},
		{
			name:  "nested groups",
			input: "[the] (sum|total) of [all [the]] %numbers%",
			want: NewSequence(
				NewOptional(NewText("the")),
				NewText(" "),
				NewChoice(Alternative{Node: NewText("sum")}, Alternative{Node: NewText("total")}),
				NewText(" of "),
				NewOptional(NewSequence(NewText("all "), NewOptional(NewText("the")))),
				NewText(" "),
				&PlaceholderNode{Types: []types.PatternType{numbers}},
			),
		},
		{
			name:  "empty pattern",
			input: "",
			want:  NewText(""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(tt.input, reg)
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, got), "want:\n%s\ngot:\n%s", Dump(tt.want), Dump(got))
		})
	}
}

func TestCompileRegex(t *testing.T) {
	reg, _ := types.NewDefaultRegistry()

	node, err := Compile(`<\d+(?=px)>`, reg)
	require.NoError(t, err)
	re, ok := node.(*RegexNode)
	require.True(t, ok)
	assert.Equal(t, `\d+(?=px)`, re.Source)

	m, err := re.Regexp.FindStringMatch("12px")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "12", m.String())

	m, err = re.Regexp.FindStringMatch("a12px")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestCompileErrors(t *testing.T) {
	reg, _ := types.NewDefaultRegistry()

	tests := []struct {
		name  string
		input string
		kind  errs.Kind
	}{
		{name: "unclosed choice", input: "(unclosed", kind: errs.MalformedInput},
		{name: "unclosed optional", input: "[a", kind: errs.MalformedInput},
		{name: "unfinished placeholder", input: "%unfinished type", kind: errs.MalformedInput},
		{name: "unmatched closing", input: "a]", kind: errs.MalformedInput},
		{name: "unmatched angle", input: "2 > 1", kind: errs.MalformedInput},
		{name: "trailing escape", input: `abc\`, kind: errs.MalformedInput},
		{name: "bad regex", input: "<(>", kind: errs.MalformedInput},
		{name: "bad placeholder body", input: "%num-ber%", kind: errs.MalformedInput},
		{name: "unknown type", input: "%unicorn%", kind: errs.NoMatch},
		{name: "conditional on non boolean", input: "%=number%", kind: errs.SemanticError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.input, reg)
			require.Error(t, err)
			assert.Equal(t, tt.kind, errs.KindOf(err))

			var located *errs.Error
			require.True(t, errors.As(err, &located))
			assert.Equal(t, tt.input, located.Text)
		})
	}
}

func TestCompileErrorPosition(t *testing.T) {
	reg, _ := types.NewDefaultRegistry()

	_, err := Compile("foo (bar [baz)", reg)
	var located *errs.Error
	require.ErrorAs(t, err, &located)
	assert.Equal(t, errs.MalformedInput, located.Kind)
	assert.Equal(t, 9, located.Pos)
}

func TestCompileDepthCeiling(t *testing.T) {
	reg, _ := types.NewDefaultRegistry()
	c := NewCompiler(reg, nil)
	c.SetMaxDepth(3)

	_, err := c.Compile("[[[[x]]]]")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrMalformedInput))

	_, err = c.Compile("[[x]]")
	assert.NoError(t, err)
}

func TestCompileWarnings(t *testing.T) {
	reg, d := types.NewDefaultRegistry()

	tests := []struct {
		name  string
		input string
		count int
	}{
		{name: "none", input: "[a] (b|c) <d> %number%", count: 0},
		{name: "whitespace optional", input: "a[ ]b", count: 1},
		{name: "empty alternative", input: "(a||b)", count: 1},
		{name: "empty regex", input: "a<>", count: 1},
		{name: "empty placeholder", input: "%%", count: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCompiler(reg, nil)
			_, err := c.Compile(tt.input)
			require.NoError(t, err)
			assert.Len(t, c.Warnings(), tt.count)
		})
	}

	t.Run("empty placeholder defaults to object", func(t *testing.T) {
		node, err := Compile("%%", reg)
		require.NoError(t, err)
		ph := node.(*PlaceholderNode)
		require.Len(t, ph.Types, 1)
		assert.Same(t, d.Object, ph.Types[0].Type)
	})
}

func TestRoundTrip(t *testing.T) {
	reg, _ := types.NewDefaultRegistry()

	patterns := []string{
		"hello world",
		"[optional]",
		"(a|b)",
		"(1:a|b)",
		"[2:all] %numbers%",
		"[1:a|b] c",
		"a|b|3:c",
		"(:add|:remove) %number% (to|from) %-~string%",
		`2 \> 1 \: \% \| \\`,
		"<\\d+(?:px)?> units",
		"[the] (sum|total) of [all [the]] %numbers%",
		"%object%(1:==|2:!=|5:\\>|6:\\<)%object%",
		"%=boolean/booleans%",
		"[(x)]",
		"(a||b)",
		"[]",
		"%%",
		"",
	}

	for _, p := range patterns {
		t.Run(p, func(t *testing.T) {
			first, err := Compile(p, reg)
			require.NoError(t, err)
			again, err := Compile(p, reg)
			require.NoError(t, err)
			assert.True(t, Equal(first, again), "compile is not deterministic")

			rendered := first.String()
			second, err := Compile(rendered, reg)
			require.NoError(t, err, "rendering %q does not compile", rendered)
			assert.True(t, Equal(first, second), "rendering %q:\n%s\nvs\n%s", rendered, Dump(first), Dump(second))
		})
	}
}

func TestSplitBars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "simple", input: "a|b|c", want: []string{"a", "b", "c"}},
		{name: "nested", input: "a(b|c)|[d|e]|<f|g>", want: []string{"a(b|c)", "[d|e]", "<f|g>"}},
		{name: "escaped", input: `a\|b|c`, want: []string{`a\|b`, "c"}},
		{name: "empty pieces", input: "|", want: []string{"", ""}},
		{name: "none", input: "abc", want: []string{"abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, p := range splitBars(tt.input) {
				got = append(got, p.text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func BenchmarkCompile(b *testing.B) {
	reg, _ := types.NewDefaultRegistry()
	c := NewCompiler(reg, nil)
	for i := 0; i < b.N; i++ {
		_, _ = c.Compile("[the] (1:sum|2:total) of [all [the]] %numbers% [(from|in) %-~string%]")
	}
}
