package parser

import (
	"github.com/gnolang/sklang/errs"
	"github.com/gnolang/sklang/lang"
	"github.com/gnolang/sklang/types"
)

// ParseLiteral parses text as a literal of the expected type. Every
// registered type assignable or convertible to the expected type is tried
// in registration order.
func (p *Parser) ParseLiteral(text string, expected types.PatternType) (lang.Expression, error) {
	lit, ok := p.parseLiteral(text, expected)
	if !ok {
		return nil, errs.NoMatchf(text, 0, "not %s literal", article(expected))
	}
	return lit, nil
}

func (p *Parser) parseLiteral(text string, expected types.PatternType) (lang.Expression, bool) {
	for _, t := range p.types.Types() {
		parse := t.LiteralParser()
		if parse == nil {
			continue
		}
		assignable := expected.Type.IsAssignableFrom(t)
		if !assignable && !p.types.ConverterExists(t, expected.Type) {
			continue
		}
		v, ok := parse(text)
		if !ok {
			continue
		}
		if assignable {
			return lang.NewLiteral(t, v), true
		}
		if cv, ok := p.types.Convert(v, t, expected.Type); ok {
			return lang.NewLiteral(expected.Type, cv), true
		}
	}
	return nil, false
}

// convert turns expr into an expression of type to. Literals are converted
// eagerly; other expressions are wrapped.
func (p *Parser) convert(expr lang.Expression, to *types.Type) (lang.Expression, bool) {
	from := expr.ReturnType()
	if !p.types.ConverterExists(from, to) {
		return nil, false
	}
	lit, ok := expr.(lang.Literal)
	if !ok {
		return &lang.Converted{
			Source: expr,
			To:     to,
			Conv:   func(v any) (any, bool) { return p.types.Convert(v, from, to) },
		}, true
	}
	values := lit.Values()
	out := make([]any, 0, len(values))
	for _, v := range values {
		cv, ok := p.types.Convert(v, from, to)
		if !ok {
			return nil, false
		}
		out = append(out, cv)
	}
	if expr.IsSingle() && len(out) == 1 {
		return lang.NewLiteral(to, out[0]), true
	}
	return lang.NewPluralLiteral(to, out), true
}
