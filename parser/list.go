package parser

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/gnolang/sklang/errs"
	"github.com/gnolang/sklang/lang"
	"github.com/gnolang/sklang/types"
)

var listSeparator = regexp.MustCompile(`^(?:\s*(,)\s*|\s+(?i:(and|n?or))\s+)`)

// listPart is one element of a split list and its position in the text.
type listPart struct {
	text string
	pos  int
}

// splitList splits s on top-level commas and the words and/or/nor. The
// boolean reports whether the list is conjunctive: "and" or "nor" make it
// so, "or" alone makes it disjunctive, and a list using only commas is
// conjunctive.
func splitList(s string) ([]listPart, bool) {
	var (
		sc     scanner
		parts  []listPart
		start  int
		sawAnd bool
		sawOr  bool
	)
	for i := 0; i < len(s); {
		if !sc.step(s[i]) || s[i] == '"' {
			i++
			continue
		}
		m := listSeparator.FindStringSubmatchIndex(s[i:])
		if m == nil || i == 0 {
			i++
			continue
		}
		parts = append(parts, listPart{text: s[start:i], pos: start})
		if m[4] >= 0 {
			switch strings.ToLower(s[i+m[4] : i+m[5]]) {
			case "or":
				sawOr = true
			default:
				sawAnd = true
			}
		}
		i += m[1]
		start = i
	}
	parts = append(parts, listPart{text: s[start:], pos: start})
	return parts, sawAnd || !sawOr
}

// ParseListLiteral resolves text as a list of expressions of the expected
// type. A single element resolves to itself.
func (p *Parser) ParseListLiteral(text string, expected types.PatternType) (lang.Expression, error) {
	expected.Single = false
	text, offset := trimWithOffset(text, 0)
	res := p.newResolution()
	if list := p.parseList(text, offset, expected, MustBePlain, 0, res); list != nil {
		return list, nil
	}
	if res.exhausted() {
		return p.finish(text, offset, res, nil, nil)
	}
	if parts, _ := splitList(text); len(parts) > 1 {
		return nil, errs.NoMatchf(text, offset, "can't understand this list of %s", expected.Type.Plural())
	}
	expr, err := p.parse(text, offset, expected, MustBePlain, 0, res)
	return p.finish(text, offset, res, expr, err)
}

// parseList returns nil when text holds fewer than two elements or when
// one of them can't be resolved, so that registered syntaxes get a chance
// at the whole text.
func (p *Parser) parseList(text string, offset int, expected types.PatternType, policy ConditionalPolicy, depth int, res *resolution) lang.Expression {
	parts, and := splitList(text)
	if len(parts) < 2 {
		return nil
	}

	elements := make([]lang.Expression, 0, len(parts))
	literals := make([]lang.Literal, 0, len(parts))
	allLiteral := true
	for _, part := range parts {
		if strings.TrimSpace(part.text) == "" {
			return nil
		}
		expr, err := p.parse(part.text, offset+part.pos, expected, policy, depth+1, res)
		if err != nil {
			p.logger.Debug("list element rejected", zap.String("element", part.text), zap.Error(err))
			return nil
		}
		elements = append(elements, expr)
		if lit, ok := expr.(lang.Literal); ok {
			literals = append(literals, lit)
		} else {
			allLiteral = false
		}
	}

	t := commonSuper(elements)
	if allLiteral {
		return lang.NewLiteralList(t, literals, and)
	}
	return lang.NewExpressionList(t, elements, and)
}

// commonSuper returns the most specific type all elements are assignable to.
func commonSuper(elements []lang.Expression) *types.Type {
	t := elements[0].ReturnType()
	for _, e := range elements[1:] {
		for !t.IsAssignableFrom(e.ReturnType()) {
			t = t.Super()
		}
	}
	return t
}
