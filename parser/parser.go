// Package parser resolves script text into typed expressions by matching it
// against the compiled patterns of registered syntaxes.
//
// Resolution of a text against an expected type tries, in order:
//
//  1. literal parsing through the type registry
//  2. variable references such as {x} or {_list::*}
//  3. list literals such as "1, 2 and 3" (plural expected types only)
//  4. registered syntaxes, recursively resolving their placeholders
package parser

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gnolang/sklang/errs"
	"github.com/gnolang/sklang/lang"
	"github.com/gnolang/sklang/syntax"
	"github.com/gnolang/sklang/types"
)

// DefaultMaxDepth bounds the nesting of resolutions for one line.
const DefaultMaxDepth = 64

// error ranks of a rejected candidate, from least to most informative
const (
	rankNested = iota + 1 // a placeholder could not be resolved
	rankBuild             // the syntax refused a full match
	rankCheck             // the built expression has the wrong shape
)

// ConditionalPolicy states whether a boolean expression may or must be a
// conditional one.
type ConditionalPolicy int

const (
	MustBePlain ConditionalPolicy = iota
	MayBeEither
	MustBeConditional
)

func (c ConditionalPolicy) String() string {
	switch c {
	case MustBePlain:
		return "must be plain"
	case MayBeEither:
		return "may be either"
	case MustBeConditional:
		return "must be conditional"
	}
	return "unknown"
}

// Parser resolves text against a type registry and a syntax registry. It
// holds no per-line state and may be shared.
type Parser struct {
	types    *types.Registry
	syntaxes *syntax.Registry
	logger   *zap.Logger
	maxDepth int
	maxSteps int
	boolean  *types.Type
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger. Rejected candidates are logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMaxDepth sets the recursion ceiling.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		if depth > 0 {
			p.maxDepth = depth
		}
	}
}

// WithMaxSteps sets the amount of matching work allowed for one line.
func WithMaxSteps(steps int) Option {
	return func(p *Parser) {
		if steps > 0 {
			p.maxSteps = steps
		}
	}
}

// New creates a parser.
func New(t *types.Registry, s *syntax.Registry, opts ...Option) *Parser {
	p := &Parser{
		types:    t,
		syntaxes: s,
		logger:   zap.NewNop(),
		maxDepth: DefaultMaxDepth,
		maxSteps: DefaultMaxSteps,
	}
	if b, ok := t.ByName("boolean"); ok {
		p.boolean = b
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Types returns the type registry.
func (p *Parser) Types() *types.Registry { return p.types }

// ParseExpression resolves text as an expression of the expected type.
// Conditional booleans are rejected.
func (p *Parser) ParseExpression(text string, expected types.PatternType) (lang.Expression, error) {
	return p.resolve(text, 0, expected, MustBePlain)
}

// ParseBooleanExpression resolves text as a single boolean under the given
// conditional policy.
func (p *Parser) ParseBooleanExpression(text string, policy ConditionalPolicy) (lang.Expression, error) {
	if p.boolean == nil {
		return nil, errs.Internalf(nil, text, 0, "no boolean type registered")
	}
	return p.resolve(text, 0, types.PatternType{Type: p.boolean, Single: true}, policy)
}

// resolve runs one top-level resolution.
func (p *Parser) resolve(text string, offset int, expected types.PatternType, policy ConditionalPolicy) (lang.Expression, error) {
	res := p.newResolution()
	expr, err := p.parse(text, offset, expected, policy, 0, res)
	return p.finish(text, offset, res, expr, err)
}

// finish replaces the outcome of a resolution that ran out of steps.
func (p *Parser) finish(text string, offset int, res *resolution, expr lang.Expression, err error) (lang.Expression, error) {
	if !res.exhausted() {
		return expr, err
	}
	p.logger.Debug("resolution step budget exhausted", zap.String("text", text), zap.Int("steps", res.steps))
	return nil, errs.NoMatchf(text, offset, "expression too complex to resolve")
}

func (p *Parser) isBoolean(t *types.Type) bool {
	return p.boolean != nil && p.boolean == t
}

// parse is the resolver entry point for one piece of text. offset is the
// position of text in the line being resolved.
func (p *Parser) parse(text string, offset int, expected types.PatternType, policy ConditionalPolicy, depth int, res *resolution) (lang.Expression, error) {
	text, offset = trimWithOffset(text, offset)
	if !res.step() {
		return nil, errs.NoMatchf(text, offset, "expression too complex to resolve")
	}
	if depth > p.maxDepth {
		res.cutoffs++
		p.logger.Debug("resolution depth ceiling reached", zap.String("text", text), zap.Int("depth", depth))
		return nil, errs.NoMatchf(text, offset, "expression nested too deeply")
	}
	if text == "" {
		return nil, errs.NoMatchf(text, offset, "empty expression")
	}

	key := memoKey{text: text, offset: offset, typ: expected.Type, single: expected.Single, policy: policy}
	if e, ok := res.memo[key]; ok {
		return e.expr, e.err
	}
	cutoffs := res.cutoffs
	expr, err := p.resolveText(text, offset, expected, policy, depth, res)
	if res.cutoffs == cutoffs && !res.exhausted() {
		res.memo[key] = memoEntry{expr: expr, err: err}
	}
	return expr, err
}

func (p *Parser) resolveText(text string, offset int, expected types.PatternType, policy ConditionalPolicy, depth int, res *resolution) (lang.Expression, error) {
	if inner, ok := enclosedInParens(text); ok {
		return p.parse(inner, offset+1, expected, policy, depth+1, res)
	}

	if lit, ok := p.parseLiteral(text, expected); ok {
		if policy == MustBeConditional {
			return nil, errs.Semantic(text, offset, "a condition was expected but a plain value was found")
		}
		return lit, nil
	}

	v, err := p.parseVariable(text, offset, expected)
	if err != nil {
		return nil, err
	}
	if v != nil {
		if policy == MustBeConditional {
			return nil, errs.Semantic(text, offset, "a condition was expected but a variable was found")
		}
		return v, nil
	}

	if !expected.Single {
		if list := p.parseList(text, offset, expected, policy, depth, res); list != nil {
			return list, nil
		}
	}

	expr, err := p.parseSyntax(text, offset, expected, policy, depth, res)
	if err == nil {
		return expr, nil
	}
	if expected.Single && errs.KindOf(err) == errs.NoMatch {
		if cerr := p.cardinalityError(text, offset, expected, policy, depth, res); cerr != nil {
			return nil, cerr
		}
	}
	return nil, err
}

// cardinalityError explains a failed singular resolution of a text that is
// a list of several values.
func (p *Parser) cardinalityError(text string, offset int, expected types.PatternType, policy ConditionalPolicy, depth int, res *resolution) error {
	parts, _ := splitList(text)
	if len(parts) < 2 {
		return nil
	}
	plural := types.PatternType{Type: expected.Type, Single: false}
	list := p.parseList(text, offset, plural, policy, depth, res)
	if list == nil || list.IsSingle() {
		return nil
	}
	return errs.Semantic(text, offset,
		"only one %s is allowed here, but a list of %d values was found", expected.Type.Name(), len(parts))
}

// parseSyntax tries every compatible registered syntax in trial order. When
// none resolves the text, the most informative rejection is reported.
func (p *Parser) parseSyntax(text string, offset int, expected types.PatternType, policy ConditionalPolicy, depth int, res *resolution) (lang.Expression, error) {
	var (
		lastErr  error
		lastRank int
	)
	for _, info := range p.syntaxes.Candidates() {
		if !expected.Type.IsAssignableFrom(info.ReturnType) && !p.types.ConverterExists(info.ReturnType, expected.Type) {
			continue
		}
		expr, rank, err := p.matchInfo(text, offset, info, expected, policy, depth, res)
		if err == nil {
			p.syntaxes.Promote(info)
			return expr, nil
		}
		if kind := errs.KindOf(err); kind == errs.SemanticError || kind == errs.Internal {
			p.logger.Debug("candidate rejected",
				zap.String("syntax", info.Name),
				zap.String("text", text),
				zap.Error(err))
			if rank >= lastRank {
				lastErr, lastRank = err, rank
			}
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errs.NoMatchf(text, offset, "can't understand this expression as %s", article(expected))
}

// matchInfo matches text against every pattern of info. Each full
// structural match is built and checked before it is accepted, so a
// rejected split makes the matcher try the next one.
func (p *Parser) matchInfo(text string, offset int, info *syntax.Info, expected types.PatternType, policy ConditionalPolicy, depth int, res *resolution) (lang.Expression, int, error) {
	var (
		lastErr  error
		lastRank int
	)
	keep := func(err error, rank int) {
		if rank >= lastRank {
			lastErr, lastRank = err, rank
		}
	}
	for i, node := range info.Patterns {
		var result lang.Expression
		accept := func(st *MatchState) bool {
			expr, err := p.build(info, st.exprs, i, st.context(node, p), offset)
			if err != nil {
				if errs.KindOf(err) != errs.NoMatch {
					keep(err, rankBuild)
				}
				return false
			}
			expr, err = p.check(expr, info, text, offset, expected, policy)
			if err != nil {
				keep(err, rankCheck)
				return false
			}
			result = expr
			return true
		}
		st, ok := p.match(node, text, offset, depth, res, accept)
		if ok {
			return result, 0, nil
		}
		if st.err != nil {
			keep(st.err, rankNested)
		}
	}
	if lastErr != nil {
		return nil, lastRank, lastErr
	}
	return nil, 0, errs.NoMatchf(text, offset, "does not match %s", info.Name)
}

// build constructs and initializes a syntax instance. Panics raised by Init
// are reported as internal errors.
func (p *Parser) build(info *syntax.Info, exprs []lang.Expression, matched int, ctx *lang.ParseContext, offset int) (expr lang.Expression, err error) {
	defer func() {
		if r := recover(); r != nil {
			expr = nil
			err = errs.Internalf(fmt.Errorf("%v", r), ctx.Text, offset, "syntax %s failed to initialize", info.Name)
		}
	}()

	elem := info.New()
	if err := elem.Init(exprs, matched, ctx); err != nil {
		var located *errs.Error
		if errors.As(err, &located) {
			return nil, located.At(ctx.Text, offset)
		}
		return nil, &errs.Error{Kind: errs.SemanticError, Message: err.Error(), Text: ctx.Text, Pos: offset}
	}
	e, ok := elem.(lang.Expression)
	if !ok {
		return nil, errs.Internalf(nil, ctx.Text, offset, "syntax %s is not an expression", info.Name)
	}
	if s, ok := e.(lang.Simplifier); ok {
		e = s.Simplify()
	}
	return e, nil
}

// check applies the type, cardinality and conditional checks to a built
// expression.
func (p *Parser) check(expr lang.Expression, info *syntax.Info, text string, offset int, expected types.PatternType, policy ConditionalPolicy) (lang.Expression, error) {
	rt := expr.ReturnType()
	if !expected.Type.IsAssignableFrom(rt) {
		converted, ok := p.convert(expr, expected.Type)
		if !ok {
			return nil, errs.Semantic(text, offset, "expected %s, but found %s", article(expected), article(types.PatternType{Type: rt, Single: expr.IsSingle()}))
		}
		expr = converted
	}
	if expected.Single && !expr.IsSingle() {
		return nil, errs.Semantic(text, offset, "only one %s is allowed here, but this expression can hold several values", expected.Type.Name())
	}

	_, folded := expr.(lang.Literal)
	switch {
	case policy == MustBePlain && info.Conditional && !folded:
		return nil, errs.Semantic(text, offset, "a condition can't be used as a plain value here")
	case policy == MustBeConditional && !info.Conditional:
		return nil, errs.Semantic(text, offset, "a condition was expected but a plain value was found")
	}
	return expr, nil
}

func article(pt types.PatternType) string {
	if !pt.Single {
		return pt.Type.Plural()
	}
	name := pt.Type.Name()
	if name != "" {
		switch name[0] {
		case 'a', 'e', 'i', 'o', 'u':
			return "an " + name
		}
	}
	return "a " + name
}
