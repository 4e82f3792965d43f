package parser

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/gnolang/sklang/errs"
	"github.com/gnolang/sklang/lang"
	"github.com/gnolang/sklang/pattern"
)

// MatchState is the state of one matching attempt. Choice alternatives,
// optional groups and placeholder splits run on a branch that starts from a
// copy of its parent and replaces it on success.
type MatchState struct {
	input  string // text being matched
	offset int    // position of input in the line
	depth  int
	res    *resolution

	// accept, when set, is consulted once the whole input is consumed. A
	// false result makes the matcher backtrack into the next possibility.
	accept func(*MatchState) bool

	exprs        []lang.Expression
	captures     []string
	regexMatches []string
	mark         int

	// err is the last semantic or internal error raised while resolving a
	// placeholder. It explains the failure when nothing matches.
	err error
}

func newMatchState(input string, offset, depth int, res *resolution) *MatchState {
	return &MatchState{input: input, offset: offset, depth: depth, res: res}
}

// Expressions returns the placeholder values captured so far.
func (s *MatchState) Expressions() []lang.Expression { return s.exprs }

// Mark returns the accumulated parse mark.
func (s *MatchState) Mark() int { return s.mark }

func (s *MatchState) branch() *MatchState {
	c := *s
	// clipped so that appends on sibling branches never share an array
	c.exprs = slices.Clip(s.exprs)
	c.captures = slices.Clip(s.captures)
	c.regexMatches = slices.Clip(s.regexMatches)
	c.err = nil
	return &c
}

func (s *MatchState) merge(child *MatchState) {
	s.exprs = child.exprs
	s.captures = child.captures
	s.regexMatches = child.regexMatches
	s.mark = child.mark
	s.keepErr(child)
}

func (s *MatchState) keepErr(child *MatchState) {
	if child.err != nil {
		s.err = child.err
	}
}

func (s *MatchState) context(node pattern.Node, p *Parser) *lang.ParseContext {
	return &lang.ParseContext{
		Pattern:      node,
		Text:         s.input,
		Mark:         s.mark,
		Captures:     s.captures,
		RegexMatches: s.regexMatches,
		Types:        p.types,
		Logger:       p.logger,
	}
}

// Match matches a whole line against a compiled pattern and returns the
// parse context and the captured placeholder expressions.
func (p *Parser) Match(node pattern.Node, input string) (*lang.ParseContext, []lang.Expression, bool) {
	input, offset := trimWithOffset(input, 0)
	st, ok := p.match(node, input, offset, 0, p.newResolution(), nil)
	if !ok {
		return nil, nil, false
	}
	return st.context(node, p), st.exprs, true
}

// match runs node against all of input. Only whitespace may be left over.
func (p *Parser) match(node pattern.Node, input string, offset, depth int, res *resolution, accept func(*MatchState) bool) (*MatchState, bool) {
	st := newMatchState(input, offset, depth, res)
	st.accept = accept
	_, ok := p.matchSeq([]pattern.Node{node}, 0, st)
	return st, ok
}

// matchSeq matches nodes in order starting at cursor and then requires the
// rest of the input to be blank. Every choice, optional group and
// placeholder split is tried on a branch, so a failure further along the
// pattern backtracks into the next possibility.
func (p *Parser) matchSeq(nodes []pattern.Node, cursor int, st *MatchState) (int, bool) {
	if !st.res.step() {
		return cursor, false
	}
	if len(nodes) == 0 {
		if strings.TrimSpace(st.input[cursor:]) != "" {
			return cursor, false
		}
		if st.accept != nil && !st.accept(st) {
			return cursor, false
		}
		return cursor, true
	}
	rest := nodes[1:]
	prepend := func(n pattern.Node) []pattern.Node {
		return append([]pattern.Node{n}, rest...)
	}

	switch n := nodes[0].(type) {
	case *pattern.TextNode:
		c, ok := matchText(n, st.input, cursor)
		if !ok {
			return cursor, false
		}
		return p.matchSeq(rest, c, st)
	case *pattern.SequenceNode:
		return p.matchSeq(expandHead(nodes), cursor, st)
	case *pattern.OptionalNode:
		child := st.branch()
		if c, ok := p.matchSeq(prepend(n.Inner), cursor, child); ok {
			st.merge(child)
			return c, true
		}
		st.keepErr(child)
		child = st.branch()
		for i := nullableCount(n.Inner); i > 0; i-- {
			child.exprs = append(child.exprs, nil)
			child.captures = append(child.captures, "")
		}
		if c, ok := p.matchSeq(rest, cursor, child); ok {
			st.merge(child)
			return c, true
		}
		st.keepErr(child)
		return cursor, false
	case *pattern.ChoiceNode:
		for _, alt := range n.Alternatives {
			child := st.branch()
			child.mark ^= alt.Mark
			c, ok := p.matchSeq(prepend(alt.Node), cursor, child)
			if !ok {
				st.keepErr(child)
				continue
			}
			st.merge(child)
			return c, true
		}
		return cursor, false
	case *pattern.RegexNode:
		m, err := n.Regexp.FindStringMatch(st.input[cursor:])
		if err != nil || m == nil {
			return cursor, false
		}
		child := st.branch()
		child.regexMatches = append(child.regexMatches, m.String())
		c, ok := p.matchSeq(rest, cursor+len(m.String()), child)
		if !ok {
			st.keepErr(child)
			return cursor, false
		}
		st.merge(child)
		return c, true
	case *pattern.PlaceholderNode:
		return p.matchPlaceholder(n, cursor, rest, st)
	}
	return cursor, false
}

// expandHead replaces leading sequences of nodes by their elements.
func expandHead(nodes []pattern.Node) []pattern.Node {
	for len(nodes) > 0 {
		seq, ok := nodes[0].(*pattern.SequenceNode)
		if !ok {
			break
		}
		nodes = append(append([]pattern.Node{}, seq.Elements...), nodes[1:]...)
	}
	return nodes
}

// matchText skips leading whitespace and compares the trimmed text case
// insensitively. The cursor then advances from the first non-space
// position by the untrimmed length of the text, so a literal with leading
// whitespace also consumes that many bytes after its last letter.
func matchText(n *pattern.TextNode, input string, cursor int) (int, bool) {
	want := strings.TrimSpace(n.Content)
	if want == "" {
		return cursor, true
	}
	i := skipSpace(input, cursor)
	if !hasPrefixFold(input[i:], want) {
		return cursor, false
	}
	return min(i+len(n.Content), len(input)), true
}

// nullableCount counts the nullable placeholders inside node.
func nullableCount(node pattern.Node) int {
	switch n := node.(type) {
	case *pattern.PlaceholderNode:
		if n.Nullable {
			return 1
		}
	case *pattern.OptionalNode:
		return nullableCount(n.Inner)
	case *pattern.ChoiceNode:
		count := 0
		for _, alt := range n.Alternatives {
			count += nullableCount(alt.Node)
		}
		return count
	case *pattern.SequenceNode:
		count := 0
		for _, el := range n.Elements {
			count += nullableCount(el)
		}
		return count
	}
	return 0
}

// matchPlaceholder finds where the placeholder's text ends by looking at
// what follows it, resolves the text in between and matches the rest of the
// pattern from there. A literal that directly follows the placeholder is
// consumed where it was found.
func (p *Parser) matchPlaceholder(n *pattern.PlaceholderNode, cursor int, rest []pattern.Node, st *MatchState) (int, bool) {
	input := st.input
	rest = expandHead(rest)
	try := func(end int, next []pattern.Node, resume int) (int, bool) {
		text := input[cursor:end]
		expr, ok := p.resolveHole(n, text, st.offset+cursor, st)
		if !ok {
			return cursor, false
		}
		child := st.branch()
		child.exprs = append(child.exprs, expr)
		child.captures = append(child.captures, strings.TrimSpace(text))
		c, ok := p.matchSeq(next, resume, child)
		if !ok {
			st.keepErr(child)
			return cursor, false
		}
		st.merge(child)
		return c, true
	}

	for _, a := range collectAnchors(rest) {
		switch a.kind {
		case anchorText:
			direct := false
			if t, ok := rest[0].(*pattern.TextNode); ok && strings.TrimSpace(t.Content) != "" {
				direct = true
			}
			for occ := a.find(input, cursor); occ >= 0; occ = a.find(input, occ+1) {
				next, resume := rest, occ
				if direct {
					next, resume = rest[1:], occ+len(a.text)
				}
				if c, ok := try(occ, next, resume); ok {
					return c, true
				}
			}
		case anchorRegex:
			for j := cursor; j <= len(input); j++ {
				if j < len(input) && !utf8.RuneStart(input[j]) {
					continue
				}
				m, err := a.re.Regexp.FindStringMatch(input[j:])
				if err != nil || m == nil {
					continue
				}
				if c, ok := try(j, rest, j); ok {
					return c, true
				}
			}
		case anchorEnd:
			if c, ok := try(len(input), rest, len(input)); ok {
				return c, true
			}
		case anchorPlaceholder:
			for _, k := range spaceSplits(input, cursor) {
				if c, ok := try(k, rest, k); ok {
					return c, true
				}
			}
		}
	}
	return cursor, false
}

// resolveHole resolves the text of one placeholder, trying its types in
// order.
func (p *Parser) resolveHole(n *pattern.PlaceholderNode, text string, offset int, st *MatchState) (lang.Expression, bool) {
	text, offset = trimWithOffset(text, offset)
	if text == "" {
		return nil, n.Nullable
	}
	if !balanced(text) {
		return nil, false
	}
	for _, pt := range n.Types {
		policy := MustBePlain
		if n.AcceptsConditional && p.isBoolean(pt.Type) {
			policy = MayBeEither
		}
		expr, err := p.parse(text, offset, pt, policy, st.depth+1, st.res)
		if err != nil {
			if k := errs.KindOf(err); k == errs.SemanticError || k == errs.Internal {
				st.err = err
			}
			continue
		}
		if !accepts(n.Acceptance, expr) {
			continue
		}
		return expr, true
	}
	return nil, false
}

func accepts(a pattern.Acceptance, expr lang.Expression) bool {
	switch a {
	case pattern.AcceptLiterals:
		_, ok := expr.(lang.Literal)
		return ok
	case pattern.AcceptExpressions:
		_, ok := expr.(lang.Literal)
		return !ok
	case pattern.AcceptVariables:
		_, ok := expr.(*lang.Variable)
		return ok
	}
	return true
}

type anchorKind int

const (
	anchorText anchorKind = iota
	anchorRegex
	anchorPlaceholder
	anchorEnd
)

// anchor is something that can end a placeholder's text. A text anchor
// holds trimmed text; lead and trail require whitespace (or the end of the
// input) around an occurrence.
type anchor struct {
	kind        anchorKind
	text        string
	lead, trail bool
	re          *pattern.RegexNode
}

func (a anchor) key() string {
	switch a.kind {
	case anchorText:
		return fmt.Sprintf("t%t%t%s", a.lead, a.trail, strings.ToLower(a.text))
	case anchorRegex:
		return "r" + a.re.Source
	case anchorPlaceholder:
		return "p"
	}
	return "e"
}

// find returns the first occurrence of a text anchor at or after from.
func (a anchor) find(input string, from int) int {
	for occ := indexFold(input, a.text, from); occ >= 0; occ = indexFold(input, a.text, occ+1) {
		if a.lead && occ > 0 && !spaceBefore(input, occ) {
			continue
		}
		if end := occ + len(a.text); a.trail && end < len(input) && !spaceAt(input, end) {
			continue
		}
		return occ
	}
	return -1
}

// collectAnchors lists the first non-empty element on every path through
// next. Choices contribute one path per alternative and optional groups
// one path with and one without their content. The end of the pattern is
// itself an anchor.
func collectAnchors(next []pattern.Node) []anchor {
	var (
		out  []anchor
		seen = make(map[string]bool)
	)
	add := func(a anchor) {
		if k := a.key(); !seen[k] {
			seen[k] = true
			out = append(out, a)
		}
	}
	var walk func(nodes []pattern.Node, lead bool)
	walk = func(nodes []pattern.Node, lead bool) {
		if len(nodes) == 0 {
			add(anchor{kind: anchorEnd})
			return
		}
		rest := nodes[1:]
		prepend := func(n pattern.Node) []pattern.Node {
			return append([]pattern.Node{n}, rest...)
		}
		switch n := nodes[0].(type) {
		case *pattern.TextNode:
			core := strings.TrimSpace(n.Content)
			if core == "" {
				walk(rest, lead || n.Content != "")
				return
			}
			add(anchor{
				kind:  anchorText,
				text:  core,
				lead:  lead || !strings.HasPrefix(n.Content, core),
				trail: !strings.HasSuffix(n.Content, core),
			})
		case *pattern.RegexNode:
			add(anchor{kind: anchorRegex, re: n})
		case *pattern.PlaceholderNode:
			add(anchor{kind: anchorPlaceholder})
		case *pattern.ChoiceNode:
			for _, alt := range n.Alternatives {
				walk(prepend(alt.Node), lead)
			}
		case *pattern.OptionalNode:
			walk(prepend(n.Inner), lead)
			walk(rest, lead)
		case *pattern.SequenceNode:
			walk(expandHead(nodes), lead)
		}
	}
	walk(next, false)
	return out
}
