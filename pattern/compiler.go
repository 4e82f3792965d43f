package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"

	"github.com/gnolang/sklang/errs"
	"github.com/gnolang/sklang/types"
)

// DefaultMaxDepth bounds the nesting of groups inside one pattern.
const DefaultMaxDepth = 64

// TypeResolver maps type names written in placeholders to pattern types.
// *types.Registry implements it.
type TypeResolver interface {
	ResolveTypeName(name string) (types.PatternType, bool)
}

// Warning is a non-fatal compile diagnostic.
type Warning struct {
	Pattern string
	Pos     int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s (index %d): '%s'", w.Message, w.Pos, w.Pattern)
}

// Compiler turns pattern strings into pattern ASTs.
type Compiler struct {
	resolver TypeResolver
	logger   *zap.Logger
	maxDepth int
	warnings []Warning
	src      string
}

// NewCompiler creates a compiler resolving placeholder types through
// resolver. A nil logger discards warnings logs.
func NewCompiler(resolver TypeResolver, logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{resolver: resolver, logger: logger, maxDepth: DefaultMaxDepth}
}

// SetMaxDepth changes the group nesting ceiling.
func (c *Compiler) SetMaxDepth(depth int) {
	if depth > 0 {
		c.maxDepth = depth
	}
}

// Warnings returns the warnings of the last Compile call.
func (c *Compiler) Warnings() []Warning { return c.warnings }

// Compile is a shorthand for compiling one pattern with a fresh compiler.
func Compile(src string, resolver TypeResolver) (Node, error) {
	return NewCompiler(resolver, nil).Compile(src)
}

// MustCompile is like Compile but panics on error. It is meant for
// patterns known at build time.
func MustCompile(src string, resolver TypeResolver) Node {
	n, err := Compile(src, resolver)
	if err != nil {
		panic(err)
	}
	return n
}

// Compile compiles a pattern string.
func (c *Compiler) Compile(src string) (Node, error) {
	c.warnings = nil
	c.src = src
	return c.compile(src, 0, 0)
}

func (c *Compiler) warn(pos int, msg string) {
	c.warnings = append(c.warnings, Warning{Pattern: c.src, Pos: pos, Message: msg})
	c.logger.Warn(msg, zap.String("pattern", c.src), zap.Int("index", pos))
}

func (c *Compiler) malformed(pos int, format string, args ...any) error {
	return errs.Malformed(c.src, pos, format, args...)
}

// compile compiles s, which starts at offset in the full pattern.
func (c *Compiler) compile(s string, offset, depth int) (Node, error) {
	if depth > c.maxDepth {
		return nil, c.malformed(offset, "pattern nested too deeply")
	}
	if parts := splitBars(s); len(parts) > 1 {
		return c.compileChoice(parts, offset, depth)
	}

	var (
		nodes    []Node
		buf      strings.Builder
		bufStart int
	)
	flush := func() {
		if buf.Len() > 0 {
			nodes = append(nodes, &TextNode{Content: buf.String(), pos: offset + bufStart})
			buf.Reset()
		}
	}
	write := func(i int, b byte) {
		if buf.Len() == 0 {
			bufStart = i
		}
		buf.WriteByte(b)
	}

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '[':
			end := findClosing(s, i, '[', ']')
			if end < 0 {
				return nil, c.malformed(offset+i, "unmatched '['")
			}
			node, err := c.compileOptional(s[i+1:end], offset+i+1, depth+1)
			if err != nil {
				return nil, err
			}
			flush()
			nodes = append(nodes, node)
			i = end
		case '(':
			end := findClosing(s, i, '(', ')')
			if end < 0 {
				return nil, c.malformed(offset+i, "unmatched '('")
			}
			inner := s[i+1 : end]
			node, err := c.compileChoice(splitBars(inner), offset+i+1, depth+1)
			if err != nil {
				return nil, err
			}
			node.(*ChoiceNode).pos = offset + i
			flush()
			nodes = append(nodes, node)
			i = end
		case '<':
			end := findClosing(s, i, '<', '>')
			if end < 0 {
				return nil, c.malformed(offset+i, "unmatched '<'")
			}
			node, err := c.compileRegex(s[i+1:end], offset+i)
			if err != nil {
				return nil, err
			}
			flush()
			nodes = append(nodes, node)
			i = end
		case '%':
			end := strings.IndexByte(s[i+1:], '%')
			if end < 0 {
				return nil, c.malformed(offset+i, "unterminated placeholder")
			}
			end += i + 1
			node, err := c.compilePlaceholder(s[i+1:end], offset+i)
			if err != nil {
				return nil, err
			}
			flush()
			nodes = append(nodes, node)
			i = end
		case '\\':
			if i+1 >= len(s) {
				return nil, c.malformed(offset+i, "trailing escape character")
			}
			write(i, s[i+1])
			i++
		case ']', ')', '>':
			return nil, c.malformed(offset+i, "unmatched closing bracket '%c'", ch)
		default:
			write(i, ch)
		}
	}
	flush()

	switch len(nodes) {
	case 0:
		return &TextNode{pos: offset}, nil
	case 1:
		return nodes[0], nil
	}
	seq := NewSequence(nodes...)
	seq.pos = offset
	return seq, nil
}

// compileOptional compiles the interior of a [...] group.
func (c *Compiler) compileOptional(inner string, offset, depth int) (Node, error) {
	if strings.TrimSpace(inner) == "" {
		c.warn(offset-1, "optional group is empty or whitespace only")
	}
	if len(splitBars(inner)) == 1 {
		mark, rest, ok, err := c.markOf(inner, offset)
		if err != nil {
			return nil, err
		}
		if ok {
			body, err := c.compile(rest, offset+len(inner)-len(rest), depth)
			if err != nil {
				return nil, err
			}
			choice := &ChoiceNode{Alternatives: []Alternative{{Node: body, Mark: mark}}, pos: offset}
			return &OptionalNode{Inner: choice, pos: offset - 1}, nil
		}
	}
	body, err := c.compile(inner, offset, depth)
	if err != nil {
		return nil, err
	}
	return &OptionalNode{Inner: body, pos: offset - 1}, nil
}

// compileChoice compiles the alternatives of a choice.
func (c *Compiler) compileChoice(parts []piece, offset, depth int) (Node, error) {
	choice := &ChoiceNode{pos: offset}
	for _, p := range parts {
		text, pos := p.text, offset+p.pos
		if strings.TrimSpace(text) == "" {
			c.warn(pos, "empty choice alternative")
		}
		mark, rest, ok, err := c.markOf(text, pos)
		if err != nil {
			return nil, err
		}
		if !ok && strings.HasPrefix(text, ":") {
			rest = text[1:]
			mark = hashMark(rest)
		}
		node, err := c.compile(rest, pos+len(text)-len(rest), depth)
		if err != nil {
			return nil, err
		}
		choice.Alternatives = append(choice.Alternatives, Alternative{Node: node, Mark: mark})
	}
	return choice, nil
}

func (c *Compiler) markOf(s string, pos int) (int, string, bool, error) {
	mark, rest, ok, err := parseMark(s)
	if err != nil {
		return 0, s, false, c.malformed(pos, "invalid parse mark: %v", err)
	}
	return mark, rest, ok, nil
}

// compileRegex compiles the body of a <...> group. The expression is
// anchored so that it only matches at the cursor.
func (c *Compiler) compileRegex(src string, pos int) (Node, error) {
	if src == "" {
		c.warn(pos, "empty regex group")
	}
	re, err := regexp2.Compile(`^(?:`+src+`)`, regexp2.None)
	if err != nil {
		return nil, errs.Malformed(c.src, pos, "invalid regex <%s>: %v", src, err)
	}
	return &RegexNode{Source: src, Regexp: re, pos: pos}, nil
}

var placeholderGrammar = regexp.MustCompile(`^(-)?([~*^])?(=)?([\w ]+(?:/[\w ]+)*)$`)

const (
	defaultPlaceholderType = "object"
	booleanTypeName        = "boolean"
)

// compilePlaceholder compiles the body of a %...% group.
func (c *Compiler) compilePlaceholder(body string, pos int) (Node, error) {
	if body == "" {
		c.warn(pos, "empty placeholder, defaulting to "+defaultPlaceholderType)
		body = defaultPlaceholderType
	}
	m := placeholderGrammar.FindStringSubmatch(body)
	if m == nil {
		return nil, c.malformed(pos, "invalid placeholder %%%s%%", body)
	}
	node := &PlaceholderNode{
		Nullable:           m[1] != "",
		AcceptsConditional: m[3] != "",
		pos:                pos,
	}
	switch m[2] {
	case "~":
		node.Acceptance = AcceptExpressions
	case "*":
		node.Acceptance = AcceptLiterals
	case "^":
		node.Acceptance = AcceptVariables
	}

	var boolean *types.Type
	if node.AcceptsConditional {
		if pt, ok := c.resolver.ResolveTypeName(booleanTypeName); ok {
			boolean = pt.Type
		}
	}
	for _, name := range strings.Split(m[4], "/") {
		name = strings.TrimSpace(name)
		pt, ok := c.resolver.ResolveTypeName(name)
		if !ok {
			return nil, errs.NoMatchf(c.src, pos, "unknown type '%s'", name)
		}
		if node.AcceptsConditional && (boolean == nil || !boolean.IsAssignableFrom(pt.Type)) {
			return nil, errs.Semantic(c.src, pos,
				"'=' only applies to boolean placeholders, got '%s'", name)
		}
		node.Types = append(node.Types, pt)
	}
	return node, nil
}
