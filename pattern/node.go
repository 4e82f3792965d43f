package pattern

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/gnolang/sklang/types"
)

// NodeType defines the node variants of a compiled pattern.
type NodeType int

const (
	NodeText NodeType = iota
	NodeOptional
	NodeChoice
	NodeRegex
	NodePlaceholder
	NodeSequence
)

func (t NodeType) String() string {
	switch t {
	case NodeText:
		return "Text"
	case NodeOptional:
		return "Optional"
	case NodeChoice:
		return "Choice"
	case NodeRegex:
		return "Regex"
	case NodePlaceholder:
		return "Placeholder"
	case NodeSequence:
		return "Sequence"
	default:
		return "Unknown"
	}
}

// Node is an interface that any pattern AST node must implement.
type Node interface {
	Type() NodeType // returns the node type
	String() string // canonical pattern rendering
	Position() int  // where the node starts in the pattern source
}

var (
	_ Node = (*TextNode)(nil)
	_ Node = (*OptionalNode)(nil)
	_ Node = (*ChoiceNode)(nil)
	_ Node = (*RegexNode)(nil)
	_ Node = (*PlaceholderNode)(nil)
	_ Node = (*SequenceNode)(nil)
)

// TextNode is literal text.
type TextNode struct {
	Content string
	pos     int
}

func NewText(content string) *TextNode { return &TextNode{Content: content} }

func (t *TextNode) Type() NodeType { return NodeText }
func (t *TextNode) String() string { return escapeText(t.Content) }
func (t *TextNode) Position() int  { return t.pos }

// OptionalNode matches its inner node zero or one time.
type OptionalNode struct {
	Inner Node
	pos   int
}

func NewOptional(inner Node) *OptionalNode { return &OptionalNode{Inner: inner} }

func (o *OptionalNode) Type() NodeType { return NodeOptional }
func (o *OptionalNode) Position() int  { return o.pos }

func (o *OptionalNode) String() string {
	if c, ok := o.Inner.(*ChoiceNode); ok {
		if len(c.Alternatives) == 1 {
			alt := c.Alternatives[0]
			return fmt.Sprintf("[%d:%s]", alt.Mark, alt.Node)
		}
		return "[" + c.body() + "]"
	}
	return "[" + o.Inner.String() + "]"
}

// Alternative is one branch of a choice.
type Alternative struct {
	Node Node
	Mark int
}

// ChoiceNode matches exactly one of its alternatives, tried in order.
type ChoiceNode struct {
	Alternatives []Alternative
	pos          int
}

func NewChoice(alts ...Alternative) *ChoiceNode { return &ChoiceNode{Alternatives: alts} }

func (c *ChoiceNode) Type() NodeType { return NodeChoice }
func (c *ChoiceNode) String() string { return "(" + c.body() + ")" }
func (c *ChoiceNode) Position() int  { return c.pos }

func (c *ChoiceNode) body() string {
	parts := make([]string, len(c.Alternatives))
	for i, alt := range c.Alternatives {
		if alt.Mark != 0 {
			parts[i] = fmt.Sprintf("%d:%s", alt.Mark, alt.Node)
		} else {
			parts[i] = alt.Node.String()
		}
	}
	return strings.Join(parts, "|")
}

// RegexNode consumes input matched by a regular expression at the cursor.
type RegexNode struct {
	Source string
	Regexp *regexp2.Regexp // anchored at the start of the remaining input
	pos    int
}

func (r *RegexNode) Type() NodeType { return NodeRegex }
func (r *RegexNode) String() string { return "<" + r.Source + ">" }
func (r *RegexNode) Position() int  { return r.pos }

// Acceptance restricts what kind of expression a placeholder may hold.
type Acceptance int

const (
	AcceptAny         Acceptance = iota
	AcceptExpressions            // ~
	AcceptLiterals               // *
	AcceptVariables              // ^
)

// Symbol returns the placeholder prefix character of the acceptance.
func (a Acceptance) Symbol() string {
	switch a {
	case AcceptExpressions:
		return "~"
	case AcceptLiterals:
		return "*"
	case AcceptVariables:
		return "^"
	}
	return ""
}

func (a Acceptance) String() string {
	switch a {
	case AcceptExpressions:
		return "expressions only"
	case AcceptLiterals:
		return "literals only"
	case AcceptVariables:
		return "variables only"
	}
	return "any"
}

// PlaceholderNode is a typed hole resolved to an expression while matching.
type PlaceholderNode struct {
	Types              []types.PatternType
	Acceptance         Acceptance
	Nullable           bool
	AcceptsConditional bool
	pos                int
}

func (p *PlaceholderNode) Type() NodeType { return NodePlaceholder }
func (p *PlaceholderNode) Position() int  { return p.pos }

func (p *PlaceholderNode) String() string {
	var sb strings.Builder
	sb.WriteByte('%')
	if p.Nullable {
		sb.WriteByte('-')
	}
	sb.WriteString(p.Acceptance.Symbol())
	if p.AcceptsConditional {
		sb.WriteByte('=')
	}
	for i, t := range p.Types {
		if i > 0 {
			sb.WriteByte('/')
		}
		sb.WriteString(t.String())
	}
	sb.WriteByte('%')
	return sb.String()
}

// SequenceNode is an ordered concatenation of nodes. It never contains
// another SequenceNode.
type SequenceNode struct {
	Elements []Node
	pos      int
}

// NewSequence flattens nested sequences into one.
func NewSequence(nodes ...Node) *SequenceNode {
	s := &SequenceNode{}
	for _, n := range nodes {
		if inner, ok := n.(*SequenceNode); ok {
			s.Elements = append(s.Elements, inner.Elements...)
			continue
		}
		s.Elements = append(s.Elements, n)
	}
	return s
}

func (s *SequenceNode) Type() NodeType { return NodeSequence }
func (s *SequenceNode) Position() int  { return s.pos }

func (s *SequenceNode) String() string {
	var sb strings.Builder
	for _, n := range s.Elements {
		sb.WriteString(n.String())
	}
	return sb.String()
}

const textEscapes = `\[]()<>%|:`

func escapeText(s string) string {
	if !strings.ContainsAny(s, textEscapes) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(textEscapes, s[i]) >= 0 {
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// Equal reports whether two nodes are structurally equal. Positions are
// ignored and regexes compare by source.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}
	switch x := a.(type) {
	case *TextNode:
		return x.Content == b.(*TextNode).Content
	case *OptionalNode:
		return Equal(x.Inner, b.(*OptionalNode).Inner)
	case *ChoiceNode:
		y := b.(*ChoiceNode)
		if len(x.Alternatives) != len(y.Alternatives) {
			return false
		}
		for i := range x.Alternatives {
			if x.Alternatives[i].Mark != y.Alternatives[i].Mark ||
				!Equal(x.Alternatives[i].Node, y.Alternatives[i].Node) {
				return false
			}
		}
		return true
	case *RegexNode:
		return x.Source == b.(*RegexNode).Source
	case *PlaceholderNode:
		y := b.(*PlaceholderNode)
		if x.Acceptance != y.Acceptance || x.Nullable != y.Nullable ||
			x.AcceptsConditional != y.AcceptsConditional || len(x.Types) != len(y.Types) {
			return false
		}
		for i := range x.Types {
			if x.Types[i] != y.Types[i] {
				return false
			}
		}
		return true
	case *SequenceNode:
		y := b.(*SequenceNode)
		if len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !Equal(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Dump renders a node as an indented tree for debugging.
func Dump(n Node) string {
	switch x := n.(type) {
	case *TextNode:
		return fmt.Sprintf("Text(%q)", x.Content)
	case *OptionalNode:
		return "Optional:\n  " + indent(Dump(x.Inner))
	case *ChoiceNode:
		result := fmt.Sprintf("Choice(%d alternatives):\n", len(x.Alternatives))
		for i, alt := range x.Alternatives {
			result += fmt.Sprintf("  %d [mark %d]: %s\n", i, alt.Mark, indent(Dump(alt.Node)))
		}
		return strings.TrimRight(result, "\n")
	case *RegexNode:
		return fmt.Sprintf("Regex(%s)", x.Source)
	case *PlaceholderNode:
		return fmt.Sprintf("Placeholder(%s)", x)
	case *SequenceNode:
		result := fmt.Sprintf("Sequence(%d elements):\n", len(x.Elements))
		for i, el := range x.Elements {
			result += fmt.Sprintf("  %d: %s\n", i, indent(Dump(el)))
		}
		return strings.TrimRight(result, "\n")
	}
	return "<nil>"
}

func indent(s string) string { return strings.ReplaceAll(s, "\n", "\n  ") }
