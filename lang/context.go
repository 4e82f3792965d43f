package lang

import (
	"go.uber.org/zap"

	"github.com/gnolang/sklang/pattern"
	"github.com/gnolang/sklang/types"
)

// ParseContext describes a successful match. It is handed to the matched
// syntax's Init and is not shared between matches.
type ParseContext struct {
	// Pattern is the compiled pattern that matched.
	Pattern pattern.Node
	// Text is the matched input.
	Text string
	// Mark is the XOR of the marks of every matched choice alternative.
	Mark int
	// Captures holds the trimmed text of each placeholder, in order. A
	// skipped optional placeholder has an empty capture.
	Captures []string
	// RegexMatches holds the text matched by each regex group, in order.
	RegexMatches []string
	// Types is the registry the match was resolved against. Syntaxes use
	// it to find comparators and converters.
	Types  *types.Registry
	Logger *zap.Logger
}

// ExpressionString renders the matched pattern in canonical form.
func (c *ParseContext) ExpressionString() string {
	if c.Pattern == nil {
		return ""
	}
	return c.Pattern.String()
}
