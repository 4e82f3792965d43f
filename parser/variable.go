package parser

import (
	"regexp"
	"strings"

	"github.com/gnolang/sklang/errs"
	"github.com/gnolang/sklang/lang"
	"github.com/gnolang/sklang/types"
)

const (
	// ListSeparator separates the segments of a list variable name.
	ListSeparator = "::"
	// LocalPrefix marks a variable local to its trigger.
	LocalPrefix = "_"
)

var variablePattern = regexp.MustCompile(`^\{([^{}]|%\{|\}%)+\}$`)

// ValidateVariableName checks a variable name without its braces. The
// returned error describes the first problem found.
func ValidateVariableName(name string) error {
	name = strings.TrimSpace(strings.TrimPrefix(name, LocalPrefix))
	switch {
	case name == "":
		return errs.Semantic(name, 0, "a variable name can't be empty")
	case strings.HasPrefix(name, ListSeparator) || strings.HasSuffix(name, ListSeparator):
		return errs.Semantic(name, 0, "a variable name can't start or end with the list separator %s", ListSeparator)
	case strings.Contains(name, "*") &&
		(strings.Index(name, "*") != len(name)-1 || !strings.HasSuffix(name, ListSeparator+"*")):
		return errs.Semantic(name, 0, "a variable name can't contain an asterisk outside of a list declaration")
	case strings.Contains(name, ListSeparator+ListSeparator):
		return errs.Semantic(name, 0, "a variable name can't contain two list separators stuck together")
	}
	return nil
}

// ParseVariable parses text as a variable reference. It returns a nil
// expression and no error when text is not a variable at all, and a
// SemanticError when it is a badly formed one.
func (p *Parser) ParseVariable(text string, expected types.PatternType) (lang.Expression, error) {
	v, err := p.parseVariable(text, 0, expected)
	if err != nil || v == nil {
		return nil, err
	}
	return v, nil
}

func (p *Parser) parseVariable(text string, offset int, expected types.PatternType) (*lang.Variable, error) {
	if !variablePattern.MatchString(text) {
		return nil, nil
	}
	name := strings.TrimSpace(text[1 : len(text)-1])
	if err := ValidateVariableName(name); err != nil {
		e := err.(*errs.Error)
		e.Text, e.Pos = text, offset
		return nil, e
	}
	local := strings.HasPrefix(name, LocalPrefix)
	if local {
		name = strings.TrimSpace(name[len(LocalPrefix):])
	}
	list := strings.HasSuffix(name, ListSeparator+"*")
	if list && expected.Single {
		return nil, errs.Semantic(text, offset, "a list variable can't be used where only one %s is allowed", expected.Type.Name())
	}
	return lang.NewVariable(name, local, list, expected.Type), nil
}
