package loader

import (
	"strings"
	"unicode"
)

// Statement is the resolvable text of one script line.
type Statement struct {
	Text string
	// Column is the 1-based column of Text in its line.
	Column int
	// Condition is set for "if", "else if" and "while" headers.
	Condition bool
}

var conditionPrefixes = []string{"else if ", "if ", "while "}

// ParseStatement extracts the statement of a line. Blank lines, comment
// lines and lines holding only a section header such as "else:" yield
// false. A trailing comment starting with '#' outside a string is dropped.
func ParseStatement(line string) (Statement, bool) {
	line = stripComment(line)
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	col := len(line) - len(trimmed) + 1
	trimmed = strings.TrimRightFunc(trimmed, unicode.IsSpace)
	if trimmed == "" {
		return Statement{}, false
	}

	lower := strings.ToLower(trimmed)
	for _, prefix := range conditionPrefixes {
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		body := strings.TrimSuffix(trimmed[len(prefix):], ":")
		lead := len(body) - len(strings.TrimLeftFunc(body, unicode.IsSpace))
		body = strings.TrimSpace(body)
		if body == "" {
			return Statement{}, false
		}
		return Statement{Text: body, Column: col + len(prefix) + lead, Condition: true}, true
	}
	if strings.HasSuffix(trimmed, ":") && !strings.ContainsAny(trimmed, " \t") {
		return Statement{}, false
	}
	return Statement{Text: trimmed, Column: col}, true
}

// stripComment removes a '#' comment. A '#' inside double quotes or
// braces is kept.
func stripComment(line string) string {
	inString := false
	braces := 0
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			braces++
		case c == '}':
			if braces > 0 {
				braces--
			}
		case c == '#' && braces == 0:
			return line[:i]
		}
	}
	return line
}
