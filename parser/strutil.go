package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// indexFold returns the index of the first case-insensitive occurrence of
// sub in s at or after from, or -1.
func indexFold(s, sub string, from int) int {
	for i := from; i+len(sub) <= len(s); i++ {
		if !utf8.RuneStart(s[i]) {
			continue
		}
		if strings.EqualFold(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// skipSpace returns the index of the first non-space byte at or after i.
func skipSpace(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}

// spaceAt reports whether a space starts at i.
func spaceAt(s string, i int) bool {
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsSpace(r)
}

// spaceBefore reports whether a space ends right before i.
func spaceBefore(s string, i int) bool {
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return unicode.IsSpace(r)
}

// trimWithOffset trims s and shifts offset by the removed leading space.
func trimWithOffset(s string, offset int) (string, int) {
	lead := len(s) - len(strings.TrimLeftFunc(s, unicode.IsSpace))
	return strings.TrimSpace(s), offset + lead
}

// scanner walks a script text keeping track of string literals and of
// nesting depth of (), {} and [].
type scanner struct {
	inString bool
	depth    int
}

// step consumes byte c. It reports whether c was outside any string
// literal and at depth zero before it was consumed.
func (sc *scanner) step(c byte) bool {
	top := !sc.inString && sc.depth == 0
	if sc.inString {
		if c == '"' {
			sc.inString = false
		}
		return false
	}
	switch c {
	case '"':
		sc.inString = true
	case '(', '{', '[':
		sc.depth++
	case ')', '}', ']':
		sc.depth--
	}
	return top
}

// balanced reports whether s has no unterminated string literal and no
// unbalanced brackets.
func balanced(s string) bool {
	var sc scanner
	for i := 0; i < len(s); i++ {
		sc.step(s[i])
		if sc.depth < 0 {
			return false
		}
	}
	return !sc.inString && sc.depth == 0
}

// enclosedInParens reports whether s is wrapped in one pair of parentheses
// and returns the interior.
func enclosedInParens(s string) (string, bool) {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return "", false
	}
	var sc scanner
	for i := 0; i < len(s); i++ {
		sc.step(s[i])
		if sc.depth == 0 && !sc.inString {
			if i != len(s)-1 {
				return "", false
			}
			return s[1 : len(s)-1], true
		}
	}
	return "", false
}

// spaceSplits returns the positions of whitespace runs in s after from that
// are outside brackets and string literals, in ascending order.
func spaceSplits(s string, from int) []int {
	var (
		sc  scanner
		out []int
	)
	for i := from; i < len(s); i++ {
		top := sc.step(s[i])
		if top && (s[i] == ' ' || s[i] == '\t') && i > from {
			if prev := s[i-1]; prev != ' ' && prev != '\t' {
				out = append(out, i)
			}
		}
	}
	return out
}
