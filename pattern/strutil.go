package pattern

import (
	"hash/fnv"
	"regexp"
	"strconv"
	"strings"
)

// findClosing returns the index of the bracket closing the one at s[start].
// Nesting and backslash escapes are honored. It returns -1 when the bracket
// is never closed.
func findClosing(s string, start int, open, close byte) int {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// piece is a substring of a pattern together with its offset.
type piece struct {
	text string
	pos  int
}

// splitBars splits s on '|' characters that are not escaped and not nested
// inside (), [] or <> groups.
func splitBars(s string) []piece {
	var (
		out   []piece
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '(', '[', '<':
			depth++
		case ')', ']', '>':
			if depth > 0 {
				depth--
			}
		case '|':
			if depth == 0 {
				out = append(out, piece{text: s[start:i], pos: start})
				start = i + 1
			}
		}
	}
	return append(out, piece{text: s[start:], pos: start})
}

var markPrefix = regexp.MustCompile(`^(0b[01]+|0x[0-9a-fA-F]+|\d+):`)

// parseMark splits a leading parse mark off s. The boolean reports whether
// s began with a mark.
func parseMark(s string) (mark int, rest string, ok bool, err error) {
	m := markPrefix.FindStringSubmatch(s)
	if m == nil {
		return 0, s, false, nil
	}
	digits, base := m[1], 10
	switch {
	case strings.HasPrefix(digits, "0b"):
		digits, base = digits[2:], 2
	case strings.HasPrefix(digits, "0x"):
		digits, base = digits[2:], 16
	}
	v, err := strconv.ParseInt(digits, base, 32)
	if err != nil {
		return 0, s, false, err
	}
	return int(v), s[len(m[0]):], true, nil
}

// hashMark derives the mark of a ":name" alternative.
func hashMark(s string) int {
	h := fnv.New32a()
	h.Write([]byte(s))
	return int(h.Sum32() & 0x7fffffff)
}
