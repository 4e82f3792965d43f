package types

import (
	"math/big"
	"regexp"
	"strings"
)

var (
	integerPattern = regexp.MustCompile(`^[-+]?\d+$`)
	decimalPattern = regexp.MustCompile(`^[-+]?(\d+\.\d*|\.\d+)([eE][-+]?\d+)?$|^[-+]?\d+[eE][-+]?\d+$`)
)

// ParseInteger parses integer literal text into a *big.Int.
func ParseInteger(s string) (any, bool) {
	if !integerPattern.MatchString(s) {
		return nil, false
	}
	n, ok := new(big.Int).SetString(strings.TrimPrefix(s, "+"), 10)
	if !ok {
		return nil, false
	}
	return n, true
}

// ParseNumber parses number literal text. Integers become *big.Int and
// decimals *big.Rat.
func ParseNumber(s string) (any, bool) {
	if n, ok := ParseInteger(s); ok {
		return n, true
	}
	if !decimalPattern.MatchString(s) {
		return nil, false
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, false
	}
	return r, true
}

// ToRat converts any supported numeric value to a *big.Rat.
func ToRat(v any) (*big.Rat, bool) {
	switch n := v.(type) {
	case *big.Int:
		return new(big.Rat).SetInt(n), true
	case *big.Rat:
		return n, true
	case int:
		return new(big.Rat).SetInt64(int64(n)), true
	case int64:
		return new(big.Rat).SetInt64(n), true
	case float64:
		r := new(big.Rat)
		if r.SetFloat64(n) == nil {
			return nil, false
		}
		return r, true
	}
	return nil, false
}

// Normalize returns r as a *big.Int when it is integral.
func Normalize(r *big.Rat) any {
	if r.IsInt() {
		return new(big.Int).Set(r.Num())
	}
	return r
}

// IsNumber reports whether v is a numeric value.
func IsNumber(v any) bool {
	_, ok := ToRat(v)
	return ok
}

// IsInteger reports whether v is an integral numeric value.
func IsInteger(v any) bool {
	switch n := v.(type) {
	case *big.Int, int, int64:
		return true
	case *big.Rat:
		return n.IsInt()
	}
	return false
}

// FormatNumber renders a numeric value. Non-integral values print with up
// to ten decimals and no trailing zeros.
func FormatNumber(v any) string {
	r, ok := ToRat(v)
	if !ok {
		return "<not a number>"
	}
	if r.IsInt() {
		return r.Num().String()
	}
	s := strings.TrimRight(r.FloatString(10), "0")
	return strings.TrimSuffix(s, ".")
}

// CompareNumbers compares two numeric values.
func CompareNumbers(a, b any) Relation {
	x, ok1 := ToRat(a)
	y, ok2 := ToRat(b)
	if !ok1 || !ok2 {
		return NotEqual
	}
	return RelationOf(x.Cmp(y))
}
