package syntaxes

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/gnolang/sklang/errs"
	"github.com/gnolang/sklang/lang"
	"github.com/gnolang/sklang/types"
)

// maxExponent bounds folded powers.
const maxExponent = 4096

// Operation computes a binary arithmetic operation.
type Operation func(a, b *big.Rat) (*big.Rat, error)

// Operations maps an operator symbol to its implementation.
type Operations map[string]Operation

// Lookup returns the operation for op.
func (o Operations) Lookup(op string) (Operation, bool) {
	f, ok := o[op]
	return f, ok && f != nil
}

// arithmeticOperators lists the operators in pattern order. Operators that
// bind less tightly come first so that they split the text first.
var arithmeticOperators = []string{"+", "-", "*", "/", "^"}

// precedence of each operator. All but the power group to the left.
var precedence = map[string]int{"+": 1, "-": 1, "*": 2, "/": 2, "^": 3}

const powerPrecedence = 3

func arithmeticPatterns() []string {
	out := make([]string, len(arithmeticOperators))
	for i, op := range arithmeticOperators {
		out[i] = "%number%" + op + "%number%"
	}
	return out
}

// DefaultOperations returns the four basic operations and integer powers.
func DefaultOperations() Operations {
	return Operations{
		"+": func(a, b *big.Rat) (*big.Rat, error) { return new(big.Rat).Add(a, b), nil },
		"-": func(a, b *big.Rat) (*big.Rat, error) { return new(big.Rat).Sub(a, b), nil },
		"*": func(a, b *big.Rat) (*big.Rat, error) { return new(big.Rat).Mul(a, b), nil },
		"/": func(a, b *big.Rat) (*big.Rat, error) {
			if b.Sign() == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return new(big.Rat).Quo(a, b), nil
		},
		"^": pow,
	}
}

func pow(a, b *big.Rat) (*big.Rat, error) {
	if !b.IsInt() {
		return nil, fmt.Errorf("non-integer exponent %s", b.RatString())
	}
	e := b.Num()
	if e.CmpAbs(big.NewInt(maxExponent)) > 0 {
		return nil, fmt.Errorf("exponent %s is too large", e)
	}
	abs := new(big.Int).Abs(e)
	num := new(big.Int).Exp(a.Num(), abs, nil)
	den := new(big.Int).Exp(a.Denom(), abs, nil)
	if e.Sign() < 0 {
		if num.Sign() == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		num, den = den, num
	}
	return new(big.Rat).SetFrac(num, den), nil
}

// Arithmetic is a binary operation on two numbers.
type Arithmetic struct {
	ops    Operations
	number *types.Type

	Left, Right lang.Expression
	Operator    string
	op          Operation
}

func (a *Arithmetic) Init(exprs []lang.Expression, matched int, ctx *lang.ParseContext) error {
	a.Left, a.Right = exprs[0], exprs[1]
	a.Operator = arithmeticOperators[matched]
	if !grouped(a.Operator, operandPrecedence(a.Left, ctx, 0), operandPrecedence(a.Right, ctx, 1)) {
		return errs.NoMatchf("", 0, "operands of '%s' are grouped the other way", a.Operator)
	}
	op, ok := a.ops.Lookup(a.Operator)
	if !ok {
		return errs.Semantic("", 0, "no operation registered for '%s'", a.Operator)
	}
	a.op = op
	if !a.Left.IsSingle() || !a.Right.IsSingle() {
		return errs.Semantic("", 0, "arithmetic needs single numbers on both sides of '%s'", a.Operator)
	}
	if a.Operator == "/" && isLiteralZero(a.Right) {
		return errs.Semantic("", 0, "division by zero")
	}
	return nil
}

func (a *Arithmetic) ReturnType() *types.Type { return a.number }
func (a *Arithmetic) IsSingle() bool          { return true }

func (a *Arithmetic) String() string {
	return fmt.Sprintf("%s %s %s", a.Left, a.Operator, a.Right)
}

// Simplify folds the operation when both operands are literals.
func (a *Arithmetic) Simplify() lang.Expression {
	x, ok1 := singleRat(a.Left)
	y, ok2 := singleRat(a.Right)
	if !ok1 || !ok2 {
		return a
	}
	r, err := a.op(x, y)
	if err != nil {
		return a
	}
	return &foldedArithmetic{
		SimpleLiteral: lang.NewLiteral(a.number, types.Normalize(r)),
		operator:      a.Operator,
	}
}

// foldedArithmetic is the value of a folded operation. It remembers the
// operator so that an enclosing operation can tell how it was grouped.
type foldedArithmetic struct {
	*lang.SimpleLiteral
	operator string
}

// grouped reports whether an operation with the given operand precedences
// is the way the text groups. A zero precedence is a plain or
// parenthesized operand.
//
//	10-2-3 is (10-2)-3
//	2^3^2  is 2^(3^2)
func grouped(operator string, left, right int) bool {
	own := precedence[operator]
	if own == powerPrecedence {
		return (left == 0 || left > own) && (right == 0 || right >= own)
	}
	return (left == 0 || left >= own) && (right == 0 || right > own)
}

// operandPrecedence returns the precedence of the operator at the top of
// operand i, or 0 when it has none or when its text is in parentheses.
func operandPrecedence(e lang.Expression, ctx *lang.ParseContext, i int) int {
	if ctx != nil && i < len(ctx.Captures) && parenthesized(ctx.Captures[i]) {
		return 0
	}
	switch e := e.(type) {
	case *Arithmetic:
		return precedence[e.Operator]
	case *foldedArithmetic:
		return precedence[e.operator]
	}
	return 0
}

// parenthesized reports whether s is entirely enclosed in one pair of
// parentheses.
func parenthesized(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return false
	}
	depth := 0
	for i, c := range s {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return false
			}
		}
	}
	return depth == 0
}

// singleRat returns the value of a single numeric literal.
func singleRat(e lang.Expression) (*big.Rat, bool) {
	lit, ok := e.(lang.Literal)
	if !ok || !e.IsSingle() {
		return nil, false
	}
	values := lit.Values()
	if len(values) != 1 {
		return nil, false
	}
	return types.ToRat(values[0])
}

func isLiteralZero(e lang.Expression) bool {
	r, ok := singleRat(e)
	return ok && r.Sign() == 0
}
