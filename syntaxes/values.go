package syntaxes

import (
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/gnolang/sklang/errs"
	"github.com/gnolang/sklang/lang"
	"github.com/gnolang/sklang/types"
)

// maxRange bounds the number of values a folded range may hold.
const maxRange = 1_000_000

// Range is the inclusive sequence of integers between two numbers. It
// counts down when the start is greater than the end.
type Range struct {
	integer *types.Type

	From, To lang.Expression
}

func (r *Range) Init(exprs []lang.Expression, _ int, _ *lang.ParseContext) error {
	r.From, r.To = exprs[0], exprs[1]
	a, ok1 := singleRat(r.From)
	b, ok2 := singleRat(r.To)
	if ok1 && ok2 {
		span := new(big.Rat).Sub(a, b)
		if span.Abs(span).Cmp(big.NewRat(maxRange, 1)) > 0 {
			return errs.Semantic("", 0, "a range can hold at most %d values", maxRange)
		}
	}
	return nil
}

func (r *Range) ReturnType() *types.Type { return r.integer }
func (r *Range) IsSingle() bool          { return false }
func (r *Range) String() string          { return fmt.Sprintf("range from %s to %s", r.From, r.To) }

// Simplify folds ranges between literal bounds.
func (r *Range) Simplify() lang.Expression {
	a, ok1 := singleRat(r.From)
	b, ok2 := singleRat(r.To)
	if !ok1 || !ok2 {
		return r
	}
	return lang.NewPluralLiteral(r.integer, integerRange(a, b))
}

func integerRange(a, b *big.Rat) []any {
	reversed := a.Cmp(b) > 0
	if reversed {
		a, b = b, a
	}
	lo, hi := ceil(a), floor(b)
	var out []any
	for i := lo; i.Cmp(hi) <= 0; i = new(big.Int).Add(i, big.NewInt(1)) {
		out = append(out, i)
	}
	if reversed {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func floor(r *big.Rat) *big.Int {
	q := new(big.Int)
	q.DivMod(r.Num(), r.Denom(), new(big.Int))
	return q
}

func ceil(r *big.Rat) *big.Int {
	q := floor(r)
	if !r.IsInt() {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// Whether turns a condition into a plain boolean value.
type Whether struct {
	boolean *types.Type

	Condition lang.Expression
}

func (w *Whether) Init(exprs []lang.Expression, _ int, _ *lang.ParseContext) error {
	w.Condition = exprs[0]
	return nil
}

func (w *Whether) ReturnType() *types.Type { return w.boolean }
func (w *Whether) IsSingle() bool          { return true }
func (w *Whether) String() string          { return "whether " + w.Condition.String() }

func (w *Whether) Simplify() lang.Expression {
	if v, ok := singleValue(w.Condition); ok {
		return lang.NewLiteral(w.boolean, v)
	}
	return w
}

// Not negates a boolean. The result is a condition.
type Not struct {
	boolean *types.Type

	Operand lang.Expression
}

func (n *Not) Init(exprs []lang.Expression, _ int, _ *lang.ParseContext) error {
	n.Operand = exprs[0]
	if !n.Operand.IsSingle() {
		return errs.Semantic("", 0, "only a single boolean can be negated")
	}
	return nil
}

func (n *Not) ReturnType() *types.Type { return n.boolean }
func (n *Not) IsSingle() bool          { return true }
func (n *Not) String() string          { return "not " + n.Operand.String() }

func (n *Not) Simplify() lang.Expression {
	if v, ok := singleValue(n.Operand); ok {
		if b, ok := v.(bool); ok {
			return lang.NewLiteral(n.boolean, !b)
		}
	}
	return n
}

// Length is the number of characters of a string.
type Length struct {
	integer *types.Type

	Operand lang.Expression
}

func (l *Length) Init(exprs []lang.Expression, _ int, _ *lang.ParseContext) error {
	l.Operand = exprs[0]
	return nil
}

func (l *Length) ReturnType() *types.Type { return l.integer }
func (l *Length) IsSingle() bool          { return true }
func (l *Length) String() string          { return "length of " + l.Operand.String() }

func (l *Length) Simplify() lang.Expression {
	if v, ok := singleValue(l.Operand); ok {
		if s, ok := v.(string); ok {
			return lang.NewLiteral(l.integer, big.NewInt(int64(utf8.RuneCountInString(s))))
		}
	}
	return l
}

// Sum adds up numbers.
type Sum struct {
	number *types.Type

	Operand lang.Expression
}

func (s *Sum) Init(exprs []lang.Expression, _ int, _ *lang.ParseContext) error {
	s.Operand = exprs[0]
	if list, ok := s.Operand.(*lang.LiteralList); ok && !list.And {
		return errs.Semantic("", 0, "can't sum an 'or' list, use 'and' instead")
	}
	return nil
}

func (s *Sum) ReturnType() *types.Type { return s.number }
func (s *Sum) IsSingle() bool          { return true }
func (s *Sum) String() string          { return "sum of " + s.Operand.String() }

func (s *Sum) Simplify() lang.Expression {
	lit, ok := s.Operand.(lang.Literal)
	if !ok {
		return s
	}
	total := new(big.Rat)
	for _, v := range lit.Values() {
		r, ok := types.ToRat(v)
		if !ok {
			return s
		}
		total.Add(total, r)
	}
	return lang.NewLiteral(s.number, types.Normalize(total))
}
