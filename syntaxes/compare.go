package syntaxes

import (
	"fmt"

	"github.com/gnolang/sklang/errs"
	"github.com/gnolang/sklang/lang"
	"github.com/gnolang/sklang/types"
)

// Parse marks of the comparison patterns. Mark 0 is plain equality.
var relationMarks = map[int]types.Relation{
	0: types.Equal,
	1: types.Equal,
	2: types.NotEqual,
	3: types.GreaterOrEqual,
	4: types.SmallerOrEqual,
	5: types.Greater,
	6: types.Smaller,
}

// Longer operators come first so that ">=" is not read as ">".
var comparePatterns = []string{
	`%object%(1:==|2:!=|2:\<\>|3:\>=|4:\<=|1:=|5:\>|6:\<)%object%`,
	"%object% is (3:greater than or equal to|4:less than or equal to|5:greater than|6:less than|2:not equal to|1:equal to) %object%",
	"%object% is [2:not] %object%",
}

// Compare is a conditional comparison of two values.
type Compare struct {
	boolean *types.Type

	Left, Right lang.Expression
	Relation    types.Relation
	cmp         *types.Comparator
}

func (c *Compare) Init(exprs []lang.Expression, _ int, ctx *lang.ParseContext) error {
	c.Left, c.Right = exprs[0], exprs[1]
	rel, ok := relationMarks[ctx.Mark]
	if !ok {
		return errs.Internalf(nil, "", 0, "unknown comparison mark %d", ctx.Mark)
	}
	c.Relation = rel

	lt, rt := c.Left.ReturnType(), c.Right.ReturnType()
	cmp, ok := ctx.Types.Comparator(lt, rt)
	if !ok {
		return errs.Semantic("", 0, "%s and %s can't be compared", lt.Plural(), rt.Plural())
	}
	if rel.Ordering() && !cmp.Ordered {
		return errs.Semantic("", 0, "%s and %s can't be compared using '%s'", lt.Plural(), rt.Plural(), rel)
	}
	c.cmp = cmp
	return nil
}

func (c *Compare) ReturnType() *types.Type { return c.boolean }
func (c *Compare) IsSingle() bool          { return true }

func (c *Compare) String() string {
	return fmt.Sprintf("%s %s %s", c.Left, c.Relation, c.Right)
}

// Simplify folds comparisons between single literals.
func (c *Compare) Simplify() lang.Expression {
	l, ok1 := singleValue(c.Left)
	r, ok2 := singleValue(c.Right)
	if !ok1 || !ok2 {
		return c
	}
	return lang.NewLiteral(c.boolean, c.Relation.Is(c.cmp.Compare(l, r)))
}

func singleValue(e lang.Expression) (any, bool) {
	lit, ok := e.(lang.Literal)
	if !ok || !e.IsSingle() {
		return nil, false
	}
	values := lit.Values()
	if len(values) != 1 {
		return nil, false
	}
	return values[0], true
}
