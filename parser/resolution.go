package parser

import (
	"github.com/gnolang/sklang/lang"
	"github.com/gnolang/sklang/types"
)

// DefaultMaxSteps bounds the work spent resolving one line. A line that
// needs more is reported as too complex.
const DefaultMaxSteps = 1 << 20

type memoKey struct {
	text   string
	offset int
	typ    *types.Type
	single bool
	policy ConditionalPolicy
}

type memoEntry struct {
	expr lang.Expression
	err  error
}

// resolution is the state of one top-level resolution. The same piece of
// text is resolved against the same type many times while placeholder
// splits are tried, so results are kept for the rest of the line.
type resolution struct {
	memo     map[memoKey]memoEntry
	steps    int
	maxSteps int
	// cutoffs counts the resolutions stopped by the depth ceiling. Their
	// outcome depends on the depth they were reached at and is not kept.
	cutoffs int
}

func (p *Parser) newResolution() *resolution {
	return &resolution{
		memo:     make(map[memoKey]memoEntry),
		maxSteps: p.maxSteps,
	}
}

// step counts one unit of work and reports whether the budget allows it.
func (r *resolution) step() bool {
	r.steps++
	return r.steps <= r.maxSteps
}

func (r *resolution) exhausted() bool {
	return r.steps > r.maxSteps
}
