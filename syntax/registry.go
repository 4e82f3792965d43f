// Package syntax stores registered syntaxes and decides the order in which
// the resolver tries them.
package syntax

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/gnolang/sklang/lang"
	"github.com/gnolang/sklang/pattern"
	"github.com/gnolang/sklang/types"
)

// Info is a registered syntax. It is immutable once registered, apart from
// the priority which configuration may override before resolution starts.
type Info struct {
	Name       string
	New        func() lang.SyntaxElement
	Patterns   []pattern.Node
	Priority   int
	ReturnType *types.Type
	Single     bool
	// Conditional marks boolean syntaxes usable only inside conditions.
	Conditional bool
}

// PatternType returns the declared return type with its cardinality.
func (i *Info) PatternType() types.PatternType {
	return types.PatternType{Type: i.ReturnType, Single: i.Single}
}

// Spec describes an expression syntax to register.
type Spec struct {
	Name string
	New  func() lang.SyntaxElement
	// ReturnType is a type name; a plural name makes the syntax plural.
	ReturnType  string
	Priority    int
	Conditional bool
	Patterns    []string
}

// Registry holds registered syntaxes.
type Registry struct {
	types  *types.Registry
	logger *zap.Logger

	compileMu sync.Mutex
	compiler  *pattern.Compiler

	mu       sync.RWMutex
	infos    []*Info
	byName   map[string]*Info
	disabled map[string]bool
	sorted   []*Info // nil when stale
	recent   *RecentList
}

// NewRegistry creates a registry whose patterns resolve placeholder types
// through t.
func NewRegistry(t *types.Registry, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		types:    t,
		compiler: pattern.NewCompiler(t, logger),
		logger:   logger,
		byName:   make(map[string]*Info),
		disabled: make(map[string]bool),
		recent:   NewRecentList(0),
	}
}

// Types returns the type registry patterns are compiled against.
func (r *Registry) Types() *types.Registry { return r.types }

// Register adds an already compiled syntax.
func (r *Registry) Register(info *Info) error {
	switch {
	case info.Name == "":
		return fmt.Errorf("syntax without a name")
	case info.New == nil:
		return fmt.Errorf("syntax %s: no constructor", info.Name)
	case info.ReturnType == nil:
		return fmt.Errorf("syntax %s: no return type", info.Name)
	case len(info.Patterns) == 0:
		return fmt.Errorf("syntax %s: no patterns", info.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[info.Name]; ok {
		return fmt.Errorf("syntax %s already registered", info.Name)
	}
	r.infos = append(r.infos, info)
	r.byName[info.Name] = info
	r.sorted = nil
	return nil
}

// RegisterExpression compiles the patterns of spec and registers it.
// A pattern that fails to compile aborts the registration.
func (r *Registry) RegisterExpression(spec Spec) (*Info, error) {
	rt, ok := r.types.ResolveTypeName(spec.ReturnType)
	if !ok {
		return nil, fmt.Errorf("syntax %s: unknown return type %q", spec.Name, spec.ReturnType)
	}
	info := &Info{
		Name:        spec.Name,
		New:         spec.New,
		Priority:    spec.Priority,
		ReturnType:  rt.Type,
		Single:      rt.Single,
		Conditional: spec.Conditional,
	}
	r.compileMu.Lock()
	for _, src := range spec.Patterns {
		node, err := r.compiler.Compile(src)
		if err != nil {
			r.compileMu.Unlock()
			return nil, fmt.Errorf("syntax %s: %w", spec.Name, err)
		}
		info.Patterns = append(info.Patterns, node)
	}
	r.compileMu.Unlock()
	if err := r.Register(info); err != nil {
		return nil, err
	}
	r.logger.Debug("registered syntax",
		zap.String("name", info.Name),
		zap.String("returns", rt.String()),
		zap.Int("patterns", len(info.Patterns)))
	return info, nil
}

// Lookup finds a syntax by name.
func (r *Registry) Lookup(name string) (*Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.byName[name]
	return info, ok
}

// All returns every registered syntax in registration order.
func (r *Registry) All() []*Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Info, len(r.infos))
	copy(out, r.infos)
	return out
}

// SetPriority overrides the priority of a syntax.
func (r *Registry) SetPriority(name string, priority int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.byName[name]
	if !ok {
		return false
	}
	info.Priority = priority
	r.sorted = nil
	return true
}

// Disable excludes a syntax from resolution.
func (r *Registry) Disable(name string) bool {
	r.mu.Lock()
	info, ok := r.byName[name]
	if ok {
		r.disabled[name] = true
		r.sorted = nil
	}
	r.mu.Unlock()
	if ok {
		r.recent.Remove(info)
	}
	return ok
}

// Candidates returns the enabled syntaxes in trial order: recently
// successful ones first, most recent first, then the rest by descending
// priority and descending pattern count.
func (r *Registry) Candidates() []*Info {
	sorted := r.sortedInfos()
	recent := r.recent.Snapshot()

	out := make([]*Info, 0, len(sorted))
	seen := make(map[*Info]bool, len(recent))
	for _, info := range recent {
		seen[info] = true
		out = append(out, info)
	}
	for _, info := range sorted {
		if !seen[info] {
			out = append(out, info)
		}
	}
	return out
}

func (r *Registry) sortedInfos() []*Info {
	r.mu.RLock()
	sorted := r.sorted
	r.mu.RUnlock()
	if sorted != nil {
		return sorted
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	sorted = make([]*Info, 0, len(r.infos))
	for _, info := range r.infos {
		if !r.disabled[info.Name] {
			sorted = append(sorted, info)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return len(a.Patterns) > len(b.Patterns)
	})
	r.sorted = sorted
	return sorted
}

// Promote records that info just resolved successfully.
func (r *Registry) Promote(info *Info) {
	r.recent.Promote(info)
}

// Recent returns the recently successful syntaxes, most recent first.
func (r *Registry) Recent() []*Info { return r.recent.Snapshot() }

// ResetRecent forgets the recently successful order.
func (r *Registry) ResetRecent() { r.recent.Clear() }
