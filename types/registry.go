// Package types holds the type registry used by the pattern compiler and
// the expression resolver: named types with literal parsers, assignability,
// plural forms, converters and comparators.
package types

import (
	"fmt"
	"strings"
	"sync"
)

// ObjectName is the name of the root type every registry starts with.
const ObjectName = "object@s"

type typePair struct {
	from, to *Type
}

// Registry is a set of registered types. It is safe for concurrent lookups;
// registration is expected to happen before resolution starts.
type Registry struct {
	mu     sync.RWMutex
	types  []*Type
	forms  map[string]PatternType
	object *Type

	converters  []converterEntry
	convCache   sync.Map // typePair -> Converter (nil when no path exists)
	comparators map[typePair]*Comparator
	cmpCache    sync.Map // typePair -> *Comparator
}

// NewRegistry returns a registry holding only the root object type.
func NewRegistry() *Registry {
	r := &Registry{
		forms:       make(map[string]PatternType),
		comparators: make(map[typePair]*Comparator),
	}
	obj, err := r.Register(Spec{Name: ObjectName, Accepts: func(any) bool { return true }})
	if err != nil {
		panic(err)
	}
	r.object = obj
	return r
}

// Object returns the root type.
func (r *Registry) Object() *Type { return r.object }

// Register adds a type. A nil Super defaults to the root object type.
func (r *Registry) Register(spec Spec) (*Type, error) {
	singular, plural, err := Forms(spec.Name)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(singular)
	if _, ok := r.forms[key]; ok {
		return nil, fmt.Errorf("type %q already registered", singular)
	}
	super := spec.Super
	if super == nil {
		super = r.object
	}
	t := &Type{
		singular: singular,
		plural:   plural,
		super:    super,
		parser:   spec.Parser,
		accepts:  spec.Accepts,
		format:   spec.Format,
	}
	if super != nil {
		t.depth = super.depth + 1
	}
	r.types = append(r.types, t)
	r.forms[key] = PatternType{Type: t, Single: true}
	if p := strings.ToLower(plural); p != key {
		r.forms[p] = PatternType{Type: t, Single: false}
	}
	return t, nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(spec Spec) *Type {
	t, err := r.Register(spec)
	if err != nil {
		panic(err)
	}
	return t
}

// Types returns the registered types in registration order.
func (r *Registry) Types() []*Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Type, len(r.types))
	copy(out, r.types)
	return out
}

// ByName returns the type whose singular or plural form is name.
func (r *Registry) ByName(name string) (*Type, bool) {
	pt, ok := r.ResolveTypeName(name)
	return pt.Type, ok
}

// ResolveTypeName maps a type name as written in a placeholder to a pattern
// type. A plural form yields a non-single pattern type. Types whose two
// forms coincide resolve as single.
func (r *Registry) ResolveTypeName(name string) (PatternType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pt, ok := r.forms[strings.ToLower(strings.TrimSpace(name))]
	return pt, ok
}

// TypeOf returns the most specific registered type accepting v.
func (r *Registry) TypeOf(v any) *Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	best := r.object
	for _, t := range r.types {
		if t.accepts != nil && t.depth > best.depth && t.accepts(v) {
			best = t
		}
	}
	return best
}

// IsAssignable reports whether a value of type from may be used as to.
func (r *Registry) IsAssignable(to, from *Type) bool {
	return to.IsAssignableFrom(from)
}
