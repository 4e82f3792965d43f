package types

// Relation is the outcome of comparing two values, or the relation a
// comparison syntax asks about.
type Relation int

const (
	Equal Relation = iota
	NotEqual
	Greater
	GreaterOrEqual
	Smaller
	SmallerOrEqual
)

func (r Relation) String() string {
	switch r {
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	case Greater:
		return ">"
	case GreaterOrEqual:
		return ">="
	case Smaller:
		return "<"
	case SmallerOrEqual:
		return "<="
	default:
		return "?"
	}
}

// Is reports whether an actual comparison outcome satisfies r.
func (r Relation) Is(actual Relation) bool {
	switch r {
	case Equal:
		return actual == Equal
	case NotEqual:
		return actual != Equal
	case Greater:
		return actual == Greater
	case GreaterOrEqual:
		return actual == Greater || actual == Equal
	case Smaller:
		return actual == Smaller
	case SmallerOrEqual:
		return actual == Smaller || actual == Equal
	}
	return false
}

// Ordering reports whether r needs an ordering rather than plain equality.
func (r Relation) Ordering() bool {
	return r != Equal && r != NotEqual
}

// Inverse swaps the operands of r.
func (r Relation) Inverse() Relation {
	switch r {
	case Greater:
		return Smaller
	case GreaterOrEqual:
		return SmallerOrEqual
	case Smaller:
		return Greater
	case SmallerOrEqual:
		return GreaterOrEqual
	}
	return r
}

// RelationOf maps a three-way comparison result to a relation.
func RelationOf(cmp int) Relation {
	switch {
	case cmp < 0:
		return Smaller
	case cmp > 0:
		return Greater
	}
	return Equal
}

// Comparator compares values of two types. Ordered comparators support
// greater/smaller relations; others only equality.
type Comparator struct {
	Compare func(a, b any) Relation
	Ordered bool
}

// RegisterComparator registers a comparator for (a, b).
func (r *Registry) RegisterComparator(a, b *Type, cmp *Comparator) {
	r.mu.Lock()
	r.comparators[typePair{a, b}] = cmp
	r.mu.Unlock()
	r.cmpCache.Range(func(k, _ any) bool {
		r.cmpCache.Delete(k)
		return true
	})
}

// Comparator finds a comparator usable for values of a and b. Supertypes of
// both sides are tried, and a comparator registered for (b, a) is used with
// the operands swapped. If either side is the root object type, a comparator
// resolving the runtime types of the values is returned.
func (r *Registry) Comparator(a, b *Type) (*Comparator, bool) {
	key := typePair{a, b}
	if c, ok := r.cmpCache.Load(key); ok {
		cmp, _ := c.(*Comparator)
		return cmp, cmp != nil
	}
	cmp := r.findComparator(a, b)
	r.cmpCache.Store(key, cmp)
	return cmp, cmp != nil
}

func (r *Registry) findComparator(a, b *Type) *Comparator {
	if a == r.object || b == r.object {
		return r.dynamicComparator()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.staticLocked(a, b)
}

func (r *Registry) staticLocked(a, b *Type) *Comparator {
	for x := a; x != nil; x = x.super {
		for y := b; y != nil; y = y.super {
			if cmp, ok := r.comparators[typePair{x, y}]; ok {
				return cmp
			}
			if cmp, ok := r.comparators[typePair{y, x}]; ok {
				return swapped(cmp)
			}
		}
	}
	return nil
}

func swapped(cmp *Comparator) *Comparator {
	return &Comparator{
		Compare: func(a, b any) Relation { return cmp.Compare(b, a).Inverse() },
		Ordered: cmp.Ordered,
	}
}

// dynamicComparator defers the lookup to the runtime types of the values.
// Values without a comparator compare unequal.
func (r *Registry) dynamicComparator() *Comparator {
	return &Comparator{
		Ordered: true,
		Compare: func(a, b any) Relation {
			ta, tb := r.TypeOf(a), r.TypeOf(b)
			r.mu.RLock()
			cmp := r.staticLocked(ta, tb)
			r.mu.RUnlock()
			if cmp == nil {
				return NotEqual
			}
			return cmp.Compare(a, b)
		},
	}
}
