package types

// Converter converts a value of one type into another. The boolean is false
// when the particular value cannot be converted.
type Converter func(v any) (any, bool)

type converterEntry struct {
	pair typePair
	conv Converter
}

// RegisterConverter registers a direct conversion from one type to another.
// It invalidates previously memoized lookups.
func (r *Registry) RegisterConverter(from, to *Type, conv Converter) {
	r.mu.Lock()
	r.converters = append(r.converters, converterEntry{typePair{from, to}, conv})
	r.mu.Unlock()
	r.convCache.Range(func(k, _ any) bool {
		r.convCache.Delete(k)
		return true
	})
}

// ConverterExists reports whether values of from can be converted into to,
// either directly or through one intermediate type.
func (r *Registry) ConverterExists(from, to *Type) bool {
	return r.converter(from, to) != nil
}

// Convert converts v from one type to another. Assignable types are passed
// through unchanged.
func (r *Registry) Convert(v any, from, to *Type) (any, bool) {
	if to.IsAssignableFrom(from) {
		return v, true
	}
	conv := r.converter(from, to)
	if conv == nil {
		return nil, false
	}
	return conv(v)
}

// converter looks a conversion path up through the memoization cache.
func (r *Registry) converter(from, to *Type) Converter {
	key := typePair{from, to}
	if c, ok := r.convCache.Load(key); ok {
		conv, _ := c.(Converter)
		return conv
	}
	conv := r.findConverter(from, to)
	if conv == nil {
		r.convCache.Store(key, Converter(nil))
	} else {
		r.convCache.Store(key, conv)
	}
	return conv
}

func (r *Registry) findConverter(from, to *Type) Converter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if conv := r.directLocked(from, to); conv != nil {
		return conv
	}
	// one intermediate hop: from -> mid -> to
	for _, e := range r.converters {
		if !e.pair.from.IsAssignableFrom(from) {
			continue
		}
		second := r.directLocked(e.pair.to, to)
		if second == nil {
			continue
		}
		first := e.conv
		return func(v any) (any, bool) {
			m, ok := first(v)
			if !ok {
				return nil, false
			}
			return second(m)
		}
	}
	return nil
}

// directLocked finds a registered converter whose source accepts from and
// whose target is assignable to to.
func (r *Registry) directLocked(from, to *Type) Converter {
	if to.IsAssignableFrom(from) {
		return func(v any) (any, bool) { return v, true }
	}
	for c := from; c != nil; c = c.super {
		for _, e := range r.converters {
			if e.pair.from == c && to.IsAssignableFrom(e.pair.to) {
				return e.conv
			}
		}
	}
	return nil
}
