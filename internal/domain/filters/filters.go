package filters

// TrailFilters is the sparse, schema-validated constraint set derived from
// one natural-language query. Keys absent mean unconstrained. Entries are
// held in canonical catalog order, which makes compilation deterministic.
// Never mutated after creation; request-scoped.
type TrailFilters struct {
	entries []Entry
}

// Entry is one validated key→value binding.
type Entry struct {
	Key   Key
	Value Value
}

// None is the empty, maximally permissive filter set.
func None() TrailFilters { return TrailFilters{} }

// FromMap validates a decoded JSON object against the schema. Unknown keys,
// null values, and values outside a key's bounds are dropped, not errors;
// the dropped key names are returned for observability. Entries come out in
// canonical catalog order regardless of map iteration order.
func FromMap(m map[string]any) (TrailFilters, []string) {
	if len(m) == 0 {
		return None(), nil
	}

	var dropped []string
	seen := make(map[string]bool, len(m))

	var entries []Entry
	for _, k := range Catalog() {
		raw, ok := m[k.Name]
		if !ok {
			continue
		}
		seen[k.Name] = true
		if raw == nil {
			// The prompt forbids null placeholders; tolerate them anyway.
			continue
		}
		v, ok := k.Accepts(raw)
		if !ok {
			dropped = append(dropped, k.Name)
			continue
		}
		entries = append(entries, Entry{Key: k, Value: v})
	}

	for name := range m {
		if !seen[name] {
			dropped = append(dropped, name)
		}
	}

	return TrailFilters{entries: entries}, dropped
}

// IsEmpty reports whether no constraint was extracted.
func (f TrailFilters) IsEmpty() bool { return len(f.entries) == 0 }

// Len returns the number of constraints.
func (f TrailFilters) Len() int { return len(f.entries) }

// Entries returns the bindings in canonical order.
// Callers must not mutate the returned slice.
func (f TrailFilters) Entries() []Entry { return f.entries }

// Get returns the value bound to a query key, if any.
func (f TrailFilters) Get(name string) (Value, bool) {
	for _, e := range f.entries {
		if e.Key.Name == name {
			return e.Value, true
		}
	}
	return Value{}, false
}
