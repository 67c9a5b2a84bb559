package filters

import "strings"

// Op is a comparison operator of a compiled condition.
type Op int

const (
	// OpEq is an equality/match condition.
	OpEq Op = iota
	// OpGte is a lower inclusive bound.
	OpGte
	// OpLte is an upper inclusive bound.
	OpLte
)

// String returns the operator's comparison symbol.
func (o Op) String() string {
	switch o {
	case OpGte:
		return ">="
	case OpLte:
		return "<="
	default:
		return "=="
	}
}

// Condition is one atomic comparison on a document field.
type Condition struct {
	Field string
	Op    Op
	Value Value
}

// Predicate is an ordered list of conditions, implicitly ANDed. An empty
// predicate means "no constraint": the store must omit the filter clause
// entirely, never treat it as match-nothing. Owned by one retrieval call.
type Predicate []Condition

// Compile derives the predicate from a validated filter set: a Lower-bound
// key emits >=, an Upper-bound key <=, anything else ==. Pure and total;
// entry order is preserved.
func Compile(f TrailFilters) Predicate {
	if f.IsEmpty() {
		return nil
	}
	p := make(Predicate, 0, f.Len())
	for _, e := range f.Entries() {
		var op Op
		switch e.Key.Bound {
		case Lower:
			op = OpGte
		case Upper:
			op = OpLte
		default:
			op = OpEq
		}
		p = append(p, Condition{Field: e.Key.Field, Op: op, Value: e.Value})
	}
	return p
}

// IsEmpty reports whether the predicate carries no conditions.
func (p Predicate) IsEmpty() bool { return len(p) == 0 }

// String renders the predicate for logs, e.g.
// `difficulty == Easy AND time <= 2`.
func (p Predicate) String() string {
	if p.IsEmpty() {
		return "<unconstrained>"
	}
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = c.Field + " " + c.Op.String() + " " + c.Value.String()
	}
	return strings.Join(parts, " AND ")
}
