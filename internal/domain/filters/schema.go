// Package filters defines the closed trail-filter schema, the validated
// sparse filter set extracted from one query, and its compiled predicate form.
package filters

import (
	"strconv"
	"strings"
)

// Kind enumerates the value kinds a filter key accepts.
type Kind int

const (
	// KindNumber is a bounded numeric value.
	KindNumber Kind = iota
	// KindEnum is a string from a fixed choice list.
	KindEnum
	// KindString is an open string label (region, season).
	KindString
	// KindBool is a boolean flag.
	KindBool
)

// Bound says which side of a numeric range a key constrains.
type Bound int

const (
	// Exact compiles to an equality condition.
	Exact Bound = iota
	// Lower compiles to a >= condition on the base field.
	Lower
	// Upper compiles to a <= condition on the base field.
	Upper
)

// Key is one declared entry of the filter schema: a query key, the base
// document field it constrains, and the legal value space.
type Key struct {
	Name    string // query key, e.g. "time_max"
	Field   string // base document field, e.g. "time"
	Bound   Bound
	Kind    Kind
	Min     float64  // KindNumber only
	Max     float64  // KindNumber only
	Choices []string // KindEnum only
}

// Difficulty levels recognized by the schema.
const (
	DifficultyEasy         = "Easy"
	DifficultyIntermediate = "Intermediate"
	DifficultyDifficult    = "Difficult"
)

// catalog is the closed, ordered set of recognized query keys. Defined once,
// never mutated. Order here is the canonical order of TrailFilters entries
// and of compiled predicate conditions.
var catalog = []Key{
	{Name: "rating_min", Field: "rating", Bound: Lower, Kind: KindNumber, Min: 0.0, Max: 5.0},
	{Name: "rating_max", Field: "rating", Bound: Upper, Kind: KindNumber, Min: 0.0, Max: 5.0},
	{Name: "difficulty", Field: "difficulty", Bound: Exact, Kind: KindEnum,
		Choices: []string{DifficultyEasy, DifficultyIntermediate, DifficultyDifficult}},
	{Name: "time_min", Field: "time", Bound: Lower, Kind: KindNumber, Min: 0.25, Max: 12.0},
	{Name: "time_max", Field: "time", Bound: Upper, Kind: KindNumber, Min: 0.25, Max: 12.0},
	{Name: "distance_min", Field: "distance", Bound: Lower, Kind: KindNumber, Min: 0.5, Max: 30.0},
	{Name: "distance_max", Field: "distance", Bound: Upper, Kind: KindNumber, Min: 0.5, Max: 30.0},
	{Name: "region", Field: "region", Bound: Exact, Kind: KindString},
	{Name: "season", Field: "season", Bound: Exact, Kind: KindString},
	{Name: "dog_friendly", Field: "dog_friendly", Bound: Exact, Kind: KindBool},
	{Name: "public_transit", Field: "public_transit", Bound: Exact, Kind: KindBool},
	{Name: "camping", Field: "camping", Bound: Exact, Kind: KindBool},
}

// Catalog returns the declared schema keys in canonical order.
// Callers must not mutate the returned slice.
func Catalog() []Key { return catalog }

// Lookup finds a schema key by query-key name.
func Lookup(name string) (Key, bool) {
	for _, k := range catalog {
		if k.Name == name {
			return k, true
		}
	}
	return Key{}, false
}

// ValueKind enumerates the concrete value variants.
type ValueKind int

const (
	// Number is a float value.
	Number ValueKind = iota
	// Text is a string value.
	Text
	// Flag is a boolean value.
	Flag
)

// Value is a strictly-typed filter value variant.
type Value struct {
	kind ValueKind
	num  float64
	str  string
	flag bool
}

// NumberValue creates a numeric Value.
func NumberValue(f float64) Value { return Value{kind: Number, num: f} }

// TextValue creates a string Value.
func TextValue(s string) Value { return Value{kind: Text, str: s} }

// FlagValue creates a boolean Value.
func FlagValue(b bool) Value { return Value{kind: Flag, flag: b} }

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// Number returns the numeric payload.
func (v Value) Number() float64 { return v.num }

// Text returns the string payload.
func (v Value) Text() string { return v.str }

// Flag returns the boolean payload.
func (v Value) Flag() bool { return v.flag }

// String renders the value as its literal form ("Easy", "2.5", "true").
func (v Value) String() string {
	switch v.kind {
	case Number:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case Flag:
		return strconv.FormatBool(v.flag)
	default:
		return v.str
	}
}

// Accepts reports whether raw (a decoded JSON value) is legal for the key,
// and returns it normalized. Numbers must fall inside [Min, Max]; enum
// strings are matched case-insensitively and canonicalized; open strings
// must be non-empty; booleans must be real booleans, not strings.
func (k Key) Accepts(raw any) (Value, bool) {
	switch k.Kind {
	case KindNumber:
		f, ok := asFloat(raw)
		if !ok || f < k.Min || f > k.Max {
			return Value{}, false
		}
		return NumberValue(f), true
	case KindEnum:
		s, ok := raw.(string)
		if !ok {
			return Value{}, false
		}
		for _, c := range k.Choices {
			if strings.EqualFold(s, c) {
				return TextValue(c), true
			}
		}
		return Value{}, false
	case KindString:
		s, ok := raw.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return Value{}, false
		}
		return TextValue(strings.TrimSpace(s)), true
	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return Value{}, false
		}
		return FlagValue(b), true
	}
	return Value{}, false
}

func asFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
