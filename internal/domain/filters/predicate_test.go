package filters

import "testing"

func TestCompile_Empty(t *testing.T) {
	p := Compile(None())
	if !p.IsEmpty() {
		t.Fatalf("compiling the empty filter must yield the empty predicate, got %v", p)
	}
}

func TestCompile_SuffixRule(t *testing.T) {
	f, _ := FromMap(map[string]any{
		"difficulty":     "Easy",
		"time_max":       2.0,
		"public_transit": true,
	})
	p := Compile(f)

	want := []Condition{
		{Field: "difficulty", Op: OpEq, Value: TextValue("Easy")},
		{Field: "time", Op: OpLte, Value: NumberValue(2.0)},
		{Field: "public_transit", Op: OpEq, Value: FlagValue(true)},
	}
	assertConditions(t, p, want)
}

func TestCompile_ChallengingHikeScenario(t *testing.T) {
	f, _ := FromMap(map[string]any{
		"difficulty":   "Difficult",
		"distance_min": 5.0,
		"rating_min":   4.0,
	})
	p := Compile(f)

	want := []Condition{
		{Field: "rating", Op: OpGte, Value: NumberValue(4.0)},
		{Field: "difficulty", Op: OpEq, Value: TextValue("Difficult")},
		{Field: "distance", Op: OpGte, Value: NumberValue(5.0)},
	}
	assertConditions(t, p, want)
}

// Round-trip: field, operator, and value of every condition must recover the
// (base field, bound kind, value) triple of the filter entry it came from.
func TestCompile_RoundTrip(t *testing.T) {
	f, _ := FromMap(map[string]any{
		"rating_min":   4.5,
		"rating_max":   5.0,
		"time_min":     1.0,
		"distance_max": 12.5,
		"region":       "North Shore",
		"dog_friendly": false,
	})
	p := Compile(f)

	if len(p) != f.Len() {
		t.Fatalf("predicate has %d conditions for %d entries", len(p), f.Len())
	}
	for i, e := range f.Entries() {
		c := p[i]
		if c.Field != e.Key.Field {
			t.Errorf("condition %d on field %q, want %q", i, c.Field, e.Key.Field)
		}
		var wantOp Op
		switch e.Key.Bound {
		case Lower:
			wantOp = OpGte
		case Upper:
			wantOp = OpLte
		default:
			wantOp = OpEq
		}
		if c.Op != wantOp {
			t.Errorf("condition %d op %v, want %v", i, c.Op, wantOp)
		}
		if c.Value != e.Value {
			t.Errorf("condition %d value %v, want %v", i, c.Value, e.Value)
		}
	}
}

// Injectivity: distinct valid filter sets never compile to the same predicate.
func TestCompile_Injective(t *testing.T) {
	inputs := []map[string]any{
		{"rating_min": 4.0},
		{"rating_max": 4.0},
		{"rating_min": 4.0, "rating_max": 4.0},
		{"time_min": 4.0},
		{"difficulty": "Easy"},
		{"difficulty": "Difficult"},
		{"region": "Easy"},
		{"dog_friendly": true},
		{"dog_friendly": false},
		{"camping": true},
		{},
	}

	seen := make(map[string]int)
	for i, in := range inputs {
		f, _ := FromMap(in)
		key := Compile(f).String()
		if prev, dup := seen[key]; dup {
			t.Errorf("inputs %d and %d compile to the same predicate %q", prev, i, key)
		}
		seen[key] = i
	}
}

func TestOpString(t *testing.T) {
	if OpEq.String() != "==" || OpGte.String() != ">=" || OpLte.String() != "<=" {
		t.Errorf("operator symbols wrong: %s %s %s", OpEq, OpGte, OpLte)
	}
}

func assertConditions(t *testing.T, got Predicate, want []Condition) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d conditions (%s), want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("condition %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}
