// Package builtin describes the fixed table of XMILE equation
// builtins: their arity and the argument-kind constraints the
// resolver enforces (spec section 4.5, 4.6 step 4). The table is
// assembled fresh on every call to Table so that nothing holds a
// reference to shared mutable process-wide state (spec section 9,
// "Global state").
package builtin

// ArgKind constrains what shape of expression may appear in a given
// argument position of a builtin call.
type ArgKind int

const (
	// KindAny accepts any expression.
	KindAny ArgKind = iota
	// KindConstExpr requires a literal or an expression containing no
	// reference to a non-constant variable (e.g. the delay-time
	// argument of DELAY).
	KindConstExpr
)

// Spec describes one builtin's call contract.
type Spec struct {
	Name string
	// Min and Max bound the number of call arguments; Max == -1 means
	// unbounded (MIN/MAX accept two or more).
	Min, Max int
	// ArgKinds gives a per-position constraint; a short slice (or nil)
	// means the remaining positions default to KindAny.
	ArgKinds []ArgKind
	// Bare marks builtins that may be referenced without call syntax,
	// such as TIME or PI.
	Bare bool
}

// ArgKind returns the constraint for argument index i, defaulting to
// KindAny past the end of the explicit list.
func (s Spec) ArgKind(i int) ArgKind {
	if i < len(s.ArgKinds) {
		return s.ArgKinds[i]
	}
	return KindAny
}

// Accepts reports whether n arguments satisfy this builtin's arity.
func (s Spec) Accepts(n int) bool {
	if n < s.Min {
		return false
	}
	if s.Max == -1 {
		return true
	}
	return n <= s.Max
}

var specs = []Spec{
	{Name: "ABS", Min: 1, Max: 1},
	{Name: "MIN", Min: 2, Max: -1},
	{Name: "MAX", Min: 2, Max: -1},
	{Name: "EXP", Min: 1, Max: 1},
	{Name: "LN", Min: 1, Max: 1},
	{Name: "LOG10", Min: 1, Max: 1},
	{Name: "SQRT", Min: 1, Max: 1},
	{Name: "SIN", Min: 1, Max: 1},
	{Name: "COS", Min: 1, Max: 1},
	{Name: "TAN", Min: 1, Max: 1},
	{Name: "ARCSIN", Min: 1, Max: 1},
	{Name: "ARCCOS", Min: 1, Max: 1},
	{Name: "ARCTAN", Min: 1, Max: 1},
	{Name: "INT", Min: 1, Max: 1},
	{Name: "MOD", Min: 2, Max: 2},
	{Name: "PI", Min: 0, Max: 0, Bare: true},
	{Name: "TIME", Min: 0, Max: 0, Bare: true},
	{Name: "DT", Min: 0, Max: 0, Bare: true},
	{Name: "STARTTIME", Min: 0, Max: 0, Bare: true},
	{Name: "STOPTIME", Min: 0, Max: 0, Bare: true},
	{Name: "INIT", Min: 1, Max: 1},
	{Name: "DELAY", Min: 2, Max: 3, ArgKinds: []ArgKind{KindAny, KindConstExpr}},
	{Name: "DELAY1", Min: 2, Max: 3, ArgKinds: []ArgKind{KindAny, KindConstExpr}},
	{Name: "DELAY3", Min: 2, Max: 3, ArgKinds: []ArgKind{KindAny, KindConstExpr}},
	{Name: "SMTH1", Min: 2, Max: 3, ArgKinds: []ArgKind{KindAny, KindConstExpr}},
	{Name: "SMTH3", Min: 2, Max: 3, ArgKinds: []ArgKind{KindAny, KindConstExpr}},
	{Name: "STEP", Min: 2, Max: 2},
	{Name: "RAMP", Min: 2, Max: 3},
	{Name: "PULSE", Min: 2, Max: 3},
	{Name: "IF_THEN_ELSE", Min: 3, Max: 3},
	{Name: "NORMAL", Min: 2, Max: 3},
	{Name: "UNIFORM", Min: 2, Max: 3},
	{Name: "RANDOM", Min: 2, Max: 3},
}

// Table builds a fresh, independently-owned copy of the builtin name
// to Spec mapping. Callers may not mutate a Spec stored in another
// caller's table and expect it to be visible here, or vice versa.
func Table() map[string]Spec {
	t := make(map[string]Spec, len(specs))
	for _, s := range specs {
		t[s.Name] = s
	}
	return t
}

// Names returns the builtin names in declaration order, useful for
// building deterministic shadow-checks and diagnostics.
func Names() []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}
