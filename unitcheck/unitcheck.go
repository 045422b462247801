// Package unitcheck implements the unit-expression validation spec
// section 4.8 names under cross-reference validation ("unit
// expressions must parse") and the UnitInconsistency warning spec
// section 7's taxonomy reserves: every declared units string must
// parse as a unit algebra expression (spec section 4.3), and a flow's
// declared units should equal its owning stock's units divided by the
// simulation's time unit.
package unitcheck

import (
	"github.com/sdlang/xmile-core/diag"
	"github.com/sdlang/xmile-core/ident"
	"github.com/sdlang/xmile-core/resolve"
	"github.com/sdlang/xmile-core/symtab"
	"github.com/sdlang/xmile-core/units"
	"github.com/sdlang/xmile-core/xmile"
)

// Config carries the subset of spec section 6's options that affect
// unit checking.
type Config struct {
	CaseSensitive bool
}

// Check parses every declared units string in doc and, where a
// stock's outflow/inflow can be matched to a unique unit-bearing
// stock, checks dimensional consistency against the document's
// simulation time unit.
func Check(raw *xmile.Document, doc *resolve.Document, cfg Config, c *diag.Collector) {
	opt := ident.Options{CaseSensitive: cfg.CaseSensitive}
	globalTable := buildUnitTable(raw.ModelUnits, "model_units", c)

	timeUnit, haveTimeUnit := units.Expr{}, false
	if raw.SimSpec.TimeUnits != "" {
		if e, err := units.Parse(raw.SimSpec.TimeUnits); err == nil {
			timeUnit, haveTimeUnit = e, true
		}
	}

	parsed := make(map[*xmile.Variable]units.Expr)
	for _, m := range doc.Models {
		// A model's own <model_units> overrides/extends the document's
		// global unit table for names looked up within that model
		// alone (spec section 3, "optional local dimension/unit
		// overrides").
		table := globalTable
		if m.Doc != nil && m.Doc.ModelUnits != nil {
			modelPath := "model[" + m.Doc.Name + "]/model_units"
			table = mergeUnitTables(globalTable, buildUnitTable(m.Doc.ModelUnits, modelPath, c))
		}
		for _, eq := range m.Equations {
			v := eq.Var
			if v.Units == "" {
				continue
			}
			e, err := units.Parse(v.Units)
			if err != nil {
				c.Addf(diag.UnitParseError, diag.Error, diag.Span{Path: eq.Path},
					"invalid units %q for %s: %v", v.Units, v.Name, err)
				continue
			}
			parsed[v] = expand(e, table, nil)
		}
	}

	if !haveTimeUnit {
		return
	}
	for _, m := range doc.Models {
		for _, eq := range m.Equations {
			stock := eq.Var
			if stock.Kind() != xmile.KindStock {
				continue
			}
			stockUnits, ok := parsed[stock]
			if !ok {
				continue
			}
			expected := stockUnits.Mul(timeUnit.Pow(-1))
			checkFlowUnits(stock, stock.Outflows, expected, parsed, m.Scope, opt, eq.Path, c)
			checkFlowUnits(stock, stock.Inflows, expected, parsed, m.Scope, opt, eq.Path, c)
		}
	}
}

func checkFlowUnits(stock *xmile.Variable, flowNames []string, expected units.Expr, parsed map[*xmile.Variable]units.Expr,
	scope *symtab.Scope, opt ident.Options, path string, c *diag.Collector) {
	for _, name := range flowNames {
		key, err := ident.Canonicalize(name, opt)
		if err != nil {
			continue
		}
		ref, ok := scope.Lookup(key.Canonical)
		if !ok || ref.Kind != symtab.RefVariable {
			continue
		}
		flowUnits, ok := parsed[ref.Var]
		if !ok {
			continue
		}
		if !flowUnits.Equal(expected) {
			c.Addf(diag.UnitInconsistency, diag.Warning, diag.Span{Path: path},
				"flow %s has units %s, expected %s (%s / time) to match stock %s",
				ref.Var.Name, flowUnits, expected, stock.Units, stock.Name)
		}
	}
}

// buildUnitTable parses every named unit in a <model_units> table
// (spec section 3's unit table, at document or model scope), reporting
// UnitParseError for any definition that fails to parse. path names
// the enclosing element for diagnostic spans.
func buildUnitTable(mu *xmile.ModelUnits, path string, c *diag.Collector) map[string]units.Expr {
	table := make(map[string]units.Expr)
	if mu == nil {
		return table
	}
	for _, u := range mu.Units {
		if u.Eqn == "" {
			// A primitive unit (no eqn) denotes itself; nothing to expand.
			continue
		}
		e, err := units.Parse(u.Eqn)
		if err != nil {
			c.Addf(diag.UnitParseError, diag.Error, diag.Span{Path: path + "/unit[" + u.Name + "]"},
				"invalid unit definition %q for %s: %v", u.Eqn, u.Name, err)
			continue
		}
		table[u.Name] = e
		for _, alias := range u.Alias {
			table[alias] = e
		}
	}
	return table
}

// mergeUnitTables returns a table combining base with override, where
// override's entries take precedence on name collision (a model-local
// unit definition shadows the document-global one of the same name).
func mergeUnitTables(base, override map[string]units.Expr) map[string]units.Expr {
	out := make(map[string]units.Expr, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// expand substitutes any factor in e that names a user-defined unit
// with that unit's own (already-expanded) definition, one level at a
// time, guarding against a cyclic unit table with seen.
func expand(e units.Expr, table map[string]units.Expr, seen map[string]bool) units.Expr {
	out := units.Expr{}
	first := true
	for name, exp := range e.Exponents() {
		factor, err := units.Parse(name)
		if err != nil {
			continue
		}
		factor = factor.Pow(exp)
		if def, ok := table[name]; ok && !seen[name] {
			nextSeen := make(map[string]bool, len(seen)+1)
			for k := range seen {
				nextSeen[k] = true
			}
			nextSeen[name] = true
			factor = expand(def, table, nextSeen).Pow(exp)
		}
		if first {
			out = factor
			first = false
		} else {
			out = out.Mul(factor)
		}
	}
	return out
}
