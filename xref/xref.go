// Package xref implements the cross-reference validator (spec
// section 4.8): it checks that a stock's inflow/outflow names resolve
// to declared flows owned by at most one stock, and that module
// instance port bindings name real variables on both sides.
package xref

import (
	"github.com/sdlang/xmile-core/diag"
	"github.com/sdlang/xmile-core/ident"
	"github.com/sdlang/xmile-core/resolve"
	"github.com/sdlang/xmile-core/symtab"
	"github.com/sdlang/xmile-core/xmile"
)

// Config carries the subset of spec section 6's options that affect
// cross-reference checking.
type Config struct {
	CaseSensitive bool
}

// flowOwner tracks which stock (if any) has already claimed a flow,
// and in which direction, to detect FlowOwnedTwice. A stock naming
// the same flow as both its inflow and outflow claims it twice under
// two different directions and must be reported the same as two
// distinct stocks claiming it once each (spec section 8's "Stock with
// overlapping inflow and outflow of the same name" boundary case).
type flowOwner struct {
	stockName string
	direction string
	path      string
}

// Check walks every model in doc, validating stock/flow cross
// references and module instance port bindings.
func Check(doc *resolve.Document, g *symtab.Global, cfg Config, c *diag.Collector) {
	opt := ident.Options{CaseSensitive: cfg.CaseSensitive}

	for _, m := range doc.Models {
		owners := make(map[string]*flowOwner)
		for _, eq := range m.Equations {
			v := eq.Var
			if v.Kind() != xmile.KindStock {
				continue
			}
			checkFlowRefs(v, v.Inflows, "inflow", eq.Path, m.Scope, opt, owners, c)
			checkFlowRefs(v, v.Outflows, "outflow", eq.Path, m.Scope, opt, owners, c)
		}
		for _, eq := range m.Equations {
			if eq.Var.Kind() == xmile.KindModule {
				checkModulePorts(eq.Var, eq.Path, m.Scope, g, opt, c)
			}
		}
	}
}

func checkFlowRefs(stock *xmile.Variable, names []string, direction, path string, scope *symtab.Scope, opt ident.Options,
	owners map[string]*flowOwner, c *diag.Collector) {
	for _, name := range names {
		key, err := ident.Canonicalize(name, opt)
		if err != nil {
			c.Addf(diag.InvalidIdentifier, diag.Error, diag.Span{Path: path}, "invalid flow name %q", name)
			continue
		}
		ref, ok := scope.Lookup(key.Canonical)
		if !ok || ref.Kind != symtab.RefVariable || ref.Var.Kind() != xmile.KindFlow {
			c.Addf(diag.DanglingFlowRef, diag.Error, diag.Span{Path: path}, "%s references undeclared flow %s", stock.Name, name)
			continue
		}
		if prior, owned := owners[key.Canonical]; owned && (prior.stockName != stock.Name || prior.direction != direction) {
			c.Add(diag.Diagnostic{
				Kind:         diag.FlowOwnedTwice,
				Severity:     diag.Error,
				Message:      "flow " + name + " is owned by more than one stock",
				Primary:      diag.Span{Path: path},
				Related:      []diag.Span{{Path: prior.path}},
				DisplayNames: []string{name, stock.Name, prior.stockName},
			})
			continue
		}
		owners[key.Canonical] = &flowOwner{stockName: stock.Name, direction: direction, path: path}
	}
}

func checkModulePorts(mod *xmile.Variable, path string, localScope *symtab.Scope, g *symtab.Global, opt ident.Options, c *diag.Collector) {
	modelKey, err := ident.Canonicalize(mod.Model, opt)
	if err != nil {
		c.Addf(diag.ModuleRefError, diag.Error, diag.Span{Path: path}, "invalid submodel name %q for module %s", mod.Model, mod.Name)
		return
	}
	subScope, ok := g.Models[modelKey.Canonical]
	if !ok {
		c.Addf(diag.ModuleRefError, diag.Error, diag.Span{Path: path}, "module %s references undeclared submodel %s", mod.Name, mod.Model)
		return
	}
	for _, conn := range mod.Connects {
		toKey, err := ident.Canonicalize(conn.To, opt)
		if err != nil {
			c.Addf(diag.ModuleRefError, diag.Error, diag.Span{Path: path}, "invalid local port name %q on module %s", conn.To, mod.Name)
			continue
		}
		if _, ok := localScope.Lookup(toKey.Canonical); !ok {
			c.Addf(diag.ModuleRefError, diag.Error, diag.Span{Path: path}, "module %s's local port %s is not declared in this scope", mod.Name, conn.To)
		}
		fromKey, err := ident.Canonicalize(conn.From, opt)
		if err != nil {
			c.Addf(diag.ModuleRefError, diag.Error, diag.Span{Path: path}, "invalid submodel port name %q on module %s", conn.From, mod.Name)
			continue
		}
		if _, ok := subScope.Lookup(fromKey.Canonical); !ok {
			c.Addf(diag.ModuleRefError, diag.Error, diag.Span{Path: path}, "module %s's submodel port %s is not declared in %s", mod.Name, conn.From, mod.Model)
		}
	}
}
