// Package pipeline wires the bind/resolve/shape/xref/unitcheck stages
// (spec section 4, L4 through L8) into a single entry point that runs
// an XMILE document through the full diagnostic pipeline.
package pipeline

import (
	"io"

	"github.com/sdlang/xmile-core/config"
	"github.com/sdlang/xmile-core/diag"
	"github.com/sdlang/xmile-core/resolve"
	"github.com/sdlang/xmile-core/shape"
	"github.com/sdlang/xmile-core/symtab"
	"github.com/sdlang/xmile-core/unitcheck"
	"github.com/sdlang/xmile-core/xmile"
	"github.com/sdlang/xmile-core/xref"
)

// Result is the outcome of running a document through every stage of
// the pipeline that completed before a fatal diagnostic, if any.
type Result struct {
	// Document is nil only when binding itself failed fatally (spec
	// section 4.9's XmlMalformed case).
	Document *xmile.Document
	Resolved *resolve.Document
	Symbols  *symtab.Global

	Diagnostics []diag.Diagnostic
}

// HasErrors reports whether any diagnostic in the result is
// Error-severity.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == diag.Error {
			return true
		}
	}
	return false
}

// Run binds, resolves, and validates the XMILE document read from r,
// aggregating diagnostics across every stage (spec section 4.9:
// "non-fatal diagnostics accumulate across pipeline stages; only
// XmlMalformed halts the pipeline early").
func Run(r io.Reader, filename string, cfg config.Config) *Result {
	c := diag.NewCollector()

	bindCfg := xmile.Config{StrictUnknownElements: cfg.StrictUnknownElements}
	doc, err := xmile.Bind(r, filename, bindCfg, c)
	if err != nil {
		d, ok := err.(*diag.Diagnostic)
		if !ok {
			d = &diag.Diagnostic{Kind: diag.XmlMalformed, Severity: diag.Error, Message: err.Error(), Primary: diag.Span{File: filename}}
		}
		return &Result{Diagnostics: []diag.Diagnostic{*d}}
	}

	symCfg := symtab.Config{CaseSensitive: cfg.CaseSensitive, AllowBuiltinShadowing: cfg.AllowBuiltinShadowing}
	g := symtab.Build(doc, symCfg, c)

	resolveCfg := resolve.Config{CaseSensitive: cfg.CaseSensitive, MaxEquationDepth: cfg.MaxEquationDepth, Parallel: cfg.Parallel}
	rd := resolve.Resolve(doc, g, resolveCfg, c)

	shape.Check(rd, c)
	xref.Check(rd, g, xref.Config{CaseSensitive: cfg.CaseSensitive}, c)
	unitcheck.Check(doc, rd, unitcheck.Config{CaseSensitive: cfg.CaseSensitive}, c)

	return &Result{
		Document:    doc,
		Resolved:    rd,
		Symbols:     g,
		Diagnostics: c.Diagnostics(),
	}
}
