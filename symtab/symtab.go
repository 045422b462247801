// Package symtab builds the per-scope symbol tables spec section 4.5
// describes: one pass over the bound document registering every
// declared name (variable, dimension, subscript element, macro,
// builtin) before package resolve binds any expression's free
// identifiers against them.
package symtab

import (
	"github.com/sdlang/xmile-core/builtin"
	"github.com/sdlang/xmile-core/diag"
	"github.com/sdlang/xmile-core/ident"
	"github.com/sdlang/xmile-core/xmile"
)

// RefKind distinguishes what a Referent names.
type RefKind int

const (
	RefVariable RefKind = iota
	RefDimension
	RefSubscriptElement
	RefMacro
	RefBuiltin
	RefModulePort
)

func (k RefKind) String() string {
	switch k {
	case RefVariable:
		return "variable"
	case RefDimension:
		return "dimension"
	case RefSubscriptElement:
		return "subscript element"
	case RefMacro:
		return "macro"
	case RefBuiltin:
		return "builtin"
	case RefModulePort:
		return "module port"
	default:
		return "unknown"
	}
}

// Referent is what a resolved identifier names (spec section 3,
// "Symbol table... Referent variants").
type Referent struct {
	Kind RefKind

	// Display is the original (non-canonicalized) spelling.
	Display string

	// Var is populated when Kind == RefVariable.
	Var *xmile.Variable
	// VarScope is the scope that declares Var.
	VarScope *Scope

	// Dim is populated when Kind == RefDimension or RefSubscriptElement.
	Dim *xmile.Dimension
	// Elem is populated when Kind == RefSubscriptElement.
	Elem *xmile.DimElem

	// Builtin is populated when Kind == RefBuiltin.
	Builtin builtin.Spec

	// Macro is populated when Kind == RefMacro.
	Macro *xmile.Macro
}

// Scope is one level of the nested symbol table: global, model, or
// macro (spec section 3, "Scopes nest: macro scope → enclosing model
// scope → global scope").
type Scope struct {
	Name   string
	Parent *Scope

	vars map[string]*Referent

	// elements is a namespace distinct from vars holding dimension
	// subscript-element names, per the Open Question decision in
	// SPEC_FULL.md: subscript elements and variables do not share a
	// namespace.
	elements map[string]*Referent
}

func newScope(name string, parent *Scope) *Scope {
	return &Scope{
		Name:     name,
		Parent:   parent,
		vars:     make(map[string]*Referent),
		elements: make(map[string]*Referent),
	}
}

// Lookup resolves canonicalName in this scope or any ancestor,
// innermost first (spec section 4.6 step 2).
func (s *Scope) Lookup(canonicalName string) (*Referent, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if r, ok := sc.vars[canonicalName]; ok {
			return r, true
		}
	}
	return nil, false
}

// LookupElement resolves canonicalName as a subscript-element name
// against the dimensions visible from this scope.
func (s *Scope) LookupElement(canonicalName string) (*Referent, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if r, ok := sc.elements[canonicalName]; ok {
			return r, true
		}
	}
	return nil, false
}

func (s *Scope) define(canonicalName, display string, r *Referent, c *diag.Collector, path string) {
	if existing, ok := s.vars[canonicalName]; ok {
		c.Add(diag.Diagnostic{
			Kind:         diag.DuplicateDefinition,
			Severity:     diag.Error,
			Message:      "duplicate definition of " + display,
			Primary:      diag.Span{Path: path},
			Related:      []diag.Span{{Path: path}},
			DisplayNames: []string{display, existing.Display},
		})
		return
	}
	s.vars[canonicalName] = r
}

func (s *Scope) defineElement(canonicalName, display string, r *Referent, c *diag.Collector, path string) {
	if existing, ok := s.elements[canonicalName]; ok {
		c.Add(diag.Diagnostic{
			Kind:         diag.DuplicateDefinition,
			Severity:     diag.Error,
			Message:      "duplicate subscript element " + display,
			Primary:      diag.Span{Path: path},
			DisplayNames: []string{display, existing.Display},
		})
		return
	}
	s.elements[canonicalName] = r
}

// Global is the root of the symbol table: the global scope plus every
// model and macro scope it encloses, and the options that governed
// canonicalization while building it.
type Global struct {
	Options     ident.Options
	AllowShadow bool

	Global *Scope
	Models map[string]*Scope // canonical model name -> scope ("" for the unnamed model)
	Macros map[string]*Scope // canonical macro name -> scope
}

// Config carries the subset of spec section 6's options that affect
// symbol-table construction.
type Config struct {
	CaseSensitive         bool
	AllowBuiltinShadowing bool
}

// Build walks doc once, registering every declared name per spec
// section 4.5: global scope (dimensions, macros, builtins), then each
// model's scope, then each macro's scope. Unit names are not
// registered in any scope.
func Build(doc *xmile.Document, cfg Config, c *diag.Collector) *Global {
	opt := ident.Options{CaseSensitive: cfg.CaseSensitive}
	g := &Global{
		Options:     opt,
		AllowShadow: cfg.AllowBuiltinShadowing,
		Global:      newScope("global", nil),
		Models:      make(map[string]*Scope),
		Macros:      make(map[string]*Scope),
	}

	registerBuiltins(g.Global, opt, c)
	registerDimensions(g.Global, doc.Dimensions, opt, c, "")

	for _, m := range doc.Models {
		path := "model[" + m.Name + "]"
		scope := newScope(m.Name, g.Global)
		// Local dimensions live in the model's own scope, not the
		// global one, so they shadow/extend the document-wide table
		// for lookups within this model alone (spec section 3,
		// "optional local dimension/unit overrides").
		registerDimensions(scope, m.Dimensions, opt, c, path+"/")
		registerVariables(scope, m.Variables.List, opt, g.AllowShadow, c, path)
		// The top-level model usually carries no name attribute; it is
		// keyed by "", the same key package resolve looks it up under.
		key, err := ident.Canonicalize(m.Name, opt)
		if err == nil {
			g.Models[key.Canonical] = scope
		} else if m.Name == "" {
			g.Models[""] = scope
		}
	}

	for _, mac := range doc.Macros {
		path := "macro[" + mac.Name + "]"
		scope := newScope(mac.Name, g.Global)
		for _, p := range mac.Parameters {
			key, err := ident.Canonicalize(p, opt)
			if err != nil {
				c.Add(diag.Diagnostic{Kind: diag.InvalidIdentifier, Severity: diag.Error,
					Message: "invalid macro parameter name " + p, Primary: diag.Span{Path: path}})
				continue
			}
			scope.define(key.Canonical, p, &Referent{Kind: RefVariable, Display: p}, c, path)
		}
		registerVariables(scope, mac.Variables.List, opt, g.AllowShadow, c, path)
		key, err := ident.Canonicalize(mac.Name, opt)
		if err == nil {
			g.Macros[key.Canonical] = scope
			g.Global.define(key.Canonical, mac.Name, &Referent{Kind: RefMacro, Display: mac.Name, Macro: mac}, c, path)
		}
	}

	return g
}

func registerBuiltins(scope *Scope, opt ident.Options, c *diag.Collector) {
	for name, spec := range builtin.Table() {
		key, err := ident.Canonicalize(name, opt)
		if err != nil {
			continue
		}
		scope.vars[key.Canonical] = &Referent{Kind: RefBuiltin, Display: name, Builtin: spec}
	}
}

func registerDimensions(scope *Scope, dims []*xmile.Dimension, opt ident.Options, c *diag.Collector, pathPrefix string) {
	for _, d := range dims {
		path := pathPrefix + "dimensions/dim[" + d.Name + "]"
		key, err := ident.Canonicalize(d.Name, opt)
		if err != nil {
			c.Add(diag.Diagnostic{Kind: diag.InvalidIdentifier, Severity: diag.Error,
				Message: "invalid dimension name " + d.Name, Primary: diag.Span{Path: path}})
			continue
		}
		scope.define(key.Canonical, d.Name, &Referent{Kind: RefDimension, Display: d.Name, Dim: d}, c, path)

		for _, e := range d.Elements {
			ekey, err := ident.Canonicalize(e.Name, opt)
			if err != nil {
				c.Add(diag.Diagnostic{Kind: diag.InvalidIdentifier, Severity: diag.Error,
					Message: "invalid subscript element name " + e.Name, Primary: diag.Span{Path: path}})
				continue
			}
			scope.defineElement(ekey.Canonical, e.Name, &Referent{Kind: RefSubscriptElement, Display: e.Name, Dim: d, Elem: e}, c, path)
		}
	}
}

func registerVariables(scope *Scope, vars []*xmile.Variable, opt ident.Options, allowShadow bool, c *diag.Collector, modelPath string) {
	for _, v := range vars {
		path := modelPath + "/" + string(v.Kind()) + "[" + v.Name + "]"
		key, err := ident.Canonicalize(v.Name, opt)
		if err != nil {
			c.Add(diag.Diagnostic{Kind: diag.InvalidIdentifier, Severity: diag.Error,
				Message: "invalid variable name " + v.Name, Primary: diag.Span{Path: path}})
			continue
		}
		if !allowShadow {
			if existing, ok := scope.Lookup(key.Canonical); ok && existing.Kind == RefBuiltin {
				c.Add(diag.Diagnostic{Kind: diag.DuplicateDefinition, Severity: diag.Error,
					Message: "variable " + v.Name + " shadows builtin " + existing.Display,
					Primary: diag.Span{Path: path}, DisplayNames: []string{v.Name, existing.Display}})
				continue
			}
		}
		scope.define(key.Canonical, v.Name, &Referent{Kind: RefVariable, Display: v.Name, Var: v, VarScope: scope}, c, path)
	}
}
