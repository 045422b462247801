// Package resolve implements the identifier resolver (spec section
// 4.6): it drives the equation parser (package smile) over every
// variable's equation, binds free identifiers to symbol-table
// referents, rewrites graphical-function calls, checks builtin arity,
// and resolves subscript references against a variable's declared
// dimensions.
package resolve

import (
	"strconv"
	"strings"
	"sync"

	"github.com/sdlang/xmile-core/builtin"
	"github.com/sdlang/xmile-core/diag"
	"github.com/sdlang/xmile-core/ident"
	"github.com/sdlang/xmile-core/smile"
	"github.com/sdlang/xmile-core/symtab"
	"github.com/sdlang/xmile-core/xmile"
)

// maxWorkers bounds the goroutine fan-out used when Config.Parallel is
// set (spec section 5's "bounded worker pool").
const maxWorkers = 8

// Config carries the subset of spec section 6's options that affect
// resolution.
type Config struct {
	CaseSensitive    bool
	MaxEquationDepth int

	// Parallel gates parsing and resolving a model's equations across
	// a bounded worker pool instead of sequentially (spec section 5).
	// Each worker accumulates diagnostics into its own *diag.Collector
	// and results are merged back in document order, since
	// diag.Collector is not safe for concurrent use.
	Parallel bool
}

// Equation is one variable's parsed and resolved equation.
type Equation struct {
	Var  *xmile.Variable
	AST  smile.Expr
	Path string
}

// Model is the resolved form of one xmile.Model: its scope plus every
// equation resolved within it.
type Model struct {
	Doc       *xmile.Model
	Scope     *symtab.Scope
	Equations []*Equation
}

// Document is the resolved form of an entire xmile.Document.
type Document struct {
	Models map[string]*Model // canonical model name -> resolved model
}

// Resolve walks every model in doc, parsing and binding each
// variable's equation against that model's scope in g (spec section
// 4.6). Variables declared inside macros are not parsed or resolved.
func Resolve(doc *xmile.Document, g *symtab.Global, cfg Config, c *diag.Collector) *Document {
	r := &resolver{opt: ident.Options{CaseSensitive: cfg.CaseSensitive}, maxDepth: cfg.MaxEquationDepth, c: c}
	out := &Document{Models: make(map[string]*Model)}

	for _, m := range doc.Models {
		scope := g.Models[canonOrEmpty(r.opt, m.Name)]
		if scope == nil {
			continue
		}
		rm := &Model{Doc: m, Scope: scope}
		path := "model[" + m.Name + "]"
		if cfg.Parallel {
			rm.Equations = r.resolveVariablesParallel(m.Variables.List, scope, path)
		} else {
			for _, v := range m.Variables.List {
				rm.Equations = append(rm.Equations, r.resolveVariable(v, scope, path))
			}
		}
		out.Models[canonOrEmpty(r.opt, m.Name)] = rm
	}

	// Cycle detection over the whole document: the graph includes
	// edges from every resolved equation, so stocks' initial-value
	// expressions participate (spec section 4.6, "Dependencies
	// between stocks' initial expressions are included") while a
	// stock has no separate integration-side equation to contribute
	// edges from in the first place.
	detectCycles(out, c)

	return out
}

func canonOrEmpty(opt ident.Options, s string) string {
	k, err := ident.Canonicalize(s, opt)
	if err != nil {
		return ""
	}
	return k.Canonical
}

type resolver struct {
	opt      ident.Options
	maxDepth int
	c        *diag.Collector
}

func (r *resolver) resolveVariable(v *xmile.Variable, scope *symtab.Scope, modelPath string) *Equation {
	path := modelPath + "/" + string(v.Kind()) + "[" + v.Name + "]"
	eq := &Equation{Var: v, Path: path}

	if strings.TrimSpace(v.Eqn) == "" {
		if v.Kind() == xmile.KindStock || v.Kind() == xmile.KindFlow || v.Kind() == xmile.KindAux {
			r.c.Addf(diag.ExpressionSyntax, diag.Error, diag.Span{Path: path}, "empty equation for %s", v.Name)
		}
		return eq
	}

	ast, errs := smile.Parse(v.Name, v.Eqn, r.maxDepth)
	if len(errs) > 0 {
		for _, e := range errs {
			kind := diag.ExpressionSyntax
			if strings.Contains(e.Msg, smile.MaxDepthMessage) {
				kind = diag.ExpressionDepthExceeded
			}
			r.c.Addf(kind, diag.Error, diag.Span{Path: path, Offset: e.Pos.Offset}, "%s", e.Msg)
		}
		return eq
	}

	eq.AST = r.walk(ast, v, scope, path)
	return eq
}

// resolveVariablesParallel parses and resolves each of vars'
// equations independently across a bounded pool of goroutines, one
// per variable at a time up to maxWorkers concurrently. Each worker
// gets its own resolver and diag.Collector so no state is shared
// across goroutines; results land back in vars' original order, and
// every worker's diagnostics are merged into r.c after all have
// finished, which diag.Collector.Diagnostics then re-sorts into
// deterministic document order (spec section 5).
func (r *resolver) resolveVariablesParallel(vars []*xmile.Variable, scope *symtab.Scope, path string) []*Equation {
	eqs := make([]*Equation, len(vars))
	locals := make([]*diag.Collector, len(vars))

	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup
	for i, v := range vars {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, v *xmile.Variable) {
			defer wg.Done()
			defer func() { <-sem }()
			local := diag.NewCollector()
			worker := &resolver{opt: r.opt, maxDepth: r.maxDepth, c: local}
			eqs[i] = worker.resolveVariable(v, scope, path)
			locals[i] = local
		}(i, v)
	}
	wg.Wait()

	for _, lc := range locals {
		r.c.Merge(lc)
	}
	return eqs
}

// walk resolves e in place, returning the (possibly rewritten)
// expression that should occupy e's slot in the parent node.
func (r *resolver) walk(e smile.Expr, v *xmile.Variable, scope *symtab.Scope, path string) smile.Expr {
	switch n := e.(type) {
	case nil:
		return nil
	case *smile.NumberLit, *smile.StringLit, *smile.BadExpr:
		return n
	case *smile.ParenExpr:
		n.X = r.walk(n.X, v, scope, path)
		return n
	case *smile.UnaryExpr:
		n.X = r.walk(n.X, v, scope, path)
		return n
	case *smile.BinaryExpr:
		n.X = r.walk(n.X, v, scope, path)
		n.Y = r.walk(n.Y, v, scope, path)
		return n
	case *smile.CondExpr:
		n.Cond = r.walk(n.Cond, v, scope, path)
		n.Then = r.walk(n.Then, v, scope, path)
		n.Else = r.walk(n.Else, v, scope, path)
		return n
	case *smile.ArrayLit:
		for i, elt := range n.Elts {
			n.Elts[i] = r.walk(elt, v, scope, path)
		}
		return n
	case *smile.CallExpr:
		return r.walkCall(n, v, scope, path)
	case *smile.Ident:
		r.resolveIdent(n, v, scope, path)
		return n
	default:
		return n
	}
}

func (r *resolver) walkCall(n *smile.CallExpr, v *xmile.Variable, scope *symtab.Scope, path string) smile.Expr {
	key, err := ident.Canonicalize(n.Fun.Name, r.opt)
	if err != nil {
		r.c.Addf(diag.InvalidIdentifier, diag.Error, diag.Span{Path: path}, "invalid identifier %q", n.Fun.Name)
		return n
	}
	ref, ok := scope.Lookup(key.Canonical)
	if !ok {
		r.c.Addf(diag.UnresolvedIdentifier, diag.Error, diag.Span{Path: path}, "call to undeclared name %s", n.Fun.Name)
		for i, a := range n.Args {
			n.Args[i] = r.walk(a, v, scope, path)
		}
		return n
	}
	n.Fun.Ref = ref

	switch ref.Kind {
	case symtab.RefBuiltin:
		if !ref.Builtin.Accepts(len(n.Args)) {
			r.c.Addf(diag.BuiltinArityMismatch, diag.Error, diag.Span{Path: path},
				"%s expects %s, got %d argument(s)", ref.Builtin.Name, arityRange(ref.Builtin), len(n.Args))
		}
		for i, a := range n.Args {
			n.Args[i] = r.walk(a, v, scope, path)
			if ref.Builtin.ArgKind(i) == builtin.KindConstExpr && !isConstExpr(n.Args[i]) {
				r.c.Addf(diag.BuiltinArgumentKind, diag.Error, diag.Span{Path: path},
					"%s argument %d must be a constant expression", ref.Builtin.Name, i+1)
			}
		}
		return n
	case symtab.RefVariable:
		if ref.Var.Kind() == xmile.KindGF {
			for i, a := range n.Args {
				n.Args[i] = r.walk(a, v, scope, path)
			}
			if len(n.Args) != 1 {
				r.c.Addf(diag.GfArrayArgument, diag.Error, diag.Span{Path: path},
					"graphical function %s must be called with exactly one argument, got %d", n.Fun.Name, len(n.Args))
				return n
			}
			return &smile.GFCallExpr{Fun: n.Fun, Lparen: n.Lparen, Arg: n.Args[0], Rparen: n.Rparen}
		}
		r.c.Addf(diag.UnresolvedIdentifier, diag.Error, diag.Span{Path: path}, "%s is not callable", n.Fun.Name)
		for i, a := range n.Args {
			n.Args[i] = r.walk(a, v, scope, path)
		}
		return n
	case symtab.RefMacro:
		for i, a := range n.Args {
			n.Args[i] = r.walk(a, v, scope, path)
		}
		return n
	default:
		r.c.Addf(diag.UnresolvedIdentifier, diag.Error, diag.Span{Path: path}, "%s is not callable", n.Fun.Name)
		return n
	}
}

func arityRange(s builtin.Spec) string {
	if s.Max == -1 {
		return strconv.Itoa(s.Min) + " or more arguments"
	}
	if s.Min == s.Max {
		return strconv.Itoa(s.Min) + " argument(s)"
	}
	return strconv.Itoa(s.Min) + "-" + strconv.Itoa(s.Max) + " arguments"
}

// isConstExpr reports whether e contains no reference to a
// non-constant variable: numeric literals and arithmetic over them
// qualify; any identifier reference to a declared variable does not
// (spec section 4.6 step 4, DELAY's second argument).
func isConstExpr(e smile.Expr) bool {
	ok := true
	smile.Inspect(e, func(n smile.Node) bool {
		if id, isIdent := n.(*smile.Ident); isIdent {
			if ref, _ := id.Ref.(*symtab.Referent); ref == nil || ref.Kind == symtab.RefVariable {
				ok = false
			}
		}
		return true
	})
	return ok
}

func (r *resolver) resolveIdent(id *smile.Ident, v *xmile.Variable, scope *symtab.Scope, path string) {
	key, err := ident.Canonicalize(id.Name, r.opt)
	if err != nil {
		r.c.Addf(diag.InvalidIdentifier, diag.Error, diag.Span{Path: path}, "invalid identifier %q", id.Name)
		return
	}
	ref, ok := scope.Lookup(key.Canonical)
	if !ok {
		r.c.Addf(diag.UnresolvedIdentifier, diag.Error, diag.Span{Path: path}, "unresolved identifier %s", id.Name)
		return
	}
	if ref.Kind == symtab.RefBuiltin && !ref.Builtin.Bare {
		r.c.Addf(diag.BuiltinArityMismatch, diag.Error, diag.Span{Path: path},
			"%s must be called with %s, not referenced bare", ref.Builtin.Name, arityRange(ref.Builtin))
		return
	}
	id.Ref = ref

	if len(id.Subscripts) == 0 {
		return
	}
	if ref.Kind != symtab.RefVariable {
		r.c.Addf(diag.UnknownSubscript, diag.Error, diag.Span{Path: path}, "%s cannot be subscripted", id.Name)
		return
	}
	dims := ref.Var.Dims
	for i, sub := range id.Subscripts {
		if i >= len(dims) {
			r.c.Addf(diag.UnknownSubscript, diag.Error, diag.Span{Path: path},
				"%s has %d subscript position(s), got more", id.Name, len(dims))
			break
		}
		r.resolveSubscript(sub, dims[i], scope, path, id.Name)
	}
}

func (r *resolver) resolveSubscript(sub smile.Expr, dim *xmile.Dim, scope *symtab.Scope, path, varName string) {
	dimKey, err := ident.Canonicalize(dim.Name, r.opt)
	if err != nil {
		return
	}
	dimRef, ok := scope.Lookup(dimKey.Canonical)
	if !ok || dimRef.Kind != symtab.RefDimension {
		r.c.Addf(diag.UnknownSubscript, diag.Error, diag.Span{Path: path}, "%s has no declared dimension %s", varName, dim.Name)
		return
	}

	switch s := sub.(type) {
	case *smile.Ident:
		if s.IsWildcard() {
			return
		}
		subKey, err := ident.Canonicalize(s.Name, r.opt)
		if err != nil {
			r.c.Addf(diag.InvalidIdentifier, diag.Error, diag.Span{Path: path}, "invalid subscript %q", s.Name)
			return
		}
		if subKey.Canonical == dimKey.Canonical {
			// bare dimension name: implicit loop over the whole axis
			s.Ref = dimRef
			return
		}
		for _, e := range dimRef.Dim.Elements {
			eKey, err := ident.Canonicalize(e.Name, r.opt)
			if err == nil && eKey.Canonical == subKey.Canonical {
				s.Ref = &symtab.Referent{Kind: symtab.RefSubscriptElement, Display: e.Name, Dim: dimRef.Dim, Elem: e}
				return
			}
		}
		r.c.Addf(diag.UnknownSubscript, diag.Error, diag.Span{Path: path},
			"%s is not an element of dimension %s", s.Name, dim.Name)
	case *smile.NumberLit:
		if dimRef.Dim.Size <= 0 {
			r.c.Addf(diag.UnknownSubscript, diag.Error, diag.Span{Path: path},
				"dimension %s is not integer-indexed", dim.Name)
			return
		}
		n, err := strconv.Atoi(s.Value)
		if err != nil || n < 1 || n > dimRef.Dim.Size {
			r.c.Addf(diag.UnknownSubscript, diag.Error, diag.Span{Path: path},
				"subscript %s out of range for dimension %s (size %d)", s.Value, dim.Name, dimRef.Dim.Size)
		}
	}
}
