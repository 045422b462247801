// Package shape implements the dimension/subscript checker (spec
// section 4.7): it infers the array shape of every resolved equation
// and checks it against the declaring variable's declared shape, and
// checks that broadcasting rules hold within each equation.
package shape

import (
	"strings"

	"github.com/sdlang/xmile-core/diag"
	"github.com/sdlang/xmile-core/resolve"
	"github.com/sdlang/xmile-core/smile"
	"github.com/sdlang/xmile-core/symtab"
	"github.com/sdlang/xmile-core/xmile"
)

// Shape is an ordered list of dimension names; an empty Shape is a
// scalar.
type Shape []string

func (s Shape) equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

func (s Shape) String() string {
	if len(s) == 0 {
		return "scalar"
	}
	return "[" + strings.Join(s, ",") + "]"
}

// Check walks every resolved equation in doc, inferring its shape and
// comparing it against the declaring variable's declared shape (spec
// section 4.7, "Equation/variable compatibility").
func Check(doc *resolve.Document, c *diag.Collector) {
	ck := &checker{c: c}
	for _, m := range doc.Models {
		for _, eq := range m.Equations {
			if eq.AST == nil {
				continue
			}
			rhs := ck.infer(eq.AST, eq.Path)
			declared := declaredShape(eq.Var)
			if !compatible(rhs, declared) {
				c.Addf(diag.ShapeMismatch, diag.Error, diag.Span{Path: eq.Path},
					"equation shape %s is not assignable to declared shape %s for %s", rhs, declared, eq.Var.Name)
			}
		}
	}
}

func compatible(rhs, declared Shape) bool {
	return rhs.equal(declared) || len(rhs) == 0
}

func declaredShape(v *xmile.Variable) Shape {
	if len(v.Dims) == 0 {
		return nil
	}
	s := make(Shape, len(v.Dims))
	for i, d := range v.Dims {
		s[i] = d.Name
	}
	return s
}

type checker struct {
	c *diag.Collector
}

// infer computes e's shape, recursively, reporting ShapeMismatch for
// any incompatible broadcast it finds along the way.
func (ck *checker) infer(e smile.Expr, path string) Shape {
	switch n := e.(type) {
	case nil:
		return nil
	case *smile.NumberLit, *smile.StringLit:
		return nil
	case *smile.Ident:
		return ck.identShape(n)
	case *smile.ParenExpr:
		return ck.infer(n.X, path)
	case *smile.UnaryExpr:
		return ck.infer(n.X, path)
	case *smile.BinaryExpr:
		x := ck.infer(n.X, path)
		y := ck.infer(n.Y, path)
		return ck.broadcast(x, y, path)
	case *smile.CondExpr:
		condShape := ck.infer(n.Cond, path)
		thenShape := ck.infer(n.Then, path)
		elseShape := ck.infer(n.Else, path)
		if len(condShape) != 0 && !condShape.equal(thenShape) {
			ck.c.Addf(diag.ShapeMismatch, diag.Error, diag.Span{Path: path},
				"conditional's condition shape %s does not match branch shape %s", condShape, thenShape)
		}
		if !thenShape.equal(elseShape) {
			ck.c.Addf(diag.ShapeMismatch, diag.Error, diag.Span{Path: path},
				"conditional's branches have mismatched shapes: %s vs %s", thenShape, elseShape)
		}
		return thenShape
	case *smile.CallExpr:
		var s Shape
		for _, a := range n.Args {
			s = ck.broadcast(s, ck.infer(a, path), path)
		}
		return s
	case *smile.GFCallExpr:
		return ck.infer(n.Arg, path)
	case *smile.ArrayLit:
		var s Shape
		for _, elt := range n.Elts {
			s = ck.broadcast(s, ck.infer(elt, path), path)
		}
		return s
	default:
		return nil
	}
}

func (ck *checker) broadcast(a, b Shape, path string) Shape {
	if a.equal(b) {
		return a
	}
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	ck.c.Addf(diag.ShapeMismatch, diag.Error, diag.Span{Path: path},
		"incompatible shapes in broadcast: %s and %s", a, b)
	return a
}

// identShape returns the target variable's declared shape, minus any
// subscript slot the identifier fixes to a concrete element (spec
// section 4.7: "minus any subscript slots fixed to a concrete
// element; a wildcard or dimension-name keeps the slot").
func (ck *checker) identShape(id *smile.Ident) Shape {
	ref, ok := id.Ref.(*symtab.Referent)
	if !ok || ref == nil || ref.Kind != symtab.RefVariable {
		return nil
	}
	declared := declaredShape(ref.Var)
	if len(id.Subscripts) == 0 {
		return declared
	}
	var result Shape
	for i, dimName := range declared {
		if i >= len(id.Subscripts) {
			result = append(result, dimName)
			continue
		}
		if subscriptFixesAxis(id.Subscripts[i]) {
			continue
		}
		result = append(result, dimName)
	}
	return result
}

func subscriptFixesAxis(sub smile.Expr) bool {
	switch s := sub.(type) {
	case *smile.NumberLit:
		return true
	case *smile.Ident:
		if s.IsWildcard() {
			return false
		}
		ref, ok := s.Ref.(*symtab.Referent)
		return ok && ref != nil && ref.Kind == symtab.RefSubscriptElement
	default:
		return false
	}
}
