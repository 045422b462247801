// Copyright 2013 Bobby Powers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smile

import "fmt"

// Inspect traverses an expression tree in depth-first order, calling f
// for each node. If f returns false, Inspect does not descend into
// that node's children. Modeled on go/ast.Inspect, which resolve and
// shape use the same way to walk equations without a bespoke visitor
// interface per package.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	switch n := node.(type) {
	case *BadExpr, *NumberLit, *StringLit:
		// leaves
	case *Ident:
		for _, s := range n.Subscripts {
			Inspect(s, f)
		}
	case *ParenExpr:
		Inspect(n.X, f)
	case *UnaryExpr:
		Inspect(n.X, f)
	case *BinaryExpr:
		Inspect(n.X, f)
		Inspect(n.Y, f)
	case *CondExpr:
		Inspect(n.Cond, f)
		Inspect(n.Then, f)
		Inspect(n.Else, f)
	case *CallExpr:
		Inspect(n.Fun, f)
		for _, a := range n.Args {
			Inspect(a, f)
		}
	case *GFCallExpr:
		Inspect(n.Fun, f)
		Inspect(n.Arg, f)
	case *ArrayLit:
		for _, e := range n.Elts {
			Inspect(e, f)
		}
	default:
		panic(fmt.Sprintf("smile.Inspect: unexpected node type %T", node))
	}
}
