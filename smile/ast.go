// Copyright 2013 Bobby Powers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smile

import (
	"go/token"
)

// Node is implemented by every AST node. Positions are byte offsets
// into the equation text, tracked with go/token so existing Go
// tooling (go/token.FileSet) can translate them to line:column pairs.
type Node interface {
	Pos() token.Pos
	End() token.Pos
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

type (
	// BadExpr is a placeholder for a span of input that failed to
	// parse, letting the parser keep going and report more than one
	// syntax error per equation.
	BadExpr struct {
		From, To token.Pos
	}

	// NumberLit is an IEEE-754 double literal. Value retains the
	// original source spelling; callers that need a float64 call
	// strconv.ParseFloat on it.
	NumberLit struct {
		ValuePos token.Pos
		Value    string
	}

	// StringLit is a single-quoted string literal, used by the small
	// number of builtins that take string arguments.
	StringLit struct {
		ValuePos token.Pos
		Value    string
	}

	// Ident is an identifier reference, optionally subscripted.
	// Quoted records whether the source spelling was double-quoted
	// (informational only; canonicalization treats quoted and
	// unquoted-with-underscores spellings identically).
	//
	// Ref is populated by the resolver (package resolve) with a
	// pointer to the bound referent. smile does not depend on the
	// resolver or symbol table, so the field is untyped here; callers
	// type-assert it to *symtab.Referent.
	Ident struct {
		NamePos    token.Pos
		Name       string
		Quoted     bool
		Subscripts []Expr
		Ref        interface{}
	}

	// ParenExpr is a parenthesized expression, kept in the tree (not
	// collapsed) so source spans and re-rendering stay faithful.
	ParenExpr struct {
		Lparen token.Pos
		X      Expr
		Rparen token.Pos
	}

	// UnaryExpr is a unary +, -, or NOT.
	UnaryExpr struct {
		OpPos token.Pos
		Op    Kind
		X     Expr
	}

	// BinaryExpr covers arithmetic, comparison, and AND/OR operators.
	BinaryExpr struct {
		X     Expr
		OpPos token.Pos
		Op    Kind
		Y     Expr
	}

	// CondExpr is `IF cond THEN a ELSE b`.
	CondExpr struct {
		IfPos      token.Pos
		Cond, Then Expr
		ElsePos    token.Pos
		Else       Expr
	}

	// CallExpr is a builtin, macro, or (pre-resolution) possibly
	// graphical-function call. The resolver rewrites single-argument
	// calls to a graphical function into a GFCallExpr.
	CallExpr struct {
		Fun    *Ident
		Lparen token.Pos
		Args   []Expr
		Rparen token.Pos
	}

	// GFCallExpr is the post-resolution form of a graphical-function
	// application: gf-ref applied to a single input expression (spec
	// section 3, "graphical-function application").
	GFCallExpr struct {
		Fun    *Ident
		Lparen token.Pos
		Arg    Expr
		Rparen token.Pos
	}

	// ArrayLit is a `{a, b, c}` array literal.
	ArrayLit struct {
		Lbrace token.Pos
		Elts   []Expr
		Rbrace token.Pos
	}
)

func (x *BadExpr) Pos() token.Pos    { return x.From }
func (x *NumberLit) Pos() token.Pos  { return x.ValuePos }
func (x *StringLit) Pos() token.Pos  { return x.ValuePos }
func (x *Ident) Pos() token.Pos      { return x.NamePos }
func (x *ParenExpr) Pos() token.Pos  { return x.Lparen }
func (x *UnaryExpr) Pos() token.Pos  { return x.OpPos }
func (x *BinaryExpr) Pos() token.Pos { return x.X.Pos() }
func (x *CondExpr) Pos() token.Pos   { return x.IfPos }
func (x *CallExpr) Pos() token.Pos   { return x.Fun.Pos() }
func (x *GFCallExpr) Pos() token.Pos { return x.Fun.Pos() }
func (x *ArrayLit) Pos() token.Pos   { return x.Lbrace }

func (x *BadExpr) End() token.Pos    { return x.To }
func (x *NumberLit) End() token.Pos  { return token.Pos(int(x.ValuePos) + len(x.Value)) }
func (x *StringLit) End() token.Pos  { return token.Pos(int(x.ValuePos) + len(x.Value) + 2) }
func (x *Ident) End() token.Pos      { return token.Pos(int(x.NamePos) + len(x.Name)) }
func (x *ParenExpr) End() token.Pos  { return x.Rparen + 1 }
func (x *UnaryExpr) End() token.Pos  { return x.X.End() }
func (x *BinaryExpr) End() token.Pos { return x.Y.End() }
func (x *CondExpr) End() token.Pos   { return x.Else.End() }
func (x *CallExpr) End() token.Pos   { return x.Rparen + 1 }
func (x *GFCallExpr) End() token.Pos { return x.Rparen + 1 }
func (x *ArrayLit) End() token.Pos   { return x.Rbrace + 1 }

func (*BadExpr) exprNode()    {}
func (*NumberLit) exprNode()  {}
func (*StringLit) exprNode()  {}
func (*Ident) exprNode()      {}
func (*ParenExpr) exprNode()  {}
func (*UnaryExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}
func (*CondExpr) exprNode()   {}
func (*CallExpr) exprNode()   {}
func (*GFCallExpr) exprNode() {}
func (*ArrayLit) exprNode()   {}

var noPos token.Pos

// NewIdent creates a new Ident without a source position, useful for
// ASTs synthesized outside the parser.
func NewIdent(name string) *Ident { return &Ident{NamePos: noPos, Name: name} }

// IsWildcard reports whether this Ident is the `*` subscript
// wildcard.
func (x *Ident) IsWildcard() bool { return x.Name == "*" }
