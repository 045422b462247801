// Copyright 2013 Bobby Powers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smile

import (
	"fmt"
	"go/token"
	"strings"
	"unicode/utf8"
)

// MaxDepthMessage is the exact error text emitted when an equation's
// nesting exceeds the configured limit, so callers (package resolve)
// can distinguish ExpressionDepthExceeded from a generic
// ExpressionSyntax diagnostic without smile depending on package diag.
const MaxDepthMessage = "maximum equation nesting depth exceeded"

const defaultMaxDepth = 256

// Parse returns the abstract syntax tree for eqn, or a non-empty
// ErrorList on failure. name is used only to label position
// information in errors. maxDepth <= 0 selects the default of 256
// (spec section 6, max_equation_depth).
func Parse(name, eqn string, maxDepth int) (Expr, ErrorList) {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	if strings.TrimSpace(eqn) == "" {
		var errs ErrorList
		errs.Add(token.Position{Filename: name}, "empty expression")
		return nil, errs
	}

	src := eqn
	if r, _ := utf8.DecodeLastRuneInString(strings.TrimRight(src, " \t\n\r")); r != ';' {
		src = src + ";"
	}

	fset := token.NewFileSet()
	f := fset.AddFile(name, fset.Base(), len(src))

	var errs ErrorList
	lex := newLexer(src, f, &errs)
	p := &parser{fset: fset, lex: lex, maxDepth: maxDepth}

	x, ok := p.parseExpr()
	errs = append(errs, p.errs...)
	if len(errs) > 0 {
		errs.Sort()
		return nil, errs
	}
	if !ok {
		errs.Add(fset.Position(token.NoPos), "parse failed with no specific error")
		return nil, errs
	}

	la := p.lex.Peek()
	if la.Kind != SEMI {
		p.errorf(la, "expected end of equation, got %s %q", la.Kind, la.Val)
		errs = append(errs, p.errs...)
		errs.Sort()
		return nil, errs
	}
	p.lex.Token() // consume the semicolon

	return x, nil
}

type parser struct {
	fset     *token.FileSet
	lex      *lexer
	errs     ErrorList
	depth    int
	maxDepth int
}

func (p *parser) errorf(tok *Token, format string, args ...interface{}) {
	var pos token.Position
	if tok != nil {
		pos = p.fset.Position(tok.Pos)
	}
	p.errs.Add(pos, fmt.Sprintf(format, args...))
}

func (p *parser) enter(tok *Token) bool {
	p.depth++
	if p.depth > p.maxDepth {
		p.errorf(tok, MaxDepthMessage)
		return false
	}
	return true
}

func (p *parser) leave() {
	p.depth--
}

// parseExpr implements `expr := cond`.
func (p *parser) parseExpr() (Expr, bool) {
	if !p.enter(p.lex.Peek()) {
		return nil, false
	}
	defer p.leave()
	return p.cond()
}

func (p *parser) cond() (Expr, bool) {
	if kw, ok := p.peekKeyword(); ok && kw == IF {
		ifTok := p.lex.Token()
		c, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		if !p.expectKeyword(THEN) {
			return nil, false
		}
		then, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		elsePos := p.lex.Peek().Pos
		if !p.expectKeyword(ELSE) {
			return nil, false
		}
		els, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		return &CondExpr{IfPos: ifTok.Pos, Cond: c, Then: then, ElsePos: elsePos, Else: els}, true
	}
	return p.orExpr()
}

func (p *parser) orExpr() (Expr, bool) {
	x, ok := p.andExpr()
	if !ok {
		return nil, false
	}
	for {
		kw, isKw := p.peekKeyword()
		if !isKw || kw != OR {
			return x, true
		}
		opTok := p.lex.Token()
		y, ok := p.andExpr()
		if !ok {
			return nil, false
		}
		x = &BinaryExpr{X: x, OpPos: opTok.Pos, Op: OR, Y: y}
	}
}

func (p *parser) andExpr() (Expr, bool) {
	x, ok := p.notExpr()
	if !ok {
		return nil, false
	}
	for {
		kw, isKw := p.peekKeyword()
		if !isKw || kw != AND {
			return x, true
		}
		opTok := p.lex.Token()
		y, ok := p.notExpr()
		if !ok {
			return nil, false
		}
		x = &BinaryExpr{X: x, OpPos: opTok.Pos, Op: AND, Y: y}
	}
}

func (p *parser) notExpr() (Expr, bool) {
	if kw, ok := p.peekKeyword(); ok && kw == NOT {
		opTok := p.lex.Token()
		x, ok := p.notExpr()
		if !ok {
			return nil, false
		}
		return &UnaryExpr{OpPos: opTok.Pos, Op: NOT, X: x}, true
	}
	return p.cmpExpr()
}

var cmpKinds = map[Kind]bool{EQ: true, NE: true, LT: true, LE: true, GT: true, GE: true}

func (p *parser) cmpExpr() (Expr, bool) {
	x, ok := p.addExpr()
	if !ok {
		return nil, false
	}
	la := p.lex.Peek()
	if !cmpKinds[la.Kind] {
		return x, true
	}
	opTok := p.lex.Token()
	y, ok := p.addExpr()
	if !ok {
		return nil, false
	}
	return &BinaryExpr{X: x, OpPos: opTok.Pos, Op: opTok.Kind, Y: y}, true
}

func (p *parser) addExpr() (Expr, bool) {
	x, ok := p.mulExpr()
	if !ok {
		return nil, false
	}
	for {
		la := p.lex.Peek()
		if la.Kind != ADD && la.Kind != SUB {
			return x, true
		}
		opTok := p.lex.Token()
		y, ok := p.mulExpr()
		if !ok {
			return nil, false
		}
		x = &BinaryExpr{X: x, OpPos: opTok.Pos, Op: opTok.Kind, Y: y}
	}
}

func (p *parser) mulExpr() (Expr, bool) {
	x, ok := p.powExpr()
	if !ok {
		return nil, false
	}
	for {
		la := p.lex.Peek()
		if la.Kind != MUL && la.Kind != QUO {
			return x, true
		}
		opTok := p.lex.Token()
		y, ok := p.powExpr()
		if !ok {
			return nil, false
		}
		x = &BinaryExpr{X: x, OpPos: opTok.Pos, Op: opTok.Kind, Y: y}
	}
}

// powExpr implements `pow := unary ('^' pow)?`, right-associative.
func (p *parser) powExpr() (Expr, bool) {
	x, ok := p.unaryExpr()
	if !ok {
		return nil, false
	}
	if p.lex.Peek().Kind != POW {
		return x, true
	}
	opTok := p.lex.Token()
	y, ok := p.powExpr()
	if !ok {
		return nil, false
	}
	return &BinaryExpr{X: x, OpPos: opTok.Pos, Op: POW, Y: y}, true
}

func (p *parser) unaryExpr() (Expr, bool) {
	la := p.lex.Peek()
	if la.Kind == ADD || la.Kind == SUB {
		opTok := p.lex.Token()
		x, ok := p.unaryExpr()
		if !ok {
			return nil, false
		}
		return &UnaryExpr{OpPos: opTok.Pos, Op: opTok.Kind, X: x}, true
	}
	return p.atom()
}

func (p *parser) atom() (Expr, bool) {
	la := p.lex.Peek()
	switch la.Kind {
	case LPAREN:
		lparen := p.lex.Token()
		x, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		rparenTok, ok := p.expect(RPAREN)
		if !ok {
			p.errorf(p.lex.Peek(), "expected ')'")
			return nil, false
		}
		return &ParenExpr{Lparen: lparen.Pos, X: x, Rparen: rparenTok.Pos}, true
	case LBRACE:
		return p.arrayLit()
	case NUMBER:
		t := p.lex.Token()
		return &NumberLit{ValuePos: t.Pos, Value: t.Val}, true
	case STRING:
		t := p.lex.Token()
		return &StringLit{ValuePos: t.Pos, Value: t.Val}, true
	case IDENT:
		return p.identRef()
	default:
		p.errorf(la, "unexpected token %s %q", la.Kind, la.Val)
		return nil, false
	}
}

func (p *parser) identRef() (Expr, bool) {
	t := p.lex.Token()
	id := &Ident{NamePos: t.Pos, Name: t.Val, Quoted: strings.HasPrefix(t.Val, `"`)}

	// Adjacent unquoted words that are not reserved words form one
	// multi-word identifier ("Teacup Temperature").
	for !id.Quoted {
		la := p.lex.Peek()
		if la.Kind != IDENT || strings.HasPrefix(la.Val, `"`) {
			break
		}
		if _, isKw := keywords[strings.ToLower(la.Val)]; isKw {
			break
		}
		id.Name += " " + p.lex.Token().Val
	}

	if p.lex.Peek().Kind == LPAREN {
		lparen := p.lex.Token()
		return p.call(id, lparen)
	}

	if p.lex.Peek().Kind == LBRACK {
		p.lex.Token()
		for {
			sub, ok := p.subscript()
			if !ok {
				return nil, false
			}
			id.Subscripts = append(id.Subscripts, sub)
			if p.lex.Peek().Kind == COMMA {
				p.lex.Token()
				continue
			}
			if _, ok := p.expect(RBRACK); !ok {
				p.errorf(p.lex.Peek(), "expected ',' or ']' in subscript list")
				return nil, false
			}
			break
		}
	}
	return id, true
}

// subscript implements `sub := ident | '*' | number`.
func (p *parser) subscript() (Expr, bool) {
	la := p.lex.Peek()
	switch la.Kind {
	case IDENT:
		t := p.lex.Token()
		return &Ident{NamePos: t.Pos, Name: t.Val, Quoted: strings.HasPrefix(t.Val, `"`)}, true
	case MUL:
		t := p.lex.Token()
		return &Ident{NamePos: t.Pos, Name: "*"}, true
	case NUMBER:
		t := p.lex.Token()
		return &NumberLit{ValuePos: t.Pos, Value: t.Val}, true
	default:
		p.errorf(la, "expected subscript, got %s %q", la.Kind, la.Val)
		return nil, false
	}
}

func (p *parser) call(fun *Ident, lparen *Token) (Expr, bool) {
	ce := &CallExpr{Fun: fun, Lparen: lparen.Pos}
	if t, ok := p.expect(RPAREN); ok {
		ce.Rparen = t.Pos
		return ce, true
	}
	for {
		arg, ok := p.parseExpr()
		if !ok {
			p.errorf(p.lex.Peek(), "call to %s: expected argument expression", fun.Name)
			return nil, false
		}
		ce.Args = append(ce.Args, arg)
		if p.lex.Peek().Kind == COMMA {
			p.lex.Token()
			continue
		}
		if t, ok := p.expect(RPAREN); ok {
			ce.Rparen = t.Pos
			break
		}
		p.errorf(p.lex.Peek(), "call to %s: expected ',' or ')'", fun.Name)
		return nil, false
	}
	return ce, true
}

func (p *parser) arrayLit() (Expr, bool) {
	lbrace := p.lex.Token()
	al := &ArrayLit{Lbrace: lbrace.Pos}
	for {
		elt, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		al.Elts = append(al.Elts, elt)
		if p.lex.Peek().Kind == COMMA {
			p.lex.Token()
			continue
		}
		t, ok := p.expect(RBRACE)
		if !ok {
			p.errorf(p.lex.Peek(), "expected ',' or '}' in array literal")
			return nil, false
		}
		al.Rbrace = t.Pos
		break
	}
	return al, true
}

func (p *parser) expect(k Kind) (*Token, bool) {
	if p.lex.Peek().Kind != k {
		return nil, false
	}
	return p.lex.Token(), true
}

// peekKeyword reports whether the next IDENT token spells a reserved
// word, without consuming it.
func (p *parser) peekKeyword() (Kind, bool) {
	la := p.lex.Peek()
	if la.Kind != IDENT {
		return ILLEGAL, false
	}
	k, ok := keywords[strings.ToLower(la.Val)]
	return k, ok
}

func (p *parser) expectKeyword(want Kind) bool {
	kw, ok := p.peekKeyword()
	if !ok || kw != want {
		p.errorf(p.lex.Peek(), "expected %s", want)
		return false
	}
	p.lex.Token()
	return true
}
