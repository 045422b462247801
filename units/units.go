// Package units implements the XMILE unit-expression sublanguage:
// products, quotients, and integer powers of primitive unit names
// (spec section 4.3), e.g. "kg*m/s^2".
package units

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Expr is a parsed unit expression, represented canonically as a map
// from unit name to signed integer exponent. The dimensionless unit
// "1" is the empty map.
type Expr struct {
	exponents map[string]int
}

// Exponents returns the canonical exponent map. Callers must not
// mutate the returned map.
func (e Expr) Exponents() map[string]int { return e.exponents }

// Equal reports whether two unit expressions denote the same
// dimension, i.e. their exponent maps agree (spec section 8, property
// 4: unit_eq(u, v) iff their exponent maps are equal).
func (e Expr) Equal(o Expr) bool {
	if len(e.exponents) != len(o.exponents) {
		return false
	}
	for name, exp := range e.exponents {
		if o.exponents[name] != exp {
			return false
		}
	}
	return true
}

// IsDimensionless reports whether e has no unit factors.
func (e Expr) IsDimensionless() bool { return len(e.exponents) == 0 }

// Mul returns the product of e and o, combining exponents and
// dropping any factor whose combined exponent cancels to zero.
func (e Expr) Mul(o Expr) Expr {
	out := make(map[string]int, len(e.exponents)+len(o.exponents))
	for n, x := range e.exponents {
		out[n] = x
	}
	for n, x := range o.exponents {
		out[n] += x
		if out[n] == 0 {
			delete(out, n)
		}
	}
	return Expr{exponents: out}
}

// Pow returns e raised to the integer power n.
func (e Expr) Pow(n int) Expr {
	out := make(map[string]int, len(e.exponents))
	for name, x := range e.exponents {
		if v := x * n; v != 0 {
			out[name] = v
		}
	}
	return Expr{exponents: out}
}

// String renders a canonical textual form, useful for diagnostics: a
// deterministic ordering of positive-exponent factors over negative
// ones, e.g. "kg*m/s^2".
func (e Expr) String() string {
	if len(e.exponents) == 0 {
		return "1"
	}
	names := make([]string, 0, len(e.exponents))
	for n := range e.exponents {
		names = append(names, n)
	}
	sort.Strings(names)

	var num, den []string
	for _, n := range names {
		exp := e.exponents[n]
		switch {
		case exp == 1:
			num = append(num, n)
		case exp > 0:
			num = append(num, fmt.Sprintf("%s^%d", n, exp))
		case exp == -1:
			den = append(den, n)
		default:
			den = append(den, fmt.Sprintf("%s^%d", n, -exp))
		}
	}
	var b strings.Builder
	if len(num) == 0 {
		b.WriteString("1")
	} else {
		b.WriteString(strings.Join(num, "*"))
	}
	for _, d := range den {
		b.WriteByte('/')
		b.WriteString(d)
	}
	return b.String()
}

// ParseError reports a failure parsing a unit expression, with the
// byte offset within the unit text (spec section 4.2's error-carrying
// convention applies to unit parsing too).
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Msg)
}

// Parse parses a unit expression per the grammar
//
//	units  := factor (('*'|'/') factor)*
//	factor := name ('^' int)? | '(' units ')' | '1'
func Parse(s string) (Expr, error) {
	p := &unitParser{s: s}
	p.skipSpace()
	if p.pos >= len(p.s) {
		return Expr{exponents: map[string]int{}}, nil
	}
	exps := map[string]int{}
	if err := p.parseUnits(exps, 1); err != nil {
		return Expr{}, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return Expr{}, &ParseError{Offset: p.pos, Msg: fmt.Sprintf("unexpected character %q", p.s[p.pos])}
	}
	return Expr{exponents: exps}, nil
}

type unitParser struct {
	s   string
	pos int
}

func (p *unitParser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t') {
		p.pos++
	}
}

// parseUnits accumulates into exps, with sign controlling whether
// factors add (sign==1, after '*') or subtract (sign==-1, after '/')
// their exponent.
func (p *unitParser) parseUnits(exps map[string]int, sign int) error {
	if err := p.parseFactor(exps, sign); err != nil {
		return err
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.s) {
			return nil
		}
		switch p.s[p.pos] {
		case '*':
			p.pos++
			p.skipSpace()
			if err := p.parseFactor(exps, sign); err != nil {
				return err
			}
		case '/':
			p.pos++
			p.skipSpace()
			if err := p.parseFactor(exps, -sign); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (p *unitParser) parseFactor(exps map[string]int, sign int) error {
	if p.pos >= len(p.s) {
		return &ParseError{Offset: p.pos, Msg: "unexpected end of unit expression"}
	}
	if p.s[p.pos] == '(' {
		p.pos++
		p.skipSpace()
		if err := p.parseUnits(exps, sign); err != nil {
			return err
		}
		p.skipSpace()
		if p.pos >= len(p.s) || p.s[p.pos] != ')' {
			return &ParseError{Offset: p.pos, Msg: "expected ')'"}
		}
		p.pos++
		return nil
	}
	if p.s[p.pos] == '1' && (p.pos+1 == len(p.s) || !isNameRune(rune(p.s[p.pos+1]))) {
		p.pos++
		return nil
	}

	start := p.pos
	for p.pos < len(p.s) && isNameRune(rune(p.s[p.pos])) {
		p.pos++
	}
	if p.pos == start {
		return &ParseError{Offset: p.pos, Msg: fmt.Sprintf("expected unit name, got %q", p.s[p.pos])}
	}
	name := p.s[start:p.pos]

	exp := sign
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == '^' {
		p.pos++
		p.skipSpace()
		expStart := p.pos
		neg := false
		if p.pos < len(p.s) && (p.s[p.pos] == '+' || p.s[p.pos] == '-') {
			neg = p.s[p.pos] == '-'
			p.pos++
			expStart = p.pos
		}
		digitStart := p.pos
		for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
			p.pos++
		}
		if p.pos == digitStart {
			return &ParseError{Offset: expStart, Msg: "expected integer exponent"}
		}
		n, err := strconv.Atoi(p.s[digitStart:p.pos])
		if err != nil {
			return &ParseError{Offset: expStart, Msg: "invalid integer exponent"}
		}
		if neg {
			n = -n
		}
		exp = sign * n
	}
	exps[name] += exp
	if exps[name] == 0 {
		delete(exps, name)
	}
	return nil
}

func isNameRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
