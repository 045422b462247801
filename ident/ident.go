// Package ident implements XMILE canonical-identifier normalization:
// Unicode fullwidth/halfwidth folding, NFKC, full case folding,
// whitespace/underscore collapsing, and quote stripping. See spec
// section 4.1.
package ident

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// ErrInvalidIdentifier is returned when canonicalization yields an
// empty string or a string beginning with an ASCII digit.
var ErrInvalidIdentifier = errors.New("ident: invalid identifier")

// Identifier pairs a name's canonical comparison key with the
// original, human-facing spelling. Two Identifiers compare equal iff
// their Canonical fields are byte-equal.
type Identifier struct {
	Canonical string
	Display   string
}

// Equal reports whether two identifiers share a canonical form.
func (i Identifier) Equal(o Identifier) bool {
	return i.Canonical == o.Canonical
}

func (i Identifier) String() string {
	return i.Display
}

// Options controls canonicalization behavior. CaseSensitive disables
// full case folding, per the `case_sensitive` configuration option in
// spec section 6.
type Options struct {
	CaseSensitive bool
}

var collapseRunRe = regexp.MustCompile(`[ \t\n\r_]+`)

// Canonicalize normalizes s into an Identifier. It is pure, total
// (aside from the InvalidIdentifier failure case), and deterministic:
// Canonicalize(Canonicalize(s).Canonical) always reproduces the same
// canonical form (idempotence, spec section 8 property 2).
func Canonicalize(s string, opt Options) (Identifier, error) {
	display, err := unquote(s)
	if err != nil {
		return Identifier{}, err
	}

	canon := width.Fold.String(display)
	canon = norm.NFKC.String(canon)
	if !opt.CaseSensitive {
		canon = cases.Fold().String(canon)
	}
	canon = collapseRunRe.ReplaceAllString(canon, "_")
	canon = strings.Trim(canon, "_")

	if canon == "" {
		return Identifier{}, ErrInvalidIdentifier
	}
	if r, _ := utf8.DecodeRuneInString(canon); r >= '0' && r <= '9' {
		return Identifier{}, ErrInvalidIdentifier
	}

	return Identifier{Canonical: canon, Display: display}, nil
}

// unquote strips a single layer of matching double quotes, undoing
// the \" and \\ escapes XMILE equations use for quoted identifiers
// containing embedded quote or backslash characters. Inputs that are
// not quoted are returned unchanged.
func unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s, nil
	}
	inner := s[1 : len(s)-1]

	var b strings.Builder
	b.Grow(len(inner))
	escaped := false
	for _, r := range inner {
		if escaped {
			switch r {
			case '"', '\\':
				b.WriteRune(r)
			default:
				b.WriteRune('\\')
				b.WriteRune(r)
			}
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	if escaped {
		b.WriteRune('\\')
	}
	return b.String(), nil
}
