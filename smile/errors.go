// Copyright 2013 Bobby Powers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smile

import (
	"fmt"
	"go/token"
	"sort"
	"strings"
)

// Error is a single equation-parsing failure, with enough position
// information for the driver to translate it into a document-level
// diagnostic (spec section 4.2, "Errors carry byte offset... lifted
// to document-level spans by the enclosing element's recorded
// offset").
type Error struct {
	Pos token.Position
	Msg string
}

func (e *Error) Error() string {
	if e.Pos.Filename == "" && e.Pos.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// ErrorList collects every Error produced while parsing one equation.
// The teacher package referenced an undefined go/scanner-style
// ErrorVector; ErrorList replaces it with a small, self-contained
// type since go/scanner.ErrorVector was removed from the standard
// library long ago.
type ErrorList []*Error

func (p *ErrorList) Add(pos token.Position, msg string) {
	*p = append(*p, &Error{Pos: pos, Msg: msg})
}

func (p ErrorList) Len() int      { return len(p) }
func (p ErrorList) Swap(i, j int) { p[i], p[j] = p[j], p[i] }
func (p ErrorList) Less(i, j int) bool {
	if p[i].Pos.Filename != p[j].Pos.Filename {
		return p[i].Pos.Filename < p[j].Pos.Filename
	}
	return p[i].Pos.Offset < p[j].Pos.Offset
}

// Sort orders the list by source position in place.
func (p ErrorList) Sort() { sort.Sort(p) }

func (p ErrorList) Error() string {
	switch len(p) {
	case 0:
		return "no errors"
	case 1:
		return p[0].Error()
	}
	lines := make([]string, len(p))
	for i, e := range p {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}
