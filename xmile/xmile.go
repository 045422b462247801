// Copyright 2013 Bobby Powers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xmile implements the XMILE schema binder (spec section 4.4):
// it deserializes an XMILE XML document into the typed document tree
// of spec section 3. Unknown elements outside fields this package
// recognizes are preserved verbatim via RawElement so vendor
// extensions survive a round trip.
package xmile

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/sdlang/xmile-core/diag"
	"github.com/sdlang/xmile-core/internal/xlog"
)

// Namespace is the XMILE v1.0 OASIS namespace URI (spec section 6).
const Namespace = "http://docs.oasis-open.org/xmile/ns/XMILE/v1.0"

// Config carries the binder's configuration options (spec section 6's
// configuration table; the options affecting later pipeline stages
// live in package config and are threaded through separately).
type Config struct {
	// StrictUnknownElements treats unknown XMILE-namespaced elements
	// as SchemaViolation errors rather than logging a warning and
	// passing them through as RawElement (spec section 6,
	// strict_unknown_elements). Unknown elements in other namespaces
	// are passed through in either mode.
	StrictUnknownElements bool
}

// Document is the root entity of a bound XMILE file (spec section 3).
type Document struct {
	XMLName    xml.Name     `xml:"http://docs.oasis-open.org/xmile/ns/XMILE/v1.0 xmile"`
	Version    string       `xml:"version,attr"`
	Level      int          `xml:"level,attr,omitempty"`
	Header     Header       `xml:"header"`
	SimSpec    SimSpec      `xml:"sim_specs"`
	Dimensions []*Dimension `xml:"dimensions>dim,omitempty"`
	ModelUnits *ModelUnits  `xml:"model_units"`
	Style      *Style       `xml:"style"`
	Models     []*Model     `xml:"model"`
	Macros     []*Macro     `xml:"macro,omitempty"`
	Data       *Data        `xml:"data"`
	Unknown    []RawElement `xml:",any"`
}

// Style carries the document's default display styling (spec section
// 3's document metadata). Like View, its contents are out of the
// validator's scope, but it is given its own type rather than falling
// into Unknown so a caller inspecting style doesn't have to sift it
// out of the genuinely-unrecognized vendor elements.
type Style struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Content string     `xml:",innerxml"`
}

// Data declares a document's external data-connection bindings (spec
// section 3's document metadata), retained opaquely for the same
// reason as Style.
type Data struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Content string     `xml:",innerxml"`
}

// RawElement is an opaque pass-through for any element this package
// does not otherwise bind, keeping vendor extensions and the view
// layer round-trippable without the validator needing to understand
// them (spec section 1, "the graphical view/layout layer... treated
// as opaque pass-through").
type RawElement struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Content string     `xml:",innerxml"`
}

// Header carries file metadata (spec section 3, "header metadata").
type Header struct {
	Smile   *Smile  `xml:"smile"`
	Name    string  `xml:"name"`
	UUID    string  `xml:"uuid"`
	Vendor  string  `xml:"vendor"`
	Product Product `xml:"product"`
}

// Smile records which optional XMILE features a document uses.
type Smile struct {
	Version       string   `xml:"version,attr,omitempty"`
	UsesArrays    int      `xml:"uses_arrays,omitempty"`
	UsesQueue     *Exister `xml:"uses_queue"`
	UsesConveyer  *Exister `xml:"uses_conveyer"`
	UsesSubmodels *Exister `xml:"uses_submodels"`
}

// Exister marks the presence of an empty boolean-flag tag.
type Exister string

// Product describes the tool that produced the document.
type Product struct {
	Name    string `xml:",chardata"`
	Version string `xml:"version,attr"`
	Lang    string `xml:"lang,attr"`
}

// SimSpec holds simulation time parameters (spec section 3).
type SimSpec struct {
	TimeUnits string  `xml:"time_units,attr,omitempty"`
	Start     float64 `xml:"start"`
	Stop      float64 `xml:"stop"`
	DT        float64 `xml:"dt"`
	SavePer   float64 `xml:"save_step,omitempty"`
	Method    string  `xml:"method,omitempty"`
}

// Dimension is a named, ordered set of subscript elements (spec
// section 3). Exactly one of Size or Elements is populated: Size for
// an integer-indexed dimension, Elements for a named element list.
type Dimension struct {
	XMLName  xml.Name   `xml:"dim"`
	Name     string     `xml:"name,attr"`
	Size     int        `xml:"size,attr,omitempty"`
	Elements []*DimElem `xml:"elem,omitempty"`
}

// DimElem is one named element of a Dimension.
type DimElem struct {
	Name string `xml:"name,attr"`
}

// ModelUnits is the document's global unit table (spec section 3).
type ModelUnits struct {
	XMLName xml.Name   `xml:"model_units"`
	Units   []*UnitDef `xml:"unit,omitempty"`
}

// UnitDef declares one primitive or derived unit. Eqn, when present,
// is a unit algebra expression parsed by package units; an empty Eqn
// marks a primitive unit name.
type UnitDef struct {
	Name  string   `xml:"name,attr"`
	Eqn   string   `xml:"eqn,omitempty"`
	Alias []string `xml:"alias,omitempty"`
}

// Model is a named container of variables (spec section 3). A model
// may carry its own local <dimensions>/<model_units>, overriding or
// extending the document's global declarations for names looked up
// within that model's scope alone (spec section 3, "optional local
// dimension/unit overrides").
type Model struct {
	XMLName    xml.Name     `xml:"model"`
	Name       string       `xml:"name,attr,omitempty"`
	Dimensions []*Dimension `xml:"dimensions>dim,omitempty"`
	ModelUnits *ModelUnits  `xml:"model_units"`
	Variables  Variables    `xml:"variables"`
	Views      *[]*View     `xml:"views>view,omitempty"`
}

// Macro is a reusable equation template parameterized by formal
// arguments (spec section 3, "zero or more macros").
type Macro struct {
	XMLName    xml.Name  `xml:"macro"`
	Name       string    `xml:"name,attr"`
	Parameters []string  `xml:"parameters>param,omitempty"`
	Variables  Variables `xml:"variables"`
}

// Variables wraps a scope's variable declarations. The single
// ",any" field preserves XML document order across the mixed
// stock/flow/aux/gf/module element names, the same technique the
// view layer below uses for its own heterogeneous children.
type Variables struct {
	List []*Variable `xml:",any"`
}

// Kind enumerates the tagged-union variants of Variable (spec section
// 3).
type Kind string

const (
	KindStock   Kind = "stock"
	KindFlow    Kind = "flow"
	KindAux     Kind = "aux"
	KindGF      Kind = "gf"
	KindModule  Kind = "module"
	KindUnknown Kind = "unknown"
)

// Variable is the bound form of a stock, flow, auxiliary, graphical
// function, or module instance. Which fields apply is determined by
// Kind(); this mirrors the schema binder's original single-struct
// design (it reads the element's local name rather than allocating a
// distinct Go type per XMILE element), generalized to the variable
// kinds spec section 3 requires.
type Variable struct {
	XMLName xml.Name

	Name string `xml:"name,attr"`
	Doc  string `xml:"doc,omitempty"`

	// Stock, flow, auxiliary.
	Eqn    string   `xml:"eqn,omitempty"`
	NonNeg *Exister `xml:"non_negative"`
	Units  string   `xml:"units,omitempty"`
	Dims   []*Dim   `xml:"dimensions>dim,omitempty"`

	// Stock only.
	Inflows  []string `xml:"inflow,omitempty"`
	Outflows []string `xml:"outflow,omitempty"`

	// Inline graphical function: a <gf> child of a stock/flow/aux.
	// A top-level <gf> variable (Kind() == KindGF) does not populate
	// this field; its own points and scales are not bound.
	GF *GF `xml:"gf"`

	// Module instance only: Model names the referenced submodel, and
	// Connects lists the input/output port bindings (spec section 3,
	// "input/output identifier pairs").
	Model    string     `xml:"model,attr,omitempty"`
	Connects []*Connect `xml:"connect,omitempty"`
}

// Dim references a dimension by name in a variable's declared shape.
type Dim struct {
	Name string `xml:"name,attr"`
}

// Connect binds one module port: To is the local name, From is the
// name in the referenced submodel's scope (spec section 4.8, "module
// instance's input/output pairs").
type Connect struct {
	XMLName xml.Name `xml:"connect"`
	To      string   `xml:"to,attr"`
	From    string   `xml:"from,attr"`
}

// Kind reports which tagged-union variant v is, derived from the XML
// element's local name.
func (v *Variable) Kind() Kind {
	switch strings.ToLower(v.XMLName.Local) {
	case "stock":
		return KindStock
	case "flow":
		return KindFlow
	case "aux":
		return KindAux
	case "gf":
		return KindGF
	case "module":
		return KindModule
	default:
		return KindUnknown
	}
}

// InterpKind enumerates GF interpolation modes (spec section 3).
type InterpKind string

const (
	InterpContinuous  InterpKind = "continuous"
	InterpExtrapolate InterpKind = "extrapolate"
	InterpDiscrete    InterpKind = "discrete"
)

// GF is a graphical function: an ordered table of (x, y) points
// interpolated per InterpKind (spec section 3).
type GF struct {
	XMLName xml.Name `xml:"gf"`
	Type    string   `xml:"type,attr,omitempty"`
	XPoints string   `xml:"xpts,omitempty"`
	YPoints string   `xml:"ypts"`
	XScale  *Scale   `xml:"xscale"`
	YScale  Scale    `xml:"yscale"`
}

// InterpKind returns the GF's interpolation mode, defaulting to
// continuous when the type attribute is absent (the XMILE default).
func (g *GF) InterpKind() InterpKind {
	switch strings.ToLower(g.Type) {
	case "extrapolate":
		return InterpExtrapolate
	case "discrete":
		return InterpDiscrete
	default:
		return InterpContinuous
	}
}

// Scale bounds a GF axis.
type Scale struct {
	Min float64 `xml:"min,attr"`
	Max float64 `xml:"max,attr"`
}

// View is a visual layout container, carried through opaquely (spec
// section 1 lists the view/layout layer as an external collaborator
// out of scope for validation).
type View struct {
	XMLName xml.Name
	Name    string       `xml:"name,attr,omitempty"`
	Ents    []RawElement `xml:",any,omitempty"`
}

// Bind decodes an XMILE XML document from r. A malformed document is
// fatal: Bind returns a single *diag.Diagnostic of kind
// diag.XmlMalformed and a nil Document (spec section 4.9,
// "XmlMalformed is fatal: the pipeline halts after L4 with a single
// diagnostic").
func Bind(r io.Reader, filename string, cfg Config, c *diag.Collector) (*Document, error) {
	dec := xml.NewDecoder(r)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, &diag.Diagnostic{
			Kind:     diag.XmlMalformed,
			Severity: diag.Error,
			Message:  fmt.Sprintf("malformed XMILE document: %v", err),
			Primary:  diag.Span{File: filename},
		}
	}

	xlog.Logger.WithFields(map[string]interface{}{
		"file":   filename,
		"models": len(doc.Models),
		"macros": len(doc.Macros),
	}).Debug("bound XMILE document")

	if len(doc.Unknown) > 0 {
		names := make([]string, len(doc.Unknown))
		var inNamespace []string
		for i, u := range doc.Unknown {
			names[i] = u.XMLName.Local
			if u.XMLName.Space == Namespace {
				inNamespace = append(inNamespace, u.XMLName.Local)
			}
		}
		if cfg.StrictUnknownElements && len(inNamespace) > 0 {
			if c != nil {
				c.Addf(diag.SchemaViolation, diag.Error, diag.Span{File: filename},
					"unrecognized top-level elements: %s", strings.Join(inNamespace, ", "))
			}
		} else {
			xlog.Logger.WithField("elements", names).Warn("unrecognized top-level elements present")
		}
	}

	return &doc, nil
}
