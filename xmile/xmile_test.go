// Copyright 2013 Bobby Powers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xmile_test

import (
	"strings"
	"testing"

	"github.com/sdlang/xmile-core/diag"
	"github.com/sdlang/xmile-core/xmile"
)

const teacupXML = `<?xml version="1.0" encoding="utf-8"?>
<xmile version="1.0" level="2" xmlns="http://docs.oasis-open.org/xmile/ns/XMILE/v1.0">
  <header>
    <name>Teacup</name>
    <vendor>sdlang</vendor>
    <product version="1.0" lang="en">xmilelint</product>
  </header>
  <sim_specs time_units="minutes">
    <start>0</start>
    <stop>30</stop>
    <dt>0.125</dt>
  </sim_specs>
  <model>
    <variables>
      <stock name="Teacup Temperature">
        <eqn>180</eqn>
        <outflow>Heat Loss to Room</outflow>
        <units>degrees</units>
      </stock>
      <flow name="Heat Loss to Room">
        <eqn>(Teacup Temperature - Room Temperature) / Characteristic Time</eqn>
        <units>degrees/minute</units>
      </flow>
      <aux name="Room Temperature">
        <eqn>70</eqn>
        <units>degrees</units>
      </aux>
      <aux name="Characteristic Time">
        <eqn>10</eqn>
        <units>minutes</units>
      </aux>
    </variables>
  </model>
</xmile>`

func TestBindTeacup(t *testing.T) {
	doc, err := xmile.Bind(strings.NewReader(teacupXML), "teacup.xmile", xmile.Config{}, diag.NewCollector())
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if doc.Header.Name != "Teacup" {
		t.Fatalf("header name = %q, want Teacup", doc.Header.Name)
	}
	if len(doc.Models) != 1 {
		t.Fatalf("len(models) = %d, want 1", len(doc.Models))
	}
	vars := doc.Models[0].Variables.List
	if len(vars) != 4 {
		t.Fatalf("len(variables) = %d, want 4", len(vars))
	}
	if vars[0].Kind() != xmile.KindStock {
		t.Fatalf("variables[0].Kind() = %v, want stock", vars[0].Kind())
	}
	if vars[0].Name != "Teacup Temperature" {
		t.Fatalf("variables[0].Name = %q, want %q", vars[0].Name, "Teacup Temperature")
	}
	if len(vars[0].Outflows) != 1 || vars[0].Outflows[0] != "Heat Loss to Room" {
		t.Fatalf("outflows = %v, want [Heat Loss to Room]", vars[0].Outflows)
	}
	if vars[1].Kind() != xmile.KindFlow {
		t.Fatalf("variables[1].Kind() = %v, want flow", vars[1].Kind())
	}
}

func TestBindMalformedXMLIsFatal(t *testing.T) {
	_, err := xmile.Bind(strings.NewReader("<xmile><unterminated"), "bad.xmile", xmile.Config{}, diag.NewCollector())
	if err == nil {
		t.Fatal("expected an error for malformed XML, got none")
	}
}

func TestBindPreservesUnknownElements(t *testing.T) {
	const withExt = teacupXMLWithExtension
	doc, err := xmile.Bind(strings.NewReader(withExt), "teacup.xmile", xmile.Config{}, diag.NewCollector())
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if len(doc.Unknown) == 0 {
		t.Fatal("expected an unrecognized top-level element to be preserved, got none")
	}
}

func TestBindStrictUnknownElementsReportsSchemaViolation(t *testing.T) {
	c := diag.NewCollector()
	doc, err := xmile.Bind(strings.NewReader(teacupXMLWithExtension), "teacup.xmile", xmile.Config{StrictUnknownElements: true}, c)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if len(doc.Unknown) == 0 {
		t.Fatal("expected an unrecognized top-level element to be preserved, got none")
	}
	found := false
	for _, d := range c.Diagnostics() {
		if d.Kind == diag.SchemaViolation {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a SchemaViolation diagnostic under strict mode, got none")
	}
}

// <style> and <data> are recognized, typed elements (spec section 3's
// document metadata), not generic vendor extensions, so they must not
// end up in Unknown alongside a genuinely unrecognized element.
func TestBindStyleAndDataAreTypedNotUnknown(t *testing.T) {
	doc, err := xmile.Bind(strings.NewReader(teacupXMLWithStyleAndData), "teacup.xmile", xmile.Config{}, diag.NewCollector())
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if doc.Style == nil {
		t.Fatal("expected doc.Style to be populated")
	}
	if doc.Data == nil {
		t.Fatal("expected doc.Data to be populated")
	}
	if len(doc.Unknown) != 0 {
		t.Fatalf("expected style/data to not land in Unknown, got %d unknown elements", len(doc.Unknown))
	}
}

const teacupXMLWithStyleAndData = `<?xml version="1.0" encoding="utf-8"?>
<xmile version="1.0" level="2" xmlns="http://docs.oasis-open.org/xmile/ns/XMILE/v1.0">
  <header>
    <name>Teacup</name>
  </header>
  <sim_specs>
    <start>0</start>
    <stop>30</stop>
    <dt>0.125</dt>
  </sim_specs>
  <style><aux><font family="Arial"/></aux></style>
  <model>
    <variables>
      <aux name="X"><eqn>1</eqn></aux>
    </variables>
  </model>
  <data><export path="out.csv"/></data>
</xmile>`

const teacupXMLWithExtension = `<?xml version="1.0" encoding="utf-8"?>
<xmile version="1.0" level="2" xmlns="http://docs.oasis-open.org/xmile/ns/XMILE/v1.0">
  <header>
    <name>Teacup</name>
  </header>
  <sim_specs>
    <start>0</start>
    <stop>30</stop>
    <dt>0.125</dt>
  </sim_specs>
  <isee:prefs xmlns:isee="http://example.com/isee"><color>blue</color></isee:prefs>
  <extra_settings><color>blue</color></extra_settings>
  <model>
    <variables>
      <aux name="X"><eqn>1</eqn></aux>
    </variables>
  </model>
</xmile>`
