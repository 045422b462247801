package shape_test

import (
	"strings"
	"testing"

	"github.com/sdlang/xmile-core/diag"
	"github.com/sdlang/xmile-core/resolve"
	"github.com/sdlang/xmile-core/shape"
	"github.com/sdlang/xmile-core/symtab"
	"github.com/sdlang/xmile-core/xmile"
)

func bindResolveShape(t *testing.T, xmlDoc string) *diag.Collector {
	t.Helper()
	c := diag.NewCollector()
	doc, err := xmile.Bind(strings.NewReader(xmlDoc), t.Name(), xmile.Config{}, c)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	g := symtab.Build(doc, symtab.Config{}, c)
	rd := resolve.Resolve(doc, g, resolve.Config{MaxEquationDepth: 256}, c)
	shape.Check(rd, c)
	return c
}

const scalarXML = `<?xml version="1.0" encoding="utf-8"?>
<xmile version="1.0" xmlns="http://docs.oasis-open.org/xmile/ns/XMILE/v1.0">
  <header><name>M</name></header>
  <sim_specs><start>0</start><stop>1</stop><dt>1</dt></sim_specs>
  <model>
    <variables>
      <aux name="a"><eqn>1</eqn></aux>
      <aux name="b"><eqn>a + 2</eqn></aux>
    </variables>
  </model>
</xmile>`

func TestScalarEquationHasNoShapeMismatch(t *testing.T) {
	c := bindResolveShape(t, scalarXML)
	for _, d := range c.Diagnostics() {
		if d.Kind == diag.ShapeMismatch {
			t.Fatalf("unexpected ShapeMismatch: %s", d.Report())
		}
	}
}

const arrayXML = `<?xml version="1.0" encoding="utf-8"?>
<xmile version="1.0" xmlns="http://docs.oasis-open.org/xmile/ns/XMILE/v1.0">
  <dimensions>
    <dim name="Region"><elem name="East"/><elem name="West"/></dim>
  </dimensions>
  <header><name>M</name></header>
  <sim_specs><start>0</start><stop>1</stop><dt>1</dt></sim_specs>
  <model>
    <variables>
      <aux name="pop"><dimensions><dim name="Region"/></dimensions><eqn>10</eqn></aux>
      <aux name="total"><eqn>pop[East]</eqn></aux>
      <aux name="byregion"><dimensions><dim name="Region"/></dimensions><eqn>pop[Region] * 2</eqn></aux>
    </variables>
  </model>
</xmile>`

func TestArrayShapeBroadcastAndFixedSubscript(t *testing.T) {
	c := bindResolveShape(t, arrayXML)
	for _, d := range c.Diagnostics() {
		t.Logf("diagnostic: %s", d.Report())
	}
	if c.HasErrors() {
		t.Fatalf("expected zero errors, got %d", c.Len())
	}
}

const shapeMismatchXML = `<?xml version="1.0" encoding="utf-8"?>
<xmile version="1.0" xmlns="http://docs.oasis-open.org/xmile/ns/XMILE/v1.0">
  <dimensions>
    <dim name="Region"><elem name="East"/><elem name="West"/></dim>
  </dimensions>
  <header><name>M</name></header>
  <sim_specs><start>0</start><stop>1</stop><dt>1</dt></sim_specs>
  <model>
    <variables>
      <aux name="pop"><dimensions><dim name="Region"/></dimensions><eqn>10</eqn></aux>
      <aux name="scalarOnly"><eqn>pop[Region] + 1</eqn></aux>
    </variables>
  </model>
</xmile>`

func TestArrayShapeMismatchReported(t *testing.T) {
	c := bindResolveShape(t, shapeMismatchXML)
	found := false
	for _, d := range c.Diagnostics() {
		if d.Kind == diag.ShapeMismatch {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a ShapeMismatch diagnostic, got none")
	}
}
