package symtab_test

import (
	"strings"
	"testing"

	"github.com/sdlang/xmile-core/diag"
	"github.com/sdlang/xmile-core/symtab"
	"github.com/sdlang/xmile-core/xmile"
)

func bind(t *testing.T, xmlDoc string) (*xmile.Document, *diag.Collector) {
	t.Helper()
	c := diag.NewCollector()
	doc, err := xmile.Bind(strings.NewReader(xmlDoc), t.Name(), xmile.Config{}, c)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	return doc, c
}

const builtinShadowXML = `<?xml version="1.0" encoding="utf-8"?>
<xmile version="1.0" xmlns="http://docs.oasis-open.org/xmile/ns/XMILE/v1.0">
  <header><name>M</name></header>
  <sim_specs><start>0</start><stop>1</stop><dt>1</dt></sim_specs>
  <model>
    <variables>
      <aux name="abs"><eqn>1</eqn></aux>
    </variables>
  </model>
</xmile>`

func TestBuildRejectsBuiltinShadowingByDefault(t *testing.T) {
	doc, _ := bind(t, builtinShadowXML)
	c := diag.NewCollector()
	symtab.Build(doc, symtab.Config{}, c)
	found := false
	for _, d := range c.Diagnostics() {
		if d.Kind == diag.DuplicateDefinition {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a DuplicateDefinition diagnostic when a variable shadows a builtin")
	}
}

func TestBuildAllowsBuiltinShadowingWhenConfigured(t *testing.T) {
	doc, _ := bind(t, builtinShadowXML)
	c := diag.NewCollector()
	symtab.Build(doc, symtab.Config{AllowBuiltinShadowing: true}, c)
	for _, d := range c.Diagnostics() {
		if d.Kind == diag.DuplicateDefinition {
			t.Fatalf("unexpected DuplicateDefinition with AllowBuiltinShadowing: %s", d.Report())
		}
	}
}

// A dimension element may share a canonical name with an unrelated
// variable: elements and variables live in separate namespaces (spec
// section 4.5's Open Question, resolved by keeping vars/elements
// separate).
const sharedNameXML = `<?xml version="1.0" encoding="utf-8"?>
<xmile version="1.0" xmlns="http://docs.oasis-open.org/xmile/ns/XMILE/v1.0">
  <dimensions>
    <dim name="Region"><elem name="East"/></dim>
  </dimensions>
  <header><name>M</name></header>
  <sim_specs><start>0</start><stop>1</stop><dt>1</dt></sim_specs>
  <model>
    <variables>
      <aux name="East"><eqn>1</eqn></aux>
    </variables>
  </model>
</xmile>`

func TestElementAndVariableNamespacesDoNotCollide(t *testing.T) {
	doc, _ := bind(t, sharedNameXML)
	c := diag.NewCollector()
	g := symtab.Build(doc, symtab.Config{}, c)
	if c.Len() != 0 {
		for _, d := range c.Diagnostics() {
			t.Logf("diagnostic: %s", d.Report())
		}
		t.Fatalf("expected zero diagnostics, got %d", c.Len())
	}
	modelScope := g.Models[""]
	if modelScope == nil {
		t.Fatal("expected a scope for the unnamed top-level model")
	}
	ref, ok := modelScope.Lookup("east")
	if !ok || ref.Kind != symtab.RefVariable {
		t.Fatalf("expected East to resolve as a variable in the model scope, got %+v, ok=%v", ref, ok)
	}
	elemRef, ok := g.Global.LookupElement("east")
	if !ok || elemRef.Kind != symtab.RefSubscriptElement {
		t.Fatalf("expected East to resolve as a subscript element in the global scope, got %+v, ok=%v", elemRef, ok)
	}
}

const modelLocalDimensionXML = `<?xml version="1.0" encoding="utf-8"?>
<xmile version="1.0" xmlns="http://docs.oasis-open.org/xmile/ns/XMILE/v1.0">
  <header><name>M</name></header>
  <sim_specs><start>0</start><stop>1</stop><dt>1</dt></sim_specs>
  <model>
    <dimensions>
      <dim name="Region"><elem name="North"/><elem name="South"/></dim>
    </dimensions>
    <variables>
      <aux name="Sales"><dimensions><dim name="Region"/></dimensions><eqn>1</eqn></aux>
    </variables>
  </model>
  <model name="Other">
    <variables>
      <aux name="x"><eqn>1</eqn></aux>
    </variables>
  </model>
</xmile>`

// A model-local <dimensions> block (spec section 3's "optional local
// dimension/unit overrides") must be visible from that model's scope
// and invisible from an unrelated model's scope.
func TestModelLocalDimensionIsScopedToItsModel(t *testing.T) {
	doc, _ := bind(t, modelLocalDimensionXML)
	c := diag.NewCollector()
	g := symtab.Build(doc, symtab.Config{}, c)
	if c.Len() != 0 {
		for _, d := range c.Diagnostics() {
			t.Logf("diagnostic: %s", d.Report())
		}
		t.Fatalf("expected zero diagnostics, got %d", c.Len())
	}
	mScope := g.Models[""]
	if mScope == nil {
		t.Fatal("expected a scope for the unnamed top-level model")
	}
	ref, ok := mScope.Lookup("region")
	if !ok || ref.Kind != symtab.RefDimension {
		t.Fatalf("expected Region to resolve as a dimension in model M's scope, got %+v, ok=%v", ref, ok)
	}
	otherScope := g.Models["other"]
	if otherScope == nil {
		t.Fatal("expected a scope for model Other")
	}
	if _, ok := otherScope.Lookup("region"); ok {
		t.Fatal("expected Region to be invisible from an unrelated model's scope")
	}
}

func TestRefKindStringIsHumanReadable(t *testing.T) {
	cases := map[symtab.RefKind]string{
		symtab.RefVariable:         "variable",
		symtab.RefDimension:        "dimension",
		symtab.RefSubscriptElement: "subscript element",
		symtab.RefMacro:            "macro",
		symtab.RefBuiltin:          "builtin",
		symtab.RefModulePort:       "module port",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", k, got, want)
		}
	}
}
