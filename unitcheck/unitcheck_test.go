package unitcheck_test

import (
	"strings"
	"testing"

	"github.com/sdlang/xmile-core/diag"
	"github.com/sdlang/xmile-core/resolve"
	"github.com/sdlang/xmile-core/symtab"
	"github.com/sdlang/xmile-core/unitcheck"
	"github.com/sdlang/xmile-core/xmile"
)

func bindResolveUnitcheck(t *testing.T, xmlDoc string) (*xmile.Document, *diag.Collector) {
	t.Helper()
	c := diag.NewCollector()
	doc, err := xmile.Bind(strings.NewReader(xmlDoc), t.Name(), xmile.Config{}, c)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	g := symtab.Build(doc, symtab.Config{}, c)
	rd := resolve.Resolve(doc, g, resolve.Config{MaxEquationDepth: 256}, c)
	unitcheck.Check(doc, rd, unitcheck.Config{}, c)
	return doc, c
}

const consistentUnitsXML = `<?xml version="1.0" encoding="utf-8"?>
<xmile version="1.0" xmlns="http://docs.oasis-open.org/xmile/ns/XMILE/v1.0">
  <header><name>M</name></header>
  <sim_specs time_units="Months"><start>0</start><stop>1</stop><dt>1</dt></sim_specs>
  <model>
    <variables>
      <stock name="Bucket">
        <eqn>0</eqn>
        <units>Liters</units>
        <outflow>Drain</outflow>
      </stock>
      <flow name="Drain">
        <eqn>1</eqn>
        <units>Liters/Months</units>
      </flow>
    </variables>
  </model>
</xmile>`

func TestConsistentFlowUnitsProduceNoDiagnostics(t *testing.T) {
	_, c := bindResolveUnitcheck(t, consistentUnitsXML)
	if c.Len() != 0 {
		for _, d := range c.Diagnostics() {
			t.Logf("diagnostic: %s", d.Report())
		}
		t.Fatalf("expected zero diagnostics, got %d", c.Len())
	}
}

const inconsistentUnitsXML = `<?xml version="1.0" encoding="utf-8"?>
<xmile version="1.0" xmlns="http://docs.oasis-open.org/xmile/ns/XMILE/v1.0">
  <header><name>M</name></header>
  <sim_specs time_units="Months"><start>0</start><stop>1</stop><dt>1</dt></sim_specs>
  <model>
    <variables>
      <stock name="Bucket">
        <eqn>0</eqn>
        <units>Liters</units>
        <outflow>Drain</outflow>
      </stock>
      <flow name="Drain">
        <eqn>1</eqn>
        <units>Gallons</units>
      </flow>
    </variables>
  </model>
</xmile>`

func TestInconsistentFlowUnitsReportUnitInconsistencyWarning(t *testing.T) {
	_, c := bindResolveUnitcheck(t, inconsistentUnitsXML)
	var found *diag.Diagnostic
	for _, d := range c.Diagnostics() {
		if d.Kind == diag.UnitInconsistency {
			d := d
			found = &d
		}
	}
	if found == nil {
		t.Fatal("expected a UnitInconsistency diagnostic, got none")
	}
	if found.Severity != diag.Warning {
		t.Fatalf("expected UnitInconsistency to be a Warning, got %v", found.Severity)
	}
}

const malformedUnitsXML = `<?xml version="1.0" encoding="utf-8"?>
<xmile version="1.0" xmlns="http://docs.oasis-open.org/xmile/ns/XMILE/v1.0">
  <header><name>M</name></header>
  <sim_specs><start>0</start><stop>1</stop><dt>1</dt></sim_specs>
  <model>
    <variables>
      <aux name="Bad"><eqn>1</eqn><units>kg*</units></aux>
    </variables>
  </model>
</xmile>`

func TestMalformedUnitsReportUnitParseError(t *testing.T) {
	_, c := bindResolveUnitcheck(t, malformedUnitsXML)
	found := false
	for _, d := range c.Diagnostics() {
		if d.Kind == diag.UnitParseError {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a UnitParseError diagnostic, got none")
	}
}

const noTimeUnitsXML = `<?xml version="1.0" encoding="utf-8"?>
<xmile version="1.0" xmlns="http://docs.oasis-open.org/xmile/ns/XMILE/v1.0">
  <header><name>M</name></header>
  <sim_specs><start>0</start><stop>1</stop><dt>1</dt></sim_specs>
  <model>
    <variables>
      <stock name="Bucket">
        <eqn>0</eqn>
        <units>Liters</units>
        <outflow>Drain</outflow>
      </stock>
      <flow name="Drain">
        <eqn>1</eqn>
        <units>Gallons</units>
      </flow>
    </variables>
  </model>
</xmile>`

// With no time_units declared, the stock/flow dimensional check is
// skipped entirely rather than comparing against a meaningless
// dimensionless time unit.
func TestNoTimeUnitsSkipsConsistencyCheck(t *testing.T) {
	_, c := bindResolveUnitcheck(t, noTimeUnitsXML)
	for _, d := range c.Diagnostics() {
		if d.Kind == diag.UnitInconsistency {
			t.Fatalf("unexpected UnitInconsistency with no time_units declared: %s", d.Report())
		}
	}
}

const unitTableAliasXML = `<?xml version="1.0" encoding="utf-8"?>
<xmile version="1.0" xmlns="http://docs.oasis-open.org/xmile/ns/XMILE/v1.0">
  <header><name>M</name></header>
  <sim_specs time_units="Months"><start>0</start><stop>1</stop><dt>1</dt></sim_specs>
  <model_units>
    <unit name="Widgets">
      <eqn>Liters/Months</eqn>
      <alias>WidgetRate</alias>
    </unit>
  </model_units>
  <model>
    <variables>
      <stock name="Bucket">
        <eqn>0</eqn>
        <units>Liters</units>
        <outflow>Drain</outflow>
      </stock>
      <flow name="Drain">
        <eqn>1</eqn>
        <units>WidgetRate</units>
      </flow>
    </variables>
  </model>
</xmile>`

// A flow declared in terms of a model_units-table alias that expands
// to the expected dimension should be treated as consistent.
func TestUnitTableAliasExpandsToConsistentDimension(t *testing.T) {
	_, c := bindResolveUnitcheck(t, unitTableAliasXML)
	for _, d := range c.Diagnostics() {
		if d.Kind == diag.UnitInconsistency || d.Kind == diag.UnitParseError {
			t.Fatalf("unexpected diagnostic with alias expansion: %s", d.Report())
		}
	}
}

const modelLocalUnitOverrideXML = `<?xml version="1.0" encoding="utf-8"?>
<xmile version="1.0" xmlns="http://docs.oasis-open.org/xmile/ns/XMILE/v1.0">
  <header><name>M</name></header>
  <sim_specs time_units="Months"><start>0</start><stop>1</stop><dt>1</dt></sim_specs>
  <model>
    <model_units>
      <unit name="Widgets"><eqn>Liters/Months</eqn></unit>
    </model_units>
    <variables>
      <stock name="Bucket">
        <eqn>0</eqn>
        <units>Liters</units>
        <outflow>Drain</outflow>
      </stock>
      <flow name="Drain">
        <eqn>1</eqn>
        <units>Widgets</units>
      </flow>
    </variables>
  </model>
</xmile>`

// A model-local <model_units> table (spec section 3's "optional local
// dimension/unit overrides") must be honored when expanding that
// model's own variables' declared units.
func TestModelLocalUnitTableIsHonored(t *testing.T) {
	_, c := bindResolveUnitcheck(t, modelLocalUnitOverrideXML)
	for _, d := range c.Diagnostics() {
		t.Logf("diagnostic: %s", d.Report())
	}
	if c.Len() != 0 {
		t.Fatalf("expected zero diagnostics with model-local unit table honored, got %d", c.Len())
	}
}
