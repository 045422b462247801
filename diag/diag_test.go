package diag_test

import (
	"strings"
	"testing"

	"github.com/sdlang/xmile-core/diag"
)

func TestCollectorHasErrorsDistinguishesSeverity(t *testing.T) {
	c := diag.NewCollector()
	c.Addf(diag.ShapeMismatch, diag.Warning, diag.Span{Path: "model[M]"}, "just a warning")
	if c.HasErrors() {
		t.Fatal("expected HasErrors() = false with only a Warning diagnostic")
	}
	c.Addf(diag.UnresolvedIdentifier, diag.Error, diag.Span{Path: "model[M]"}, "boom")
	if !c.HasErrors() {
		t.Fatal("expected HasErrors() = true once an Error diagnostic is added")
	}
}

func TestDiagnosticsSortedByFileThenPathThenOffsetThenKind(t *testing.T) {
	c := diag.NewCollector()
	c.Add(diag.Diagnostic{Kind: diag.ShapeMismatch, Primary: diag.Span{File: "b.xmile", Offset: 5}})
	c.Add(diag.Diagnostic{Kind: diag.ShapeMismatch, Primary: diag.Span{File: "a.xmile", Offset: 10}})
	c.Add(diag.Diagnostic{Kind: diag.ShapeMismatch, Primary: diag.Span{File: "a.xmile", Offset: 1}})

	out := c.Diagnostics()
	if out[0].Primary.File != "a.xmile" || out[0].Primary.Offset != 1 {
		t.Fatalf("out[0] = %+v, want a.xmile offset 1 first", out[0].Primary)
	}
	if out[1].Primary.File != "a.xmile" || out[1].Primary.Offset != 10 {
		t.Fatalf("out[1] = %+v, want a.xmile offset 10 second", out[1].Primary)
	}
	if out[2].Primary.File != "b.xmile" {
		t.Fatalf("out[2] = %+v, want b.xmile last", out[2].Primary)
	}
}

func TestMergeAppendsAndTolerateNil(t *testing.T) {
	c := diag.NewCollector()
	c.Addf(diag.UnresolvedIdentifier, diag.Error, diag.Span{}, "from c")
	other := diag.NewCollector()
	other.Addf(diag.CyclicDependency, diag.Error, diag.Span{}, "from other")

	c.Merge(other)
	c.Merge(nil)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
}

func TestReportIncludesRelatedLocations(t *testing.T) {
	d := diag.Diagnostic{
		Kind:    diag.FlowOwnedTwice,
		Message: "flow Xfer is owned by more than one stock",
		Primary: diag.Span{Path: "model[M]/stock[A]"},
		Related: []diag.Span{{Path: "model[M]/stock[B]"}},
	}
	report := d.Report()
	for _, sub := range []string{"flow Xfer is owned by more than one stock", "see also", "stock[B]"} {
		if !strings.Contains(report, sub) {
			t.Fatalf("Report() = %q, missing substring %q", report, sub)
		}
	}
}
