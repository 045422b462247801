package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sdlang/xmile-core/config"
)

func TestDefault(t *testing.T) {
	c := config.Default()
	if c.MaxEquationDepth != 256 {
		t.Fatalf("MaxEquationDepth = %d, want 256", c.MaxEquationDepth)
	}
	if c.CaseSensitive || c.StrictUnknownElements || c.AllowBuiltinShadowing {
		t.Fatalf("expected all boolean options to default false, got %+v", c)
	}
}

func TestLoadOverridesOnlyPresentKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xmilelint.toml")
	const body = `
case_sensitive = true
max_equation_depth = 64
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	c, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !c.CaseSensitive {
		t.Fatal("expected CaseSensitive = true")
	}
	if c.MaxEquationDepth != 64 {
		t.Fatalf("MaxEquationDepth = %d, want 64", c.MaxEquationDepth)
	}
	if c.StrictUnknownElements || c.AllowBuiltinShadowing {
		t.Fatalf("expected unset options to keep defaults, got %+v", c)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected an error for a missing config file, got none")
	}
}
