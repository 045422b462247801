// Package config holds the pipeline-wide options spec section 6
// tabulates, and loads them from a TOML file.
package config

import (
	"github.com/BurntSushi/toml"
)

// Config aggregates every option spec section 6's table lists. The
// zero value is the documented default for every field except
// MaxEquationDepth, which callers should set via Default before use.
type Config struct {
	// CaseSensitive disables case folding in the identifier
	// canonicalizer (case_sensitive, default false).
	CaseSensitive bool `toml:"case_sensitive"`

	// StrictUnknownElements treats unknown XMILE-namespaced elements
	// as errors rather than warnings; elements in other namespaces are
	// passed through either way (strict_unknown_elements, default
	// false).
	StrictUnknownElements bool `toml:"strict_unknown_elements"`

	// AllowBuiltinShadowing permits user variables to shadow builtin
	// function names (allow_builtin_shadowing, default false).
	AllowBuiltinShadowing bool `toml:"allow_builtin_shadowing"`

	// MaxEquationDepth bounds the equation parser's recursion depth
	// (max_equation_depth, default 256).
	MaxEquationDepth int `toml:"max_equation_depth"`

	// Parallel gates the bounded worker-pool equation parsing and
	// resolution spec section 5 describes (parallel, default false).
	// Diagnostics are always re-sorted into deterministic document
	// order regardless of this setting.
	Parallel bool `toml:"parallel"`
}

// Default returns the documented zero-config defaults (spec section
// 6).
func Default() Config {
	return Config{MaxEquationDepth: 256}
}

// Load reads and parses a TOML configuration file at path, starting
// from Default and overwriting only the keys present in the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
