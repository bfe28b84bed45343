// Package config loads analyzer settings from tscan.toml.
//
// The file is optional. Command-line flags override file values; the engine
// refuses to check anything with settings that fail Validate.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"tscan/internal/suppress"
)

// FileName is the settings file looked up by Find.
const FileName = "tscan.toml"

// DefaultMaxConfigs caps configuration expansion unless Force is set.
const DefaultMaxConfigs = 12

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid settings")

// Dependency scopes for Engine.Dependencies.
const (
	ScopeUnit    = "unit"
	ScopeSession = "session"
)

// Settings is the full analyzer configuration.
type Settings struct {
	Check        CheckSettings        `toml:"check"`
	Preprocessor PreprocessorSettings `toml:"preprocessor"`
	Suppress     []SuppressEntry      `toml:"suppress"`
	Unused       UnusedSettings       `toml:"unused"`

	// Path of the file the settings came from, empty for defaults.
	Path string `toml:"-"`
}

// CheckSettings drive the per-unit pipeline.
type CheckSettings struct {
	MaxConfigs      int      `toml:"max-configs"`
	Force           bool     `toml:"force"`
	Enabled         []string `toml:"enabled"`
	Timings         bool     `toml:"timings"`
	DependencyScope string   `toml:"dependency-scope"`
	Jobs            int      `toml:"jobs"`
	// GlobalSuppressions off: [[suppress]] tables and --suppress are ignored,
	// inline markers still apply.
	GlobalSuppressions bool `toml:"use-global-suppressions"`
}

// PreprocessorSettings are user defines applied to every configuration.
type PreprocessorSettings struct {
	Defines []string `toml:"defines"`
	Undefs  []string `toml:"undefs"`
}

// SuppressEntry is one [[suppress]] table.
type SuppressEntry struct {
	ID   string `toml:"id"`
	File string `toml:"file"`
	Line uint32 `toml:"line"`
}

// UnusedSettings configure the cross-unit pass.
type UnusedSettings struct {
	Enabled     bool     `toml:"enabled"`
	EntryPoints []string `toml:"entry-points"`
}

// Default returns settings usable without any file.
func Default() Settings {
	return Settings{
		Check: CheckSettings{
			MaxConfigs:         DefaultMaxConfigs,
			DependencyScope:    ScopeUnit,
			GlobalSuppressions: true,
		},
		Unused: UnusedSettings{
			Enabled:     true,
			EntryPoints: []string{"main"},
		},
	}
}

// Validate reports the first problem as an ErrInvalid-wrapped error.
func (s *Settings) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: settings not configured", ErrInvalid)
	}
	if s.Check.MaxConfigs < 1 {
		return fmt.Errorf("%w: check.max-configs must be positive, got %d", ErrInvalid, s.Check.MaxConfigs)
	}
	if s.Check.Jobs < 0 {
		return fmt.Errorf("%w: check.jobs must not be negative, got %d", ErrInvalid, s.Check.Jobs)
	}
	switch s.Check.DependencyScope {
	case ScopeUnit, ScopeSession:
	default:
		return fmt.Errorf("%w: check.dependency-scope must be %q or %q, got %q",
			ErrInvalid, ScopeUnit, ScopeSession, s.Check.DependencyScope)
	}
	for _, p := range s.Check.Enabled {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: check.enabled pattern %q", ErrInvalid, p)
		}
	}
	for _, name := range slices.Concat(s.Preprocessor.Defines, s.Preprocessor.Undefs) {
		if !isMacroName(defineName(name)) {
			return fmt.Errorf("%w: bad macro name %q", ErrInvalid, name)
		}
	}
	for i, e := range s.Suppress {
		if err := e.Rule().Validate(); err != nil {
			return fmt.Errorf("%w: suppress[%d]: %w", ErrInvalid, i, err)
		}
	}
	for _, p := range s.Unused.EntryPoints {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: unused.entry-points pattern %q", ErrInvalid, p)
		}
	}
	return nil
}

// Rule converts the table into a suppression rule.
func (e SuppressEntry) Rule() suppress.Rule {
	return suppress.Rule{ID: strings.TrimSpace(e.ID), File: e.File, Line: e.Line}
}

// Rules returns the global suppressions.
func (s *Settings) Rules() []suppress.Rule {
	out := make([]suppress.Rule, 0, len(s.Suppress))
	for _, e := range s.Suppress {
		out = append(out, e.Rule())
	}
	return out
}

// DefineNames returns the macro names of Preprocessor.Defines ("A=1" -> "A").
func (s *Settings) DefineNames() []string {
	out := make([]string, 0, len(s.Preprocessor.Defines))
	for _, d := range s.Preprocessor.Defines {
		out = append(out, defineName(d))
	}
	return out
}

func defineName(d string) string {
	name, _, _ := strings.Cut(strings.TrimSpace(d), "=")
	return name
}

func isMacroName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
