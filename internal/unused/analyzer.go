package unused

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"tscan/internal/diag"
	"tscan/internal/suppress"
)

// ErrAlreadyFinalized is returned by Finalize when called a second time, and by
// AddUnit once the pass has been finalized. Reset starts over.
var ErrAlreadyFinalized = errors.New("cross-unit analysis already finalized")

// DefaultEntryPoints are exempt when no entry points are configured.
var DefaultEntryPoints = []string{"main"}

// Analyzer accumulates facts across units. Safe for concurrent use.
type Analyzer struct {
	mu         sync.Mutex
	defs       map[string][]Function
	referenced map[string]bool
	units      map[string]bool
	suppress   map[string][]suppress.Rule // unit -> inline rules for unusedFunction
	finalized  bool
}

func NewAnalyzer() *Analyzer {
	a := &Analyzer{}
	a.Reset()
	return a
}

// Reset drops every fact and re-opens the pass.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.defs = make(map[string][]Function)
	a.referenced = make(map[string]bool)
	a.units = make(map[string]bool)
	a.suppress = make(map[string][]suppress.Rule)
	a.finalized = false
}

// AddUnit records the facts of one unit.
func (a *Analyzer) AddUnit(f Facts) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.finalized {
		return fmt.Errorf("%w: facts of %s rejected", ErrAlreadyFinalized, f.Unit)
	}
	a.units[f.Unit] = true
	for _, d := range f.Defs {
		if !slices.ContainsFunc(a.defs[d.Name], func(x Function) bool { return x.Loc == d.Loc }) {
			a.defs[d.Name] = append(a.defs[d.Name], d)
		}
	}
	for _, r := range f.Refs {
		a.referenced[r] = true
	}
	for _, r := range f.Suppress {
		if !slices.Contains(a.suppress[f.Unit], r) {
			a.suppress[f.Unit] = append(a.suppress[f.Unit], r)
		}
	}
	return nil
}

// Suppressions returns the inline rules for unusedFunction kept per unit.
func (a *Analyzer) Suppressions() map[string][]suppress.Rule {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string][]suppress.Rule, len(a.suppress))
	for u, rules := range a.suppress {
		out[u] = slices.Clone(rules)
	}
	return out
}

// Units returns how many distinct units contributed facts.
func (a *Analyzer) Units() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.units)
}

// Merge adds the facts of another analyzer (a shard of the same session).
func (a *Analyzer) Merge(other *Analyzer) error {
	if other == nil || other == a {
		return nil
	}
	other.mu.Lock()
	var facts []Facts
	for _, fns := range other.defs {
		facts = append(facts, Facts{Unit: fns[0].Loc.File, Defs: slices.Clone(fns)})
	}
	refs := make([]string, 0, len(other.referenced))
	for r := range other.referenced {
		refs = append(refs, r)
	}
	units := make([]string, 0, len(other.units))
	for u := range other.units {
		units = append(units, u)
	}
	for u, rules := range other.suppress {
		facts = append(facts, Facts{Unit: u, Suppress: slices.Clone(rules)})
	}
	other.mu.Unlock()

	for _, f := range facts {
		if err := a.AddUnit(f); err != nil {
			return err
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range refs {
		a.referenced[r] = true
	}
	for _, u := range units {
		a.units[u] = true
	}
	return nil
}

// Finalize reports every defined function that no unit references and whose
// name matches none of the entry-point patterns, sorted by location. The
// first call is terminal: a second call returns ErrAlreadyFinalized.
func (a *Analyzer) Finalize(entryPoints []string) ([]diag.Diagnostic, error) {
	if len(entryPoints) == 0 {
		entryPoints = DefaultEntryPoints
	}
	for _, p := range entryPoints {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid entry-point pattern %q", p)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.finalized {
		return nil, ErrAlreadyFinalized
	}
	a.finalized = true

	var out []diag.Diagnostic
	for name, fns := range a.defs {
		if a.referenced[name] || isEntryPoint(name, entryPoints) {
			continue
		}
		for _, fn := range fns {
			d := diag.New(diag.SevStyle, diag.CoreUnusedFunction, fn.Loc.File, fn.Loc,
				fmt.Sprintf("The function '%s' is never used.", fn.Name))
			d.Checker = "unusedFunction"
			d.Notes = []diag.Note{{Loc: fn.Loc, Msg: "defined as " + fn.Signature}}
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(x, y diag.Diagnostic) int {
		px, py := x.Primary(), y.Primary()
		if c := strings.Compare(px.File, py.File); c != 0 {
			return c
		}
		if px.Line != py.Line {
			if px.Line < py.Line {
				return -1
			}
			return 1
		}
		return strings.Compare(x.Message, y.Message)
	})
	return out, nil
}

func isEntryPoint(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
