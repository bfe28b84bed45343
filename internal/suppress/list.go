package suppress

import (
	"sync"

	"tscan/internal/diag"
)

// List holds the global rules of a session and the local rules of the units
// checked in it. Local rules only apply to diagnostics of their own unit.
type List struct {
	mu     sync.Mutex
	global []entry
	local  map[string][]entry // unit -> rules
}

type entry struct {
	rule Rule
	hits int
}

// NewList returns a List seeded with global rules.
func NewList(global ...Rule) (*List, error) {
	l := &List{local: make(map[string][]entry)}
	for _, r := range global {
		if err := l.AddGlobal(r); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// AddGlobal registers a rule that applies across all units of the session.
func (l *List) AddGlobal(r Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	l.global = append(l.global, entry{rule: r})
	l.mu.Unlock()
	return nil
}

// AddLocal registers a rule scoped to unit.
func (l *List) AddLocal(unit string, r Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	l.local[unit] = append(l.local[unit], entry{rule: r})
	l.mu.Unlock()
	return nil
}

// ClearLocal drops every local rule of unit.
func (l *List) ClearLocal(unit string) {
	l.mu.Lock()
	delete(l.local, unit)
	l.mu.Unlock()
}

// ClearLocals drops local rules of all units.
func (l *List) ClearLocals() {
	l.mu.Lock()
	l.local = make(map[string][]entry)
	l.mu.Unlock()
}

// Match returns the first rule suppressing d. Global rules are consulted first.
func (l *List) Match(d *diag.Diagnostic) (Rule, bool) {
	if l == nil {
		return Rule{}, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.global {
		if l.global[i].rule.Matches(d) {
			l.global[i].hits++
			return l.global[i].rule, true
		}
	}
	local := l.local[d.Unit]
	for i := range local {
		if local[i].rule.Matches(d) {
			local[i].hits++
			return local[i].rule, true
		}
	}
	return Rule{}, false
}

// Global returns a copy of the global rules.
func (l *List) Global() []Rule {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Rule, len(l.global))
	for i := range l.global {
		out[i] = l.global[i].rule
	}
	return out
}

// Unmatched returns global rules that never suppressed anything.
func (l *List) Unmatched() []Rule {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Rule
	for _, e := range l.global {
		if e.hits == 0 {
			out = append(out, e.rule)
		}
	}
	return out
}
