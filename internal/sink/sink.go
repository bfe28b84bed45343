// Package sink collects the diagnostics of a session: one copy per
// fingerprint, suppression rules applied, flushed unit by unit.
package sink

import (
	"slices"
	"sync"

	"tscan/internal/diag"
	"tscan/internal/report"
	"tscan/internal/suppress"
)

// Outcome is what Record did with a diagnostic.
type Outcome uint8

const (
	Emitted Outcome = iota + 1
	Duplicate
	Suppressed
)

func (o Outcome) String() string {
	switch o {
	case Emitted:
		return "emitted"
	case Duplicate:
		return "duplicate"
	case Suppressed:
		return "suppressed"
	default:
		return "unknown"
	}
}

type entry struct {
	d          diag.Diagnostic
	suppressed bool
	flushed    bool
}

// Sink is safe for concurrent use.
type Sink struct {
	mu       sync.Mutex
	seen     map[diag.Fingerprint]int // fingerprint -> index in entries
	entries  []entry
	pending  []int
	rules    *suppress.List
	reporter report.Reporter

	emitted    int
	suppressed int
	errors     int
}

// New returns an empty sink. rules may be nil (nothing suppressed); reporter
// may be nil.
func New(rules *suppress.List, reporter report.Reporter) *Sink {
	if reporter == nil {
		reporter = report.Nop{}
	}
	return &Sink{
		seen:     make(map[diag.Fingerprint]int),
		rules:    rules,
		reporter: reporter,
	}
}

// Rules returns the suppression list consulted by Record.
func (s *Sink) Rules() *suppress.List { return s.rules }

// Record stores d unless its fingerprint is already known or a rule suppresses
// it. A duplicate only contributes its configuration names to the stored copy.
func (s *Sink) Record(d diag.Diagnostic) Outcome {
	fp := d.Fingerprint()

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.seen[fp]; ok {
		s.entries[idx].d.AddConfigs(d.Configs...)
		return Duplicate
	}

	e := entry{d: d.Clone()}
	if _, hit := s.rules.Match(&e.d); hit {
		e.suppressed = true
		s.suppressed++
	} else {
		s.emitted++
		if e.d.Severity == diag.SevError {
			s.errors++
		}
		s.pending = append(s.pending, len(s.entries))
	}
	s.seen[fp] = len(s.entries)
	s.entries = append(s.entries, e)

	if e.suppressed {
		return Suppressed
	}
	return Emitted
}

// Flush returns the diagnostics emitted since the previous flush, in record
// order, forwards each of them to the reporter and drops all unit-local
// suppression rules. The fingerprint set is kept.
func (s *Sink) Flush() []diag.Diagnostic {
	s.mu.Lock()
	out := make([]diag.Diagnostic, 0, len(s.pending))
	for _, idx := range s.pending {
		s.entries[idx].flushed = true
		out = append(out, s.entries[idx].d.Clone())
	}
	s.pending = s.pending[:0]
	s.mu.Unlock()

	if s.rules != nil {
		s.rules.ClearLocals()
	}
	for _, d := range out {
		s.reporter.ReportErr(d)
	}
	return out
}

// Emitted is the number of distinct diagnostics that passed suppression.
func (s *Sink) Emitted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emitted
}

// Suppressed is the number of distinct diagnostics a rule suppressed.
func (s *Sink) Suppressed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suppressed
}

// Errors is the number of emitted diagnostics of error severity. It only grows.
func (s *Sink) Errors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors
}

// Pending reports how many emitted diagnostics wait for Flush.
func (s *Sink) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Seen reports whether a diagnostic with fingerprint fp was recorded.
func (s *Sink) Seen(fp diag.Fingerprint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[fp]
	return ok
}

// Fingerprints returns the recorded fingerprints, sorted.
func (s *Sink) Fingerprints() []diag.Fingerprint {
	s.mu.Lock()
	out := make([]diag.Fingerprint, 0, len(s.seen))
	for fp := range s.seen {
		out = append(out, fp)
	}
	s.mu.Unlock()
	slices.Sort(out)
	return out
}

// All returns every emitted diagnostic of the session in record order.
func (s *Sink) All() []diag.Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []diag.Diagnostic
	for _, e := range s.entries {
		if !e.suppressed {
			out = append(out, e.d.Clone())
		}
	}
	return out
}
