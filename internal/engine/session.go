package engine

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"tscan/internal/depgraph"
	"tscan/internal/diag"
	"tscan/internal/report"
	"tscan/internal/sink"
	"tscan/internal/source"
	"tscan/internal/suppress"
	"tscan/internal/unused"
)

// Session is the state one engine accumulates between New and Close.
type Session struct {
	ID      string
	Started time.Time

	Files  *source.FileSet
	Sink   *sink.Sink
	Graph  *depgraph.Graph
	Unused *unused.Analyzer

	terminated atomic.Bool
	units      atomic.Int64

	mu       sync.Mutex
	checked  []string // units in check order
	lastUnit string
}

func newSession(rules *suppress.List, rep report.Reporter) *Session {
	return &Session{
		ID:      uuid.NewString(),
		Started: time.Now(),
		Files:   source.NewFileSet(),
		Sink:    sink.New(rules, rep),
		Graph:   depgraph.New(),
		Unused:  unused.NewAnalyzer(),
	}
}

// Terminated reports whether Terminate was called.
func (s *Session) Terminated() bool { return s.terminated.Load() }

// Units is the number of units checked so far.
func (s *Session) Units() int64 { return s.units.Load() }

// Checked returns the checked units in order.
func (s *Session) Checked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.checked...)
}

func (s *Session) markChecked(unit string) {
	s.units.Add(1)
	s.mu.Lock()
	s.checked = append(s.checked, unit)
	s.lastUnit = unit
	s.mu.Unlock()
}

func (s *Session) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUnit
}

// Merge folds other into s with union semantics: fingerprints, counters,
// pending diagnostics, dependency edges and cross-unit facts. The last unit
// checked by other becomes the last unit of s. Merging the same session twice
// changes nothing.
func (s *Session) Merge(other *Session) error {
	if other == nil || other == s {
		return nil
	}
	s.Sink.Merge(other.Sink)
	s.Graph.Merge(other.Graph)
	if err := s.Unused.Merge(other.Unused); err != nil {
		return err
	}
	incoming := other.Checked()
	last := other.last()
	s.mu.Lock()
	defer s.mu.Unlock()
	if last != "" {
		s.lastUnit = last
	}
	for _, u := range incoming {
		if !slices.Contains(s.checked, u) {
			s.checked = append(s.checked, u)
			s.units.Add(1)
		}
	}
	return nil
}

// Diagnostics returns every recorded diagnostic, suppressed ones excluded,
// in a stable order.
func (s *Session) Diagnostics() []diag.Diagnostic {
	all := s.Sink.All()
	diag.SortDiagnostics(all)
	return all
}
