// Package observ measures where a check spends its time.
package observ

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Timer adds up the time of each phase of one unit check: "expand",
// "tokenize", "checker:<name>" and "checker:<name>:simplified". Checker
// phases nest inside the unit's own phases and are left out of the total.
// A nil *Timer records nothing.
type Timer struct {
	order []string
	acc   map[string]*phaseAcc
}

type phaseAcc struct {
	runs    int
	dur     time.Duration
	running time.Time
}

func NewTimer() *Timer {
	return &Timer{acc: make(map[string]*phaseAcc, 8)}
}

// Begin starts a run of phase name. The returned handle goes to End.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	a, ok := t.acc[name]
	if !ok {
		a = &phaseAcc{}
		t.acc[name] = a
		t.order = append(t.order, name)
	}
	a.running = time.Now()
	return slices.Index(t.order, name)
}

// End stops the run started by Begin. Unknown or stopped handles are ignored.
func (t *Timer) End(idx int) {
	if t == nil || idx < 0 || idx >= len(t.order) {
		return
	}
	a := t.acc[t.order[idx]]
	if a.running.IsZero() {
		return
	}
	a.dur += time.Since(a.running)
	a.runs++
	a.running = time.Time{}
}

// Track times a whole function: defer t.Track("expand")().
func (t *Timer) Track(name string) func() {
	idx := t.Begin(name)
	return func() { t.End(idx) }
}

func nested(phase string) bool { return strings.Contains(phase, ":") }

// PhaseReport is one phase of a Report.
type PhaseReport struct {
	Name       string  `json:"name"`
	Runs       int     `json:"runs"`
	DurationMS float64 `json:"duration_ms"`
}

// Report lists phases in the order they first ran.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	var r Report
	if t == nil {
		return r
	}
	var total time.Duration
	for _, name := range t.order {
		a := t.acc[name]
		if !nested(name) {
			total += a.dur
		}
		r.Phases = append(r.Phases, PhaseReport{Name: name, Runs: a.runs, DurationMS: millis(a.dur)})
	}
	r.TotalMS = millis(total)
	return r
}

// Summary renders the phases slowest first with their share of the total:
//
//	checker:zeroDivision      0.41 ms x2   38.0%
func (t *Timer) Summary() string {
	r := t.Report()
	phases := slices.Clone(r.Phases)
	slices.SortStableFunc(phases, func(a, b PhaseReport) int {
		return cmp.Compare(b.DurationMS, a.DurationMS)
	})
	var sb strings.Builder
	for _, p := range phases {
		fmt.Fprintf(&sb, "%-32s %8.2f ms x%-3d", p.Name, p.DurationMS, p.Runs)
		if r.TotalMS > 0 {
			fmt.Fprintf(&sb, " %5.1f%%", 100*p.DurationMS/r.TotalMS)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "%-32s %8.2f ms", "total", r.TotalMS)
	return sb.String()
}

func millis(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
