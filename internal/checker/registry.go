package checker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"tscan/internal/diag"
	"tscan/internal/observ"
	"tscan/internal/token"
	"tscan/internal/trace"
)

var (
	ErrDuplicate = errors.New("duplicate checker name")
	ErrUnknown   = errors.New("no checker matches")
)

// Registry keeps checkers in registration order. It is built once and reused
// for every unit; Run does not mutate it.
type Registry struct {
	checkers []Checker
	byName   map[string]int
}

func NewRegistry(checkers ...Checker) (*Registry, error) {
	r := &Registry{byName: make(map[string]int, len(checkers))}
	for _, c := range checkers {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends c.
func (r *Registry) Register(c Checker) error {
	name := c.Name()
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	r.byName[name] = len(r.checkers)
	r.checkers = append(r.checkers, c)
	return nil
}

func (r *Registry) Len() int { return len(r.checkers) }

// Names returns checker names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.checkers))
	for i, c := range r.checkers {
		out[i] = c.Name()
	}
	return out
}

// Descriptions lists what every checker can report, in registration order.
func (r *Registry) Descriptions() []Description {
	var out []Description
	for _, c := range r.checkers {
		out = append(out, c.Descriptions()...)
	}
	return out
}

// Select returns a registry with the checkers whose names match one of the
// doublestar patterns, keeping registration order. Empty patterns select all.
func (r *Registry) Select(patterns []string) (*Registry, error) {
	if len(patterns) == 0 {
		return r, nil
	}
	out := &Registry{byName: make(map[string]int)}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid checker pattern %q", p)
		}
	}
	used := make([]bool, len(patterns))
	for _, c := range r.checkers {
		for i, p := range patterns {
			if ok, _ := doublestar.Match(p, c.Name()); ok {
				used[i] = true
				if _, dup := out.byName[c.Name()]; !dup {
					out.byName[c.Name()] = len(out.checkers)
					out.checkers = append(out.checkers, c)
				}
			}
		}
	}
	var missing []string
	for i, ok := range used {
		if !ok {
			missing = append(missing, patterns[i])
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknown, strings.Join(missing, ", "))
	}
	return out, nil
}

// Stats summarises one Run.
type Stats struct {
	Ran     int
	Faulted []string // names of checkers that failed, at most once each
	Reports int
}

// Run dispatches s to every checker, then s.Simplify() to every
// SimplifiedRunner. Diagnostics are stamped with the checker name, unit and
// configuration and passed to out. A checker that panics or reports a Fault
// produces exactly one internalCheckerError diagnostic and is not run again on
// this stream; the remaining checkers run normally.
func (r *Registry) Run(ctx context.Context, s *token.Stream, out diag.Reporter, timer *observ.Timer) Stats {
	var stats Stats
	failed := make([]bool, len(r.checkers))
	var simplified *token.Stream

	for pass := range 2 {
		for i, c := range r.checkers {
			if failed[i] {
				continue
			}
			var run func(context.Context, *token.Stream, Reporter)
			input := s
			if pass == 0 {
				run = c.RunOnTokens
			} else {
				sr, ok := c.(SimplifiedRunner)
				if !ok {
					continue
				}
				if simplified == nil {
					simplified = s.Simplify()
				}
				run, input = sr.RunOnSimplifiedTokens, simplified
			}

			rep := &stamped{out: out, checker: c.Name(), unit: s.Unit, config: s.Config}
			err := r.invoke(ctx, c.Name(), pass, input, run, rep, timer)
			stats.Ran++
			stats.Reports += rep.count
			if err == nil {
				err = rep.fault
			}
			if err != nil {
				failed[i] = true
				stats.Faulted = append(stats.Faulted, c.Name())
				out.Report(internalError(c.Name(), s.Unit, s.Config, err))
			}
		}
	}
	return stats
}

// PanicError wraps a value recovered from a checker.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

func (r *Registry) invoke(ctx context.Context, name string, pass int, s *token.Stream,
	run func(context.Context, *token.Stream, Reporter), rep *stamped, timer *observ.Timer,
) (err error) {
	phase := "checker:" + name
	if pass == 1 {
		phase += ":simplified"
	}
	ctx, span := trace.Start(ctx, trace.ScopeChecker, phase)
	idx := timer.Begin(phase)
	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{Value: rec, Stack: debug.Stack()}
		}
		timer.End(idx)
		detail := ""
		if err != nil {
			detail = err.Error()
		}
		span.End(detail)
	}()
	run(ctx, s, rep)
	return nil
}

func internalError(checker, unit, config string, cause error) diag.Diagnostic {
	cfg := config
	if cfg == "" {
		cfg = "default"
	}
	d := diag.NewError(diag.CoreInternalChecker, unit, diag.Location{File: unit},
		fmt.Sprintf("checker %s failed on %s [%s]: %v", checker, unit, cfg, cause))
	d.Checker = checker
	d.Configs = []string{config}
	return d
}

// stamped fills in the fields a checker does not have to know about.
type stamped struct {
	out     diag.Reporter
	checker string
	unit    string
	config  string
	count   int
	fault   error
}

func (s *stamped) Report(d diag.Diagnostic) {
	d.Checker = s.checker
	if d.Unit == "" {
		d.Unit = s.unit
	}
	if len(d.Locations) == 0 {
		d.Locations = []diag.Location{{File: s.unit}}
	}
	d.Configs = []string{s.config}
	s.count++
	s.out.Report(d)
}

func (s *stamped) Fault(err error) {
	if err == nil || s.fault != nil {
		return
	}
	s.fault = err
}
