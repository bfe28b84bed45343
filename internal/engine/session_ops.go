package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"tscan/internal/config"
	"tscan/internal/depgraph"
	"tscan/internal/diag"
	"tscan/internal/report"
	"tscan/internal/trace"
	"tscan/internal/unused"
)

// Summary of CheckAll.
type Summary struct {
	Count   int
	Checked int
	Status  Status // StatusPartial when stopped early
}

// CheckAll checks units in order and reports status between units. It stops
// at the first unit boundary after Terminate or cancellation.
func (e *Engine) CheckAll(ctx context.Context, units []Unit) Summary {
	sizes := make([]int64, len(units))
	var total, done int64
	for i, u := range units {
		sizes[i] = u.Size()
		total += sizes[i]
	}

	var sum Summary
	for i, u := range units {
		e.reporter.ReportStatus(i, len(units), done, total)
		if e.stopping(ctx) {
			sum.Status = StatusPartial
			break
		}
		res := e.Check(ctx, u)
		sum.Count += res.Count
		if res.Status == StatusPartial {
			sum.Status = StatusPartial
			break
		}
		sum.Checked++
		done += sizes[i]
	}
	if sum.Status != StatusPartial {
		e.reporter.ReportStatus(len(units), len(units), done, total)
	}
	return sum
}

// CheckFunctionUsage runs the cross-unit pass over every unit seen so far and
// returns the number of new diagnostics. The pass is terminal: calling it again
// records one alreadyFinalized diagnostic and returns 0.
func (e *Engine) CheckFunctionUsage(ctx context.Context) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, span := trace.Start(e.within(ctx), trace.ScopeUnit, "unusedFunction")
	count := 0
	defer func() { span.End(fmt.Sprintf("count=%d", count)) }()

	if err := e.usable(); err != nil {
		e.halt("", diag.CoreConfiguration, fmt.Sprintf("cannot run cross-unit analysis: %v", err))
		return 0
	}
	if !e.settings.Unused.Enabled {
		return 0
	}

	e.reporter.ReportProgress("", report.StageUnused, 0)
	found, err := e.session.Unused.Finalize(e.settings.Unused.EntryPoints)
	switch {
	case errors.Is(err, unused.ErrAlreadyFinalized):
		e.session.Sink.Record(diag.New(diag.SevWarning, diag.CoreAlreadyFinalized, "", diag.Location{},
			"cross-unit analysis was already run in this session"))
		e.session.Sink.Flush()
		return 0
	case err != nil:
		e.halt("", diag.CoreConfiguration, err.Error())
		return 0
	}
	// локальные правила юнитов уже сброшены, маркеры unusedFunction
	// хранит сам анализатор
	rules := e.session.Sink.Rules()
	for unit, kept := range e.session.Unused.Suppressions() {
		for _, r := range kept {
			_ = rules.AddLocal(unit, r)
		}
	}
	for _, d := range found {
		e.session.Sink.Record(d)
	}
	count = len(e.session.Sink.Flush())
	trace.Point(ctx, trace.ScopeUnit, "unused.done", "", map[string]string{"units": fmt.Sprint(e.session.Unused.Units())})
	e.reporter.ReportProgress("", report.StageDone, 100)
	return count
}

// Dependencies returns the transitive dependencies of the last checked unit
// or, with dependency-scope "session", of every unit checked so far.
func (e *Engine) Dependencies() []string {
	g := e.session.Graph
	if e.settings == nil || e.settings.Check.DependencyScope != config.ScopeSession {
		last := e.session.last()
		if last == "" {
			return nil
		}
		return g.Transitive(last)
	}
	var out []string
	for _, u := range e.session.Checked() {
		out = append(out, g.Transitive(u)...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// FileDependTable exports a copy of the dependency table.
func (e *Engine) FileDependTable() depgraph.Table {
	return e.session.Graph.ExportTable()
}

// SetFileDependTable hands t over to the engine, which owns it from now on:
// the caller must not use t afterwards. The replacement waits for any check
// in flight.
func (e *Engine) SetFileDependTable(t depgraph.Table) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Graph.ReplaceTable(t)
}
