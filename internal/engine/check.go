package engine

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"

	"tscan/internal/diag"
	"tscan/internal/lexer"
	"tscan/internal/observ"
	"tscan/internal/report"
	"tscan/internal/source"
	"tscan/internal/token"
	"tscan/internal/trace"
	"tscan/internal/unused"
)

// Unit is one source unit. Content, when set, is authoritative and Path only
// labels diagnostics; otherwise Path is read from disk.
type Unit struct {
	Path    string
	Content *string
}

// Size is the byte size used for status reports: the content length or the
// file size on disk, 0 when unknown.
func (u Unit) Size() int64 {
	if u.Content != nil {
		return int64(len(*u.Content))
	}
	if fi, err := os.Stat(u.Path); err == nil {
		return fi.Size()
	}
	return 0
}

// Configuration is one expanded build configuration. Aliases are later
// configurations whose expanded text is byte-identical; they are not analysed
// again but share every diagnostic of this one.
type Configuration struct {
	Name    string
	Text    []byte
	Aliases []string
}

// Status tells how far a Check got.
type Status uint8

const (
	// StatusComplete: every configuration was analysed.
	StatusComplete Status = iota
	// StatusPartial: Terminate or context cancellation stopped the unit at a
	// configuration boundary.
	StatusPartial
	// StatusHalted: the unit could not be analysed at all.
	StatusHalted
)

func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusPartial:
		return "partial"
	case StatusHalted:
		return "halted"
	default:
		return "status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Result of one Check. Count is the number of new diagnostics the unit
// contributed to the session.
type Result struct {
	Count   int
	Status  Status
	Configs int
}

// CheckPath checks the file at path.
func (e *Engine) CheckPath(ctx context.Context, path string) Result {
	return e.Check(ctx, Unit{Path: path})
}

// CheckContent checks content, labelled as path.
func (e *Engine) CheckContent(ctx context.Context, path, content string) Result {
	return e.Check(ctx, Unit{Path: path, Content: &content})
}

// Check runs the full pipeline on one unit. Problems with the unit itself
// (settings, unreadable file, unbalanced conditionals) become diagnostics and
// a StatusHalted result, never a Go error.
func (e *Engine) Check(ctx context.Context, u Unit) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.run(ctx, u, true)
}

// AnalyseFile feeds the unit into the cross-unit pass and the dependency graph
// without running any checker.
func (e *Engine) AnalyseFile(ctx context.Context, u Unit) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.run(ctx, u, false)
}

// stopping reports whether Terminate was called or ctx is done.
func (e *Engine) stopping(ctx context.Context) bool {
	return e.session.Terminated() || ctx.Err() != nil
}

func (e *Engine) run(ctx context.Context, u Unit, withCheckers bool) (res Result) {
	unit := source.NormalizePath(u.Path)
	ctx, span := trace.Start(e.within(ctx), trace.ScopeUnit, unit)
	defer func() {
		span.WithExtra("status", res.Status.String()).
			End(fmt.Sprintf("count=%d configs=%d", res.Count, res.Configs))
	}()

	if err := e.usable(); err != nil {
		e.halt(unit, diag.CoreConfiguration, fmt.Sprintf("cannot check %s: %v", unit, err))
		return Result{Status: StatusHalted}
	}
	if e.stopping(ctx) {
		return Result{Status: StatusPartial}
	}

	text, err := e.load(u, unit)
	if err != nil {
		e.halt(unit, diag.CoreFileAccess, fmt.Sprintf("could not read %s: %v", unit, err))
		return Result{Status: StatusHalted}
	}

	var timer *observ.Timer
	if e.settings.Check.Timings {
		timer = observ.NewTimer()
	}

	e.reporter.ReportProgress(unit, report.StageExpand, 0)
	configs, err := e.configurations(ctx, unit, text, timer)
	if err != nil {
		e.halt(unit, diag.CoreSyntax, fmt.Sprintf("cannot expand %s: %v", unit, err))
		return Result{Status: StatusHalted}
	}

	facts := unused.Facts{Unit: unit}
	var includes []string
	for i, cfg := range configs {
		if i > 0 && e.stopping(ctx) {
			res.Status = StatusPartial
			break
		}
		e.reporter.ReportProgress(unit, report.StageCheck, i*100/len(configs))
		e.reporter.ReportOut(fmt.Sprintf("Checking %s: %s...", unit, configLabel(cfg.Name)))

		stream, found := e.runConfig(ctx, unit, cfg, timer, withCheckers)
		// конфигурация закоммичена целиком или не закоммичена вовсе
		for _, d := range found {
			d.AddConfigs(cfg.Aliases...)
			e.session.Sink.Record(d)
		}
		if stream != nil {
			facts.Merge(unused.Collect(stream))
			includes = append(includes, unitIncludes(unit, stream)...)
		}
		res.Configs++
	}

	e.session.Graph.AddEdges(unit, includes...)
	if e.settings.Unused.Enabled {
		e.reporter.ReportProgress(unit, report.StageUnused, 100)
		if err := e.session.Unused.AddUnit(facts); err != nil {
			e.session.Sink.Record(diag.New(diag.SevWarning, diag.CoreAlreadyFinalized, unit,
				diag.Location{File: unit}, err.Error()))
		}
	}
	if withCheckers {
		e.session.markChecked(unit)
	}
	res.Count = len(e.session.Sink.Flush())
	if timer != nil {
		d := diag.New(diag.SevInfo, diag.ObsTimings, unit, diag.Location{File: unit}, timer.Summary())
		e.reporter.ReportInfo(d)
	}
	e.reporter.ReportProgress(unit, report.StageDone, 100)
	return res
}

// halt records a unit-level failure and flushes it to the reporter.
func (e *Engine) halt(unit string, code diag.Code, msg string) {
	e.session.Sink.Record(diag.New(coreSeverity[code], code, unit, diag.Location{File: unit}, msg))
	e.session.Sink.Flush()
}

func (e *Engine) load(u Unit, unit string) ([]byte, error) {
	var id source.FileID
	if u.Content != nil {
		id = e.session.Files.AddVirtual(unit, []byte(*u.Content))
	} else {
		var err error
		if id, err = e.session.Files.Load(u.Path); err != nil {
			return nil, err
		}
	}
	return e.session.Files.Get(id).Content, nil
}

// configurations expands every configuration name of the unit, applies the
// configuration limit and folds byte-identical expansions into aliases.
func (e *Engine) configurations(ctx context.Context, unit string, text []byte, timer *observ.Timer) ([]Configuration, error) {
	defer timer.Track("expand")()

	names, err := e.expander.Configurations(text)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		names = []string{""}
	}
	if limit := e.settings.Check.MaxConfigs; len(names) > limit && !e.settings.Check.Force {
		e.session.Sink.Record(diag.New(diag.SevInfo, diag.CoreTooManyConfigs, unit, diag.Location{File: unit},
			fmt.Sprintf("Too many #ifdef configurations - %s checked in %d of %d configurations. "+
				"Use force to check all configurations.", unit, limit, len(names))))
		names = names[:limit]
	}

	out := make([]Configuration, 0, len(names))
	byHash := make(map[[sha256.Size]byte]int, len(names))
	for _, name := range names {
		expanded, err := e.expander.ExpandConfig(text, name)
		if err != nil {
			return nil, fmt.Errorf("configuration %s: %w", configLabel(name), err)
		}
		h := sha256.Sum256(expanded)
		if idx, ok := byHash[h]; ok {
			out[idx].Aliases = append(out[idx].Aliases, name)
			trace.Point(ctx, trace.ScopeConfig, "config.alias", configLabel(name),
				map[string]string{"of": configLabel(out[idx].Name)})
			continue
		}
		byHash[h] = len(out)
		out = append(out, Configuration{Name: name, Text: expanded})
	}
	return out, nil
}

// runConfig tokenizes and checks one configuration. Diagnostics are buffered
// and returned so the caller commits the configuration as a whole.
func (e *Engine) runConfig(ctx context.Context, unit string, cfg Configuration, timer *observ.Timer, withCheckers bool) (*token.Stream, []diag.Diagnostic) {
	ctx, span := trace.Start(ctx, trace.ScopeConfig, configLabel(cfg.Name))
	var found diag.Bag
	defer func() { span.End(fmt.Sprintf("diagnostics=%d", found.Len())) }()

	idx := timer.Begin("tokenize")
	stream, err := e.tokenizer.Tokenize(unit, cfg.Name, cfg.Text)
	timer.End(idx)
	if err != nil {
		if withCheckers {
			found.Add(syntaxError(unit, cfg.Name, err))
		}
		return stream, found.Items()
	}
	if stream == nil || !withCheckers {
		return stream, nil
	}

	rules := e.session.Sink.Rules()
	for _, in := range stream.Suppressions {
		for _, r := range in.Rules(unit) {
			// неверный id в маркере просто не подавляет ничего
			_ = rules.AddLocal(unit, r)
		}
	}

	stats := e.registry.Run(ctx, stream, diag.BagReporter{Bag: &found}, timer)
	span.WithExtra("ran", strconv.Itoa(stats.Ran))
	if len(stats.Faulted) > 0 {
		span.WithExtra("faulted", strconv.Itoa(len(stats.Faulted)))
	}
	return stream, found.Items()
}

func syntaxError(unit, config string, err error) diag.Diagnostic {
	loc := diag.Location{File: unit}
	var lexErr *lexer.Error
	if errors.As(err, &lexErr) {
		loc.Line = lexErr.Line
	}
	d := diag.New(diag.SevError, diag.CoreSyntax, unit, loc,
		fmt.Sprintf("cannot tokenize configuration %s: %v", configLabel(config), err))
	d.Configs = []string{config}
	return d
}

// unitIncludes resolves the quoted includes of a stream relative to the unit.
// System includes are not part of the dependency graph.
func unitIncludes(unit string, s *token.Stream) []string {
	var out []string
	dir := path.Dir(unit)
	for _, inc := range s.Includes {
		if inc.System || inc.Path == "" {
			continue
		}
		out = append(out, source.NormalizePath(path.Join(dir, inc.Path)))
	}
	return out
}

func configLabel(name string) string {
	if name == "" {
		return "default"
	}
	return name
}
