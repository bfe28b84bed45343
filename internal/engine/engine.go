// Package engine runs the per-unit analysis pipeline: configuration
// expansion, tokenization, the checker battery and the diagnostic sink, plus
// the session-wide cross-unit pass and dependency tracking.
//
// One Engine is one session and one logical pipeline. Check calls are
// serialized; Terminate may be called from any goroutine. Independent
// engines can run side by side over shards of the unit list and be merged
// with Session.Merge.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tscan/internal/checker"
	"tscan/internal/checks"
	"tscan/internal/config"
	"tscan/internal/diag"
	"tscan/internal/report"
	"tscan/internal/suppress"
	"tscan/internal/trace"
	"tscan/internal/version"
)

// ErrClosed is reported as a configuration error after Close.
var ErrClosed = errors.New("engine is closed")

// Options configure New. Only Settings is required for Check to do work;
// everything else has a default.
type Options struct {
	Settings  *config.Settings
	Checkers  []checker.Checker // nil means checks.All()
	Reporter  report.Reporter
	Expander  Expander
	Tokenizer Tokenizer
}

// Engine is the analyzer instance.
type Engine struct {
	settings    *config.Settings
	settingsErr error
	registry    *checker.Registry
	expander    Expander
	tokenizer   Tokenizer
	reporter    report.Reporter

	session *Session
	span    *trace.Span
	spanCtx trace.SpanContext

	mu     sync.Mutex // one check at a time
	closed bool
}

// New initializes a session. Invalid settings are not an error here: they are
// reported as a configurationError diagnostic by every Check. The returned
// error is reserved for programming errors such as duplicate checker names.
func New(ctx context.Context, opts Options) (*Engine, error) {
	checkers := opts.Checkers
	if checkers == nil {
		checkers = checks.All()
	}
	registry, err := checker.NewRegistry(checkers...)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		settings:  opts.Settings,
		expander:  opts.Expander,
		tokenizer: opts.Tokenizer,
		reporter:  opts.Reporter,
		registry:  registry,
	}
	if e.reporter == nil {
		e.reporter = report.Nop{}
	}
	if e.tokenizer == nil {
		e.tokenizer = DefaultTokenizer
	}

	e.settingsErr = opts.Settings.Validate()
	var rules []suppress.Rule
	if e.settingsErr == nil {
		if opts.Settings.Check.GlobalSuppressions {
			rules = opts.Settings.Rules()
		}
		if len(opts.Settings.Check.Enabled) > 0 {
			selected, err := registry.Select(opts.Settings.Check.Enabled)
			if err != nil {
				e.settingsErr = fmt.Errorf("%w: check.enabled: %w", config.ErrInvalid, err)
			} else {
				e.registry = selected
			}
		}
	}
	if e.expander == nil {
		e.expander = DefaultExpander(opts.Settings)
	}
	list, err := suppress.NewList(rules...)
	if err != nil {
		// правила уже прошли Validate
		return nil, err
	}

	e.session = newSession(list, e.reporter)
	sctx, span := trace.Start(ctx, trace.ScopeSession, "session")
	e.span = span.WithExtra("id", e.session.ID)
	e.spanCtx = trace.CurrentSpan(sctx)
	return e, nil
}

// Close ends the session. Pending diagnostics are flushed to the reporter.
// Later checks report a configuration error.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.session.Sink.Flush()
	e.span.End(fmt.Sprintf("units=%d findings=%d", e.session.Units(), e.session.Sink.Emitted()))
	return nil
}

// Session exposes the accumulated state.
func (e *Engine) Session() *Session { return e.session }

// Settings returns the settings the engine was built with; nil if none.
func (e *Engine) Settings() *config.Settings { return e.settings }

// Registry returns the checkers this engine runs.
func (e *Engine) Registry() *checker.Registry { return e.registry }

// Terminate asks the pipeline to stop at the next configuration or unit
// boundary. The configuration in flight is finished and recorded.
func (e *Engine) Terminate() { e.session.terminated.Store(true) }

// ExitCode is the number of emitted error-severity diagnostics so far.
func (e *Engine) ExitCode() int { return e.session.Sink.Errors() }

// Version returns the analyzer version.
func (e *Engine) Version() string { return version.Plain() }

// ExtraVersion returns build metadata, empty for development builds.
func (e *Engine) ExtraVersion() string { return version.Extra() }

// ErrorMessages lists every diagnostic the engine and its checkers can produce.
func (e *Engine) ErrorMessages() []checker.Description {
	out := make([]checker.Description, 0, len(diag.CoreCodes())+e.registry.Len())
	for _, c := range diag.CoreCodes() {
		out = append(out, checker.Description{ID: c.ID(), Severity: coreSeverity[c], Summary: c.Title()})
	}
	return append(out, e.registry.Descriptions()...)
}

var coreSeverity = map[diag.Code]diag.Severity{
	diag.CoreConfiguration:    diag.SevError,
	diag.CoreFileAccess:       diag.SevError,
	diag.CoreTooManyConfigs:   diag.SevInfo,
	diag.CoreSyntax:           diag.SevError,
	diag.CoreInternalChecker:  diag.SevError,
	diag.CorePrecondition:     diag.SevError,
	diag.CoreAlreadyFinalized: diag.SevWarning,
	diag.CoreUnusedFunction:   diag.SevStyle,
	diag.ObsTimings:           diag.SevInfo,
}

// within parents the spans of a check under the session span unless the
// caller already carries one.
func (e *Engine) within(ctx context.Context) context.Context {
	if trace.CurrentSpan(ctx).SpanID != 0 || e.spanCtx.SpanID == 0 {
		return ctx
	}
	return trace.WithSpanContext(ctx, e.spanCtx)
}

// usable returns the reason Check must not run, or nil.
func (e *Engine) usable() error {
	if e.closed {
		return ErrClosed
	}
	return e.settingsErr
}
