package engine

import (
	"context"
	"errors"
	"fmt"

	"tscan/internal/diag"
	"tscan/internal/minimize"
	"tscan/internal/report"
	"tscan/internal/source"
	"tscan/internal/trace"
)

// Reproducer returns an oracle that checks every candidate in a fresh engine
// built from opts and looks for a finding with fingerprint target. Lines of
// the candidate are mapped back to the original input before fingerprinting,
// so target is the fingerprint from a check of the unreduced text.
func Reproducer(opts Options, unit string, target diag.Fingerprint) minimize.Oracle {
	unit = source.NormalizePath(unit)
	return func(ctx context.Context, c minimize.Candidate) (bool, error) {
		// сотни сессий в трейсе никому не нужны
		ctx = trace.WithTracer(ctx, trace.Nop)

		o := opts
		o.Reporter = report.Nop{}
		eng, err := New(ctx, o)
		if err != nil {
			return false, err
		}
		defer eng.Close()

		eng.CheckContent(ctx, unit, c.Text)
		for _, d := range eng.Session().Sink.All() {
			for i := range d.Locations {
				if d.Locations[i].File == unit {
					d.Locations[i].Line = c.OriginalLine(d.Locations[i].Line)
				}
			}
			if d.Fingerprint() == target {
				return true, nil
			}
		}
		return false, nil
	}
}

// Minimize reduces text to a 1-minimal input that still produces target.
// A text that does not produce target at all is reported as a
// preconditionError diagnostic and returned as minimize.ErrPrecondition.
func Minimize(ctx context.Context, opts Options, unit, text string, target diag.Fingerprint, mo minimize.Options) (minimize.Result, error) {
	ctx, span := trace.Start(ctx, trace.ScopeSession, "minimize")
	res, err := minimize.Minimize(ctx, text, Reproducer(opts, unit, target), mo)
	span.End(fmt.Sprintf("lines=%d/%d tests=%d", len(res.Lines), res.OriginalLines, res.Tests))
	if errors.Is(err, minimize.ErrPrecondition) && opts.Reporter != nil {
		unit = source.NormalizePath(unit)
		opts.Reporter.ReportErr(diag.New(diag.SevError, diag.CorePrecondition, unit, diag.Location{File: unit},
			fmt.Sprintf("%s does not reproduce diagnostic %s", unit, target.Short())))
	}
	return res, err
}
