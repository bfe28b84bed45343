package report

import (
	"context"
	"strconv"

	"tscan/internal/diag"
	"tscan/internal/trace"
)

// Trace turns reporter calls into trace point events of the tracer carried by
// Ctx. Diagnostics go out at unit scope, progress at config scope.
type Trace struct {
	Ctx context.Context
}

func (t Trace) ReportErr(d diag.Diagnostic) {
	trace.Point(t.Ctx, trace.ScopeUnit, "diagnostic", d.ID, map[string]string{
		"at":       d.Primary().String(),
		"severity": d.Severity.String(),
	})
}

func (t Trace) ReportOut(msg string) {
	trace.Point(t.Ctx, trace.ScopeSession, "out", msg, nil)
}

func (t Trace) ReportInfo(d diag.Diagnostic) {
	trace.Point(t.Ctx, trace.ScopeUnit, "info", d.ID, map[string]string{"msg": d.Message})
}

func (t Trace) ReportProgress(file string, stage Stage, percent int) {
	trace.Point(t.Ctx, trace.ScopeConfig, "progress", file, map[string]string{
		"stage":   string(stage),
		"percent": strconv.Itoa(percent),
	})
}

func (t Trace) ReportStatus(unitIndex, unitCount int, bytesDone, bytesTotal int64) {
	trace.Point(t.Ctx, trace.ScopeSession, "status", strconv.Itoa(unitIndex)+"/"+strconv.Itoa(unitCount), map[string]string{
		"bytes": strconv.FormatInt(bytesDone, 10) + "/" + strconv.FormatInt(bytesTotal, 10),
	})
}
