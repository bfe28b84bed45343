// Package report is the boundary between the analysis core and whatever shows
// its results: a terminal, a JSON file, the progress UI, a trace.
//
// Every Reporter call is advisory. Implementations must return promptly and
// must not feed anything back into the analysis.
package report

import "tscan/internal/diag"

// Stage names a step inside one unit check.
type Stage string

const (
	StageExpand   Stage = "expand"
	StageTokenize Stage = "tokenize"
	StageCheck    Stage = "check"
	StageUnused   Stage = "unused"
	StageDone     Stage = "done"
)

// Reporter receives everything the engine has to say.
type Reporter interface {
	// ReportErr receives each emitted (deduplicated, unsuppressed) diagnostic.
	ReportErr(d diag.Diagnostic)
	// ReportOut receives plain status lines ("Checking a.c: A;B...").
	ReportOut(msg string)
	// ReportInfo receives informational diagnostics that are not findings
	// (timings, tooManyConfigs).
	ReportInfo(d diag.Diagnostic)
	// ReportProgress is called between configurations of one unit.
	ReportProgress(file string, stage Stage, percent int)
	// ReportStatus is called between units.
	ReportStatus(unitIndex, unitCount int, bytesDone, bytesTotal int64)
}

// Nop drops everything.
type Nop struct{}

func (Nop) ReportErr(diag.Diagnostic)           {}
func (Nop) ReportOut(string)                    {}
func (Nop) ReportInfo(diag.Diagnostic)          {}
func (Nop) ReportProgress(string, Stage, int)   {}
func (Nop) ReportStatus(int, int, int64, int64) {}

// Multi fans every call out to each reporter in order.
type Multi []Reporter

func (m Multi) ReportErr(d diag.Diagnostic) {
	for _, r := range m {
		r.ReportErr(d)
	}
}

func (m Multi) ReportOut(msg string) {
	for _, r := range m {
		r.ReportOut(msg)
	}
}

func (m Multi) ReportInfo(d diag.Diagnostic) {
	for _, r := range m {
		r.ReportInfo(d)
	}
}

func (m Multi) ReportProgress(file string, stage Stage, percent int) {
	for _, r := range m {
		r.ReportProgress(file, stage, percent)
	}
}

func (m Multi) ReportStatus(unitIndex, unitCount int, bytesDone, bytesTotal int64) {
	for _, r := range m {
		r.ReportStatus(unitIndex, unitCount, bytesDone, bytesTotal)
	}
}
