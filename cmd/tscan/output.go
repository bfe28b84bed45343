package main

import (
	"fmt"
	"io"

	"tscan/internal/diagfmt"
	"tscan/internal/report"
)

type checkPayload struct {
	Tool         string                   `json:"tool"`
	Version      string                   `json:"version"`
	Session      string                   `json:"session"`
	Status       string                   `json:"status"`
	Units        int                      `json:"units"`
	Errors       int                      `json:"errors"`
	Suppressed   int                      `json:"suppressed"`
	Diagnostics  []diagfmt.DiagnosticJSON `json:"diagnostics"`
	Dependencies []string                 `json:"dependencies,omitempty"`
	Timings      []string                 `json:"timings,omitempty"`
}

// statusPrinter shows the engine's status lines on stderr.
type statusPrinter struct {
	report.Nop
	w io.Writer
}

func (p statusPrinter) ReportOut(msg string) { fmt.Fprintln(p.w, msg) }

// noStatus hides byte progress of a shard: the totals of one shard are
// meaningless for the whole run.
type noStatus struct{ report.Reporter }

func (noStatus) ReportStatus(int, int, int64, int64) {}
