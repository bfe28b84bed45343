package report

import (
	"sync"

	"tscan/internal/diag"
)

// Collector keeps every call in memory. Used by the minimizer oracle and by
// tests.
type Collector struct {
	mu       sync.Mutex
	Errs     []diag.Diagnostic
	Infos    []diag.Diagnostic
	Out      []string
	Statuses int
}

func (c *Collector) ReportErr(d diag.Diagnostic) {
	c.mu.Lock()
	c.Errs = append(c.Errs, d)
	c.mu.Unlock()
}

func (c *Collector) ReportOut(msg string) {
	c.mu.Lock()
	c.Out = append(c.Out, msg)
	c.mu.Unlock()
}

func (c *Collector) ReportInfo(d diag.Diagnostic) {
	c.mu.Lock()
	c.Infos = append(c.Infos, d)
	c.mu.Unlock()
}

func (c *Collector) ReportProgress(string, Stage, int) {}

func (c *Collector) ReportStatus(int, int, int64, int64) {
	c.mu.Lock()
	c.Statuses++
	c.mu.Unlock()
}

// Findings returns a copy of the collected diagnostics.
func (c *Collector) Findings() []diag.Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]diag.Diagnostic, len(c.Errs))
	copy(out, c.Errs)
	return out
}
