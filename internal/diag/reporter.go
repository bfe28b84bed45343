package diag

// Reporter receives the findings of a checker or an engine phase.
type Reporter interface {
	Report(d Diagnostic)
}

// ReportBuilder assembles one finding; Emit hands it to the reporter.
// A builder emits at most once.
type ReportBuilder struct {
	to Reporter // nil after Emit
	d  Diagnostic
}

// NewReportBuilder starts a finding of severity sev at primary.
func NewReportBuilder(r Reporter, sev Severity, id string, primary Location, msg string) *ReportBuilder {
	b := &ReportBuilder{to: r}
	b.d.Severity, b.d.ID, b.d.Message = sev, id, msg
	b.d.Locations = append(b.d.Locations, primary)
	return b
}

func ReportError(r Reporter, id string, primary Location, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, id, primary, msg)
}

func ReportWarning(r Reporter, id string, primary Location, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, id, primary, msg)
}

func ReportStyle(r Reporter, id string, primary Location, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevStyle, id, primary, msg)
}

// Via extends the include chain that leads to the primary location.
func (b *ReportBuilder) Via(chain ...Location) *ReportBuilder {
	if b != nil {
		b.d.Locations = append(b.d.Locations, chain...)
	}
	return b
}

// WithNote attaches an explanation at loc.
func (b *ReportBuilder) WithNote(loc Location, msg string) *ReportBuilder {
	if b != nil {
		b.d.Notes = append(b.d.Notes, Note{Loc: loc, Msg: msg})
	}
	return b
}

// Inconclusive marks a finding the checker is not sure about.
func (b *ReportBuilder) Inconclusive() *ReportBuilder {
	if b != nil {
		b.d.Inconclusive = true
	}
	return b
}

// Emit reports the finding; later calls do nothing.
func (b *ReportBuilder) Emit() {
	if b == nil || b.to == nil {
		return
	}
	to := b.to
	b.to = nil
	to.Report(b.d)
}

// Diagnostic returns the finding as built so far.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.d
}

// BagReporter collects into Bag; a nil Bag drops findings.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

// FuncReporter calls itself for every finding.
type FuncReporter func(Diagnostic)

func (f FuncReporter) Report(d Diagnostic) {
	if f != nil {
		f(d)
	}
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}
