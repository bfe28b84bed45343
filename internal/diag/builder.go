package diag

// New creates a core diagnostic for the given code.
func New(sev Severity, code Code, unit string, loc Location, msg string) Diagnostic {
	d := Diagnostic{
		Severity: sev,
		ID:       code.ID(),
		Message:  msg,
		Unit:     unit,
	}
	if loc.File != "" {
		d.Locations = []Location{loc}
	}
	return d
}

func NewError(code Code, unit string, loc Location, msg string) Diagnostic {
	return New(SevError, code, unit, loc, msg)
}

func (d Diagnostic) WithNote(loc Location, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Loc: loc, Msg: msg})
	return d
}

func (d Diagnostic) WithLocation(loc Location) Diagnostic {
	d.Locations = append(d.Locations, loc)
	return d
}
