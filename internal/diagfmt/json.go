package diagfmt

import (
	"encoding/json"
	"io"

	"tscan/internal/diag"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File string `json:"file"`
	Line uint32 `json:"line,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity     string         `json:"severity"`
	ID           string         `json:"id"`
	Message      string         `json:"message"`
	Location     LocationJSON   `json:"location"`
	Via          []LocationJSON `json:"via,omitempty"`
	Unit         string         `json:"unit,omitempty"`
	Configs      []string       `json:"configs,omitempty"`
	Checker      string         `json:"checker,omitempty"`
	Inconclusive bool           `json:"inconclusive,omitempty"`
	Notes        []NoteJSON     `json:"notes,omitempty"`
	Fingerprint  string         `json:"fingerprint"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(loc diag.Location, opts JSONOpts) LocationJSON {
	return LocationJSON{File: formatPath(loc.File, opts.PathMode, opts.BaseDir), Line: loc.Line}
}

// ToJSON converts one diagnostic.
func ToJSON(d diag.Diagnostic, opts JSONOpts) DiagnosticJSON {
	out := DiagnosticJSON{
		Severity:     d.Severity.String(),
		ID:           d.ID,
		Message:      d.Message,
		Location:     makeLocation(d.Primary(), opts),
		Unit:         d.Unit,
		Configs:      d.Configs,
		Checker:      d.Checker,
		Inconclusive: d.Inconclusive,
		Fingerprint:  string(d.Fingerprint()),
	}
	for _, via := range d.Locations[min(1, len(d.Locations)):] {
		out.Via = append(out.Via, makeLocation(via, opts))
	}
	if opts.IncludeNotes {
		for _, n := range d.Notes {
			out.Notes = append(out.Notes, NoteJSON{Message: n.Msg, Location: makeLocation(n.Loc, opts)})
		}
	}
	return out
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
// Count is the number of diagnostics before truncation by opts.Max.
func BuildDiagnosticsOutput(diags []diag.Diagnostic, opts JSONOpts) DiagnosticsOutput {
	n := len(diags)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, n), Count: len(diags)}
	for _, d := range diags[:n] {
		out.Diagnostics = append(out.Diagnostics, ToJSON(d, opts))
	}
	return out
}

// JSON writes v indented.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
