package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"tscan/internal/diag"
	"tscan/internal/source"
)

var severityAttrs = map[diag.Severity][]color.Attribute{
	diag.SevError:       {color.FgRed, color.Bold},
	diag.SevWarning:     {color.FgYellow, color.Bold},
	diag.SevStyle:       {color.FgCyan},
	diag.SevPerformance: {color.FgMagenta},
	diag.SevPortability: {color.FgMagenta},
	diag.SevInfo:        {color.FgBlue},
}

// SeverityColor returns the color of sev; it follows color.NoColor.
func SeverityColor(sev diag.Severity) *color.Color {
	return color.New(severityAttrs[sev]...)
}

// paint builds a color that is on or off regardless of color.NoColor.
func paint(on bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if on {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// Pretty форматирует диагностики в человекочитаемый вид, по блоку на каждую:
//
//	a.c:3: error: Division by zero. [zerodiv]
//	  via b.h:7
//	  configurations: A|B
//
// Порядок не меняется; сортирует вызывающий.
func Pretty(w io.Writer, diags []diag.Diagnostic, opts PrettyOpts) {
	bold := paint(opts.Color, color.Bold)
	dim := paint(opts.Color, color.Faint)

	for i := range diags {
		d := &diags[i]
		sev := paint(opts.Color, severityAttrs[d.Severity]...).Sprint(d.Severity.String())
		msg := d.Message
		if d.Inconclusive {
			msg += " (inconclusive)"
		}
		loc := d.Primary()
		loc.File = formatPath(loc.File, opts.PathMode, opts.BaseDir)
		fmt.Fprintf(w, "%s: %s: %s [%s]\n", bold.Sprint(loc.String()), sev, msg, d.ID)
		if code, ok := codeLine(opts.Files, d.Primary()); ok {
			fmt.Fprintf(w, "  %s %s\n", dim.Sprintf("%5d |", loc.Line), code)
		}

		for _, via := range d.Locations[min(1, len(d.Locations)):] {
			via.File = formatPath(via.File, opts.PathMode, opts.BaseDir)
			fmt.Fprintf(w, "  %s %s\n", dim.Sprint("via"), via)
		}
		if opts.ShowNotes {
			for _, n := range d.Notes {
				at := n.Loc
				at.File = formatPath(at.File, opts.PathMode, opts.BaseDir)
				fmt.Fprintf(w, "  %s %s: %s\n", dim.Sprint("note"), at, n.Msg)
			}
		}
		if opts.ShowConfigs && (len(d.Configs) > 1 || (len(d.Configs) == 1 && d.Configs[0] != "")) {
			fmt.Fprintf(w, "  %s %s\n", dim.Sprint("configurations:"), strings.Join(d.Configs, "|"))
		}
		if opts.Fingerprints {
			fmt.Fprintf(w, "  %s %s\n", dim.Sprint("fingerprint:"), d.Fingerprint().Short())
		}
	}
}

func codeLine(files *source.FileSet, loc diag.Location) (string, bool) {
	if files == nil || loc.File == "" || loc.Line == 0 {
		return "", false
	}
	f, ok := files.Lookup(loc.File)
	if !ok {
		id, err := files.Load(loc.File)
		if err != nil {
			return "", false
		}
		f = files.Get(id)
	}
	line, ok := f.Line(loc.Line)
	if !ok {
		return "", false
	}
	line = strings.TrimRight(strings.ReplaceAll(line, "\t", "    "), " \r")
	return line, strings.TrimSpace(line) != ""
}
