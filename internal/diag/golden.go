package diag

import (
	"path/filepath"
	"strings"
)

// FormatShort renders one line per diagnostic:
//
//	severity id file:line message [cfg|cfg]
//
// Golden tests and `tscan check --format short` rely on it staying stable.
// Order is kept as given.
func FormatShort(diags []Diagnostic, withConfigs bool) string {
	lines := make([]string, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		line := strings.Join([]string{
			d.Severity.String(),
			d.ID,
			shortPath(d.Primary().String()),
			strings.Join(strings.Fields(d.Message), " "),
		}, " ")
		if withConfigs && len(d.Configs) > 0 {
			line += " [" + strings.Join(d.Configs, "|") + "]"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func shortPath(p string) string {
	p = filepath.ToSlash(p)
	for {
		rest, ok := strings.CutPrefix(p, "./")
		if !ok {
			return p
		}
		p = rest
	}
}
