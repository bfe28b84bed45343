package suppress

import "strings"

// Marker is the keyword recognised inside comments.
const Marker = "tscan-suppress"

// Inline is a suppression marker found in a unit's own source.
// Trailing markers share a line with code and cover that line; a marker on a
// line of its own covers the next line.
type Inline struct {
	IDs      []string // empty means every check
	Line     uint32
	Trailing bool
}

// TargetLine returns the line the marker applies to.
func (in Inline) TargetLine() uint32 {
	if in.Trailing {
		return in.Line
	}
	return in.Line + 1
}

// Rules converts the marker into unit-local rules.
func (in Inline) Rules(unit string) []Rule {
	ids := in.IDs
	if len(ids) == 0 {
		ids = []string{"*"}
	}
	out := make([]Rule, 0, len(ids))
	for _, id := range ids {
		out = append(out, Rule{ID: id, File: unit, Line: in.TargetLine()})
	}
	return out
}

// ParseComment recognises "// tscan-suppress id1,id2" and "/* tscan-suppress id */".
// It returns the listed IDs (nil = all) and whether the comment is a marker at all.
func ParseComment(text string) ([]string, bool) {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "//"):
		text = strings.TrimPrefix(text, "//")
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	default:
		return nil, false
	}
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, Marker) {
		return nil, false
	}
	rest := strings.TrimPrefix(text, Marker)
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		// "tscan-suppressed" и подобное не маркер
		return nil, false
	}
	rest = strings.TrimSpace(rest)
	// всё после " - " или "//" считаем пояснением
	if idx := strings.Index(rest, " - "); idx >= 0 {
		rest = rest[:idx]
	}
	if idx := strings.Index(rest, "//"); idx >= 0 {
		rest = rest[:idx]
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil, true
	}

	var ids []string
	for _, part := range strings.FieldsFunc(rest, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' }) {
		if part != "" {
			ids = append(ids, part)
		}
	}
	return ids, true
}
