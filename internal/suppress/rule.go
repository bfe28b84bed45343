// Package suppress holds suppression rules and the inline marker syntax.
//
// A rule matches a diagnostic by check identifier pattern and, optionally,
// by file pattern and line. Patterns use doublestar syntax ("*", "**", "?",
// character classes, "{a,b}" alternatives).
package suppress

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"tscan/internal/diag"
)

// ErrBadPattern is returned for rules whose ID or File pattern cannot be compiled.
var ErrBadPattern = errors.New("invalid suppression pattern")

// Rule suppresses diagnostics whose ID matches the ID pattern.
// Empty File matches any file; zero Line matches any line.
type Rule struct {
	ID   string
	File string
	Line uint32
}

func (r Rule) String() string {
	var b strings.Builder
	b.WriteString(r.ID)
	if r.File != "" {
		b.WriteByte(':')
		b.WriteString(r.File)
		if r.Line != 0 {
			fmt.Fprintf(&b, ":%d", r.Line)
		}
	}
	return b.String()
}

// Validate checks that both patterns are well formed.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrBadPattern)
	}
	if !doublestar.ValidatePattern(r.ID) {
		return fmt.Errorf("%w: id %q", ErrBadPattern, r.ID)
	}
	if r.File != "" && !doublestar.ValidatePattern(r.File) {
		return fmt.Errorf("%w: file %q", ErrBadPattern, r.File)
	}
	return nil
}

// Matches reports whether the rule covers the diagnostic's primary location.
func (r Rule) Matches(d *diag.Diagnostic) bool {
	if ok, err := doublestar.Match(r.ID, d.ID); err != nil || !ok {
		return false
	}
	if r.File == "" {
		return true
	}
	primary := d.Primary()
	if ok, err := doublestar.Match(r.File, primary.File); err != nil || !ok {
		return false
	}
	return r.Line == 0 || r.Line == primary.Line
}

// Parse reads the textual rule form "id[:file[:line]]" used on the command line.
func Parse(s string) (Rule, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	r := Rule{ID: parts[0]}
	switch len(parts) {
	case 1:
	case 2:
		r.File = parts[1]
	default:
		// путь может сам содержать ':' (windows), номер строки всегда последний
		last := parts[len(parts)-1]
		if line, err := strconv.ParseUint(last, 10, 32); err == nil {
			r.Line = uint32(line)
			r.File = strings.Join(parts[1:len(parts)-1], ":")
		} else {
			r.File = strings.Join(parts[1:], ":")
		}
	}
	if err := r.Validate(); err != nil {
		return Rule{}, err
	}
	return r, nil
}
