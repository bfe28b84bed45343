package diag

import (
	"fmt"
	"slices"
)

// Location is one (file, line) point of a diagnostic's call or inclusion chain.
type Location struct {
	File string
	Line uint32
}

func (l Location) String() string {
	if l.Line == 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

type Note struct {
	Loc Location
	Msg string
}

// Diagnostic is one finding. Locations[0], when present, is the primary location.
type Diagnostic struct {
	Severity     Severity
	ID           string
	Message      string
	Locations    []Location
	Unit         string
	Configs      []string
	Checker      string
	Inconclusive bool
	Notes        []Note
}

// Primary returns the first location, or the unit itself when the diagnostic has none.
func (d *Diagnostic) Primary() Location {
	if len(d.Locations) > 0 {
		return d.Locations[0]
	}
	return Location{File: d.Unit}
}

// Clone returns a deep copy so that the sink may own the stored value.
func (d Diagnostic) Clone() Diagnostic {
	d.Locations = slices.Clone(d.Locations)
	d.Configs = slices.Clone(d.Configs)
	d.Notes = slices.Clone(d.Notes)
	return d
}

// HasConfig reports whether the diagnostic is attributed to configuration name.
func (d *Diagnostic) HasConfig(name string) bool {
	return slices.Contains(d.Configs, name)
}

// AddConfigs appends configuration names that are not yet attributed.
func (d *Diagnostic) AddConfigs(names ...string) {
	for _, name := range names {
		if !slices.Contains(d.Configs, name) {
			d.Configs = append(d.Configs, name)
		}
	}
}
