package diag

import (
	"fmt"
	"strings"
)

// Severity defines the importance of a diagnostic.
// Higher values are more important.
type Severity uint8

const (
	// SevDebug is for analyzer debug output.
	SevDebug Severity = iota
	// SevInfo is for informational diagnostics.
	SevInfo
	SevStyle
	SevPerformance
	SevPortability
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevDebug:
		return "debug"
	case SevInfo:
		return "information"
	case SevStyle:
		return "style"
	case SevPerformance:
		return "performance"
	case SevPortability:
		return "portability"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

// ParseSeverity converts the textual form produced by String back into a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return SevDebug, nil
	case "information", "info":
		return SevInfo, nil
	case "style":
		return SevStyle, nil
	case "performance":
		return SevPerformance, nil
	case "portability":
		return SevPortability, nil
	case "warning":
		return SevWarning, nil
	case "error":
		return SevError, nil
	}
	return SevDebug, fmt.Errorf("invalid severity: %q", s)
}
