package trace

import (
	"fmt"
	"strings"
)

// Level is how deep tracing goes. Each level adds one scope to the previous.
type Level uint8

const (
	LevelOff     Level = iota
	LevelError         // nothing streamed; the ring still collects heartbeats
	LevelSession       // sessions, minimizer runs
	LevelUnit          // + units
	LevelConfig        // + configurations
	LevelDebug         // + checker runs
)

var levelNames = [...]string{"off", "error", "session", "unit", "config", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel reads a --trace-level value.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for l, name := range levelNames {
		if name == s {
			return Level(l), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// deepest is the finest scope a level lets through, 0 for none.
func (l Level) deepest() Scope {
	switch {
	case l >= LevelDebug:
		return ScopeChecker
	case l <= LevelError:
		return 0
	}
	// session..config map one to one onto session..config scopes
	return Scope(l-LevelSession) + ScopeSession
}

// ShouldEmit reports whether events of scope pass at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	return scope != 0 && scope <= l.deepest()
}
