package trace

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

// UnitActivity is a unit whose span is open.
type UnitActivity struct {
	Unit  string
	Since time.Time
}

// inflight tracks open unit spans for heartbeats.
var inflight = struct {
	mu    sync.Mutex
	units map[uint64]UnitActivity
}{units: make(map[uint64]UnitActivity)}

func enterUnit(spanID uint64, unit string, at time.Time) {
	inflight.mu.Lock()
	inflight.units[spanID] = UnitActivity{Unit: unit, Since: at}
	inflight.mu.Unlock()
}

func leaveUnit(spanID uint64) {
	inflight.mu.Lock()
	delete(inflight.units, spanID)
	inflight.mu.Unlock()
}

// InFlight lists the units being checked right now, oldest first.
func InFlight() []UnitActivity {
	inflight.mu.Lock()
	out := make([]UnitActivity, 0, len(inflight.units))
	for _, a := range inflight.units {
		out = append(out, a)
	}
	inflight.mu.Unlock()
	slices.SortFunc(out, func(a, b UnitActivity) int {
		return cmp.Or(a.Since.Compare(b.Since), cmp.Compare(a.Unit, b.Unit))
	})
	return out
}
