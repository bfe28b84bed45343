package trace

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Heartbeat emits a liveness event every interval naming the units still
// being checked. A unit that shows up in many beats in a row is where a
// checker hangs.
type Heartbeat struct {
	tracer Tracer
	done   chan struct{}
	once   sync.Once
	exited chan struct{}
}

// StartHeartbeat starts beating on tracer. It returns nil when tracing is off
// or interval is not positive; Stop on nil is a no-op.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer: tracer,
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go h.loop(interval)
	return h
}

func (h *Heartbeat) loop(interval time.Duration) {
	defer close(h.exited)
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for beat := 1; ; beat++ {
		select {
		case <-h.done:
			return
		case now := <-tick.C:
			h.tracer.Emit(beatEvent(beat, now, InFlight()))
		}
	}
}

func beatEvent(beat int, now time.Time, active []UnitActivity) *Event {
	ev := &Event{
		Time:   now,
		Seq:    NextSeq(),
		Kind:   KindHeartbeat,
		Scope:  ScopeSession,
		GID:    goroutineID(),
		Name:   "heartbeat",
		Detail: "#" + strconv.Itoa(beat),
	}
	if len(active) == 0 {
		return ev
	}
	names := make([]string, len(active))
	for i, a := range active {
		names[i] = a.Unit
	}
	ev.Extra = map[string]string{
		"inflight": strings.Join(names, ","),
		"oldest":   now.Sub(active[0].Since).Round(time.Millisecond).String(),
	}
	return ev
}

// Stop ends the beats and waits for the goroutine to exit.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.done) })
	<-h.exited
}
