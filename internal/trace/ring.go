package trace

import (
	"fmt"
	"io"
	"sync"
)

// RingTracer remembers the last events of a run for a post-mortem dump.
// Older events are overwritten and counted as dropped.
type RingTracer struct {
	level Level

	mu      sync.Mutex
	buf     []Event
	next    int    // slot of the next write
	stored  int    // valid slots, at most len(buf)
	dropped uint64 // events overwritten so far
}

// DefaultRingSize is used when a ring is asked for a non-positive capacity.
const DefaultRingSize = 4096

// NewRingTracer creates a ring holding at most capacity events.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = DefaultRingSize
	}
	return &RingTracer{level: level, buf: make([]Event, capacity)}
}

// Emit copies ev into the ring. Heartbeats pass any level.
func (t *RingTracer) Emit(ev *Event) {
	if ev == nil {
		return
	}
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	if t.stored == len(t.buf) {
		t.dropped++
	} else {
		t.stored++
	}
	t.buf[t.next] = *ev
	t.next = (t.next + 1) % len(t.buf)
	t.mu.Unlock()
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, 0, t.stored)
	first := (t.next - t.stored + len(t.buf)) % len(t.buf)
	for i := range t.stored {
		out = append(out, t.buf[(first+i)%len(t.buf)])
	}
	return out
}

// Dropped reports how many events were overwritten.
func (t *RingTracer) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

// Dump writes the stored events to w, preceded by a note about dropped ones
// in text format.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	events := t.Snapshot()
	if n := t.Dropped(); n > 0 && format != FormatNDJSON {
		if _, err := fmt.Fprintf(w, "... %d earlier events dropped\n", n); err != nil {
			return err
		}
	}
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
