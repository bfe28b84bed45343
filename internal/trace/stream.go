package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer writes every event as it arrives through a buffer. The first
// write error sticks and is returned by Flush; tracing never fails a check.
type StreamTracer struct {
	level  Level
	format Format

	mu  sync.Mutex
	dst io.Writer
	buf *bufio.Writer
	err error
}

// NewStreamTracer writes events of level to w in format.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{
		level:  level,
		format: FormatFor(format, ""),
		dst:    w,
		buf:    bufio.NewWriter(w),
	}
}

func (t *StreamTracer) Emit(ev *Event) {
	if ev == nil {
		return
	}
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	line := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	if _, err := t.buf.Write(line); err != nil {
		t.err = err
		return
	}
	// heartbeat должен быть виден сразу, иначе зависание не заметить
	if ev.Kind == KindHeartbeat {
		t.err = t.buf.Flush()
	}
}

// Flush drains the buffer and returns the first write error seen.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err == nil {
		t.err = t.buf.Flush()
	}
	return t.err
}

// Close flushes and closes the destination when it is closable.
func (t *StreamTracer) Close() error {
	err := t.Flush()
	if c, ok := t.dst.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
