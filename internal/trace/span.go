package trace

import (
	"bytes"
	"context"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"
)

var seq, spanIDs atomic.Uint64

// NextSeq returns the next event sequence number, shared by all tracers.
func NextSeq() uint64 { return seq.Add(1) }

// NextSpanID returns a fresh span id; 0 is never returned.
func NextSpanID() uint64 { return spanIDs.Add(1) }

// goroutineID reads the number out of the "goroutine N [...]" stack header.
func goroutineID() uint64 {
	var buf [64]byte
	head := buf[:runtime.Stack(buf[:], false)]
	head, ok := bytes.CutPrefix(head, []byte("goroutine "))
	if !ok {
		return 0
	}
	if i := bytes.IndexByte(head, ' '); i >= 0 {
		head = head[:i]
	}
	gid, err := strconv.ParseUint(string(head), 10, 64)
	if err != nil {
		return 0
	}
	return gid
}

// Span is an open operation: a session, a unit, a configuration or a
// checker run. A disabled span still measures its duration.
type Span struct {
	tracer  Tracer
	ctx     SpanContext
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

// Begin opens a span under parent (0 for a root) and emits its begin event.
// Unit spans use their name as the unit.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return begin(t, scope, name, SpanContext{SpanID: parent})
}

func begin(t Tracer, scope Scope, name string, parent SpanContext) *Span {
	now := time.Now()
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{tracer: Nop, started: now}
	}
	s := &Span{
		tracer:  t,
		ctx:     SpanContext{SpanID: NextSpanID(), GID: goroutineID(), Unit: parent.Unit},
		parent:  parent.SpanID,
		scope:   scope,
		name:    name,
		started: now,
	}
	if scope == ScopeUnit {
		s.ctx.Unit = name
		enterUnit(s.ctx.SpanID, name, now)
	}
	t.Emit(s.event(KindSpanBegin, now, ""))
	return s
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	return &Event{
		Time:     at,
		Seq:      NextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.ctx.SpanID,
		ParentID: s.parent,
		GID:      s.ctx.GID,
		Unit:     s.ctx.Unit,
		Name:     s.name,
		Detail:   detail,
	}
}

// Start opens a span below the one ctx carries and returns a context that
// carries the new span. Disabled spans leave ctx as it was.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	span := begin(FromContext(ctx), scope, name, CurrentSpan(ctx))
	if span.ctx.SpanID == 0 {
		return ctx, span
	}
	return WithSpanContext(ctx, span.ctx), span
}

// End closes the span and returns how long it was open. detail lands on the
// end event.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	now := time.Now()
	dur := now.Sub(s.started)
	if s.ctx.SpanID == 0 {
		return dur
	}
	if s.scope == ScopeUnit {
		leaveUnit(s.ctx.SpanID)
	}
	ev := s.event(KindSpanEnd, now, detail)
	ev.Extra = s.extra
	s.tracer.Emit(ev)
	return dur
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.ctx.SpanID == 0 {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// ID returns the span id, 0 for disabled spans.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.ctx.SpanID
}

// Point emits an instant event inside the span ctx carries.
func Point(ctx context.Context, scope Scope, name, detail string, extra map[string]string) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	open := CurrentSpan(ctx)
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      NextSeq(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: open.SpanID,
		GID:      goroutineID(),
		Unit:     open.Unit,
		Name:     name,
		Detail:   detail,
		Extra:    extra,
	})
}
