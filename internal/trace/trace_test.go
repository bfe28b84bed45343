package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestLevelScopes(t *testing.T) {
	if LevelUnit.ShouldEmit(ScopeConfig) {
		t.Errorf("unit level must not emit config spans")
	}
	if !LevelConfig.ShouldEmit(ScopeUnit) || !LevelDebug.ShouldEmit(ScopeChecker) {
		t.Errorf("coarser scopes must be emitted")
	}
	if LevelError.ShouldEmit(ScopeSession) {
		t.Errorf("error level writes nothing")
	}
	for _, name := range []string{"off", "error", "session", "unit", "config", "debug"} {
		l, err := ParseLevel(name)
		if err != nil || l.String() != name {
			t.Errorf("ParseLevel(%q) = %v, %v", name, l, err)
		}
	}
}

func TestStartNestsSpans(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), ring)

	ctx, unit := Start(ctx, ScopeUnit, "check")
	_, cfg := Start(ctx, ScopeConfig, "config:A")
	cfg.End("")
	unit.WithExtra("configs", "1").End("done")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	if events[1].ParentID != events[0].SpanID {
		t.Errorf("config span parent = %d, want %d", events[1].ParentID, events[0].SpanID)
	}
	if events[3].Kind != KindSpanEnd || events[3].Extra["configs"] != "1" {
		t.Errorf("unexpected end event %+v", events[3])
	}
}

func TestStreamFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelUnit, FormatText)
	ctx := WithTracer(context.Background(), st)

	ctx, unit := Start(ctx, ScopeUnit, "check")
	_, cfg := Start(ctx, ScopeConfig, "config:A")
	cfg.End("")
	Point(ctx, ScopeUnit, "diagnostic", "nullPointer", nil)
	unit.End("")
	if err := st.Flush(); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if strings.Contains(out, "config:A") {
		t.Errorf("config span leaked at unit level:\n%s", out)
	}
	if strings.Count(out, "\n") != 3 {
		t.Errorf("expected 3 lines, got:\n%s", out)
	}
}

func TestRingWraps(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		ring.Emit(&Event{Kind: KindPoint, Scope: ScopeSession, Name: name})
	}
	got := ring.Snapshot()
	if len(got) != 2 || got[0].Name != "b" || got[1].Name != "c" {
		t.Fatalf("unexpected snapshot %+v", got)
	}
	if ring.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", ring.Dropped())
	}
	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "... 1 earlier events dropped\n") {
		t.Fatalf("dump must mention dropped events:\n%s", buf.String())
	}
}

func TestUnitFollowsNestedSpans(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), ring)

	ctx, unit := Start(ctx, ScopeUnit, "src/a.c")
	if got := InFlight(); len(got) != 1 || got[0].Unit != "src/a.c" {
		t.Fatalf("in flight = %+v", got)
	}
	cctx, cfg := Start(ctx, ScopeConfig, "A")
	Point(cctx, ScopeChecker, "finding", "zerodiv", nil)
	cfg.End("")
	unit.End("")
	if got := InFlight(); len(got) != 0 {
		t.Fatalf("closed unit still in flight: %+v", got)
	}

	for _, ev := range ring.Snapshot() {
		if ev.Unit != "src/a.c" {
			t.Errorf("event %s %q has unit %q", ev.Kind, ev.Name, ev.Unit)
		}
	}
	line := string(FormatEvent(&ring.Snapshot()[2], FormatText))
	if !strings.Contains(line, "finding (zerodiv) @src/a.c") {
		t.Errorf("text line lacks the unit: %q", line)
	}
}

func TestHeartbeatNamesOpenUnits(t *testing.T) {
	start := time.Now()
	ev := beatEvent(3, start.Add(2*time.Second), []UnitActivity{{Unit: "a.c", Since: start}, {Unit: "b.c", Since: start.Add(time.Second)}})
	if ev.Kind != KindHeartbeat || ev.Detail != "#3" {
		t.Fatalf("unexpected beat %+v", ev)
	}
	if ev.Extra["inflight"] != "a.c,b.c" || ev.Extra["oldest"] != "2s" {
		t.Fatalf("unexpected extra %v", ev.Extra)
	}
	if idle := beatEvent(1, start, nil); idle.Extra != nil {
		t.Fatalf("idle beat must carry no units: %v", idle.Extra)
	}

	var nilBeat *Heartbeat
	nilBeat.Stop()
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatal("no heartbeat without an enabled tracer")
	}
	h := StartHeartbeat(NewRingTracer(4, LevelSession), time.Millisecond)
	h.Stop()
	h.Stop()
}

func TestWithTracerKeepsSpan(t *testing.T) {
	ctx := WithSpanContext(context.Background(), SpanContext{SpanID: 7, Unit: "a.c"})
	ctx = WithTracer(ctx, Nop)
	if sc := CurrentSpan(ctx); sc.SpanID != 7 || sc.Unit != "a.c" {
		t.Fatalf("span lost: %+v", sc)
	}
	if FromContext(context.Background()) != Nop {
		t.Fatal("missing tracer must read as Nop")
	}
}

func TestParseModeAndFormat(t *testing.T) {
	for _, name := range []string{"stream", "ring", "both"} {
		m, err := ParseMode(name)
		if err != nil || m.String() != name {
			t.Errorf("ParseMode(%q) = %v, %v", name, m, err)
		}
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Error("unknown mode must fail")
	}
	if FormatFor(FormatAuto, "out.jsonl") != FormatNDJSON || FormatFor(FormatAuto, "-") != FormatText {
		t.Error("auto format must follow the extension")
	}
	if FormatFor(FormatText, "out.ndjson") != FormatText {
		t.Error("explicit format wins")
	}
}

func TestNDJSON(t *testing.T) {
	data := FormatEvent(&Event{Kind: KindPoint, Scope: ScopeChecker, Name: "x"}, FormatNDJSON)
	if !bytes.Contains(data, []byte(`"scope":"checker"`)) || data[len(data)-1] != '\n' {
		t.Fatalf("unexpected ndjson %s", data)
	}
}
