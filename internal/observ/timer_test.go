package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerAccumulatesRuns(t *testing.T) {
	tm := NewTimer()
	for range 3 {
		tm.Track("tokenize")()
	}
	idx := tm.Begin("checker:goto")
	tm.End(idx)
	tm.End(idx) // второй End ничего не добавляет

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(r.Phases))
	}
	if r.Phases[0].Name != "tokenize" || r.Phases[0].Runs != 3 {
		t.Errorf("unexpected first phase %+v", r.Phases[0])
	}
	if r.Phases[1].Runs != 1 {
		t.Errorf("double End counted twice: %+v", r.Phases[1])
	}
}

func TestSummaryOrdersBySlowest(t *testing.T) {
	tm := NewTimer()
	tm.Track("expand")()
	stop := tm.Track("tokenize")
	time.Sleep(2 * time.Millisecond)
	stop()
	tm.Track("checker:zeroDivision")()

	lines := strings.Split(tm.Summary(), "\n")
	if len(lines) != 4 {
		t.Fatalf("unexpected summary:\n%s", tm.Summary())
	}
	if !strings.HasPrefix(lines[0], "tokenize") || !strings.HasPrefix(lines[3], "total") {
		t.Fatalf("tokenize must lead and total close:\n%s", tm.Summary())
	}
	r := tm.Report()
	if r.TotalMS < r.Phases[1].DurationMS {
		t.Fatalf("total %v below tokenize %v", r.TotalMS, r.Phases[1].DurationMS)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Track("x")()
	if got := tm.Report(); len(got.Phases) != 0 {
		t.Fatalf("nil timer reported %+v", got)
	}
}
