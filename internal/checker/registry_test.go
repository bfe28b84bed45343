package checker

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"tscan/internal/diag"
	"tscan/internal/lexer"
	"tscan/internal/token"
)

type fakeChecker struct {
	name    string
	panics  bool
	faults  bool
	simple  bool
	calls   int
	reports int
}

func (f *fakeChecker) Name() string                { return f.name }
func (f *fakeChecker) Descriptions() []Description { return []Description{{ID: f.name}} }

func (f *fakeChecker) RunOnTokens(_ context.Context, s *token.Stream, r Reporter) {
	f.calls++
	for range f.reports {
		r.Report(diag.Diagnostic{Severity: diag.SevWarning, ID: f.name, Message: "m"})
	}
	if f.faults {
		r.Fault(errors.New("bad state"))
		r.Fault(errors.New("worse state"))
	}
	if f.panics {
		var m map[string]int
		m["boom"] = 1
	}
}

type simpleChecker struct{ fakeChecker }

func (s *simpleChecker) RunOnSimplifiedTokens(ctx context.Context, st *token.Stream, r Reporter) {
	s.RunOnTokens(ctx, st, r)
}

func stream(t *testing.T) *token.Stream {
	t.Helper()
	s, err := lexer.Tokenize("u.c", "A", []byte("int x;"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRunIsolatesFaults(t *testing.T) {
	first := &fakeChecker{name: "first", reports: 1}
	broken := &simpleChecker{fakeChecker{name: "broken", panics: true}}
	faulty := &fakeChecker{name: "faulty", faults: true}
	last := &simpleChecker{fakeChecker{name: "last", reports: 2}}

	reg, err := NewRegistry(first, broken, faulty, last)
	if err != nil {
		t.Fatal(err)
	}
	var bag diag.Bag
	stats := reg.Run(context.Background(), stream(t), diag.BagReporter{Bag: &bag}, nil)

	if !slices.Equal(stats.Faulted, []string{"broken", "faulty"}) {
		t.Fatalf("Faulted = %v", stats.Faulted)
	}
	// broken is not retried on the simplified pass, last runs twice
	if broken.calls != 1 || last.calls != 2 || first.calls != 1 {
		t.Fatalf("calls: broken=%d last=%d first=%d", broken.calls, last.calls, first.calls)
	}

	var internal []diag.Diagnostic
	for _, d := range bag.Items() {
		if d.ID == diag.CoreInternalChecker.ID() {
			internal = append(internal, d)
			continue
		}
		if d.Unit != "u.c" || !slices.Equal(d.Configs, []string{"A"}) {
			t.Errorf("diagnostic not stamped: %+v", d)
		}
	}
	if len(internal) != 2 {
		t.Fatalf("expected 2 internal errors, got %d", len(internal))
	}
	if internal[0].Checker != "broken" || !strings.Contains(internal[0].Message, "panic") {
		t.Errorf("unexpected internal error %+v", internal[0])
	}
	if !strings.Contains(internal[1].Message, "bad state") || strings.Contains(internal[1].Message, "worse") {
		t.Errorf("only the first fault is reported: %q", internal[1].Message)
	}
}

func TestRegistryNames(t *testing.T) {
	_, err := NewRegistry(&fakeChecker{name: "a"}, &fakeChecker{name: "a"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	reg, _ := NewRegistry(&fakeChecker{name: "nullPointer"}, &fakeChecker{name: "nullArith"}, &fakeChecker{name: "bounds"})
	sel, err := reg.Select([]string{"bounds", "null*"})
	if err != nil {
		t.Fatal(err)
	}
	if got := sel.Names(); !slices.Equal(got, []string{"nullPointer", "nullArith", "bounds"}) {
		t.Fatalf("Select kept %v", got)
	}
	if _, err := reg.Select([]string{"nope"}); !errors.Is(err, ErrUnknown) {
		t.Fatalf("expected ErrUnknown, got %v", err)
	}
}
