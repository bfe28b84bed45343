package minimize

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
)

func containsAll(needles ...string) Oracle {
	return func(_ context.Context, c Candidate) (bool, error) {
		for _, n := range needles {
			if !strings.Contains(c.Text, n) {
				return false, nil
			}
		}
		return true, nil
	}
}

func numbered(n int, marks map[int]string) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if m, ok := marks[i]; ok {
			fmt.Fprintf(&b, "%s\n", m)
			continue
		}
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return b.String()
}

func TestFixedPoint(t *testing.T) {
	input := numbered(40, map[int]string{7: "int x = 1 / 0;", 31: "return x;"})
	oracle := containsAll("1 / 0", "return x")

	res, err := Minimize(context.Background(), input, oracle, Options{})
	if err != nil {
		t.Fatalf("minimize: %v", err)
	}
	if res.Text != "int x = 1 / 0;\nreturn x;\n" {
		t.Fatalf("unexpected result %q", res.Text)
	}
	if !slices.Equal(res.Lines, []uint32{7, 31}) {
		t.Fatalf("line mapping = %v", res.Lines)
	}
	if res.OriginalLines != 40 || res.Tests == 0 {
		t.Fatalf("unexpected stats %+v", res)
	}

	// 1-minimal: no single remaining line can go
	lines := strings.SplitAfter(res.Text, "\n")
	lines = lines[:len(lines)-1]
	for i := range lines {
		reduced := strings.Join(slices.Delete(slices.Clone(lines), i, i+1), "")
		ok, _ := oracle(context.Background(), Candidate{Text: reduced})
		if ok {
			t.Fatalf("line %d could still be removed from %q", i+1, res.Text)
		}
	}
}

func TestFixedPointIsStable(t *testing.T) {
	oracle := containsAll("a", "b")
	first, err := Minimize(context.Background(), "x\na\ny\nb\nz\n", oracle, Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Minimize(context.Background(), first.Text, oracle, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first.Text != second.Text {
		t.Fatalf("not a fixed point: %q -> %q", first.Text, second.Text)
	}
}

func TestPrecondition(t *testing.T) {
	var calls atomic.Int32
	oracle := func(context.Context, Candidate) (bool, error) {
		calls.Add(1)
		return false, nil
	}
	res, err := Minimize(context.Background(), "a\nb\n", oracle, Options{})
	if !errors.Is(err, ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
	if res.Text != "a\nb\n" {
		t.Fatalf("input must be returned untouched, got %q", res.Text)
	}
	if calls.Load() != 1 {
		t.Fatalf("oracle called %d times, want 1", calls.Load())
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	input := numbered(64, map[int]string{3: "A", 17: "B", 18: "C", 60: "D"})
	oracle := containsAll("A\n", "C\n", "D\n")

	seq, err := Minimize(context.Background(), input, oracle, Options{Jobs: 1})
	if err != nil {
		t.Fatal(err)
	}
	par, err := Minimize(context.Background(), input, oracle, Options{Jobs: 8})
	if err != nil {
		t.Fatal(err)
	}
	if seq.Text != par.Text || !slices.Equal(seq.Lines, par.Lines) {
		t.Fatalf("parallel result %q differs from sequential %q", par.Text, seq.Text)
	}
	if seq.Text != "A\nC\nD\n" {
		t.Fatalf("unexpected result %q", seq.Text)
	}
}

func TestMemoSkipsRepeatedCandidates(t *testing.T) {
	var calls atomic.Int32
	oracle := func(_ context.Context, c Candidate) (bool, error) {
		calls.Add(1)
		return strings.Contains(c.Text, "keep"), nil
	}
	res, err := Minimize(context.Background(), "a\nkeep\nb\nc\n", oracle, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if int(calls.Load()) != res.Tests {
		t.Fatalf("oracle calls %d != reported tests %d", calls.Load(), res.Tests)
	}
}

func TestOracleErrorStops(t *testing.T) {
	boom := errors.New("boom")
	n := 0
	oracle := func(context.Context, Candidate) (bool, error) {
		n++
		if n > 1 {
			return false, boom
		}
		return true, nil
	}
	if _, err := Minimize(context.Background(), "a\nb\nc\n", oracle, Options{}); !errors.Is(err, boom) {
		t.Fatalf("expected oracle error, got %v", err)
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	oracle := func(context.Context, Candidate) (bool, error) {
		cancel()
		return true, nil
	}
	res, err := Minimize(ctx, "a\nb\nc\n", oracle, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Text != "a\nb\nc\n" {
		t.Fatalf("best-so-far must be the input, got %q", res.Text)
	}
}

func TestPartition(t *testing.T) {
	got := partition(7, 3)
	want := []span{{0, 3}, {3, 5}, {5, 7}}
	if !slices.Equal(got, want) {
		t.Fatalf("partition = %v, want %v", got, want)
	}
}

func TestOriginalLine(t *testing.T) {
	c := Candidate{Lines: []uint32{4, 9}}
	if c.OriginalLine(2) != 9 || c.OriginalLine(5) != 5 {
		t.Fatalf("unexpected mapping")
	}
}
