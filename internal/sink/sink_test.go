package sink

import (
	"testing"

	"tscan/internal/diag"
	"tscan/internal/report"
	"tscan/internal/suppress"
)

func finding(id, file string, line uint32, cfg string) diag.Diagnostic {
	return diag.Diagnostic{
		Severity:  diag.SevError,
		ID:        id,
		Message:   id + " here",
		Unit:      file,
		Locations: []diag.Location{{File: file, Line: line}},
		Configs:   []string{cfg},
	}
}

func TestRecordIsIdempotent(t *testing.T) {
	s := New(nil, nil)
	d := finding("nullPointer", "a.c", 3, "")

	if got := s.Record(d); got != Emitted {
		t.Fatalf("first Record = %v", got)
	}
	for range 3 {
		if got := s.Record(d); got != Duplicate {
			t.Fatalf("repeated Record = %v", got)
		}
	}
	if n := len(s.Flush()); n != 1 {
		t.Fatalf("Flush returned %d diagnostics, want 1", n)
	}
	// unit checked again in the same session
	s.Record(d)
	if n := len(s.Flush()); n != 0 {
		t.Fatalf("second Flush returned %d diagnostics, want 0", n)
	}
	if s.Emitted() != 1 || s.Errors() != 1 {
		t.Fatalf("counters = %d/%d", s.Emitted(), s.Errors())
	}
}

func TestDuplicateUnionsConfigs(t *testing.T) {
	s := New(nil, nil)
	s.Record(finding("x", "a.c", 1, "A"))
	s.Record(finding("x", "a.c", 1, "B"))
	s.Record(finding("x", "a.c", 1, "A"))

	out := s.Flush()
	if len(out) != 1 {
		t.Fatalf("expected one diagnostic, got %d", len(out))
	}
	if got := out[0].Configs; len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("configs = %v, want [A B]", got)
	}
}

func TestSuppressionScopes(t *testing.T) {
	rules, err := suppress.NewList(suppress.Rule{ID: "style*"})
	if err != nil {
		t.Fatal(err)
	}
	if err := rules.AddLocal("a.c", suppress.Rule{ID: "local", File: "a.c", Line: 2}); err != nil {
		t.Fatal(err)
	}
	var col report.Collector
	s := New(rules, &col)

	cases := []struct {
		d    diag.Diagnostic
		want Outcome
	}{
		{finding("styleIssue", "b.c", 1, ""), Suppressed},
		{finding("local", "a.c", 2, ""), Suppressed},
		{finding("local", "a.c", 3, ""), Emitted},
		{finding("other", "a.c", 2, ""), Emitted},
	}
	for _, tc := range cases {
		if got := s.Record(tc.d); got != tc.want {
			t.Errorf("Record(%s %s) = %v, want %v", tc.d.ID, tc.d.Primary(), got, tc.want)
		}
	}
	s.Flush()
	if s.Emitted() != 2 || s.Suppressed() != 2 {
		t.Fatalf("emitted/suppressed = %d/%d", s.Emitted(), s.Suppressed())
	}
	if len(col.Findings()) != 2 {
		t.Fatalf("reporter got %d diagnostics", len(col.Findings()))
	}

	// local rule is gone after the flush
	b := finding("local", "a.c", 2, "")
	b.Message = "another message"
	if got := s.Record(b); got != Emitted {
		t.Fatalf("local rule survived Flush: %v", got)
	}
}

func TestMergeIsUnion(t *testing.T) {
	a := New(nil, nil)
	a.Record(finding("x", "a.c", 1, "A"))
	a.Record(finding("y", "a.c", 2, ""))

	b := New(nil, nil)
	b.Record(finding("x", "a.c", 1, "B"))
	b.Record(finding("z", "b.c", 1, ""))

	ab := New(nil, nil)
	ab.Merge(a)
	ab.Merge(b)
	ab.Merge(b)

	ba := New(nil, nil)
	ba.Merge(b)
	ba.Merge(a)

	if ab.Emitted() != 3 || ba.Emitted() != 3 {
		t.Fatalf("emitted = %d/%d, want 3", ab.Emitted(), ba.Emitted())
	}
	fa, fb := ab.Fingerprints(), ba.Fingerprints()
	for i := range fa {
		if fa[i] != fb[i] {
			t.Fatalf("fingerprint sets differ at %d", i)
		}
	}
	for _, d := range ab.Flush() {
		if d.ID == "x" && len(d.Configs) != 2 {
			t.Fatalf("configs of x = %v", d.Configs)
		}
	}
}
