package suppress

import (
	"errors"
	"testing"

	"tscan/internal/diag"
)

func finding(id, file string, line uint32) *diag.Diagnostic {
	return &diag.Diagnostic{ID: id, Unit: file, Locations: []diag.Location{{File: file, Line: line}}}
}

func TestRuleMatches(t *testing.T) {
	cases := []struct {
		name string
		rule Rule
		d    *diag.Diagnostic
		want bool
	}{
		{"id only", Rule{ID: "nullPointer"}, finding("nullPointer", "a.c", 3), true},
		{"id glob", Rule{ID: "null*"}, finding("nullPointerArith", "a.c", 3), true},
		{"other id", Rule{ID: "null*"}, finding("uninitvar", "a.c", 3), false},
		{"file glob", Rule{ID: "*", File: "src/**/*.h"}, finding("x", "src/a/b/c.h", 1), true},
		{"file mismatch", Rule{ID: "*", File: "src/*.c"}, finding("x", "lib/a.c", 1), false},
		{"line", Rule{ID: "x", File: "a.c", Line: 3}, finding("x", "a.c", 3), true},
		{"other line", Rule{ID: "x", File: "a.c", Line: 3}, finding("x", "a.c", 4), false},
	}
	for _, tc := range cases {
		if got := tc.rule.Matches(tc.d); got != tc.want {
			t.Errorf("%s: Matches = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestParseRule(t *testing.T) {
	r, err := Parse("nullPointer:src/a.c:12")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r != (Rule{ID: "nullPointer", File: "src/a.c", Line: 12}) {
		t.Fatalf("unexpected rule %+v", r)
	}
	r, err = Parse("x:C:/dir/a.c")
	if err != nil || r.File != "C:/dir/a.c" || r.Line != 0 {
		t.Fatalf("windows path: %+v, %v", r, err)
	}
	if _, err := Parse("[bad"); !errors.Is(err, ErrBadPattern) {
		t.Fatalf("expected ErrBadPattern, got %v", err)
	}
}

func TestListLocalScope(t *testing.T) {
	l, err := NewList(Rule{ID: "global*"})
	if err != nil {
		t.Fatal(err)
	}
	if err := l.AddLocal("a.c", Rule{ID: "local", File: "a.c"}); err != nil {
		t.Fatal(err)
	}

	if _, ok := l.Match(finding("globalThing", "b.c", 1)); !ok {
		t.Errorf("global rule should apply to any unit")
	}
	if _, ok := l.Match(finding("local", "a.c", 1)); !ok {
		t.Errorf("local rule should apply to its unit")
	}
	other := finding("local", "a.c", 1)
	other.Unit = "b.c"
	if _, ok := l.Match(other); ok {
		t.Errorf("local rule must not leak to other units")
	}

	l.ClearLocal("a.c")
	if _, ok := l.Match(finding("local", "a.c", 1)); ok {
		t.Errorf("local rule survived ClearLocal")
	}
	if got := l.Unmatched(); len(got) != 0 {
		t.Errorf("Unmatched = %v, want none", got)
	}
}

func TestParseComment(t *testing.T) {
	cases := []struct {
		text string
		ids  []string
		ok   bool
	}{
		{"// tscan-suppress", nil, true},
		{"// tscan-suppress nullPointer", []string{"nullPointer"}, true},
		{"/* tscan-suppress a, b */", []string{"a", "b"}, true},
		{"// tscan-suppress a - known false positive", []string{"a"}, true},
		{"// tscan-suppressed a", nil, false},
		{"// plain comment", nil, false},
	}
	for _, tc := range cases {
		ids, ok := ParseComment(tc.text)
		if ok != tc.ok || len(ids) != len(tc.ids) {
			t.Errorf("ParseComment(%q) = %v, %v", tc.text, ids, ok)
			continue
		}
		for i := range ids {
			if ids[i] != tc.ids[i] {
				t.Errorf("ParseComment(%q)[%d] = %q", tc.text, i, ids[i])
			}
		}
	}
}

func TestInlineTargetLine(t *testing.T) {
	own := Inline{Line: 4}
	trailing := Inline{Line: 4, Trailing: true, IDs: []string{"a"}}
	if own.TargetLine() != 5 || trailing.TargetLine() != 4 {
		t.Fatalf("target lines = %d, %d", own.TargetLine(), trailing.TargetLine())
	}
	rules := own.Rules("u.c")
	if len(rules) != 1 || rules[0].ID != "*" || rules[0].File != "u.c" || rules[0].Line != 5 {
		t.Fatalf("unexpected rules %+v", rules)
	}
}
