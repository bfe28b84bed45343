package checks

import (
	"context"
	"strings"
	"testing"

	"tscan/internal/checker"
	"tscan/internal/diag"
	"tscan/internal/lexer"
)

type collect struct{ got []diag.Diagnostic }

func (c *collect) Report(d diag.Diagnostic) { c.got = append(c.got, d) }
func (c *collect) Fault(error)              {}

func run(t *testing.T, c checker.Checker, src string, simplified bool) []diag.Diagnostic {
	t.Helper()
	s, err := lexer.Tokenize("t.c", "", []byte(src))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	var out collect
	if simplified {
		c.(checker.SimplifiedRunner).RunOnSimplifiedTokens(context.Background(), s.Simplify(), &out)
	} else {
		c.RunOnTokens(context.Background(), s, &out)
	}
	return out.got
}

func TestZeroDiv(t *testing.T) {
	src := "a = b / 0;\nc = d % 0x0u;\ne = f / 10;\ng = h / (0);\n"
	got := run(t, &ZeroDiv{}, src, false)
	if len(got) != 2 || got[0].Primary().Line != 1 || got[1].Primary().Line != 2 {
		t.Fatalf("plain pass: %s", diag.FormatShort(got, false))
	}
	got = run(t, &ZeroDiv{}, src, true)
	if len(got) != 3 || got[2].Primary().Line != 4 {
		t.Fatalf("simplified pass: %s", diag.FormatShort(got, false))
	}
}

func TestAssignInCondition(t *testing.T) {
	src := "if (x = 1) {}\nif (x == 1) {}\nwhile (p = next(p)) {}\nif (f(a = 1)) {}\n"
	got := run(t, &AssignInCondition{}, src, false)
	want := "style assignIfError t.c:1 Assignment 'x=...' used as the condition of 'if'.\n" +
		"style assignIfError t.c:3 Assignment 'p=...' used as the condition of 'while'."
	if out := strings.TrimSpace(diag.FormatShort(got, false)); out != want {
		t.Fatalf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestDescriptionsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range All() {
		for _, d := range c.Descriptions() {
			if seen[d.ID] {
				t.Errorf("duplicate id %s", d.ID)
			}
			seen[d.ID] = true
		}
	}
}
