package unused

import (
	"errors"
	"slices"
	"testing"

	"tscan/internal/diag"
	"tscan/internal/lexer"
	"tscan/internal/suppress"
)

func facts(t *testing.T, unit, src string) Facts {
	t.Helper()
	s, err := lexer.Tokenize(unit, "", []byte(src))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	return Collect(s)
}

func TestCollect(t *testing.T) {
	f := facts(t, "a.c", "static int f(int a, char *b) { return g(a); }\nint proto(void);\nint main(void) { return f(1, 0); }\n")
	if len(f.Defs) != 2 || f.Defs[0].Name != "f" || f.Defs[1].Name != "main" {
		t.Fatalf("defs = %+v", f.Defs)
	}
	if f.Defs[0].Signature != "f(int a, char *b)" || f.Defs[1].Loc.Line != 3 {
		t.Errorf("def details %+v", f.Defs)
	}
	for _, name := range []string{"f", "g", "a"} {
		if _, ok := slices.BinarySearch(f.Refs, name); !ok {
			t.Errorf("missing reference %q in %v", name, f.Refs)
		}
	}
	if _, ok := slices.BinarySearch(f.Refs, "main"); ok {
		t.Errorf("definition site counted as reference")
	}
	if _, ok := slices.BinarySearch(f.Refs, "proto"); ok {
		t.Errorf("prototype counted as reference")
	}
}

func TestCollectDeclarationsAndCalls(t *testing.T) {
	src := "static int helper(void);\nint *make(int n) const;\nint x = init();\nREGISTER(handler);\n"
	f := facts(t, "a.c", src)
	if len(f.Defs) != 0 {
		t.Fatalf("no definitions expected, got %+v", f.Defs)
	}
	for _, name := range []string{"helper", "make"} {
		if _, ok := slices.BinarySearch(f.Refs, name); ok {
			t.Errorf("declaration of %q counted as reference", name)
		}
	}
	for _, name := range []string{"init", "REGISTER", "handler"} {
		if _, ok := slices.BinarySearch(f.Refs, name); !ok {
			t.Errorf("missing reference %q in %v", name, f.Refs)
		}
	}
}

func TestCollectKeepsUnusedFunctionMarkers(t *testing.T) {
	src := "int a(void) { return 0; } // tscan-suppress unusedFunction\n" +
		"// tscan-suppress\nint b(void) { return 0; }\n" +
		"int c(void) { return 0; } // tscan-suppress zerodiv\n"
	f := facts(t, "a.c", src)
	want := []suppress.Rule{
		{ID: "unusedFunction", File: "a.c", Line: 1},
		{ID: "unusedFunction", File: "a.c", Line: 3},
	}
	if !slices.Equal(f.Suppress, want) {
		t.Fatalf("kept rules = %+v, want %+v", f.Suppress, want)
	}

	an := NewAnalyzer()
	_ = an.AddUnit(f)
	_ = an.AddUnit(f)
	if got := an.Suppressions()["a.c"]; !slices.Equal(got, want) {
		t.Fatalf("analyzer rules = %+v", got)
	}
}

func TestCrossUnitReference(t *testing.T) {
	a := facts(t, "a.c", "void f(void) {}\n")
	b := facts(t, "b.c", "int main(void) { f(); return 0; }\n")

	an := NewAnalyzer()
	if err := an.AddUnit(a); err != nil {
		t.Fatal(err)
	}
	if err := an.AddUnit(b); err != nil {
		t.Fatal(err)
	}
	got, err := an.Finalize(nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("A+B: %s, %v", diag.FormatShort(got, false), err)
	}

	only := NewAnalyzer()
	_ = only.AddUnit(a)
	got, err = only.Finalize(nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := "style unusedFunction a.c:1 The function 'f' is never used."; diag.FormatShort(got, false) != want {
		t.Fatalf("A only: %q", diag.FormatShort(got, false))
	}
}

func TestFinalizeLifecycle(t *testing.T) {
	an := NewAnalyzer()
	got, err := an.Finalize(nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("empty session: %v, %v", got, err)
	}
	if _, err := an.Finalize(nil); !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("second Finalize: %v", err)
	}
	if err := an.AddUnit(Facts{Unit: "x.c"}); !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("AddUnit after Finalize: %v", err)
	}
	an.Reset()
	if err := an.AddUnit(Facts{Unit: "x.c"}); err != nil {
		t.Fatalf("AddUnit after Reset: %v", err)
	}
}

func TestEntryPointPatterns(t *testing.T) {
	an := NewAnalyzer()
	_ = an.AddUnit(facts(t, "t.c", "void test_one(void) {}\nvoid helper(void) {}\nint main(void) { return 0; }\n"))
	got, err := an.Finalize([]string{"test_*"})
	if err != nil {
		t.Fatal(err)
	}
	// main is only exempt by default; with explicit patterns it must be listed
	want := "style unusedFunction t.c:2 The function 'helper' is never used.\n" +
		"style unusedFunction t.c:3 The function 'main' is never used."
	if out := diag.FormatShort(got, false); out != want {
		t.Fatalf("got:\n%s", out)
	}
}

func TestMergeShards(t *testing.T) {
	left, right := NewAnalyzer(), NewAnalyzer()
	_ = left.AddUnit(facts(t, "a.c", "void f(void) {}\nvoid g(void) {}\n"))
	_ = right.AddUnit(facts(t, "b.c", "int main(void) { f(); return 0; }\n"))
	if err := left.Merge(right); err != nil {
		t.Fatal(err)
	}
	got, _ := left.Finalize(nil)
	if len(got) != 1 || got[0].Message != "The function 'g' is never used." || left.Units() != 2 {
		t.Fatalf("merged: %s (units %d)", diag.FormatShort(got, false), left.Units())
	}
}
