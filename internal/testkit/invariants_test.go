package testkit

import (
	"strings"
	"testing"

	"tscan/internal/diag"
	"tscan/internal/lexer"
	"tscan/internal/token"
)

func TestStreamInvariantsHold(t *testing.T) {
	text := []byte("#include \"a.h\"\nint f(int x) {\n  return x / 0; // zero\n}\n")
	s, err := lexer.Tokenize("a.c", "", text)
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckStreamInvariants(s, text); err != nil {
		t.Fatal(err)
	}
}

func TestStreamInvariantsCatchBrokenStreams(t *testing.T) {
	if err := CheckStreamInvariants(&token.Stream{}, nil); err == nil {
		t.Fatal("stream without EOF must fail")
	}
	s := &token.Stream{Tokens: []token.Token{
		{Kind: token.Ident, Text: "x", Line: 9},
		{Kind: token.EOF},
	}}
	if err := CheckStreamInvariants(s, []byte("x\n")); err == nil || !strings.Contains(err.Error(), "outside") {
		t.Fatalf("line out of range must fail, got %v", err)
	}
}

func TestDiagnosticInvariants(t *testing.T) {
	d := func(line uint32, configs ...string) diag.Diagnostic {
		return diag.Diagnostic{
			Severity:  diag.SevError,
			ID:        "zerodiv",
			Message:   "Division by zero.",
			Locations: []diag.Location{{File: "a.c", Line: line}},
			Configs:   configs,
		}
	}
	if err := CheckDiagnosticInvariants([]diag.Diagnostic{d(1, ""), d(2, "A", "B")}); err != nil {
		t.Fatal(err)
	}
	cases := map[string][]diag.Diagnostic{
		"duplicate": {d(1), d(1)},
		"unsorted":  {d(2), d(1)},
		"configs":   {d(1, "A", "A")},
		"empty":     {{ID: "x"}},
	}
	for name, diags := range cases {
		if err := CheckDiagnosticInvariants(diags); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
