package lexer_test

import (
	"errors"
	"slices"
	"testing"

	"tscan/internal/lexer"
	"tscan/internal/token"
)

func texts(s *token.Stream) []string {
	out := make([]string, 0, s.Len())
	for _, tok := range s.Tokens[:s.Len()] {
		out = append(out, tok.Text)
	}
	return out
}

func TestTokenizeBasics(t *testing.T) {
	src := "int main(void) {\n  x <<= 0x1Fu; s = \"a\\\"b\"; c = '\\n';\n  return a->b;\n}\n"
	s, err := lexer.Tokenize("a.c", "", []byte(src))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []string{
		"int", "main", "(", "void", ")", "{",
		"x", "<<=", "0x1Fu", ";", "s", "=", `"a\"b"`, ";", "c", "=", `'\n'`, ";",
		"return", "a", "->", "b", ";",
		"}",
	}
	if got := texts(s); !slices.Equal(got, want) {
		t.Fatalf("tokens:\n got %q\nwant %q", got, want)
	}
	if s.Tokens[0].Kind != token.Keyword || s.Tokens[1].Kind != token.Ident {
		t.Errorf("kinds: %v %v", s.Tokens[0].Kind, s.Tokens[1].Kind)
	}
	if s.At(s.Len()).Kind != token.EOF {
		t.Errorf("stream must end with EOF")
	}
	if line := s.Tokens[18].Line; line != 3 {
		t.Errorf("line of return = %d, want 3", line)
	}
	if j := s.Link(5); s.At(j).Text != "}" {
		t.Errorf("Link({) = %d", j)
	}
}

func TestIncludesAndDirectives(t *testing.T) {
	src := "#include \"util.h\"\n  #  include <stdio.h> // system\n#pragma once\nint x;\n"
	s, err := lexer.Tokenize("a.c", "", []byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Includes) != 2 {
		t.Fatalf("includes = %+v", s.Includes)
	}
	if s.Includes[0].Path != "util.h" || s.Includes[0].System || s.Includes[0].Line != 1 {
		t.Errorf("first include %+v", s.Includes[0])
	}
	if s.Includes[1].Path != "stdio.h" || !s.Includes[1].System {
		t.Errorf("second include %+v", s.Includes[1])
	}
	if got := texts(s); !slices.Equal(got, []string{"int", "x", ";"}) {
		t.Errorf("directives leaked into tokens: %q", got)
	}
}

func TestInlineSuppressions(t *testing.T) {
	src := "// tscan-suppress nullPointer\n*p = 0;\nq = 1; // tscan-suppress\n/* tscan-suppress a,b */\n"
	s, err := lexer.Tokenize("a.c", "", []byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Suppressions) != 3 {
		t.Fatalf("suppressions = %+v", s.Suppressions)
	}
	own, trailing, block := s.Suppressions[0], s.Suppressions[1], s.Suppressions[2]
	if own.Trailing || own.TargetLine() != 2 || !slices.Equal(own.IDs, []string{"nullPointer"}) {
		t.Errorf("own-line marker %+v", own)
	}
	if !trailing.Trailing || trailing.TargetLine() != 3 || trailing.IDs != nil {
		t.Errorf("trailing marker %+v", trailing)
	}
	if block.TargetLine() != 5 || len(block.IDs) != 2 {
		t.Errorf("block marker %+v", block)
	}
}

func TestSyntaxErrors(t *testing.T) {
	s, err := lexer.Tokenize("a.c", "", []byte("s = \"abc\nint y; /* open"))
	if !errors.Is(err, lexer.ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}
	var lexErr *lexer.Error
	if !errors.As(err, &lexErr) || lexErr.Line != 1 {
		t.Fatalf("first error = %v", err)
	}
	// лексер не останавливается на ошибке
	if got := texts(s); !slices.Contains(got, "y") {
		t.Fatalf("tokens after error lost: %q", got)
	}
}

func TestSimplify(t *testing.T) {
	s, err := lexer.Tokenize("a.c", "", []byte(`register int x = (y); f(z); return (0); s = "a" "b"; n = (int) v;`))
	if err != nil {
		t.Fatal(err)
	}
	got := texts(s.Simplify())
	want := []string{
		"int", "x", "=", "y", ";",
		"f", "(", "z", ")", ";",
		"return", "0", ";",
		"s", "=", `"ab"`, ";",
		"n", "=", "(", "int", ")", "v", ";",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("simplified:\n got %q\nwant %q", got, want)
	}
}
