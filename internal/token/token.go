package token

import "tscan/internal/source"

// Token represents a single source token.
type Token struct {
	Kind Kind
	Text string
	Span source.Span
	Line uint32 // 1-based line in the unit
}

// Is reports whether the token is a keyword or punctuation with the given text.
func (t Token) Is(text string) bool {
	return (t.Kind == Punct || t.Kind == Keyword) && t.Text == text
}

func (t Token) IsIdent() bool { return t.Kind == Ident }

func (t Token) IsLiteral() bool {
	return t.Kind == Number || t.Kind == String || t.Kind == Char
}
