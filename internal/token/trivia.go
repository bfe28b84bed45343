package token

import "tscan/internal/source"

type TriviaKind uint8

const (
	TriviaLineComment TriviaKind = iota
	TriviaBlockComment
	TriviaDirective // #include, #pragma, ... left in the expanded text
)

// Trivia is text between tokens that checkers may still care about.
type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Line uint32
	Text string
	// Trailing is set when code precedes the trivia on the same line.
	Trailing bool
}

// Include is one #include found in the expanded text.
type Include struct {
	Path   string
	Line   uint32
	System bool // <...>
}
