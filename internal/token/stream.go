package token

import (
	"tscan/internal/source"
	"tscan/internal/suppress"
)

// Stream is the tokenized form of one configuration of one unit.
type Stream struct {
	File         *source.File
	Unit         string
	Config       string
	Tokens       []Token // last token is always EOF
	Trivia       []Trivia
	Includes     []Include
	Suppressions []suppress.Inline
}

// Len returns the number of tokens without the trailing EOF.
func (s *Stream) Len() int {
	if s == nil || len(s.Tokens) == 0 {
		return 0
	}
	return len(s.Tokens) - 1
}

// At returns token i, or EOF when i is out of range.
func (s *Stream) At(i int) Token {
	if s == nil || i < 0 || i >= len(s.Tokens) {
		return Token{Kind: EOF}
	}
	return s.Tokens[i]
}

// Match reports whether the tokens starting at i have exactly the given texts.
// An empty pattern element matches any token.
func (s *Stream) Match(i int, texts ...string) bool {
	for k, text := range texts {
		tok := s.At(i + k)
		if tok.Kind == EOF {
			return false
		}
		if text != "" && tok.Text != text {
			return false
		}
	}
	return true
}

// Link returns the index of the bracket matching the one at i, or -1.
func (s *Stream) Link(i int) int {
	open := s.At(i)
	var closer string
	step := 1
	switch open.Text {
	case "(":
		closer = ")"
	case "[":
		closer = "]"
	case "{":
		closer = "}"
	case ")":
		closer, step = "(", -1
	case "]":
		closer, step = "[", -1
	case "}":
		closer, step = "{", -1
	default:
		return -1
	}
	if open.Kind != Punct {
		return -1
	}
	depth := 0
	for j := i; j >= 0 && j < len(s.Tokens); j += step {
		tok := s.Tokens[j]
		if tok.Kind != Punct {
			continue
		}
		switch tok.Text {
		case open.Text:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// Location is the (unit, line) of token i.
func (s *Stream) Location(i int) (string, uint32) {
	return s.Unit, s.At(i).Line
}
