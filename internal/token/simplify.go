package token

import "slices"

// Simplify returns a copy of the stream with a few normalisations applied, the
// form SimplifiedRunner checkers expect:
//   - adjacent string literals are joined ("a" "b" -> "ab")
//   - parentheses around a lone identifier or literal are dropped when they
//     are not a call or a cast: "x = (y);" -> "x = y;"
//   - storage and qualifier keywords that do not change semantics for pattern
//     checks (register, volatile, inline, restrict) are removed
func (s *Stream) Simplify() *Stream {
	out := *s
	toks := make([]Token, 0, len(s.Tokens))
	for i := 0; i < len(s.Tokens); i++ {
		tok := s.Tokens[i]

		if tok.Kind == Keyword {
			switch tok.Text {
			case "register", "volatile", "inline", "restrict":
				continue
			}
		}

		if tok.Kind == String && len(toks) > 0 && toks[len(toks)-1].Kind == String {
			prev := &toks[len(toks)-1]
			prev.Text = prev.Text[:len(prev.Text)-1] + tok.Text[1:]
			prev.Span = prev.Span.Cover(tok.Span)
			continue
		}

		if tok.Is("(") && i+2 < len(s.Tokens) && s.Tokens[i+2].Is(")") {
			inner := s.Tokens[i+1]
			var prev Token
			if len(toks) > 0 {
				prev = toks[len(toks)-1]
			}
			isCall := prev.Kind == Ident || prev.Is(")") || prev.Is("]") || (prev.Kind == Keyword && prev.Text != "return")
			if !isCall && (inner.Kind == Ident || inner.IsLiteral()) && !castFollows(s, i+3) {
				toks = append(toks, inner)
				i += 2
				continue
			}
		}

		toks = append(toks, tok)
	}
	out.Tokens = slices.Clip(toks)
	return &out
}

// castFollows: in "(T) x" an identifier in parens followed by an operand is a cast.
func castFollows(s *Stream, i int) bool {
	next := s.At(i)
	return next.Kind == Ident || next.IsLiteral() || next.Is("(")
}
