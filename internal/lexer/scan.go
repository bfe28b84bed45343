package lexer

import "tscan/internal/token"

func isIdentStart(b byte) bool {
	return b == '_' || b == '$' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b >= 0x80
}

func isIdentContinue(b byte) bool {
	return isIdentStart(b) || isDec(b)
}

func isDec(b byte) bool { return b >= '0' && b <= '9' }

func (lx *Lexer) scanIdent() token.Token {
	start := lx.cursor.Mark()
	for isIdentContinue(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	text := lx.text(sp)
	kind := token.Ident
	if token.LookupKeyword(text) {
		kind = token.Keyword
	}
	return token.Token{Kind: kind, Span: sp, Text: text}
}

// Числа разбираются грубо: 0x1F, 1.5e-3, 10UL, .5f, 1'000 дают одну лексему.
// Значение чекерам пока не нужно, важна только граница токена.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	for {
		b := lx.cursor.Peek()
		switch {
		case isIdentContinue(b) || b == '.':
			lx.cursor.Bump()
			if (b == 'e' || b == 'E' || b == 'p' || b == 'P') && (lx.cursor.Peek() == '+' || lx.cursor.Peek() == '-') {
				lx.cursor.Bump()
			}
		case b == '\'' && isIdentContinue(lx.cursor.PeekAt(1)):
			// разделитель разрядов C++14
			lx.cursor.Bump()
		default:
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.Number, Span: sp, Text: lx.text(sp)}
		}
	}
}

// scanQuoted: "..." и '...' с escape-последовательностями. Перевод строки внутри
// литерала считается ошибкой; токен обрывается перед ним.
func (lx *Lexer) scanQuoted(quote byte, kind token.Kind) token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch b {
		case quote:
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
		case '\\':
			lx.cursor.Bump()
			lx.cursor.Bump()
			continue
		case '\n':
			sp := lx.cursor.SpanFrom(start)
			lx.errAt(sp.Start, "newline in "+kind.String()+" literal")
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		}
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errAt(sp.Start, "unterminated "+kind.String()+" literal")
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}

// Жадность: сначала 3-символьные, затем 2-символьные, затем один байт.
var puncts3 = []string{"<<=", ">>=", "...", "->*", "<=>"}

var puncts2 = []string{
	"->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "::", "##", ".*",
}

func (lx *Lexer) scanPunct() token.Token {
	start := lx.cursor.Mark()
	emit := func() token.Token {
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: token.Punct, Span: sp, Text: lx.text(sp)}
	}
	for _, p := range puncts3 {
		if lx.cursor.EatString(p) {
			return emit()
		}
	}
	for _, p := range puncts2 {
		if lx.cursor.EatString(p) {
			return emit()
		}
	}
	lx.cursor.Bump()
	return emit()
}
