// Package lexer is the default tokenizer: a tolerant C/C++ lexer over the
// expanded text of one configuration.
package lexer

import (
	"tscan/internal/source"
	"tscan/internal/suppress"
	"tscan/internal/token"
)

type Lexer struct {
	file   *source.File
	cursor Cursor
	stream *token.Stream
	errs   []*Error

	atLineStart bool   // только пробелы с начала строки
	lastTokLine uint32 // строка последнего значимого токена
}

// New prepares a lexer over f.
func New(f *source.File, unit, config string) *Lexer {
	return &Lexer{
		file:        f,
		cursor:      NewCursor(f),
		stream:      &token.Stream{File: f, Unit: unit, Config: config},
		atLineStart: true,
	}
}

// Tokenize lexes text of configuration config of unit. It always returns a
// usable stream; the error, if any, is the first *Error met.
func Tokenize(unit, config string, text []byte) (*token.Stream, error) {
	lx := New(source.NewFile(unit, text), unit, config)
	return lx.Run()
}

// Run lexes the whole file.
func (lx *Lexer) Run() (*token.Stream, error) {
	for {
		tok := lx.Next()
		lx.stream.Tokens = append(lx.stream.Tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	if len(lx.errs) > 0 {
		return lx.stream, lx.errs[0]
	}
	return lx.stream, nil
}

// Errors returns every problem met so far.
func (lx *Lexer) Errors() []*Error { return lx.errs }

// Next возвращает следующий значимый токен; trivia по пути складывается в stream.
// После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	lx.skipTrivia()

	if lx.cursor.EOF() {
		sp := source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
		return token.Token{Kind: token.EOF, Span: sp, Line: lx.file.LineOf(lx.cursor.Off)}
	}

	ch := lx.cursor.Peek()
	var tok token.Token
	switch {
	case isIdentStart(ch):
		tok = lx.scanIdent()
	case isDec(ch), ch == '.' && isDec(lx.cursor.PeekAt(1)):
		tok = lx.scanNumber()
	case ch == '"':
		tok = lx.scanQuoted('"', token.String)
	case ch == '\'':
		tok = lx.scanQuoted('\'', token.Char)
	default:
		tok = lx.scanPunct()
	}
	tok.Line = lx.file.LineOf(tok.Span.Start)
	lx.atLineStart = false
	lx.lastTokLine = tok.Line
	return tok
}

func (lx *Lexer) text(sp source.Span) string {
	return string(lx.file.Content[sp.Start:sp.End])
}

func (lx *Lexer) errAt(off uint32, msg string) {
	lx.errs = append(lx.errs, &Error{Line: lx.file.LineOf(off), Msg: msg})
}

func (lx *Lexer) addComment(kind token.TriviaKind, sp source.Span) {
	line := lx.file.LineOf(sp.Start)
	tr := token.Trivia{
		Kind:     kind,
		Span:     sp,
		Line:     line,
		Text:     lx.text(sp),
		Trailing: lx.lastTokLine == line,
	}
	lx.stream.Trivia = append(lx.stream.Trivia, tr)

	if ids, ok := suppress.ParseComment(tr.Text); ok {
		lx.stream.Suppressions = append(lx.stream.Suppressions, suppress.Inline{
			IDs:      ids,
			Line:     lx.file.LineOf(sp.End - 1), // для блочных комментариев берём строку закрытия
			Trailing: tr.Trailing,
		})
	}
}
