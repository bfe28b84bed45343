package lexer

import (
	"strings"

	"tscan/internal/token"
)

// skipTrivia пропускает пробелы, переводы строк, комментарии и директивы.
// Комментарии и директивы попадают в stream.Trivia.
func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case b == '\n':
			lx.cursor.Bump()
			lx.atLineStart = true
		case b == ' ' || b == '\t' || b == '\r' || b == '\f' || b == '\v':
			lx.cursor.Bump()
		case b == '\\' && lx.cursor.PeekAt(1) == '\n':
			// склейка строк вне директив
			lx.cursor.Bump()
			lx.cursor.Bump()
		case b == '/' && lx.cursor.PeekAt(1) == '/':
			lx.scanLineComment()
		case b == '/' && lx.cursor.PeekAt(1) == '*':
			lx.scanBlockComment()
		case b == '#' && lx.atLineStart:
			lx.scanDirective()
		default:
			return
		}
	}
}

func (lx *Lexer) scanLineComment() {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		lx.cursor.Bump()
	}
	lx.addComment(token.TriviaLineComment, lx.cursor.SpanFrom(start))
}

// /* ... */ без вложенности, как в C
func (lx *Lexer) scanBlockComment() {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		if lx.cursor.EatString("*/") {
			lx.addComment(token.TriviaBlockComment, lx.cursor.SpanFrom(start))
			return
		}
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errAt(sp.Start, "unterminated block comment")
	lx.addComment(token.TriviaBlockComment, sp)
}

// scanDirective съедает строку препроцессора (с учётом '\' в конце строки).
// Условные директивы к этому моменту уже раскрыты; остаются #include,
// #pragma, #error и подобные.
func (lx *Lexer) scanDirective() {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '\\' && lx.cursor.PeekAt(1) == '\n' {
			lx.cursor.Bump()
			lx.cursor.Bump()
			continue
		}
		if b == '\n' {
			break
		}
		// комментарий в хвосте директивы разбирается отдельно
		if b == '/' && (lx.cursor.PeekAt(1) == '/' || lx.cursor.PeekAt(1) == '*') {
			break
		}
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	line := lx.file.LineOf(sp.Start)
	text := lx.text(sp)
	lx.stream.Trivia = append(lx.stream.Trivia, token.Trivia{
		Kind: token.TriviaDirective,
		Span: sp,
		Line: line,
		Text: text,
	})
	if inc, ok := parseInclude(text); ok {
		inc.Line = line
		lx.stream.Includes = append(lx.stream.Includes, inc)
	}
	// хвостовой комментарий директивы должен считаться trailing
	lx.lastTokLine = line
}

// parseInclude разбирает `#include "x.h"` и `#include <x.h>`.
func parseInclude(directive string) (token.Include, bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(directive), "#"))
	if !strings.HasPrefix(rest, "include") {
		return token.Include{}, false
	}
	rest = strings.TrimSpace(strings.TrimPrefix(rest, "include"))
	if len(rest) < 2 {
		return token.Include{}, false
	}
	var closer byte
	switch rest[0] {
	case '"':
		closer = '"'
	case '<':
		closer = '>'
	default:
		return token.Include{}, false
	}
	end := strings.IndexByte(rest[1:], closer)
	if end <= 0 {
		return token.Include{}, false
	}
	return token.Include{Path: rest[1 : 1+end], System: closer == '>'}, true
}
