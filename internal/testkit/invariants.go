// Package testkit holds invariant checks shared by package tests and fuzz
// harnesses.
package testkit

import (
	"bytes"
	"fmt"

	"fortio.org/safecast"

	"tscan/internal/diag"
	"tscan/internal/token"
)

// CheckStreamInvariants verifies a token stream produced from text (the
// stream's own file content wins when present):
// 1) the stream ends with exactly one EOF token
// 2) every token line lies within the text, lines never decrease
// 3) every token span lies within the text and spells the token
func CheckStreamInvariants(s *token.Stream, text []byte) error {
	if s == nil {
		return fmt.Errorf("nil stream")
	}
	if s.File != nil {
		text = s.File.Content
	}
	n := len(s.Tokens)
	if n == 0 || s.Tokens[n-1].Kind != token.EOF {
		return fmt.Errorf("stream does not end with EOF")
	}
	lines, err := safecast.Conv[uint32](bytes.Count(text, []byte{'\n'}) + 1)
	if err != nil {
		return fmt.Errorf("line count overflow: %w", err)
	}
	size, err := safecast.Conv[uint32](len(text))
	if err != nil {
		return fmt.Errorf("text size overflow: %w", err)
	}

	var prev uint32
	for i, tok := range s.Tokens[:n-1] {
		if tok.Kind == token.EOF {
			return fmt.Errorf("token %d: EOF before the end", i)
		}
		if tok.Line == 0 || tok.Line > lines {
			return fmt.Errorf("token %d %q: line %d outside 1..%d", i, tok.Text, tok.Line, lines)
		}
		if tok.Line < prev {
			return fmt.Errorf("token %d %q: line %d after line %d", i, tok.Text, tok.Line, prev)
		}
		prev = tok.Line
		if tok.Span.End < tok.Span.Start || tok.Span.End > size {
			return fmt.Errorf("token %d %q: span %v outside text of %d bytes", i, tok.Text, tok.Span, size)
		}
		// текст токена совпадает с исходником (строки и комментарии без склейки)
		if got := string(text[tok.Span.Start:tok.Span.End]); got != tok.Text {
			return fmt.Errorf("token %d: text %q, source %q", i, tok.Text, got)
		}
	}
	return nil
}

// CheckDiagnosticInvariants verifies a deduplicated, sorted diagnostic list:
// every diagnostic has an id and a message, fingerprints are unique and no
// configuration is attributed twice.
func CheckDiagnosticInvariants(diags []diag.Diagnostic) error {
	seen := make(map[diag.Fingerprint]int, len(diags))
	for i := range diags {
		d := &diags[i]
		if d.ID == "" || d.Message == "" {
			return fmt.Errorf("diagnostic %d: empty id or message: %+v", i, *d)
		}
		fp := d.Fingerprint()
		if j, dup := seen[fp]; dup {
			return fmt.Errorf("diagnostics %d and %d share fingerprint %s", j, i, fp.Short())
		}
		seen[fp] = i
		cfgs := make(map[string]struct{}, len(d.Configs))
		for _, c := range d.Configs {
			if _, dup := cfgs[c]; dup {
				return fmt.Errorf("diagnostic %d: configuration %q attributed twice", i, c)
			}
			cfgs[c] = struct{}{}
		}
	}
	sorted := append([]diag.Diagnostic(nil), diags...)
	diag.SortDiagnostics(sorted)
	for i := range sorted {
		if sorted[i].Fingerprint() != diags[i].Fingerprint() {
			return fmt.Errorf("diagnostics are not sorted at %d", i)
		}
	}
	return nil
}
