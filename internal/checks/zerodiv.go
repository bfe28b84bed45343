package checks

import (
	"context"

	"tscan/internal/checker"
	"tscan/internal/diag"
	"tscan/internal/token"
)

// ZeroDiv reports division or modulo by a literal zero. On the simplified
// stream it also sees "x / (0)".
type ZeroDiv struct{}

func (*ZeroDiv) Name() string { return "zeroDivision" }

func (*ZeroDiv) Descriptions() []checker.Description {
	return []checker.Description{
		{ID: "zerodiv", Severity: diag.SevError, Summary: "Division by zero."},
	}
}

func (z *ZeroDiv) RunOnTokens(_ context.Context, s *token.Stream, r checker.Reporter) {
	z.scan(s, r)
}

func (z *ZeroDiv) RunOnSimplifiedTokens(_ context.Context, s *token.Stream, r checker.Reporter) {
	z.scan(s, r)
}

func (*ZeroDiv) scan(s *token.Stream, r checker.Reporter) {
	for i := range s.Len() {
		op := s.At(i)
		if !op.Is("/") && !op.Is("%") {
			continue
		}
		rhs := s.At(i + 1)
		if rhs.Kind != token.Number || !isZero(rhs.Text) {
			continue
		}
		unit, line := s.Location(i)
		diag.ReportError(r, "zerodiv", diag.Location{File: unit, Line: line}, "Division by zero.").Emit()
	}
}

// 0, 0u, 0x0, 0.0f, 00
func isZero(lit string) bool {
	digits := false
	for i := 0; i < len(lit); i++ {
		switch c := lit[i]; {
		case c == '0' || c == '.':
			digits = digits || c == '0'
		case (c == 'x' || c == 'X') && i == 1:
		case c == 'u' || c == 'U' || c == 'l' || c == 'L' || c == 'f' || c == 'F':
		default:
			return false
		}
	}
	return digits
}
