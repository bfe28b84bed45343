package checks

import (
	"context"
	"fmt"

	"tscan/internal/checker"
	"tscan/internal/diag"
	"tscan/internal/token"
)

// AssignInCondition reports "if (x = y)" and "while (x = y)" where a plain
// assignment is the whole condition.
type AssignInCondition struct{}

func (*AssignInCondition) Name() string { return "assignInCondition" }

func (*AssignInCondition) Descriptions() []checker.Description {
	return []checker.Description{
		{ID: "assignIfError", Severity: diag.SevStyle, Summary: "Assignment used as a condition."},
	}
}

func (*AssignInCondition) RunOnTokens(_ context.Context, s *token.Stream, r checker.Reporter) {
	for i := range s.Len() {
		kw := s.At(i)
		if !kw.Is("if") && !kw.Is("while") {
			continue
		}
		if !s.At(i + 1).Is("(") {
			continue
		}
		closing := s.Link(i + 1)
		if closing < 0 {
			continue
		}
		// ( ident = ... ) на верхнем уровне скобок
		if !s.At(i+2).IsIdent() || !s.At(i+3).Is("=") || closing <= i+4 {
			continue
		}
		unit, line := s.Location(i)
		diag.ReportStyle(r, "assignIfError", diag.Location{File: unit, Line: line},
			fmt.Sprintf("Assignment '%s=...' used as the condition of '%s'.", s.At(i+2).Text, kw.Text)).
			WithNote(diag.Location{File: unit, Line: line}, "did you mean '=='?").
			Emit()
	}
}
