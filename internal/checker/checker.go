// Package checker holds the pluggable checkers and runs them against one token
// stream at a time, isolating each from the failures of the others.
package checker

import (
	"context"

	"tscan/internal/diag"
	"tscan/internal/token"
)

// Description documents one diagnostic ID a checker may produce.
type Description struct {
	ID       string
	Severity diag.Severity
	Summary  string
}

// Reporter is what a checker reports to. Fault marks the run as failed without
// panicking; the registry turns it into an internal error diagnostic.
type Reporter interface {
	diag.Reporter
	Fault(err error)
}

// Checker is one independent analysis.
type Checker interface {
	Name() string
	RunOnTokens(ctx context.Context, s *token.Stream, r Reporter)
	Descriptions() []Description
}

// SimplifiedRunner is implemented by checkers that also want the simplified
// form of the stream (see token.Stream.Simplify).
type SimplifiedRunner interface {
	RunOnSimplifiedTokens(ctx context.Context, s *token.Stream, r Reporter)
}
