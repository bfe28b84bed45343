package lexer

import (
	"errors"
	"fmt"
)

// ErrSyntax marks text the lexer could not tokenize.
var ErrSyntax = errors.New("syntax error")

// Error is one tokenization problem. Tokenize keeps going after it and
// returns the first one.
type Error struct {
	Line uint32
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *Error) Unwrap() error { return ErrSyntax }
