package engine

import (
	"tscan/internal/config"
	"tscan/internal/lexer"
	"tscan/internal/preproc"
	"tscan/internal/token"
)

// Expander derives the build configurations of a unit and expands the unit
// for one of them. Configurations returns names in a stable order; the empty
// name is the default configuration.
type Expander interface {
	Configurations(text []byte) ([]string, error)
	ExpandConfig(text []byte, config string) ([]byte, error)
}

// Tokenizer turns the expanded text of one configuration into a token stream.
// The returned stream must be usable even when err is not nil; the engine
// reports err and skips checkers for that configuration.
type Tokenizer interface {
	Tokenize(unit, config string, text []byte) (*token.Stream, error)
}

// TokenizerFunc adapts a function to Tokenizer.
type TokenizerFunc func(unit, config string, text []byte) (*token.Stream, error)

func (f TokenizerFunc) Tokenize(unit, config string, text []byte) (*token.Stream, error) {
	return f(unit, config, text)
}

// DefaultExpander is the #ifdef-family expander seeded with the user defines.
func DefaultExpander(s *config.Settings) Expander {
	if s == nil {
		return &preproc.Expander{}
	}
	return &preproc.Expander{
		Defines: s.DefineNames(),
		Undefs:  s.Preprocessor.Undefs,
	}
}

// DefaultTokenizer is the built-in C-like lexer.
var DefaultTokenizer Tokenizer = TokenizerFunc(lexer.Tokenize)
