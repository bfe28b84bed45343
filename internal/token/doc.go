// Package token defines the token stream handed to checkers: the tokens of one
// configuration of one unit, plus what the tokenizer learned on the way
// (includes, comments, inline suppression markers).
package token
