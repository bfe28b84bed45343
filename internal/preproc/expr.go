package preproc

import (
	"fmt"
	"strconv"
	"strings"
)

// evalCondition evaluates a #if expression. Identifiers are 1 when defined and
// 0 otherwise; function-like macro calls and arithmetic beyond comparisons are
// not supported and yield an error.
func evalCondition(expr string, defined func(string) bool) (bool, error) {
	p := &exprParser{toks: lexExpr(expr), defined: defined}
	v, err := p.parseOr()
	if err != nil {
		return false, err
	}
	if p.pos != len(p.toks) {
		return false, fmt.Errorf("unexpected %q in #if %q", p.toks[p.pos], expr)
	}
	return v != 0, nil
}

// conditionSymbols returns the identifiers that must be defined for expr to
// hold in the simplest reading: every name not directly negated.
func conditionSymbols(expr string) []string {
	toks := lexExpr(expr)
	var out []string
	for i, tok := range toks {
		if !isIdentStart(tok[0]) || tok == "defined" {
			continue
		}
		j := i - 1
		for j >= 0 && (toks[j] == "(" || toks[j] == "defined") {
			j--
		}
		if j >= 0 && toks[j] == "!" {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func lexExpr(s string) []string {
	var toks []string
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case isIdentByte(c):
			j := i
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			toks = append(toks, s[i:j])
			i = j
		case i+1 < len(s) && isOp2(s[i:i+2]):
			toks = append(toks, s[i:i+2])
			i += 2
		default:
			toks = append(toks, s[i:i+1])
			i++
		}
	}
	return toks
}

func isOp2(s string) bool {
	switch s {
	case "&&", "||", "==", "!=", "<=", ">=":
		return true
	}
	return false
}

type exprParser struct {
	toks    []string
	pos     int
	defined func(string) bool
}

func (p *exprParser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return ""
}

func (p *exprParser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func (p *exprParser) parseOr() (int64, error) {
	v, err := p.parseAnd()
	for err == nil && p.peek() == "||" {
		p.next()
		var r int64
		r, err = p.parseAnd()
		v = b2i(v != 0 || r != 0)
	}
	return v, err
}

func (p *exprParser) parseAnd() (int64, error) {
	v, err := p.parseCmp()
	for err == nil && p.peek() == "&&" {
		p.next()
		var r int64
		r, err = p.parseCmp()
		v = b2i(v != 0 && r != 0)
	}
	return v, err
}

func (p *exprParser) parseCmp() (int64, error) {
	v, err := p.parseUnary()
	for err == nil {
		op := p.peek()
		switch op {
		case "==", "!=", "<", ">", "<=", ">=":
		default:
			return v, nil
		}
		p.next()
		var r int64
		if r, err = p.parseUnary(); err != nil {
			return 0, err
		}
		switch op {
		case "==":
			v = b2i(v == r)
		case "!=":
			v = b2i(v != r)
		case "<":
			v = b2i(v < r)
		case ">":
			v = b2i(v > r)
		case "<=":
			v = b2i(v <= r)
		case ">=":
			v = b2i(v >= r)
		}
	}
	return v, err
}

func (p *exprParser) parseUnary() (int64, error) {
	tok := p.next()
	switch {
	case tok == "!":
		v, err := p.parseUnary()
		return b2i(v == 0), err
	case tok == "(":
		v, err := p.parseOr()
		if err != nil {
			return 0, err
		}
		if p.next() != ")" {
			return 0, fmt.Errorf("missing ')' in #if expression")
		}
		return v, nil
	case tok == "defined":
		name := p.next()
		paren := name == "("
		if paren {
			name = p.next()
		}
		if name == "" || !isIdentStart(name[0]) {
			return 0, fmt.Errorf("defined without a macro name")
		}
		if paren && p.next() != ")" {
			return 0, fmt.Errorf("missing ')' after defined(%s", name)
		}
		return b2i(p.defined(name)), nil
	case tok == "":
		return 0, fmt.Errorf("unexpected end of #if expression")
	case isIdentStart(tok[0]):
		if p.peek() == "(" {
			return 0, fmt.Errorf("function-like macro %s in #if is not supported", tok)
		}
		return b2i(p.defined(tok)), nil
	default:
		n, err := strconv.ParseInt(strings.TrimRight(tok, "uUlL"), 0, 64)
		if err != nil {
			return 0, fmt.Errorf("unexpected %q in #if expression", tok)
		}
		return n, nil
	}
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
