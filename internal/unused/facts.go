// Package unused is the cross-unit pass: it collects function definitions and
// references from every checked unit and, once the session is over, reports
// the functions nobody references.
package unused

import (
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"tscan/internal/diag"
	"tscan/internal/suppress"
	"tscan/internal/token"
)

// Function is one function definition.
type Function struct {
	Name      string
	Signature string // "f(int a, char *b)"
	Loc       diag.Location
}

// Facts is what one unit contributes: the functions it defines, every name it
// references and the inline markers that cover unusedFunction. The markers
// outlive the unit's other local rules because the diagnostics they target
// only appear when the pass is finalized.
type Facts struct {
	Unit     string
	Defs     []Function
	Refs     []string // sorted, unique
	Suppress []suppress.Rule
}

// Collect extracts facts from one configuration of a unit. A definition is an
// identifier at brace depth zero followed by a parameter list and a body; a
// declaration is the same without a body, ended by ";" and preceded by a type.
// Every other occurrence of an identifier is a reference, which covers calls
// and function pointers alike.
func Collect(s *token.Stream) Facts {
	f := Facts{Unit: s.Unit}
	f.Suppress = deferredRules(s)
	defSites := make(map[int]bool)
	depth := 0
	for i := range s.Len() {
		tok := s.At(i)
		switch {
		case tok.Is("{"):
			depth++
		case tok.Is("}"):
			if depth > 0 {
				depth--
			}
		case depth == 0 && tok.IsIdent() && s.At(i+1).Is("("):
			closing := s.Link(i + 1)
			if closing < 0 {
				continue
			}
			if !hasBody(s, closing+1) {
				// прототип "int f(void);" не ссылка на f
				if isDeclaration(s, i, closing+1) {
					defSites[i] = true
				}
				continue
			}
			defSites[i] = true
			unit, line := s.Location(i)
			f.Defs = append(f.Defs, Function{
				Name:      tok.Text,
				Signature: signature(s, i, closing),
				Loc:       diag.Location{File: unit, Line: line},
			})
		}
	}

	refs := make(map[string]struct{})
	for i := range s.Len() {
		if tok := s.At(i); tok.IsIdent() && !defSites[i] {
			refs[tok.Text] = struct{}{}
		}
	}
	for name := range refs {
		f.Refs = append(f.Refs, name)
	}
	slices.Sort(f.Refs)
	return f
}

// hasBody: ") {" or ") const {" / ") noexcept {"; K&R parameter declarations
// are not recognised.
func hasBody(s *token.Stream, i int) bool {
	for {
		tok := s.At(i)
		switch {
		case tok.Is("{"):
			return true
		case tok.Is("const") || tok.Text == "noexcept" || tok.Text == "override":
			i++
		default:
			return false
		}
	}
}

// isDeclaration: ") ;" after the parameter list and a type name, "*" or "&"
// right before the function name. "x = f();" and a macro call such as
// "INIT(x);" at file scope stay references.
func isDeclaration(s *token.Stream, name, i int) bool {
	prev := s.At(name - 1)
	if name == 0 || !(prev.IsIdent() || prev.Kind == token.Keyword || prev.Is("*") || prev.Is("&")) {
		return false
	}
	for {
		tok := s.At(i)
		switch {
		case tok.Is(";"):
			return true
		case tok.Is("const") || tok.Text == "noexcept":
			i++
		default:
			return false
		}
	}
}

// deferredRules keeps the inline markers that can cover an unusedFunction
// diagnostic, narrowed to that ID.
func deferredRules(s *token.Stream) []suppress.Rule {
	id := diag.CoreUnusedFunction.ID()
	var out []suppress.Rule
	for _, in := range s.Suppressions {
		for _, r := range in.Rules(s.Unit) {
			if ok, err := doublestar.Match(r.ID, id); err == nil && ok {
				r.ID = id
				if !slices.Contains(out, r) {
					out = append(out, r)
				}
			}
		}
	}
	return out
}

func signature(s *token.Stream, name, closing int) string {
	var sb strings.Builder
	sb.WriteString(s.At(name).Text)
	sb.WriteByte('(')
	for j := name + 2; j < closing; j++ {
		tok := s.At(j)
		if j > name+2 && tok.Text != "," && tok.Text != ")" && !s.At(j-1).Is("(") && !s.At(j-1).Is("*") {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok.Text)
	}
	sb.WriteByte(')')
	return sb.String()
}

// Merge unions facts of another configuration of the same unit.
func (f *Facts) Merge(other Facts) {
	for _, d := range other.Defs {
		if !slices.ContainsFunc(f.Defs, func(x Function) bool { return x.Name == d.Name && x.Loc == d.Loc }) {
			f.Defs = append(f.Defs, d)
		}
	}
	for _, r := range other.Refs {
		if idx, found := slices.BinarySearch(f.Refs, r); !found {
			f.Refs = slices.Insert(f.Refs, idx, r)
		}
	}
	for _, r := range other.Suppress {
		if !slices.Contains(f.Suppress, r) {
			f.Suppress = append(f.Suppress, r)
		}
	}
}
