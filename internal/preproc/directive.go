// Package preproc is the default configuration expander. It understands the
// conditional family (#if, #ifdef, #ifndef, #elif, #else, #endif) together with
// #define and #undef of plain names. Macro bodies are never substituted.
//
// Expanded text keeps the line structure of the input: lines that are not
// active in a configuration, and every conditional or #define line, become
// empty lines, so a line number means the same thing in every configuration.
package preproc

import "strings"

type dirKind uint8

const (
	dirNone dirKind = iota
	dirIf
	dirIfdef
	dirIfndef
	dirElif
	dirElse
	dirEndif
	dirDefine
	dirUndef
	dirOther // #include, #pragma, #error, ...
)

type directive struct {
	kind dirKind
	arg  string // name for ifdef/ifndef/define/undef, expression for if/elif
}

// line is one logical line: physical lines joined by trailing backslashes.
type line struct {
	first, count int // first physical line index, number of physical lines
	text         string
	dir          directive
}

// splitLines joins continuation lines and classifies directives.
func splitLines(src string) []line {
	phys := strings.Split(src, "\n")
	var out []line
	for i := 0; i < len(phys); {
		start := i
		var sb strings.Builder
		for {
			cur := strings.TrimSuffix(phys[i], "\r")
			i++
			if strings.HasSuffix(cur, "\\") && i < len(phys) {
				sb.WriteString(strings.TrimSuffix(cur, "\\"))
				continue
			}
			sb.WriteString(cur)
			break
		}
		text := sb.String()
		out = append(out, line{first: start, count: i - start, text: text, dir: parseDirective(text)})
	}
	return out
}

func parseDirective(text string) directive {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "#") {
		return directive{}
	}
	s = strings.TrimSpace(s[1:])
	n := 0
	for n < len(s) && isIdentByte(s[n]) {
		n++
	}
	// "#if(defined A)" тоже допустимо
	name, rest := s[:n], stripComment(strings.TrimSpace(s[n:]))

	switch name {
	case "if":
		return directive{kind: dirIf, arg: rest}
	case "ifdef":
		return directive{kind: dirIfdef, arg: firstWord(rest)}
	case "ifndef":
		return directive{kind: dirIfndef, arg: firstWord(rest)}
	case "elif":
		return directive{kind: dirElif, arg: rest}
	case "else":
		return directive{kind: dirElse}
	case "endif":
		return directive{kind: dirEndif}
	case "define":
		return directive{kind: dirDefine, arg: macroName(rest)}
	case "undef":
		return directive{kind: dirUndef, arg: firstWord(rest)}
	default:
		return directive{kind: dirOther}
	}
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

// macroName: "FOO(x) ..." -> "FOO".
func macroName(s string) string {
	w := firstWord(s)
	if p := strings.IndexByte(w, '('); p >= 0 {
		return w[:p]
	}
	return w
}

func stripComment(s string) string {
	if i := strings.Index(s, "//"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "/*"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
