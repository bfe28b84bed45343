package token

var keywords = map[string]struct{}{
	"auto": {}, "break": {}, "case": {}, "char": {}, "const": {}, "continue": {},
	"default": {}, "do": {}, "double": {}, "else": {}, "enum": {}, "extern": {},
	"float": {}, "for": {}, "goto": {}, "if": {}, "inline": {}, "int": {},
	"long": {}, "register": {}, "restrict": {}, "return": {}, "short": {},
	"signed": {}, "sizeof": {}, "static": {}, "struct": {}, "switch": {},
	"typedef": {}, "union": {}, "unsigned": {}, "void": {}, "volatile": {},
	"while": {}, "bool": {}, "true": {}, "false": {},
	// C++
	"class": {}, "namespace": {}, "new": {}, "delete": {}, "template": {},
	"this": {}, "throw": {}, "try": {}, "catch": {}, "public": {},
	"private": {}, "protected": {}, "virtual": {}, "operator": {}, "nullptr": {},
}

// LookupKeyword reports whether ident is a reserved word.
func LookupKeyword(ident string) bool {
	_, ok := keywords[ident]
	return ok
}
