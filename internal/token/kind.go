package token

// Kind represents the category of a source token.
type Kind uint8

const (
	Invalid Kind = iota
	EOF

	Ident
	Keyword
	Number
	String // "..." including quotes
	Char   // '.' including quotes
	Punct  // operators and punctuation, longest match
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "Ident"
	case Keyword:
		return "Keyword"
	case Number:
		return "Number"
	case String:
		return "String"
	case Char:
		return "Char"
	case Punct:
		return "Punct"
	default:
		return "Invalid"
	}
}
