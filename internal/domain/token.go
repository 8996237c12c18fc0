package domain

// Token is one morphological unit reported by the text analyzer for an
// ideographic run.
type Token struct {
	Surface string
	Class   TokenClass
}

// IsKnown reports whether the analyzer recognized the surface as a word.
func (t Token) IsKnown() bool { return t.Class != TokenClassUnknown }
