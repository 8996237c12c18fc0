package domain

// SimplifiedEntry is the flattened response model of one matched entry:
// the headword/reading pair plus the sense list extracted from the entry's
// first glossary document. Owned solely by the response path.
type SimplifiedEntry struct {
	Term        string
	Reading     string
	WordClasses []string
	Score       int
	Dictionary  string
	Senses      []Sense
}

// Sense is one display-ready sense: the parts of speech in effect where
// the sense appeared, its glossary lines, and its example pairs.
type Sense struct {
	PartsOfSpeech []string
	Glossary      []string
	Examples      []ExamplePair
}

// ExamplePair is a source-language example sentence with its
// target-language counterpart.
type ExamplePair struct {
	SourceText string
	TargetText string
}
