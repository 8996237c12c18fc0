package lookup

import (
	"strings"

	"github.com/miyabiro/kotoba-backend/internal/domain"
)

// Semantic markers recognized during simplification. Content trees label
// nodes with free-form category strings; these are the ones the flattened
// rendering understands.
const (
	markerSense        = "sense"
	markerGlossary     = "glossary"
	markerPartOfSpeech = "part-of-speech-info"
	markerExample      = "example-sentence"
	markerExampleA     = "example-sentence-a"
	markerExampleB     = "example-sentence-b"
)

// simplify flattens one term row into its display model. Only the first
// glossary document is rendered; additional documents stay reachable
// through the raw surface. Extraction is structural: nodes that fit no
// recognized shape contribute nothing, they never fail.
func simplify(e domain.TermEntry) domain.SimplifiedEntry {
	out := domain.SimplifiedEntry{
		Term:        e.Expression,
		Reading:     e.Reading,
		WordClasses: e.WordClasses(),
		Score:       e.Score,
		Dictionary:  e.Dictionary,
		Senses:      []domain.Sense{},
	}
	if len(e.Glossary) == 0 {
		return out
	}

	w := senseWalker{}
	w.walk(e.Glossary[0])
	out.Senses = w.senses
	return out
}

// senseWalker accumulates senses over a pre-order walk of one document.
// partsOfSpeech is a running prefix accumulator: every part-of-speech-info
// node visited so far applies to every sense opened after it, across
// sibling senses.
type senseWalker struct {
	partsOfSpeech []string
	senses        []domain.Sense
}

func (w *senseWalker) walk(n domain.ContentNode) {
	switch n.Marker {
	case markerPartOfSpeech:
		w.partsOfSpeech = append(w.partsOfSpeech, displayText(n))
		return
	case markerSense:
		if sense, ok := buildSense(n, snapshot(w.partsOfSpeech)); ok {
			w.senses = append(w.senses, sense)
		}
		return
	}
	for _, c := range n.Children {
		w.walk(c)
	}
}

// buildSense extracts one sense from a sense-marked subtree. A sense with
// no glossary lines is dropped, so cross-reference-only nodes vanish from
// the flattened output.
func buildSense(n domain.ContentNode, partsOfSpeech []string) (domain.Sense, bool) {
	sense := domain.Sense{
		PartsOfSpeech: partsOfSpeech,
		Glossary:      []string{},
		Examples:      []domain.ExamplePair{},
	}
	collectSenseContent(&sense, n)
	if len(sense.Glossary) == 0 {
		return domain.Sense{}, false
	}
	return sense, true
}

func collectSenseContent(sense *domain.Sense, n domain.ContentNode) {
	switch n.Marker {
	case markerGlossary:
		collectGlossaryLines(&sense.Glossary, n)
		return
	case markerExample:
		if pair, ok := examplePair(n); ok {
			sense.Examples = append(sense.Examples, pair)
		}
		return
	}
	for _, c := range n.Children {
		collectSenseContent(sense, c)
	}
}

// collectGlossaryLines appends one line per list item whose content is
// plain text. List items wrapping further structure contribute nothing.
func collectGlossaryLines(lines *[]string, n domain.ContentNode) {
	if n.Tag == "li" && n.HasOnlyText() {
		*lines = append(*lines, plainText(n))
		return
	}
	for _, c := range n.Children {
		collectGlossaryLines(lines, c)
	}
}

// examplePair builds a source/target sentence pair from an example-sentence
// subtree. Both marked descendants must exist; the target text is the text
// of the first node in the b-subtree carrying lang "en", empty when none
// does.
func examplePair(n domain.ContentNode) (domain.ExamplePair, bool) {
	src, okA := findMarked(n, markerExampleA)
	tgt, okB := findMarked(n, markerExampleB)
	if !okA || !okB {
		return domain.ExamplePair{}, false
	}

	pair := domain.ExamplePair{SourceText: plainText(src)}
	if en, ok := findLang(tgt, "en"); ok {
		pair.TargetText = plainText(en)
	}
	return pair, true
}

// findMarked returns the first node in pre-order whose marker matches.
func findMarked(n domain.ContentNode, marker string) (domain.ContentNode, bool) {
	if n.Marker == marker {
		return n, true
	}
	for _, c := range n.Children {
		if found, ok := findMarked(c, marker); ok {
			return found, true
		}
	}
	return domain.ContentNode{}, false
}

// findLang returns the first node in pre-order carrying the language tag.
func findLang(n domain.ContentNode, lang string) (domain.ContentNode, bool) {
	if n.Lang == lang {
		return n, true
	}
	for _, c := range n.Children {
		if found, ok := findLang(c, lang); ok {
			return found, true
		}
	}
	return domain.ContentNode{}, false
}

// displayText is the node's title when present, else its plain text.
func displayText(n domain.ContentNode) string {
	if n.Title != "" {
		return n.Title
	}
	return plainText(n)
}

// plainText concatenates the text leaves of a subtree in order. Furigana
// glosses (rt nodes under a ruby wrapper) never contribute; only the base
// text of a ruby annotation survives.
func plainText(n domain.ContentNode) string {
	var b strings.Builder
	collectText(&b, n)
	return b.String()
}

func collectText(b *strings.Builder, n domain.ContentNode) {
	if n.Tag == "rt" {
		return
	}
	if n.Kind == domain.NodeKindText {
		b.WriteString(n.Text)
		return
	}
	for _, c := range n.Children {
		collectText(b, c)
	}
}

// snapshot copies the running parts-of-speech list so later appends do not
// leak into already-built senses. Always non-nil.
func snapshot(pos []string) []string {
	out := make([]string, len(pos))
	copy(out, pos)
	return out
}
