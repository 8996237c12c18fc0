package lookup

// The CJK Unified Ideographs block. Runes inside it need morphological
// analysis before lookup; everything else is matched as written.
const (
	cjkUnifiedFirst = 0x4E00
	cjkUnifiedLast  = 0x9FFF
)

func isIdeographic(r rune) bool {
	return r >= cjkUnifiedFirst && r <= cjkUnifiedLast
}

// run is a maximal stretch of same-class runes.
type run struct {
	text        string
	ideographic bool
}

// splitRuns merges consecutive same-class runes into ordered runs.
func splitRuns(text string) []run {
	var runs []run
	var cur []rune
	var curIdeo bool

	for _, r := range text {
		ideo := isIdeographic(r)
		if len(cur) > 0 && ideo != curIdeo {
			runs = append(runs, run{text: string(cur), ideographic: curIdeo})
			cur = cur[:0]
		}
		cur = append(cur, r)
		curIdeo = ideo
	}
	if len(cur) > 0 {
		runs = append(runs, run{text: string(cur), ideographic: curIdeo})
	}
	return runs
}

// segment splits a raw query into ordered lookup units. Non-ideographic
// runs pass through verbatim as one unit each. Ideographic runs go through
// the tokenizer; tokens the analyzer could not recognize are dropped
// entirely, surfaces of the rest become units in tokenizer order.
func segment(tok tokenizer, text string) []string {
	units := make([]string, 0, 4)
	for _, rn := range splitRuns(text) {
		if !rn.ideographic {
			units = append(units, rn.text)
			continue
		}
		for _, t := range tok.Tokenize(rn.text) {
			if t.IsKnown() {
				units = append(units, t.Surface)
			}
		}
	}
	return units
}
