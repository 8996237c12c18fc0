package domain

import (
	"strings"

	"github.com/google/uuid"
)

// TermEntry is one indexed dictionary row. Rows are immutable after import.
// ExpressionReverse and ReadingReverse always hold the rune-reversed copies
// of Expression and Reading; the store boundary computes them on write.
type TermEntry struct {
	ID                uuid.UUID
	Dictionary        string
	Expression        string
	Reading           string
	ExpressionReverse string
	ReadingReverse    string
	DefinitionTags    *string
	TermTags          *string
	Rules             *string
	Score             int
	Glossary          []ContentNode
	Sequence          int64
}

// SequenceUngrouped marks an entry that belongs to no headword group.
const SequenceUngrouped int64 = -1

// WordClasses returns the whitespace-separated rule tags as a list.
func (e *TermEntry) WordClasses() []string {
	if e.Rules == nil {
		return nil
	}
	return strings.Fields(*e.Rules)
}

// TermMeta is a frequency/pitch/transcription side-table row keyed by
// expression.
type TermMeta struct {
	ID         uuid.UUID
	Dictionary string
	Expression string
	Mode       MetaMode
	Data       []byte

	// Index is the position of the originating query term within one
	// SearchMeta call. Not persisted.
	Index int
}

// Tag is a dictionary-supplied tag definition (category, notes, ordering).
type Tag struct {
	Dictionary string
	Name       string
	Category   string
	Order      int
	Notes      string
	Score      int
}

// MatchResult annotates a matched term row with its provenance within one
// search call. Created by the term index, consumed by the response path,
// never persisted.
type MatchResult struct {
	TermEntry

	// Index is the position of the lookup unit that produced this row.
	Index int
	// MatchType reports the effective strategy: a prefix/suffix scan whose
	// matched value equals the lookup unit is reported as exact.
	MatchType MatchType
	// MatchSource reports which field matched: expression or reading.
	MatchSource MatchSource
}

// SequenceQuery addresses one headword group within one dictionary.
type SequenceQuery struct {
	Sequence   int64
	Dictionary string
}

// TermReadingQuery addresses entries by exact expression and reading.
type TermReadingQuery struct {
	Term    string
	Reading string
}

// TagQuery addresses one tag definition within one dictionary.
type TagQuery struct {
	Name       string
	Dictionary string
}

// ReverseRunes returns s with its runes in reverse order. Reversal is
// rune-level, not byte-level, so multibyte text stays valid.
func ReverseRunes(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
