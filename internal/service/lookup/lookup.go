package lookup

import (
	"context"
	"fmt"

	"github.com/miyabiro/kotoba-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// 1. Lookup
// ---------------------------------------------------------------------------

// Lookup runs the full pipeline: segment the query, search the term index,
// collapse duplicate headword groups, and flatten each surviving row into
// its display model. Result order follows lookup-unit order.
func (s *Service) Lookup(ctx context.Context, query string, strategy domain.MatchType, dictionaries domain.DictionaryConfig) ([]domain.SimplifiedEntry, error) {
	matches, err := s.search(ctx, query, strategy, dictionaries)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.SimplifiedEntry, 0, len(matches))
	for _, m := range dedupBySequence(matches) {
		entries = append(entries, simplify(m.TermEntry))
	}
	return entries, nil
}

// ---------------------------------------------------------------------------
// 2. LookupRaw
// ---------------------------------------------------------------------------

// LookupRaw runs the pipeline without flattening: raw matched rows with
// their provenance. Rows are deduplicated by id only; headword groups are
// left intact.
func (s *Service) LookupRaw(ctx context.Context, query string, strategy domain.MatchType, dictionaries domain.DictionaryConfig) ([]domain.MatchResult, error) {
	return s.search(ctx, query, strategy, dictionaries)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *Service) search(ctx context.Context, query string, strategy domain.MatchType, dictionaries domain.DictionaryConfig) ([]domain.MatchResult, error) {
	units := segment(s.tok, query)
	if len(units) == 0 {
		return []domain.MatchResult{}, nil
	}

	matches, err := s.terms.Search(ctx, units, strategy.Normalized(), dictionaries.EnabledTitles())
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", query, err)
	}
	return matches, nil
}

// dedupBySequence drops rows whose headword group was already reported for
// the same lookup unit: first occurrence wins, ungrouped rows never merge.
// Grouping is dictionary-local, so equal sequence numbers from different
// dictionaries do not collapse. Input rows arrive grouped by unit index.
func dedupBySequence(matches []domain.MatchResult) []domain.MatchResult {
	type groupKey struct {
		dictionary string
		sequence   int64
	}

	kept := make([]domain.MatchResult, 0, len(matches))
	seen := make(map[groupKey]struct{})
	lastIndex := -1

	for _, m := range matches {
		if m.Index != lastIndex {
			seen = make(map[groupKey]struct{})
			lastIndex = m.Index
		}
		if m.Sequence != domain.SequenceUngrouped {
			key := groupKey{dictionary: m.Dictionary, sequence: m.Sequence}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		kept = append(kept, m)
	}
	return kept
}
