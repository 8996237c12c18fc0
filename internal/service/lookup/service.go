// Package lookup implements the query pipeline of the dictionary core:
// segmenting raw input into lookup units, searching the term index under a
// match strategy, collapsing duplicate headword groups, and flattening
// glossary content trees into display-ready senses.
package lookup

import (
	"context"
	"log/slog"

	"github.com/miyabiro/kotoba-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type termIndex interface {
	Search(ctx context.Context, units []string, matchType domain.MatchType, dictionaries []string) ([]domain.MatchResult, error)
}

type tokenizer interface {
	Tokenize(text string) []domain.Token
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the lookup business logic.
type Service struct {
	log   *slog.Logger
	terms termIndex
	tok   tokenizer
}

// NewService creates a new Lookup service.
func NewService(logger *slog.Logger, terms termIndex, tok tokenizer) *Service {
	return &Service{
		log:   logger.With("service", "lookup"),
		terms: terms,
		tok:   tok,
	}
}
