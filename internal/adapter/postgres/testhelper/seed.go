package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/miyabiro/kotoba-backend/internal/domain"
)

// UniqueSuffix returns a short unique string for generating non-conflicting
// test data, e.g. per-test dictionary titles.
func UniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedTerm inserts one term row and returns it with the id assigned and the
// reverse columns filled. A zero Glossary is stored as an empty document.
func SeedTerm(t *testing.T, pool *pgxpool.Pool, e domain.TermEntry) domain.TermEntry {
	t.Helper()
	ctx := context.Background()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.ExpressionReverse = domain.ReverseRunes(e.Expression)
	e.ReadingReverse = domain.ReverseRunes(e.Reading)

	glossary, err := domain.EncodeGlossary(e.Glossary)
	if err != nil {
		t.Fatalf("testhelper: SeedTerm encode glossary: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO terms (id, dictionary, expression, reading, expression_reverse, reading_reverse,
		                    definition_tags, term_tags, rules, score, glossary, sequence)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, e.Dictionary, e.Expression, e.Reading, e.ExpressionReverse, e.ReadingReverse,
		e.DefinitionTags, e.TermTags, e.Rules, e.Score, glossary, e.Sequence,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedTerm insert term: %v", err)
	}

	return e
}

// SeedTermMeta inserts one term_meta row and returns it with the id assigned.
// A nil Data payload is stored as an empty JSON object.
func SeedTermMeta(t *testing.T, pool *pgxpool.Pool, m domain.TermMeta) domain.TermMeta {
	t.Helper()
	ctx := context.Background()

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Data == nil {
		m.Data = []byte(`{}`)
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO term_meta (id, dictionary, expression, mode, data)
		 VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.Dictionary, m.Expression, string(m.Mode), m.Data,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedTermMeta insert term_meta: %v", err)
	}

	return m
}

// SeedTag inserts one tag_meta row and returns it.
func SeedTag(t *testing.T, pool *pgxpool.Pool, tag domain.Tag) domain.Tag {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO tag_meta (dictionary, name, category, sort_order, notes, score)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		tag.Dictionary, tag.Name, tag.Category, tag.Order, tag.Notes, tag.Score,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedTag insert tag_meta: %v", err)
	}

	return tag
}
