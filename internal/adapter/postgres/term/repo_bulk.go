package term

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	postgres "github.com/miyabiro/kotoba-backend/internal/adapter/postgres"
	"github.com/miyabiro/kotoba-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Raw SQL for bulk writes
// ---------------------------------------------------------------------------

const insertTermSQL = `
INSERT INTO terms (id, dictionary, expression, reading, expression_reverse, reading_reverse,
                   definition_tags, term_tags, rules, score, glossary, sequence)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const updateTermSQL = `
UPDATE terms
SET dictionary = $2, expression = $3, reading = $4,
    expression_reverse = $5, reading_reverse = $6,
    definition_tags = $7, term_tags = $8, rules = $9,
    score = $10, glossary = $11, sequence = $12
WHERE id = $1`

const insertMetaSQL = `
INSERT INTO term_meta (id, dictionary, expression, mode, data)
VALUES ($1, $2, $3, $4, $5)`

const insertTagSQL = `
INSERT INTO tag_meta (dictionary, name, category, sort_order, notes, score)
VALUES ($1, $2, $3, $4, $5, $6)`

// ---------------------------------------------------------------------------
// Bulk mutations (import path)
// ---------------------------------------------------------------------------

// InsertMany inserts a batch of term rows in one transaction. Any row failure
// rolls the whole batch back. Reverse columns are computed here from
// expression and reading, and the glossary document is serialized to JSON;
// rows without an id get a fresh one.
func (r *Repo) InsertMany(ctx context.Context, entries []domain.TermEntry) error {
	if len(entries) == 0 {
		return nil
	}

	return r.txm.RunInTx(ctx, func(txCtx context.Context) error {
		q := postgres.QuerierFromCtx(txCtx, r.db)

		for _, e := range entries {
			glossary, err := domain.EncodeGlossary(e.Glossary)
			if err != nil {
				return fmt.Errorf("encode glossary for %q: %w", e.Expression, err)
			}

			id := e.ID
			if id == uuid.Nil {
				id = uuid.New()
			}

			_, err = q.Exec(txCtx, insertTermSQL,
				id, e.Dictionary, e.Expression, e.Reading,
				domain.ReverseRunes(e.Expression), domain.ReverseRunes(e.Reading),
				e.DefinitionTags, e.TermTags, e.Rules,
				e.Score, glossary, e.Sequence,
			)
			if err != nil {
				return mapError(err, fmt.Sprintf("insert term %q", e.Expression))
			}
		}

		return nil
	})
}

// UpdateMany rewrites a batch of term rows by id in one transaction. A row
// whose id does not exist aborts and rolls back the whole batch with
// domain.ErrNotFound. Reverse columns and the serialized glossary are
// recomputed, so the stored invariants hold after any update.
func (r *Repo) UpdateMany(ctx context.Context, entries []domain.TermEntry) error {
	if len(entries) == 0 {
		return nil
	}

	return r.txm.RunInTx(ctx, func(txCtx context.Context) error {
		q := postgres.QuerierFromCtx(txCtx, r.db)

		for _, e := range entries {
			glossary, err := domain.EncodeGlossary(e.Glossary)
			if err != nil {
				return fmt.Errorf("encode glossary for %q: %w", e.Expression, err)
			}

			tag, err := q.Exec(txCtx, updateTermSQL,
				e.ID, e.Dictionary, e.Expression, e.Reading,
				domain.ReverseRunes(e.Expression), domain.ReverseRunes(e.Reading),
				e.DefinitionTags, e.TermTags, e.Rules,
				e.Score, glossary, e.Sequence,
			)
			if err != nil {
				return mapError(err, fmt.Sprintf("update term %s", e.ID))
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("update term %s: %w", e.ID, domain.ErrNotFound)
			}
		}

		return nil
	})
}

// InsertManyMeta inserts a batch of side-table meta rows in one transaction.
// Rows without an id get a fresh one; a nil payload is stored as an empty
// JSON object.
func (r *Repo) InsertManyMeta(ctx context.Context, metas []domain.TermMeta) error {
	if len(metas) == 0 {
		return nil
	}

	return r.txm.RunInTx(ctx, func(txCtx context.Context) error {
		q := postgres.QuerierFromCtx(txCtx, r.db)

		for _, m := range metas {
			id := m.ID
			if id == uuid.Nil {
				id = uuid.New()
			}
			data := m.Data
			if data == nil {
				data = []byte(`{}`)
			}

			_, err := q.Exec(txCtx, insertMetaSQL,
				id, m.Dictionary, m.Expression, string(m.Mode), data,
			)
			if err != nil {
				return mapError(err, fmt.Sprintf("insert term meta %q", m.Expression))
			}
		}

		return nil
	})
}

// InsertManyTags inserts a batch of tag definitions in one transaction.
func (r *Repo) InsertManyTags(ctx context.Context, tags []domain.Tag) error {
	if len(tags) == 0 {
		return nil
	}

	return r.txm.RunInTx(ctx, func(txCtx context.Context) error {
		q := postgres.QuerierFromCtx(txCtx, r.db)

		for _, t := range tags {
			_, err := q.Exec(txCtx, insertTagSQL,
				t.Dictionary, t.Name, t.Category, t.Order, t.Notes, t.Score,
			)
			if err != nil {
				return mapError(err, fmt.Sprintf("insert tag %s", t.Name))
			}
		}

		return nil
	})
}
