// Package term implements the dictionary term index over PostgreSQL.
// Read queries are built with squirrel and scanned with scany; bulk writes
// run row-by-row inside a single transaction via TxManager.
package term

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/sync/errgroup"

	postgres "github.com/miyabiro/kotoba-backend/internal/adapter/postgres"
	"github.com/miyabiro/kotoba-backend/internal/domain"
)

// Repo provides term index persistence backed by PostgreSQL.
type Repo struct {
	db  postgres.DB
	txm *postgres.TxManager
}

// New creates a new term repository.
func New(db postgres.DB, txm *postgres.TxManager) *Repo {
	return &Repo{db: db, txm: txm}
}

// ---------------------------------------------------------------------------
// Query building
// ---------------------------------------------------------------------------

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var termColumns = []string{
	"id", "dictionary", "expression", "reading",
	"expression_reverse", "reading_reverse",
	"definition_tags", "term_tags", "rules",
	"score", "glossary", "sequence",
}

var metaColumns = []string{"id", "dictionary", "expression", "mode", "data"}

var tagColumns = []string{"dictionary", "name", "category", "sort_order", "notes", "score"}

// fieldPredicate builds the WHERE condition for one forward column under the
// given strategy. Suffix matching compares the rune-reversed unit against the
// precomputed reversed column, so it is a starts-with scan like prefix.
func fieldPredicate(column, unit string, matchType domain.MatchType) squirrel.Sqlizer {
	switch matchType {
	case domain.MatchTypePrefix:
		return squirrel.Like{column: escapeLike(unit) + "%"}
	case domain.MatchTypeSuffix:
		return squirrel.Like{column + "_reverse": escapeLike(domain.ReverseRunes(unit)) + "%"}
	default:
		return squirrel.Eq{column: unit}
	}
}

// escapeLike escapes LIKE metacharacters so units containing % or _ match
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// ---------------------------------------------------------------------------
// Search
// ---------------------------------------------------------------------------

// Search finds term rows matching the lookup units under the given strategy,
// restricted to the enabled dictionary titles. Results keep unit order; for
// one unit the expression scan precedes the reading scan, and a row already
// reported earlier in the same call is skipped. Empty units or dictionaries
// yield an empty result without touching the store. Unknown strategy values
// fall back to exact matching.
func (r *Repo) Search(ctx context.Context, units []string, matchType domain.MatchType, dictionaries []string) ([]domain.MatchResult, error) {
	if len(units) == 0 || len(dictionaries) == 0 {
		return []domain.MatchResult{}, nil
	}

	matchType = matchType.Normalized()

	// Units are independent, so their scans fan out concurrently. Each
	// goroutine fills its own slot; ordering and dedup happen afterwards on
	// the collected groups, so the output stays deterministic.
	perUnit := make([][]domain.MatchResult, len(units))

	g, gctx := errgroup.WithContext(ctx)
	for i, unit := range units {
		g.Go(func() error {
			exprMatches, err := r.searchField(gctx, unit, i, matchType, dictionaries, domain.MatchSourceExpression)
			if err != nil {
				return err
			}
			readMatches, err := r.searchField(gctx, unit, i, matchType, dictionaries, domain.MatchSourceReading)
			if err != nil {
				return err
			}
			perUnit[i] = append(exprMatches, readMatches...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return dedupByID(perUnit), nil
}

// searchField scans one indexed field for one lookup unit. Rows come back
// ordered by score (descending) then id. A row whose matched value equals
// the unit is reported as an exact match regardless of the requested
// strategy.
func (r *Repo) searchField(ctx context.Context, unit string, index int, matchType domain.MatchType, dictionaries []string, source domain.MatchSource) ([]domain.MatchResult, error) {
	column := "expression"
	if source == domain.MatchSourceReading {
		column = "reading"
	}

	query := psql.Select(termColumns...).
		From("terms").
		Where(squirrel.Eq{"dictionary": dictionaries}).
		Where(fieldPredicate(column, unit, matchType)).
		OrderBy("score DESC", "id")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build term search query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.db)

	var rows []termRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, mapError(err, fmt.Sprintf("search terms %q by %s", unit, column))
	}

	results := make([]domain.MatchResult, 0, len(rows))
	for _, row := range rows {
		entry := toDomainTerm(row)

		effective := matchType
		if matchedValue(entry, source) == unit {
			effective = domain.MatchTypeExact
		}

		results = append(results, domain.MatchResult{
			TermEntry:   entry,
			Index:       index,
			MatchType:   effective,
			MatchSource: source,
		})
	}

	return results, nil
}

// matchedValue returns the forward value of the field a scan matched on.
func matchedValue(e domain.TermEntry, source domain.MatchSource) string {
	if source == domain.MatchSourceReading {
		return e.Reading
	}
	return e.Expression
}

// dedupByID flattens per-input result groups keeping the first occurrence of
// every row id. Groups are visited in input order, so earlier units win.
func dedupByID(groups [][]domain.MatchResult) []domain.MatchResult {
	seen := make(map[uuid.UUID]struct{})
	results := make([]domain.MatchResult, 0)
	for _, group := range groups {
		for _, m := range group {
			if _, ok := seen[m.ID]; ok {
				continue
			}
			seen[m.ID] = struct{}{}
			results = append(results, m)
		}
	}
	return results
}

// ---------------------------------------------------------------------------
// Companion bulk reads
// ---------------------------------------------------------------------------

// SearchBySequence returns all rows of the addressed headword groups, one
// equality scan per (sequence, dictionary) pair. Used for cross-dictionary
// headword grouping. Rows are reported once per call, as exact matches.
func (r *Repo) SearchBySequence(ctx context.Context, queries []domain.SequenceQuery) ([]domain.MatchResult, error) {
	if len(queries) == 0 {
		return []domain.MatchResult{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.db)

	groups := make([][]domain.MatchResult, len(queries))
	for i, sq := range queries {
		query := psql.Select(termColumns...).
			From("terms").
			Where(squirrel.Eq{"dictionary": sq.Dictionary, "sequence": sq.Sequence}).
			OrderBy("score DESC", "id")

		sql, args, err := query.ToSql()
		if err != nil {
			return nil, fmt.Errorf("build sequence search query: %w", err)
		}

		var rows []termRow
		if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
			return nil, mapError(err, fmt.Sprintf("search terms by sequence %d", sq.Sequence))
		}

		groups[i] = exactResults(rows, i)
	}

	return dedupByID(groups), nil
}

// SearchExact returns rows matching both expression and reading exactly,
// restricted to the enabled dictionary titles. Used for secondary-dictionary
// corroboration of an already-resolved headword.
func (r *Repo) SearchExact(ctx context.Context, pairs []domain.TermReadingQuery, dictionaries []string) ([]domain.MatchResult, error) {
	if len(pairs) == 0 || len(dictionaries) == 0 {
		return []domain.MatchResult{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.db)

	groups := make([][]domain.MatchResult, len(pairs))
	for i, p := range pairs {
		query := psql.Select(termColumns...).
			From("terms").
			Where(squirrel.Eq{"dictionary": dictionaries}).
			Where(squirrel.Eq{"expression": p.Term, "reading": p.Reading}).
			OrderBy("score DESC", "id")

		sql, args, err := query.ToSql()
		if err != nil {
			return nil, fmt.Errorf("build exact search query: %w", err)
		}

		var rows []termRow
		if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
			return nil, mapError(err, fmt.Sprintf("search terms %q/%q", p.Term, p.Reading))
		}

		groups[i] = exactResults(rows, i)
	}

	return dedupByID(groups), nil
}

// SearchMeta returns frequency/pitch/transcription side-table rows whose
// expression equals one of the query terms, restricted to the enabled
// dictionary titles. Each row carries the position of the first query term
// that matched it; a term repeated in the input contributes its rows once.
func (r *Repo) SearchMeta(ctx context.Context, terms []string, dictionaries []string) ([]domain.TermMeta, error) {
	if len(terms) == 0 || len(dictionaries) == 0 {
		return []domain.TermMeta{}, nil
	}

	query := psql.Select(metaColumns...).
		From("term_meta").
		Where(squirrel.Eq{"dictionary": dictionaries}).
		Where(squirrel.Eq{"expression": terms}).
		OrderBy("dictionary", "id")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build term meta query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.db)

	var rows []metaRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, mapError(err, "search term meta")
	}

	rowsByTerm := make(map[string][]metaRow, len(terms))
	for _, row := range rows {
		rowsByTerm[row.Expression] = append(rowsByTerm[row.Expression], row)
	}

	metas := make([]domain.TermMeta, 0, len(rows))
	for i, t := range terms {
		for _, row := range rowsByTerm[t] {
			m := toDomainMeta(row)
			m.Index = i
			metas = append(metas, m)
		}
		delete(rowsByTerm, t)
	}

	return metas, nil
}

// SearchTagMeta resolves tag definitions by (name, dictionary), at most one
// row per query pair. Pairs with no stored definition are skipped silently.
func (r *Repo) SearchTagMeta(ctx context.Context, queries []domain.TagQuery) ([]domain.Tag, error) {
	if len(queries) == 0 {
		return []domain.Tag{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.db)

	tags := make([]domain.Tag, 0, len(queries))
	for _, tq := range queries {
		query := psql.Select(tagColumns...).
			From("tag_meta").
			Where(squirrel.Eq{"dictionary": tq.Dictionary, "name": tq.Name}).
			Limit(1)

		sql, args, err := query.ToSql()
		if err != nil {
			return nil, fmt.Errorf("build tag meta query: %w", err)
		}

		var row tagRow
		if err := pgxscan.Get(ctx, querier, &row, sql, args...); err != nil {
			if pgxscan.NotFound(err) {
				continue
			}
			return nil, mapError(err, fmt.Sprintf("search tag %s", tq.Name))
		}

		tags = append(tags, toDomainTag(row))
	}

	return tags, nil
}

// exactResults converts scanned rows into exact-match results for one query
// position.
func exactResults(rows []termRow, index int) []domain.MatchResult {
	results := make([]domain.MatchResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, domain.MatchResult{
			TermEntry:   toDomainTerm(row),
			Index:       index,
			MatchType:   domain.MatchTypeExact,
			MatchSource: domain.MatchSourceExpression,
		})
	}
	return results
}

// ---------------------------------------------------------------------------
// Row scanning
// ---------------------------------------------------------------------------

// termRow mirrors one row of the terms table. Glossary stays raw here so a
// malformed stored document degrades to an empty one instead of failing the
// scan.
type termRow struct {
	ID                uuid.UUID `db:"id"`
	Dictionary        string    `db:"dictionary"`
	Expression        string    `db:"expression"`
	Reading           string    `db:"reading"`
	ExpressionReverse string    `db:"expression_reverse"`
	ReadingReverse    string    `db:"reading_reverse"`
	DefinitionTags    *string   `db:"definition_tags"`
	TermTags          *string   `db:"term_tags"`
	Rules             *string   `db:"rules"`
	Score             int       `db:"score"`
	Glossary          []byte    `db:"glossary"`
	Sequence          int64     `db:"sequence"`
}

type metaRow struct {
	ID         uuid.UUID `db:"id"`
	Dictionary string    `db:"dictionary"`
	Expression string    `db:"expression"`
	Mode       string    `db:"mode"`
	Data       []byte    `db:"data"`
}

type tagRow struct {
	Dictionary string `db:"dictionary"`
	Name       string `db:"name"`
	Category   string `db:"category"`
	SortOrder  int    `db:"sort_order"`
	Notes      string `db:"notes"`
	Score      int    `db:"score"`
}

// toDomainTerm converts a scanned row to a domain.TermEntry, deserializing
// the glossary document at the store boundary.
func toDomainTerm(row termRow) domain.TermEntry {
	return domain.TermEntry{
		ID:                row.ID,
		Dictionary:        row.Dictionary,
		Expression:        row.Expression,
		Reading:           row.Reading,
		ExpressionReverse: row.ExpressionReverse,
		ReadingReverse:    row.ReadingReverse,
		DefinitionTags:    row.DefinitionTags,
		TermTags:          row.TermTags,
		Rules:             row.Rules,
		Score:             row.Score,
		Glossary:          domain.ParseGlossary(row.Glossary),
		Sequence:          row.Sequence,
	}
}

func toDomainMeta(row metaRow) domain.TermMeta {
	return domain.TermMeta{
		ID:         row.ID,
		Dictionary: row.Dictionary,
		Expression: row.Expression,
		Mode:       domain.MetaMode(row.Mode),
		Data:       row.Data,
	}
}

func toDomainTag(row tagRow) domain.Tag {
	return domain.Tag{
		Dictionary: row.Dictionary,
		Name:       row.Name,
		Category:   row.Category,
		Order:      row.SortOrder,
		Notes:      row.Notes,
		Score:      row.Score,
	}
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", op, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s: %w", op, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
