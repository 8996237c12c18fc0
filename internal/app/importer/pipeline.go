// Package importer loads pre-shaped dictionary bank files into the term
// index through the bulk repository operations.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/miyabiro/kotoba-backend/internal/domain"
)

// TermBulkRepo defines the batch repository contract consumed by the
// import pipeline. All methods use only domain types — no adapter imports.
// Implemented by term.Repo.
type TermBulkRepo interface {
	InsertMany(ctx context.Context, entries []domain.TermEntry) error
	InsertManyMeta(ctx context.Context, metas []domain.TermMeta) error
	InsertManyTags(ctx context.Context, tags []domain.Tag) error
}

// Result holds the outcome of one import run.
type Result struct {
	Dictionary string
	Terms      int
	Meta       int
	Tags       int
	Skipped    int
	Duration   time.Duration
}

// Pipeline orchestrates the bank import.
type Pipeline struct {
	log  *slog.Logger
	repo TermBulkRepo
	cfg  Config
}

// NewPipeline creates a new Pipeline.
func NewPipeline(log *slog.Logger, repo TermBulkRepo, cfg Config) *Pipeline {
	return &Pipeline{log: log, repo: repo, cfg: cfg}
}

// Run reads the configured bank file and loads its rows. Tag definitions
// load first, then term rows, then meta rows; each batch runs in one
// transaction and the first failed batch aborts the run.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	start := time.Now()

	if p.cfg.BankPath == "" {
		return Result{}, fmt.Errorf("bank path not configured")
	}

	bank, err := ReadBank(p.cfg.BankPath)
	if err != nil {
		return Result{}, err
	}

	p.log.Info("bank parsed",
		slog.String("dictionary", bank.Title),
		slog.Int("terms", len(bank.Terms)),
		slog.Int("meta", len(bank.Meta)),
		slog.Int("tags", len(bank.Tags)),
	)

	result := Result{Dictionary: bank.Title}

	if p.cfg.DryRun {
		result.Skipped = len(bank.Terms) + len(bank.Meta) + len(bank.Tags)
		result.Duration = time.Since(start)
		p.log.Info("dry run, nothing written", slog.Int("skipped", result.Skipped))
		return result, nil
	}

	result.Tags, err = inBatches(bank.TagRows(), p.cfg.BatchSize, func(batch []domain.Tag) error {
		return p.repo.InsertManyTags(ctx, batch)
	})
	if err != nil {
		return result, fmt.Errorf("insert tags: %w", err)
	}

	result.Terms, err = inBatches(bank.TermEntries(), p.cfg.BatchSize, func(batch []domain.TermEntry) error {
		return p.repo.InsertMany(ctx, batch)
	})
	if err != nil {
		return result, fmt.Errorf("insert terms: %w", err)
	}

	result.Meta, err = inBatches(bank.MetaRows(), p.cfg.BatchSize, func(batch []domain.TermMeta) error {
		return p.repo.InsertManyMeta(ctx, batch)
	})
	if err != nil {
		return result, fmt.Errorf("insert meta: %w", err)
	}

	result.Duration = time.Since(start)
	p.log.Info("import completed",
		slog.String("dictionary", result.Dictionary),
		slog.Int("terms", result.Terms),
		slog.Int("meta", result.Meta),
		slog.Int("tags", result.Tags),
		slog.Duration("duration", result.Duration),
	)
	return result, nil
}

// inBatches splits items into batches and feeds each to fn, returning the
// number of items processed.
func inBatches[T any](items []T, batchSize int, fn func([]T) error) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 500
	}

	total := 0
	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		if err := fn(items[i:end]); err != nil {
			return total, err
		}
		total += end - i
	}
	return total, nil
}
