package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/miyabiro/kotoba-backend/internal/domain"
)

// mockRepo records bulk calls to verify pipeline behavior.
type mockRepo struct {
	terms []domain.TermEntry
	metas []domain.TermMeta
	tags  []domain.Tag

	insertTermsErr error
	insertMetaErr  error
	insertTagsErr  error

	callLog []string
}

func (m *mockRepo) InsertMany(_ context.Context, entries []domain.TermEntry) error {
	m.callLog = append(m.callLog, "InsertMany")
	if m.insertTermsErr != nil {
		return m.insertTermsErr
	}
	m.terms = append(m.terms, entries...)
	return nil
}

func (m *mockRepo) InsertManyMeta(_ context.Context, metas []domain.TermMeta) error {
	m.callLog = append(m.callLog, "InsertManyMeta")
	if m.insertMetaErr != nil {
		return m.insertMetaErr
	}
	m.metas = append(m.metas, metas...)
	return nil
}

func (m *mockRepo) InsertManyTags(_ context.Context, tags []domain.Tag) error {
	m.callLog = append(m.callLog, "InsertManyTags")
	if m.insertTagsErr != nil {
		return m.insertTagsErr
	}
	m.tags = append(m.tags, tags...)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPipeline_Run_LoadsAllSections(t *testing.T) {
	t.Parallel()

	repo := &mockRepo{}
	cfg := Config{BankPath: writeBankFile(t, validBank), BatchSize: 500}

	result, err := NewPipeline(testLogger(), repo, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Dictionary != "jmdict" {
		t.Errorf("expected dictionary jmdict, got %q", result.Dictionary)
	}
	if result.Terms != 2 || result.Meta != 1 || result.Tags != 1 || result.Skipped != 0 {
		t.Errorf("unexpected result counts: %+v", result)
	}

	// Tag definitions load before the rows that reference them.
	want := []string{"InsertManyTags", "InsertMany", "InsertManyMeta"}
	if len(repo.callLog) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, repo.callLog)
	}
	for i, name := range want {
		if repo.callLog[i] != name {
			t.Errorf("callLog[%d] = %s, want %s", i, repo.callLog[i], name)
		}
	}

	if len(repo.terms) != 2 || repo.terms[0].Dictionary != "jmdict" {
		t.Errorf("unexpected inserted terms: %+v", repo.terms)
	}
}

func TestPipeline_Run_BatchesLargeInput(t *testing.T) {
	t.Parallel()

	bank := `{
		"title": "jmdict",
		"terms": [
			{"expression": "一"}, {"expression": "二"}, {"expression": "三"},
			{"expression": "四"}, {"expression": "五"}
		]
	}`
	repo := &mockRepo{}
	cfg := Config{BankPath: writeBankFile(t, bank), BatchSize: 2}

	result, err := NewPipeline(testLogger(), repo, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Terms != 5 {
		t.Errorf("expected 5 terms, got %d", result.Terms)
	}

	calls := 0
	for _, name := range repo.callLog {
		if name == "InsertMany" {
			calls++
		}
	}
	if calls != 3 {
		t.Errorf("expected 3 term batches, got %d", calls)
	}
}

func TestPipeline_Run_DryRun(t *testing.T) {
	t.Parallel()

	repo := &mockRepo{}
	cfg := Config{BankPath: writeBankFile(t, validBank), BatchSize: 500, DryRun: true}

	result, err := NewPipeline(testLogger(), repo, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Skipped != 4 {
		t.Errorf("expected 4 skipped rows, got %d", result.Skipped)
	}
	if len(repo.callLog) != 0 {
		t.Errorf("expected no repository calls, got %v", repo.callLog)
	}
}

func TestPipeline_Run_InsertErrorAborts(t *testing.T) {
	t.Parallel()

	repo := &mockRepo{insertTermsErr: errors.New("unique violation")}
	cfg := Config{BankPath: writeBankFile(t, validBank), BatchSize: 500}

	_, err := NewPipeline(testLogger(), repo, cfg).Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "insert terms") {
		t.Errorf("unexpected error: %v", err)
	}

	for _, name := range repo.callLog {
		if name == "InsertManyMeta" {
			t.Error("meta insert should not run after a term batch failure")
		}
	}
}

func TestPipeline_Run_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := NewPipeline(testLogger(), &mockRepo{}, Config{}).Run(context.Background())
	if err == nil {
		t.Fatal("expected error for unset bank path")
	}
	if !strings.Contains(err.Error(), "bank path not configured") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPipeline_Run_InvalidBankFails(t *testing.T) {
	t.Parallel()

	path := writeBankFile(t, `{"title": "", "terms": []}`)

	_, err := NewPipeline(testLogger(), &mockRepo{}, Config{BankPath: path}).Run(context.Background())
	if err == nil {
		t.Fatal("expected error for invalid bank")
	}
	if !strings.Contains(err.Error(), "title is required") {
		t.Errorf("unexpected error: %v", err)
	}
}
