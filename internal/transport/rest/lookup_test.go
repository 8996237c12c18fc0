package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/miyabiro/kotoba-backend/internal/domain"
)

type lookupServiceMock struct {
	lookupFunc func(ctx context.Context, query string, strategy domain.MatchType, dictionaries domain.DictionaryConfig) ([]domain.SimplifiedEntry, error)
	rawFunc    func(ctx context.Context, query string, strategy domain.MatchType, dictionaries domain.DictionaryConfig) ([]domain.MatchResult, error)
}

func (m *lookupServiceMock) Lookup(ctx context.Context, query string, strategy domain.MatchType, dictionaries domain.DictionaryConfig) ([]domain.SimplifiedEntry, error) {
	if m.lookupFunc != nil {
		return m.lookupFunc(ctx, query, strategy, dictionaries)
	}
	return []domain.SimplifiedEntry{}, nil
}

func (m *lookupServiceMock) LookupRaw(ctx context.Context, query string, strategy domain.MatchType, dictionaries domain.DictionaryConfig) ([]domain.MatchResult, error) {
	if m.rawFunc != nil {
		return m.rawFunc(ctx, query, strategy, dictionaries)
	}
	return []domain.MatchResult{}, nil
}

func defaultDicts(titles ...string) domain.DictionaryConfig {
	cfg := make(domain.DictionaryConfig, len(titles))
	for i, title := range titles {
		p := i
		cfg[title] = domain.DictionaryOptions{PriorityIndex: &p}
	}
	return cfg
}

func newLookupHandler(svc *lookupServiceMock) *LookupHandler {
	return NewLookupHandler(svc, slog.Default(), domain.MatchTypeExact, defaultDicts("jmdict", "kanjidic"))
}

func TestLookup_MissingQueryParam(t *testing.T) {
	t.Parallel()

	h := newLookupHandler(&lookupServiceMock{})

	rec := httptest.NewRecorder()
	h.Lookup(rec, httptest.NewRequest(http.MethodGet, "/api/v1/lookup", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "query parameter 'q' is required") {
		t.Errorf("unexpected error body: %s", rec.Body.String())
	}
}

func TestLookup_DefaultsApplied(t *testing.T) {
	t.Parallel()

	var gotQuery string
	var gotStrategy domain.MatchType
	var gotTitles []string
	svc := &lookupServiceMock{
		lookupFunc: func(_ context.Context, query string, strategy domain.MatchType, dictionaries domain.DictionaryConfig) ([]domain.SimplifiedEntry, error) {
			gotQuery, gotStrategy, gotTitles = query, strategy, dictionaries.EnabledTitles()
			return []domain.SimplifiedEntry{}, nil
		},
	}
	h := newLookupHandler(svc)

	rec := httptest.NewRecorder()
	h.Lookup(rec, httptest.NewRequest(http.MethodGet, "/api/v1/lookup?q=%E7%8C%AB", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if gotQuery != "猫" {
		t.Errorf("expected query %q, got %q", "猫", gotQuery)
	}
	if gotStrategy != domain.MatchTypeExact {
		t.Errorf("expected default strategy exact, got %q", gotStrategy)
	}
	if len(gotTitles) != 2 || gotTitles[0] != "jmdict" || gotTitles[1] != "kanjidic" {
		t.Errorf("expected default dictionaries [jmdict kanjidic], got %v", gotTitles)
	}
	if !strings.Contains(rec.Body.String(), `"entries":[]`) {
		t.Errorf("expected empty entries array, got %s", rec.Body.String())
	}
}

func TestLookup_StrategyParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		param string
		want  domain.MatchType
	}{
		{name: "prefix passes through", param: "prefix", want: domain.MatchTypePrefix},
		{name: "suffix passes through", param: "suffix", want: domain.MatchTypeSuffix},
		{name: "unknown falls back to exact", param: "fuzzy", want: domain.MatchTypeExact},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got domain.MatchType
			svc := &lookupServiceMock{
				lookupFunc: func(_ context.Context, _ string, strategy domain.MatchType, _ domain.DictionaryConfig) ([]domain.SimplifiedEntry, error) {
					got = strategy
					return []domain.SimplifiedEntry{}, nil
				},
			}
			h := newLookupHandler(svc)

			rec := httptest.NewRecorder()
			h.Lookup(rec, httptest.NewRequest(http.MethodGet, "/api/v1/lookup?q=cat&strategy="+tt.param, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rec.Code)
			}
			if got != tt.want {
				t.Errorf("expected strategy %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLookup_DictionariesParamSubsets(t *testing.T) {
	t.Parallel()

	var gotTitles []string
	svc := &lookupServiceMock{
		lookupFunc: func(_ context.Context, _ string, _ domain.MatchType, dictionaries domain.DictionaryConfig) ([]domain.SimplifiedEntry, error) {
			gotTitles = dictionaries.EnabledTitles()
			return []domain.SimplifiedEntry{}, nil
		},
	}
	h := newLookupHandler(svc)

	rec := httptest.NewRecorder()
	h.Lookup(rec, httptest.NewRequest(http.MethodGet, "/api/v1/lookup?q=cat&dictionaries=jmdict,unknown", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if len(gotTitles) != 1 || gotTitles[0] != "jmdict" {
		t.Errorf("expected dictionaries [jmdict], got %v", gotTitles)
	}
}

func TestLookup_ResponseBody(t *testing.T) {
	t.Parallel()

	svc := &lookupServiceMock{
		lookupFunc: func(context.Context, string, domain.MatchType, domain.DictionaryConfig) ([]domain.SimplifiedEntry, error) {
			return []domain.SimplifiedEntry{{
				Term:        "猫",
				Reading:     "ねこ",
				WordClasses: []string{"n"},
				Score:       12,
				Dictionary:  "jmdict",
				Senses: []domain.Sense{{
					PartsOfSpeech: []string{"noun"},
					Glossary:      []string{"cat"},
					Examples:      []domain.ExamplePair{{SourceText: "猫がいる。", TargetText: "There is a cat."}},
				}},
			}}, nil
		},
	}
	h := newLookupHandler(svc)

	rec := httptest.NewRecorder()
	h.Lookup(rec, httptest.NewRequest(http.MethodGet, "/api/v1/lookup?q=%E7%8C%AB", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp lookupResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Query != "猫" {
		t.Errorf("expected query %q, got %q", "猫", resp.Query)
	}
	if len(resp.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(resp.Entries))
	}

	e := resp.Entries[0]
	if e.Term != "猫" || e.Reading != "ねこ" || e.Dictionary != "jmdict" || e.Score != 12 {
		t.Errorf("unexpected entry fields: %+v", e)
	}
	if len(e.Senses) != 1 {
		t.Fatalf("expected 1 sense, got %d", len(e.Senses))
	}
	s := e.Senses[0]
	if len(s.Glossary) != 1 || s.Glossary[0] != "cat" {
		t.Errorf("unexpected glossary: %v", s.Glossary)
	}
	if len(s.Examples) != 1 || s.Examples[0].TargetText != "There is a cat." {
		t.Errorf("unexpected examples: %v", s.Examples)
	}
}

func TestLookupPost_BodyOverridesDefaults(t *testing.T) {
	t.Parallel()

	var gotStrategy domain.MatchType
	var gotDicts domain.DictionaryConfig
	svc := &lookupServiceMock{
		lookupFunc: func(_ context.Context, _ string, strategy domain.MatchType, dictionaries domain.DictionaryConfig) ([]domain.SimplifiedEntry, error) {
			gotStrategy, gotDicts = strategy, dictionaries
			return []domain.SimplifiedEntry{}, nil
		},
	}
	h := newLookupHandler(svc)

	body := `{
		"query": "猫",
		"strategy": "prefix",
		"dictionaries": [{"title": "custom", "priority": 0, "alias": "My Dict", "useDeinflections": true}]
	}`
	rec := httptest.NewRecorder()
	h.LookupPost(rec, httptest.NewRequest(http.MethodPost, "/api/v1/lookup", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if gotStrategy != domain.MatchTypePrefix {
		t.Errorf("expected strategy prefix, got %q", gotStrategy)
	}

	titles := gotDicts.EnabledTitles()
	if len(titles) != 1 || titles[0] != "custom" {
		t.Fatalf("expected dictionaries [custom], got %v", titles)
	}
	if gotDicts.Alias("custom") != "My Dict" {
		t.Errorf("expected alias 'My Dict', got %q", gotDicts.Alias("custom"))
	}
	if !gotDicts["custom"].UseDeinflections {
		t.Error("expected useDeinflections carried over")
	}
}

func TestLookupPost_EmptyDictionaryListDisablesAll(t *testing.T) {
	t.Parallel()

	var gotTitles []string
	svc := &lookupServiceMock{
		lookupFunc: func(_ context.Context, _ string, _ domain.MatchType, dictionaries domain.DictionaryConfig) ([]domain.SimplifiedEntry, error) {
			gotTitles = dictionaries.EnabledTitles()
			return []domain.SimplifiedEntry{}, nil
		},
	}
	h := newLookupHandler(svc)

	rec := httptest.NewRecorder()
	h.LookupPost(rec, httptest.NewRequest(http.MethodPost, "/api/v1/lookup", strings.NewReader(`{"query":"猫","dictionaries":[]}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if len(gotTitles) != 0 {
		t.Errorf("expected no enabled dictionaries, got %v", gotTitles)
	}
}

func TestLookupPost_InvalidBody(t *testing.T) {
	t.Parallel()

	h := newLookupHandler(&lookupServiceMock{})

	rec := httptest.NewRecorder()
	h.LookupPost(rec, httptest.NewRequest(http.MethodPost, "/api/v1/lookup", strings.NewReader("{")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid request body") {
		t.Errorf("unexpected error body: %s", rec.Body.String())
	}
}

func TestLookupPost_BlankQuery(t *testing.T) {
	t.Parallel()

	h := newLookupHandler(&lookupServiceMock{})

	rec := httptest.NewRecorder()
	h.LookupPost(rec, httptest.NewRequest(http.MethodPost, "/api/v1/lookup", strings.NewReader(`{"query":"   "}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "query is required") {
		t.Errorf("unexpected error body: %s", rec.Body.String())
	}
}

func TestRaw_ResponseIncludesProvenance(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	rules := "n"
	svc := &lookupServiceMock{
		rawFunc: func(context.Context, string, domain.MatchType, domain.DictionaryConfig) ([]domain.MatchResult, error) {
			return []domain.MatchResult{{
				TermEntry: domain.TermEntry{
					ID:         id,
					Dictionary: "jmdict",
					Expression: "食べる",
					Reading:    "たべる",
					Rules:      &rules,
					Score:      3,
					Glossary:   []domain.ContentNode{domain.TextNode("to eat")},
					Sequence:   1358280,
				},
				Index:       0,
				MatchType:   domain.MatchTypeExact,
				MatchSource: domain.MatchSourceExpression,
			}}, nil
		},
	}
	h := newLookupHandler(svc)

	rec := httptest.NewRecorder()
	h.Raw(rec, httptest.NewRequest(http.MethodGet, "/api/v1/lookup/raw?q=%E9%A3%9F%E3%81%B9%E3%82%8B", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp rawLookupResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(resp.Matches))
	}

	m := resp.Matches[0]
	if m.ID != id.String() {
		t.Errorf("expected id %q, got %q", id.String(), m.ID)
	}
	if m.MatchType != "exact" || m.MatchSource != "expression" {
		t.Errorf("unexpected provenance: type=%q source=%q", m.MatchType, m.MatchSource)
	}
	if m.Sequence != 1358280 {
		t.Errorf("expected sequence 1358280, got %d", m.Sequence)
	}
	if m.Rules == nil || *m.Rules != "n" {
		t.Errorf("unexpected rules: %v", m.Rules)
	}
	if len(m.Glossary) != 1 || m.Glossary[0].Text != "to eat" {
		t.Errorf("unexpected glossary: %+v", m.Glossary)
	}
}

func TestLookup_ServiceErrorReturns500(t *testing.T) {
	t.Parallel()

	svc := &lookupServiceMock{
		lookupFunc: func(context.Context, string, domain.MatchType, domain.DictionaryConfig) ([]domain.SimplifiedEntry, error) {
			return nil, context.DeadlineExceeded
		},
	}
	h := newLookupHandler(svc)

	rec := httptest.NewRecorder()
	h.Lookup(rec, httptest.NewRequest(http.MethodGet, "/api/v1/lookup?q=cat", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "internal server error") {
		t.Errorf("unexpected error body: %s", rec.Body.String())
	}
}

func TestLookup_ValidationErrorReturns400(t *testing.T) {
	t.Parallel()

	svc := &lookupServiceMock{
		lookupFunc: func(context.Context, string, domain.MatchType, domain.DictionaryConfig) ([]domain.SimplifiedEntry, error) {
			return nil, domain.NewValidationError("query", "too long")
		},
	}
	h := newLookupHandler(svc)

	rec := httptest.NewRecorder()
	h.Lookup(rec, httptest.NewRequest(http.MethodGet, "/api/v1/lookup?q=cat", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "too long") {
		t.Errorf("unexpected error body: %s", rec.Body.String())
	}
}
