//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/miyabiro/kotoba-backend/internal/adapter/postgres"
	"github.com/miyabiro/kotoba-backend/internal/adapter/postgres/term"
	"github.com/miyabiro/kotoba-backend/internal/adapter/postgres/testhelper"
	"github.com/miyabiro/kotoba-backend/internal/adapter/tokenizer"
	"github.com/miyabiro/kotoba-backend/internal/config"
	"github.com/miyabiro/kotoba-backend/internal/domain"
	"github.com/miyabiro/kotoba-backend/internal/service/lookup"
	"github.com/miyabiro/kotoba-backend/internal/transport/middleware"
	"github.com/miyabiro/kotoba-backend/internal/transport/rest"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ---------------------------------------------------------------------------
// testServer wraps the full-stack HTTP server for E2E tests.
// ---------------------------------------------------------------------------

type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// ---------------------------------------------------------------------------
// setupTestServer bootstraps the full application stack backed by
// a real PostgreSQL container (shared via testhelper).
// ---------------------------------------------------------------------------

// setupTestServer wires the lookup stack the way the application does and
// serves it over httptest. The given titles become the server's default
// enabled dictionaries, in priority order; tests seed rows under uniquely
// named dictionaries, so each test passes its own titles.
func setupTestServer(t *testing.T, dictionaries ...string) *testServer {
	t.Helper()

	// 1. Get pool from testcontainers-backed helper.
	pool := testhelper.SetupTestDB(t)

	// 2. Infrastructure.
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))
	txm := postgres.NewTxManager(pool)

	// 3. Term index and tokenizer.
	terms := term.New(pool, txm)
	tok, err := tokenizer.New()
	require.NoError(t, err, "init tokenizer")

	// 4. Lookup service.
	lookupService := lookup.NewService(logger, terms, tok)

	// 5. Server-side dictionary defaults: position doubles as priority.
	defaults := make(domain.DictionaryConfig, len(dictionaries))
	for i, title := range dictionaries {
		p := i
		defaults[title] = domain.DictionaryOptions{PriorityIndex: &p}
	}

	// 6. Handlers and router.
	lookupHandler := rest.NewLookupHandler(lookupService, logger, domain.MatchTypeExact, defaults)
	healthHandler := rest.NewHealthHandler(pool, "test-version")
	router := rest.NewRouter(lookupHandler, healthHandler)

	// 7. Middleware chain, mirroring the application wiring.
	handler := middleware.Chain(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(config.CORSConfig{
			AllowedOrigins:   "*",
			AllowedMethods:   "GET,POST,OPTIONS",
			AllowedHeaders:   "Content-Type",
			AllowCredentials: false,
			MaxAge:           86400,
		}),
	)(router)

	// 8. httptest server.
	srv := httptest.NewServer(handler)
	t.Cleanup(func() { srv.Close() })

	return &testServer{
		URL:    srv.URL,
		Client: srv.Client(),
		Pool:   pool,
	}
}

// ---------------------------------------------------------------------------
// JSON request helpers.
// ---------------------------------------------------------------------------

// getJSON sends a GET request and returns status + decoded body.
func (ts *testServer) getJSON(t *testing.T, path string) (int, map[string]any) {
	t.Helper()

	resp, err := ts.Client.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, result
}

// postJSON sends a POST request with a JSON body and returns status +
// decoded response body.
func (ts *testServer) postJSON(t *testing.T, path string, body any) (int, map[string]any) {
	t.Helper()

	jsonBody, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}

	resp, err := ts.Client.Post(ts.URL+path, "application/json", bytes.NewReader(jsonBody))
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, result
}

// ---------------------------------------------------------------------------
// Response extraction helpers.
// ---------------------------------------------------------------------------

// lookupEntries extracts the "entries" array from a lookup response.
func lookupEntries(t *testing.T, result map[string]any) []any {
	t.Helper()
	entries, ok := result["entries"].([]any)
	require.True(t, ok, "expected entries array in response")
	return entries
}

// rawMatches extracts the "matches" array from a raw lookup response.
func rawMatches(t *testing.T, result map[string]any) []any {
	t.Helper()
	matches, ok := result["matches"].([]any)
	require.True(t, ok, "expected matches array in response")
	return matches
}

// entryAt returns the object at index i, failing when the list is shorter.
func entryAt(t *testing.T, list []any, i int) map[string]any {
	t.Helper()
	require.Greater(t, len(list), i, "expected at least %d elements", i+1)
	obj, ok := list[i].(map[string]any)
	require.True(t, ok, "expected object at index %d", i)
	return obj
}

// ---------------------------------------------------------------------------
// Seed data builders.
// ---------------------------------------------------------------------------

// newDictionary returns a unique dictionary title so tests sharing the
// container never see each other's rows.
func newDictionary(prefix string) string {
	return prefix + "-" + testhelper.UniqueSuffix()
}

// senseDocument builds a one-document glossary holding a single sense: a
// part-of-speech label followed by one glossary line per argument.
func senseDocument(partOfSpeech string, lines ...string) []domain.ContentNode {
	items := make([]domain.ContentNode, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.ContentNode{
			Kind:     domain.NodeKindElement,
			Tag:      "li",
			Children: []domain.ContentNode{domain.TextNode(line)},
		})
	}

	doc := domain.ContentNode{
		Kind: domain.NodeKindElement,
		Tag:  "div",
		Children: []domain.ContentNode{
			{
				Kind:   domain.NodeKindElement,
				Tag:    "span",
				Marker: "part-of-speech-info",
				Title:  partOfSpeech,
			},
			{
				Kind:   domain.NodeKindElement,
				Tag:    "div",
				Marker: "sense",
				Children: []domain.ContentNode{
					{
						Kind:     domain.NodeKindElement,
						Tag:      "ul",
						Marker:   "glossary",
						Children: items,
					},
				},
			},
		},
	}
	return []domain.ContentNode{doc}
}

// strPtr returns a pointer to the given string literal.
func strPtr(s string) *string { return &s }
