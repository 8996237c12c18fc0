package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/miyabiro/kotoba-backend/internal/domain"
)

// lookupService defines the minimal query operations the handler needs.
type lookupService interface {
	Lookup(ctx context.Context, query string, strategy domain.MatchType, dictionaries domain.DictionaryConfig) ([]domain.SimplifiedEntry, error)
	LookupRaw(ctx context.Context, query string, strategy domain.MatchType, dictionaries domain.DictionaryConfig) ([]domain.MatchResult, error)
}

// LookupHandler serves the dictionary lookup endpoints.
type LookupHandler struct {
	svc          lookupService
	log          *slog.Logger
	strategy     domain.MatchType
	dictionaries domain.DictionaryConfig
}

// NewLookupHandler creates a LookupHandler. The strategy and dictionary set
// are the server-side defaults; individual requests may override both.
func NewLookupHandler(svc lookupService, logger *slog.Logger, strategy domain.MatchType, dictionaries domain.DictionaryConfig) *LookupHandler {
	return &LookupHandler{
		svc:          svc,
		log:          logger.With("handler", "lookup"),
		strategy:     strategy,
		dictionaries: dictionaries,
	}
}

// --- request/response DTOs ---

type lookupRequest struct {
	Query        string              `json:"query"`
	Strategy     string              `json:"strategy,omitempty"`
	Dictionaries []dictionaryRequest `json:"dictionaries,omitempty"`
}

type dictionaryRequest struct {
	Title                  string `json:"title"`
	Priority               *int   `json:"priority,omitempty"`
	Alias                  string `json:"alias,omitempty"`
	AllowSecondarySearches bool   `json:"allowSecondarySearches,omitempty"`
	PartsOfSpeechFilter    bool   `json:"partsOfSpeechFilter,omitempty"`
	UseDeinflections       bool   `json:"useDeinflections,omitempty"`
}

type lookupResponse struct {
	Query   string          `json:"query"`
	Entries []entryResponse `json:"entries"`
}

type entryResponse struct {
	Term        string          `json:"term"`
	Reading     string          `json:"reading"`
	WordClasses []string        `json:"wordClasses"`
	Score       int             `json:"score"`
	Dictionary  string          `json:"dictionary"`
	Senses      []senseResponse `json:"senses"`
}

type senseResponse struct {
	PartsOfSpeech []string          `json:"partsOfSpeech"`
	Glossary      []string          `json:"glossary"`
	Examples      []exampleResponse `json:"examples"`
}

type exampleResponse struct {
	SourceText string `json:"sourceText"`
	TargetText string `json:"targetText"`
}

type rawLookupResponse struct {
	Query   string          `json:"query"`
	Matches []matchResponse `json:"matches"`
}

type matchResponse struct {
	ID             string               `json:"id"`
	Index          int                  `json:"index"`
	MatchType      string               `json:"matchType"`
	MatchSource    string               `json:"matchSource"`
	Dictionary     string               `json:"dictionary"`
	Expression     string               `json:"expression"`
	Reading        string               `json:"reading"`
	DefinitionTags *string              `json:"definitionTags,omitempty"`
	TermTags       *string              `json:"termTags,omitempty"`
	Rules          *string              `json:"rules,omitempty"`
	Score          int                  `json:"score"`
	Glossary       []domain.ContentNode `json:"glossary"`
	Sequence       int64                `json:"sequence"`
}

// --- handlers ---

// Lookup handles GET /api/v1/lookup.
func (h *LookupHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	p, ok := h.paramsFromQuery(w, r)
	if !ok {
		return
	}
	h.serveLookup(w, r, p)
}

// LookupPost handles POST /api/v1/lookup.
func (h *LookupHandler) LookupPost(w http.ResponseWriter, r *http.Request) {
	p, ok := h.paramsFromBody(w, r)
	if !ok {
		return
	}
	h.serveLookup(w, r, p)
}

// Raw handles GET /api/v1/lookup/raw.
func (h *LookupHandler) Raw(w http.ResponseWriter, r *http.Request) {
	p, ok := h.paramsFromQuery(w, r)
	if !ok {
		return
	}
	h.serveRaw(w, r, p)
}

// RawPost handles POST /api/v1/lookup/raw.
func (h *LookupHandler) RawPost(w http.ResponseWriter, r *http.Request) {
	p, ok := h.paramsFromBody(w, r)
	if !ok {
		return
	}
	h.serveRaw(w, r, p)
}

func (h *LookupHandler) serveLookup(w http.ResponseWriter, r *http.Request, p lookupParams) {
	entries, err := h.svc.Lookup(r.Context(), p.query, p.strategy, p.dictionaries)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLookupResponse(p.query, entries))
}

func (h *LookupHandler) serveRaw(w http.ResponseWriter, r *http.Request, p lookupParams) {
	matches, err := h.svc.LookupRaw(r.Context(), p.query, p.strategy, p.dictionaries)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRawLookupResponse(p.query, matches))
}

// --- request parsing ---

// lookupParams is the resolved input of one lookup call.
type lookupParams struct {
	query        string
	strategy     domain.MatchType
	dictionaries domain.DictionaryConfig
}

func (h *LookupHandler) paramsFromQuery(w http.ResponseWriter, r *http.Request) (lookupParams, bool) {
	q := r.URL.Query()

	query := q.Get("q")
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return lookupParams{}, false
	}

	p := lookupParams{
		query:        query,
		strategy:     h.strategy,
		dictionaries: h.dictionaries,
	}
	if s := q.Get("strategy"); s != "" {
		p.strategy = domain.MatchType(s).Normalized()
	}
	if d := q.Get("dictionaries"); d != "" {
		p.dictionaries = subsetConfig(h.dictionaries, strings.Split(d, ","))
	}
	return p, true
}

func (h *LookupHandler) paramsFromBody(w http.ResponseWriter, r *http.Request) (lookupParams, bool) {
	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return lookupParams{}, false
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return lookupParams{}, false
	}

	p := lookupParams{
		query:        req.Query,
		strategy:     h.strategy,
		dictionaries: h.dictionaries,
	}
	if req.Strategy != "" {
		p.strategy = domain.MatchType(req.Strategy).Normalized()
	}
	if req.Dictionaries != nil {
		p.dictionaries = toDictionaryConfig(req.Dictionaries)
	}
	return p, true
}

// subsetConfig narrows base to the named titles. Unknown titles are
// dropped, so an all-unknown list disables every dictionary.
func subsetConfig(base domain.DictionaryConfig, titles []string) domain.DictionaryConfig {
	out := make(domain.DictionaryConfig, len(titles))
	for _, title := range titles {
		title = strings.TrimSpace(title)
		if opts, ok := base[title]; ok {
			out[title] = opts
		}
	}
	return out
}

// toDictionaryConfig builds a full per-request dictionary set. An entry
// without a priority is carried but stays disabled.
func toDictionaryConfig(entries []dictionaryRequest) domain.DictionaryConfig {
	out := make(domain.DictionaryConfig, len(entries))
	for _, e := range entries {
		opts := domain.DictionaryOptions{
			AllowSecondarySearches: e.AllowSecondarySearches,
			PartsOfSpeechFilter:    e.PartsOfSpeechFilter,
			UseDeinflections:       e.UseDeinflections,
		}
		if e.Priority != nil {
			p := *e.Priority
			opts.PriorityIndex = &p
		}
		if e.Alias != "" {
			alias := e.Alias
			opts.DisplayAlias = &alias
		}
		out[e.Title] = opts
	}
	return out
}

// --- response conversion ---

func toLookupResponse(query string, entries []domain.SimplifiedEntry) lookupResponse {
	out := lookupResponse{Query: query, Entries: make([]entryResponse, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, toEntryResponse(e))
	}
	return out
}

func toEntryResponse(e domain.SimplifiedEntry) entryResponse {
	wordClasses := e.WordClasses
	if wordClasses == nil {
		wordClasses = []string{}
	}
	senses := make([]senseResponse, 0, len(e.Senses))
	for _, s := range e.Senses {
		senses = append(senses, toSenseResponse(s))
	}
	return entryResponse{
		Term:        e.Term,
		Reading:     e.Reading,
		WordClasses: wordClasses,
		Score:       e.Score,
		Dictionary:  e.Dictionary,
		Senses:      senses,
	}
}

func toSenseResponse(s domain.Sense) senseResponse {
	examples := make([]exampleResponse, 0, len(s.Examples))
	for _, ex := range s.Examples {
		examples = append(examples, exampleResponse{SourceText: ex.SourceText, TargetText: ex.TargetText})
	}
	return senseResponse{
		PartsOfSpeech: s.PartsOfSpeech,
		Glossary:      s.Glossary,
		Examples:      examples,
	}
}

func toRawLookupResponse(query string, matches []domain.MatchResult) rawLookupResponse {
	out := rawLookupResponse{Query: query, Matches: make([]matchResponse, 0, len(matches))}
	for _, m := range matches {
		out.Matches = append(out.Matches, toMatchResponse(m))
	}
	return out
}

func toMatchResponse(m domain.MatchResult) matchResponse {
	glossary := m.Glossary
	if glossary == nil {
		glossary = []domain.ContentNode{}
	}
	return matchResponse{
		ID:             m.ID.String(),
		Index:          m.Index,
		MatchType:      string(m.MatchType),
		MatchSource:    string(m.MatchSource),
		Dictionary:     m.Dictionary,
		Expression:     m.Expression,
		Reading:        m.Reading,
		DefinitionTags: m.DefinitionTags,
		TermTags:       m.TermTags,
		Rules:          m.Rules,
		Score:          m.Score,
		Glossary:       glossary,
		Sequence:       m.Sequence,
	}
}

// --- error handling ---

// handleError maps service errors to HTTP responses.
func (h *LookupHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		h.log.ErrorContext(r.Context(), "lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
