package rest

import "net/http"

// NewRouter wires all REST routes onto a fresh mux.
func NewRouter(lookup *LookupHandler, health *HealthHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/lookup", lookup.Lookup)
	mux.HandleFunc("POST /api/v1/lookup", lookup.LookupPost)
	mux.HandleFunc("GET /api/v1/lookup/raw", lookup.Raw)
	mux.HandleFunc("POST /api/v1/lookup/raw", lookup.RawPost)

	mux.HandleFunc("GET /health", health.Health)
	mux.HandleFunc("GET /health/live", health.Live)
	mux.HandleFunc("GET /health/ready", health.Ready)

	return mux
}
