package api

import (
	"net/http"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// API routes with method-specific routing
	mux.HandleFunc("GET /api/filters", s.HandleListFilters)
	mux.HandleFunc("GET /api/filters/{name}", s.HandleFilter)
	mux.HandleFunc("GET /api/filters/{name}/search", s.HandleSearch)
	mux.HandleFunc("GET /health", s.HandleHealth)
}
