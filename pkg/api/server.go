package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rubiojr/searchfields/pkg/config"
	"github.com/rubiojr/searchfields/pkg/log"
	"github.com/rubiojr/searchfields/pkg/search"
)

// RequestIDHeader carries the request ID in requests and responses.
const RequestIDHeader = "X-Request-ID"

type Server struct {
	store  search.Store
	param  string
	logger *log.Logger

	mu      sync.RWMutex
	catalog *config.Catalog
}

// NewServer serves the filters of catalog against store. param names the
// query parameter holding the search value.
func NewServer(catalog *config.Catalog, store search.Store, param string) *Server {
	if param == "" {
		param = search.DefaultParam
	}
	return &Server{
		store:   store,
		param:   param,
		logger:  log.ForComponent("api"),
		catalog: catalog,
	}
}

// SetCatalog swaps the served filters. Requests in flight keep the catalog
// they started with.
func (s *Server) SetCatalog(catalog *config.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = catalog
}

func (s *Server) currentCatalog() *config.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Handler returns the API with its middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return gzhttp.GzipHandler(RequestIDMiddleware(CorsMiddleware(mux)))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequestIDMiddleware echoes the client's request ID or assigns a new one.
func RequestIDMiddleware(next http.Handler) http.Handler {
	logger := log.ForComponent("api")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		logger.Debugf("%s %s %s", id, r.Method, r.URL.RequestURI())
		next.ServeHTTP(w, r)
	})
}
