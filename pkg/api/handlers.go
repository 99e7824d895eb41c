package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rubiojr/searchfields/pkg/config"
	"github.com/rubiojr/searchfields/pkg/search"
	"github.com/rubiojr/searchfields/pkg/version"
)

func (s *Server) HandleListFilters(w http.ResponseWriter, r *http.Request) {
	catalog := s.currentCatalog()
	names := catalog.Names()

	filters := make([]FilterInfo, 0, len(names))
	for _, name := range names {
		entry, _ := catalog.Get(name)
		filters = append(filters, filterInfo(entry))
	}

	response := ListFiltersResponse{
		Filters: filters,
		Count:   len(filters),
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) HandleFilter(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookupFilter(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, filterInfo(entry))
}

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookupFilter(w, r)
	if !ok {
		return
	}

	if !entry.Searchable() {
		s.writeError(w, http.StatusBadRequest, "Filter not searchable", fmt.Sprintf("Filter '%s' is not bound to a table", entry.Name))
		return
	}

	params := search.ParseParams(r.URL.Query(), s.param)

	results, err := entry.Class.New().Search(r.Context(), s.store, entry.Table, params)
	if err != nil {
		if errors.Is(err, search.ErrFieldNotFound) {
			s.writeError(w, http.StatusBadRequest, "Field not found", err.Error())
			return
		}
		s.logger.Errorf("%s: search %q failed: %v", r.Header.Get(RequestIDHeader), params.Search, err)
		s.writeError(w, http.StatusInternalServerError, "Search failed", err.Error())
		return
	}

	conditions := results.Conditions
	if conditions == nil {
		conditions = []search.Condition{}
	}

	response := SearchResponse{
		Filter:     entry.Name,
		Search:     results.Search,
		Conditions: conditions,
		Rows:       results.Rows,
		Count:      results.Count,
		Page:       results.Page,
		Limit:      results.Limit,
		TotalPages: results.TotalPages,
		HasMore:    results.HasMore,
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
		Filters:   len(s.currentCatalog().Names()),
	}

	s.writeJSON(w, http.StatusOK, health)
}

func (s *Server) lookupFilter(w http.ResponseWriter, r *http.Request) (*config.FilterEntry, bool) {
	name := r.PathValue("name")
	if name == "" {
		s.writeError(w, http.StatusBadRequest, "Invalid path", "Filter name is required")
		return nil, false
	}

	entry, ok := s.currentCatalog().Get(name)
	if !ok {
		s.writeError(w, http.StatusNotFound, "Filter not found", fmt.Sprintf("Filter '%s' does not exist", name))
		return nil, false
	}
	return entry, true
}

func filterInfo(entry *config.FilterEntry) FilterInfo {
	registry := entry.Class.Registry()
	keys := registry.Keys()

	fieldInfos := make([]FieldInfo, 0, len(keys))
	for _, key := range keys {
		field, _ := registry.Get(key)
		primary, _ := registry.Primary(key)
		fieldInfos = append(fieldInfos, FieldInfo{
			Selector: key,
			Primary:  primary,
			Path:     field.Path(),
			Kind:     field.Kind(),
			Default:  field.IsDefault(),
		})
	}

	bases := entry.Class.Bases()
	if bases == nil {
		bases = []string{}
	}

	return FilterInfo{
		Name:       entry.Name,
		Table:      entry.Table,
		Searchable: entry.Searchable(),
		Bases:      bases,
		Fields:     fieldInfos,
	}
}
