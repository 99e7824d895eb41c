package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rubiojr/searchfields/pkg/config"
	"github.com/rubiojr/searchfields/pkg/storage"
)

func testConfig() *config.Config {
	yes := true
	return &config.Config{
		Tables: []storage.Table{{
			Name:    "albums",
			OrderBy: "id",
			Columns: []storage.Column{
				{Path: "id", Type: storage.TypeInteger},
				{Path: "title"},
				{Path: "artist.email"},
			},
		}},
		Filters: map[string]config.FilterConfig{
			"base": {Fields: []config.FieldConfig{
				{Name: "id", Kind: "integer", Default: true},
			}},
			"albums": {
				Table: "albums",
				Bases: []string{"base"},
				Fields: []config.FieldConfig{
					{Name: "title", Kind: "contains"},
					{Name: "email", Path: "artist.email", Kind: "contains", Default: true, Aliases: []string{"@"}},
					{Name: "exact_title", Path: "title", Kind: "exact", MatchCase: &yes},
				},
			},
		},
	}
}

func setupTestAPIServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	ctx := context.Background()

	cfg := testConfig()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Failed to close store: %v", err)
		}
	})

	for _, table := range cfg.Tables {
		if err := store.CreateTable(ctx, table); err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
	}
	_, err = store.Insert(ctx, "albums", []map[string]any{
		{"id": 1, "title": "Kind of Blue", "artist": map[string]any{"email": "miles.davis@jazz.com"}},
		{"id": 2, "title": "A Love Supreme", "artist": map[string]any{"email": "trane@jazz.com"}},
		{"id": 3, "title": "Blue Train", "artist": map[string]any{"email": "trane@jazz.com"}},
	})
	if err != nil {
		t.Fatalf("Failed to insert albums: %v", err)
	}

	catalog, err := cfg.BuildCatalog()
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}

	server := NewServer(catalog, store, "")
	return server, server.Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return v
}

func TestAPIListFilters(t *testing.T) {
	_, h := setupTestAPIServer(t)

	w := get(t, h, "/api/filters")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if contentType := w.Header().Get("Content-Type"); contentType != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", contentType)
	}

	resp := decode[ListFiltersResponse](t, w)
	if resp.Count != 2 {
		t.Fatalf("Expected 2 filters, got %d", resp.Count)
	}
	if resp.Filters[0].Name != "albums" || resp.Filters[1].Name != "base" {
		t.Errorf("Expected filters [albums base], got %s and %s", resp.Filters[0].Name, resp.Filters[1].Name)
	}
	if !resp.Filters[0].Searchable || resp.Filters[1].Searchable {
		t.Error("Expected only albums to be searchable")
	}
}

func TestAPIFilter(t *testing.T) {
	_, h := setupTestAPIServer(t)

	w := get(t, h, "/api/filters/albums")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	info := decode[FilterInfo](t, w)
	want := []FieldInfo{
		{Selector: "id", Primary: "id", Path: "id.exact", Kind: "integer", Default: true},
		{Selector: "title", Primary: "title", Path: "title.icontains", Kind: "contains"},
		{Selector: "email", Primary: "email", Path: "artist.email.icontains", Kind: "contains", Default: true},
		{Selector: "@", Primary: "email", Path: "artist.email.icontains", Kind: "contains", Default: true},
		{Selector: "exact_title", Primary: "exact_title", Path: "title.exact", Kind: "exact"},
	}
	if len(info.Fields) != len(want) {
		t.Fatalf("Expected %d fields, got %d: %+v", len(want), len(info.Fields), info.Fields)
	}
	for i := range want {
		if info.Fields[i] != want[i] {
			t.Errorf("Expected field %+v, got %+v", want[i], info.Fields[i])
		}
	}
	if len(info.Bases) != 1 || info.Bases[0] != "base" {
		t.Errorf("Expected bases [base], got %v", info.Bases)
	}
}

func TestAPIFilterNotFound(t *testing.T) {
	_, h := setupTestAPIServer(t)

	for _, target := range []string{"/api/filters/songs", "/api/filters/songs/search?search=x"} {
		w := get(t, h, target)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: expected status 404, got %d", target, w.Code)
		}
		resp := decode[ErrorResponse](t, w)
		if resp.Error != "Filter not found" {
			t.Errorf("%s: expected 'Filter not found', got %q", target, resp.Error)
		}
	}
}

func TestAPISearch(t *testing.T) {
	_, h := setupTestAPIServer(t)

	tests := []struct {
		name      string
		target    string
		wantIDs   []float64
		wantConds int
		hasMore   bool
	}{
		{"no search", "/api/filters/albums/search", []float64{1, 2, 3}, 0, false},
		{"selector", "/api/filters/albums/search?search=:title:blue", []float64{1, 3}, 1, false},
		{"default fields", "/api/filters/albums/search?search=trane", []float64{2, 3}, 1, false},
		{"numeric default", "/api/filters/albums/search?search=2", []float64{2}, 2, false},
		{"alias", "/api/filters/albums/search?search=:@:miles", []float64{1}, 1, false},
		{"or across terms", "/api/filters/albums/search?search=:title:supreme,:title:kind", []float64{1, 2}, 2, false},
		{"case sensitive exact", "/api/filters/albums/search?search=:exact_title:blue%20train", []float64{}, 1, false},
		{"rejected term", "/api/filters/albums/search?search=:id:abc", []float64{1, 2, 3}, 0, false},
		{"paginated", "/api/filters/albums/search?limit=2", []float64{1, 2}, 0, true},
		{"second page", "/api/filters/albums/search?limit=2&page=2", []float64{3}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, h, tt.target)
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
			}
			resp := decode[SearchResponse](t, w)

			if len(resp.Rows) != len(tt.wantIDs) {
				t.Fatalf("Expected %d rows, got %d", len(tt.wantIDs), len(resp.Rows))
			}
			for i, id := range tt.wantIDs {
				if resp.Rows[i]["id"] != id {
					t.Errorf("Expected id %v at %d, got %v", id, i, resp.Rows[i]["id"])
				}
			}
			if len(resp.Conditions) != tt.wantConds {
				t.Errorf("Expected %d conditions, got %v", tt.wantConds, resp.Conditions)
			}
			if resp.HasMore != tt.hasMore {
				t.Errorf("Expected has_more %v, got %v", tt.hasMore, resp.HasMore)
			}
			if resp.Count != len(tt.wantIDs) {
				t.Errorf("Expected count %d, got %d", len(tt.wantIDs), resp.Count)
			}
		})
	}
}

func TestAPISearchUnknownField(t *testing.T) {
	_, h := setupTestAPIServer(t)

	w := get(t, h, "/api/filters/albums/search?search=:contributor:Miles,miles.davis@jazz.com")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	resp := decode[ErrorResponse](t, w)
	if resp.Error != "Field not found" {
		t.Errorf("Expected 'Field not found', got %q", resp.Error)
	}
	if resp.Message != "field 'contributor' is not searchable" {
		t.Errorf("Unexpected message: %q", resp.Message)
	}
}

func TestAPISearchBaseOnlyFilter(t *testing.T) {
	_, h := setupTestAPIServer(t)

	w := get(t, h, "/api/filters/base/search?search=1")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestAPIHealth(t *testing.T) {
	_, h := setupTestAPIServer(t)

	w := get(t, h, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	resp := decode[HealthResponse](t, w)
	if resp.Status != "ok" {
		t.Errorf("Expected status ok, got %s", resp.Status)
	}
	if resp.Filters != 2 {
		t.Errorf("Expected 2 filters, got %d", resp.Filters)
	}
}

func TestAPIRequestID(t *testing.T) {
	_, h := setupTestAPIServer(t)

	w := get(t, h, "/health")
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("Expected a generated request ID")
	}

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("Expected request ID abc-123, got %s", got)
	}
}

func TestAPISetCatalog(t *testing.T) {
	server, h := setupTestAPIServer(t)

	cfg := testConfig()
	delete(cfg.Filters, "albums")
	catalog, err := cfg.BuildCatalog()
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}
	server.SetCatalog(catalog)

	w := get(t, h, "/api/filters/albums")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after reload, got %d", w.Code)
	}
}
