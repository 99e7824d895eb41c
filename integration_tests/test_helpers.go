package integration_tests

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rubiojr/searchfields/pkg/api"
	"github.com/rubiojr/searchfields/pkg/config"
	"github.com/rubiojr/searchfields/pkg/storage"
)

// CreateTestConfig creates a configuration with a people table and a filter
// hierarchy: contact and named are bases of people.
func CreateTestConfig(tempDir string) *config.Config {
	no := false
	return &config.Config{
		StoragePath: filepath.Join(tempDir, "people.db"),
		SearchParam: "q",
		Tables: []storage.Table{{
			Name:    "people",
			OrderBy: "id",
			Columns: []storage.Column{
				{Path: "id", Type: storage.TypeInteger},
				{Path: "first_name"},
				{Path: "last_name"},
				{Path: "contact.email"},
				{Path: "active", Type: storage.TypeBoolean},
				{Path: "joined", Type: storage.TypeDatetime},
				{Path: "tags", Type: storage.TypeJSON},
			},
		}},
		Filters: map[string]config.FilterConfig{
			"contact": {Fields: []config.FieldConfig{
				{Name: "email", Path: "contact.email", Kind: "email", Default: true, Partial: true, Aliases: []string{"@", "mail"}},
			}},
			"named": {Fields: []config.FieldConfig{
				{Name: "first_name", Kind: "string", Default: true},
				{Name: "last_name", Kind: "exact", MatchCase: &no},
			}},
			"people": {
				Table: "people",
				Bases: []string{"named", "contact"},
				Fields: []config.FieldConfig{
					{Name: "id", Kind: "integer", Default: true},
					{Name: "active", Kind: "boolean"},
					{Name: "joined_after", Path: "joined", Lookup: "year.gte"},
					{Name: "tag", Path: "tags", Kind: "contains"},
					{Name: "ids", Path: "id", Kind: "list"},
					{Name: "surname_in", Path: "last_name", Kind: "list"},
				},
			},
		},
	}
}

// TestPeople are stored by SetupTestServer.
var TestPeople = []map[string]any{
	{"id": 1, "first_name": "Miles", "last_name": "Davis", "contact": map[string]any{"email": "miles.davis@jazz.com"}, "active": true, "joined": "1955-10-26", "tags": []any{"trumpet", "cool"}},
	{"id": 2, "first_name": "John", "last_name": "Coltrane", "contact": map[string]any{"email": "trane@jazz.com"}, "active": false, "joined": "1955-10-26", "tags": []any{"sax"}},
	{"id": 3, "first_name": "Bill", "last_name": "Evans", "contact": map[string]any{"email": "bill@piano.org"}, "active": true, "joined": "1958-04-01", "tags": []any{"piano", "cool"}},
	{"id": 4, "first_name": "Cannonball", "last_name": "Adderley", "active": false, "joined": "1957-10-01"},
	{"id": 5, "first_name": "Paul", "last_name": "Chambers", "contact": map[string]any{"email": "paul@bass.net"}, "active": true, "joined": "1955-10-26"},
}

// SetupTestServer stores TestPeople and serves the API over HTTP.
func SetupTestServer(t *testing.T) (*httptest.Server, *api.Server, *storage.Store) {
	t.Helper()
	ctx := context.Background()

	cfg := CreateTestConfig(t.TempDir())
	store, err := storage.Open(cfg.StoragePath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Logf("Warning: failed to close store: %v", err)
		}
	})

	for _, table := range cfg.Tables {
		if err := store.CreateTable(ctx, table); err != nil {
			t.Fatalf("Failed to create table %s: %v", table.Name, err)
		}
	}
	if _, err := store.Insert(ctx, "people", TestPeople); err != nil {
		t.Fatalf("Failed to insert people: %v", err)
	}

	catalog, err := cfg.BuildCatalog()
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}

	server := api.NewServer(catalog, store, cfg.SearchParam)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts, server, store
}
