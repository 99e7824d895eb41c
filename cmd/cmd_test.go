package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rubiojr/searchfields/pkg/api"
)

const testConfig = `
storage_path = "%DB%"

[[tables]]
name = "albums"
order_by = "id"
columns = [
  { path = "id", type = "integer" },
  { path = "title" },
  { path = "artist.email" },
]

[filters.albums]
table = "albums"
fields = [
  { name = "id", kind = "integer", default = true },
  { name = "title", kind = "contains" },
  { name = "email", path = "artist.email", kind = "contains", default = true, aliases = ["@"] },
]
`

const testRecords = `{"id": 1, "title": "Kind of Blue", "artist": {"email": "miles.davis@jazz.com"}}
{"id": 2, "title": "Giant Steps", "artist": {"email": "trane@jazz.com"}}
{"id": 3, "title": "Blue Train", "artist": {"email": "trane@jazz.com"}}
`

func setupTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Replace(testConfig, "%DB%", filepath.ToSlash(filepath.Join(dir, "test.db")), 1)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	n, err := importRecords(context.Background(), path, "albums", strings.NewReader(testRecords), 2)
	if err != nil {
		t.Fatalf("importing records: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 imported records, got %d", n)
	}
	return path
}

func TestImportUnknownTable(t *testing.T) {
	path := setupTestConfig(t)
	if _, err := importRecords(context.Background(), path, "songs", strings.NewReader("{}"), 10); err == nil {
		t.Fatal("expected error for unconfigured table")
	}
}

func TestRunQueryJSON(t *testing.T) {
	path := setupTestConfig(t)

	tests := []struct {
		search string
		want   []float64
	}{
		{"", []float64{1, 2, 3}},
		{":title:blue", []float64{1, 3}},
		{"trane", []float64{2, 3}},
		{":@:miles, 2", []float64{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			var buf bytes.Buffer
			err := runQuery(context.Background(), &buf, path, queryOptions{
				filter: "albums",
				search: tt.search,
				limit:  10,
				page:   1,
				json:   true,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var rows []map[string]any
			if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
				t.Fatalf("decoding output: %v\n%s", err, buf.String())
			}
			if len(rows) != len(tt.want) {
				t.Fatalf("expected %d rows, got %d", len(tt.want), len(rows))
			}
			for i, id := range tt.want {
				if rows[i]["id"] != id {
					t.Errorf("expected id %v, got %v", id, rows[i]["id"])
				}
			}
		})
	}
}

func TestRunQueryExplain(t *testing.T) {
	path := setupTestConfig(t)

	var buf bytes.Buffer
	err := runQuery(context.Background(), &buf, path, queryOptions{
		filter:  "albums",
		search:  "42, :title:blue",
		explain: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`id.exact = "42"`, `artist.email.icontains = "42"`, `title.icontains = "blue"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRunQueryErrors(t *testing.T) {
	path := setupTestConfig(t)

	err := runQuery(context.Background(), &bytes.Buffer{}, path, queryOptions{filter: "songs"})
	if err == nil || !strings.Contains(err.Error(), "songs") {
		t.Errorf("expected unknown filter error, got %v", err)
	}

	err = runQuery(context.Background(), &bytes.Buffer{}, path, queryOptions{filter: "albums", search: ":jazz:x"})
	if err == nil || !strings.Contains(err.Error(), "field 'jazz' is not searchable") {
		t.Errorf("expected field not found error, got %v", err)
	}
}

func TestPrintFields(t *testing.T) {
	path := setupTestConfig(t)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	catalog, err := cfg.BuildCatalog()
	if err != nil {
		t.Fatalf("building catalog: %v", err)
	}

	var buf bytes.Buffer
	if err := printFields(&buf, catalog, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Albums", "title.icontains", "artist.email.icontains", "alias of email", "table albums"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	if err := printFields(&buf, catalog, []string{"songs"}); err == nil {
		t.Error("expected error for unknown filter")
	}
}

func TestReloadCatalog(t *testing.T) {
	path := setupTestConfig(t)
	ctx := context.Background()

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	catalog, err := cfg.BuildCatalog()
	if err != nil {
		t.Fatalf("building catalog: %v", err)
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	server := api.NewServer(catalog, store, cfg.SearchParam)
	status := func(name string) int {
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/filters/"+name, nil))
		return rec.Code
	}
	if got := status("songs"); got != http.StatusNotFound {
		t.Fatalf("expected 404 before reload, got %d", got)
	}

	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}
	songs := string(original) + `
[[tables]]
name = "songs"
columns = [{ path = "title" }]

[filters.songs]
table = "songs"
fields = [{ name = "title", kind = "contains", default = true }]
`
	if err := os.WriteFile(path, []byte(songs), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if err := reloadCatalog(ctx, path, server, store); err != nil {
		t.Fatalf("unexpected reload error: %v", err)
	}
	if _, err := store.Table("songs"); err != nil {
		t.Errorf("expected songs table after reload: %v", err)
	}
	if got := status("songs"); got != http.StatusOK {
		t.Errorf("expected 200 after reload, got %d", got)
	}

	// A new column on an existing table, searched by a new field.
	withYear := strings.Replace(songs, `  { path = "artist.email" },
]`, `  { path = "artist.email" },
  { path = "year", type = "integer" },
]`, 1)
	withYear = strings.Replace(withYear, `  { name = "email", path = "artist.email", kind = "contains", default = true, aliases = ["@"] },
]`, `  { name = "email", path = "artist.email", kind = "contains", default = true, aliases = ["@"] },
  { name = "year", kind = "integer" },
]`, 1)
	if withYear == songs {
		t.Fatal("expected the config to change")
	}
	if err := os.WriteFile(path, []byte(withYear), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if err := reloadCatalog(ctx, path, server, store); err != nil {
		t.Fatalf("unexpected reload error: %v", err)
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/filters/albums/search?search=%3Ayear%3A1959", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 searching a column added on reload, got %d: %s", rec.Code, rec.Body.String())
	}

	broken := withYear + `
[filters.broken]
bases = ["missing"]
`
	if err := os.WriteFile(path, []byte(broken), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if err := reloadCatalog(ctx, path, server, store); err == nil {
		t.Fatal("expected error for unknown base")
	}
	if got := status("songs"); got != http.StatusOK {
		t.Errorf("expected previous filters to survive a failed reload, got %d", got)
	}
}
