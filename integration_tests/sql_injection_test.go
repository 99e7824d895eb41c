package integration_tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/rubiojr/searchfields/pkg/search"
)

func TestSQLInjectionProtectionIntegration(t *testing.T) {
	ts, _, store := SetupTestServer(t)

	// Terms reach SQLite as bound parameters; none of these may change the
	// database or fail the request.
	termAttempts := []struct {
		name string
		q    string
	}{
		{"basic_sql_injection", "'; DROP TABLE people; --"},
		{"union_select_attack", "' UNION SELECT * FROM sqlite_master; --"},
		{"boolean_injection", "' OR 1=1 --"},
		{"database_manipulation", "'; DELETE FROM people WHERE 1=1; --"},
		{"pragma_injection", "'; PRAGMA table_info(people); --"},
		{"file_system_access", "'; ATTACH DATABASE '/etc/passwd' AS pwn; --"},
		{"load_extension_attack", "' UNION SELECT load_extension('evil.so'); --"},
		{"like_wildcards", "%"},
		{"like_underscore", "_"},
		{"selector_injection_term", ":first_name:' OR '1'='1"},
		{"integer_injection", ":id:1 OR 1=1"},
		{"boolean_injection_field", ":active:1); DROP TABLE people; --"},
	}

	for _, attempt := range termAttempts {
		t.Run(attempt.name, func(t *testing.T) {
			status, resp, failed := searchPeople(t, ts.URL, attempt.q)
			if status != http.StatusOK {
				t.Fatalf("Expected 200 for %q, got %d: %+v", attempt.q, status, failed)
			}
			if attempt.name == "like_wildcards" || attempt.name == "like_underscore" || attempt.name == "selector_injection_term" {
				if resp.Count != 0 {
					t.Errorf("Expected no rows for %q, got %d", attempt.q, resp.Count)
				}
			}
		})
	}

	// Selectors never reach SQL: unknown ones are rejected.
	t.Run("selector_injection", func(t *testing.T) {
		status, _, failed := searchPeople(t, ts.URL, ":id\" FROM people; --:1")
		if status != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", status)
		}
		if failed.Error != "Field not found" {
			t.Errorf("Expected field not found error, got %q", failed.Error)
		}
	})

	t.Run("database_integrity_check", func(t *testing.T) {
		count, err := store.Count(context.Background(), "people")
		if err != nil {
			t.Fatalf("Failed to count people: %v", err)
		}
		if count != int64(len(TestPeople)) {
			t.Errorf("Expected %d people after injection attempts, got %d", len(TestPeople), count)
		}

		result, err := store.Query(context.Background(), "people", []search.Condition{{Path: "first_name.icontains", Term: "miles"}}, search.Page{Limit: 10})
		if err != nil {
			t.Fatalf("Failed to query after injection attempts: %v", err)
		}
		if len(result.Rows) != 1 {
			t.Errorf("Expected legitimate content to stay searchable, got %d rows", len(result.Rows))
		}
	})
}
