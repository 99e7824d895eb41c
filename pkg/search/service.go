package search

import (
	"context"
	"fmt"
	"strconv"
)

const (
	// DefaultParam is the query parameter holding the search value.
	DefaultParam = "search"
	// DefaultLimit is the page size used when none is requested.
	DefaultLimit = 30
	// MaxLimit caps the page size a client may request.
	MaxLimit = 500
)

// Page selects a window of a result collection.
type Page struct {
	Limit  int
	Offset int
}

// Row is one record returned by a store, keyed by column name.
type Row map[string]any

// Result is what a store returns for one page.
type Result struct {
	Rows []Row
	// HasMore reports whether rows exist past the page.
	HasMore bool
}

// Store runs conditions against a collection. Conditions are combined with
// OR and duplicate rows are removed; no conditions means no filtering.
type Store interface {
	Query(ctx context.Context, collection string, conditions []Condition, page Page) (*Result, error)
}

// Params holds everything a request contributes to a search.
type Params struct {
	// Search is the raw search value, possibly empty.
	Search string

	// Page is the page number for pagination (1-based).
	// Defaults to 1 if not specified.
	Page int

	// Limit is the maximum number of rows per page.
	// Defaults to DefaultLimit and is capped at MaxLimit.
	Limit int
}

// Window converts page/limit into a Page.
func (p Params) Window() Page {
	return Page{Limit: p.Limit, Offset: (p.Page - 1) * p.Limit}
}

// ParseParams reads the search value from param (DefaultParam when empty)
// along with "page" and "limit". A missing search value means no filtering;
// invalid page and limit values fall back to their defaults.
//
// Example:
//
//	params := search.ParseParams(r.URL.Query(), "")
//	results, err := filter.Search(ctx, store, "books", params)
func ParseParams(query map[string][]string, param string) Params {
	if param == "" {
		param = DefaultParam
	}
	params := Params{
		Page:  1,
		Limit: DefaultLimit,
	}

	if values := query[param]; len(values) > 0 {
		params.Search = values[0]
	}

	if limitStr := query["limit"]; len(limitStr) > 0 && limitStr[0] != "" {
		if parsed, err := strconv.Atoi(limitStr[0]); err == nil && parsed > 0 {
			params.Limit = min(parsed, MaxLimit)
		}
	}

	if pageStr := query["page"]; len(pageStr) > 0 && pageStr[0] != "" {
		if parsed, err := strconv.Atoi(pageStr[0]); err == nil && parsed > 0 {
			params.Page = parsed
		}
	}

	return params
}

// Results is one page of a filtered collection with its pagination metadata.
type Results struct {
	// Rows holds the matching records of this page.
	Rows []Row

	// Conditions are the conditions the search resolved to. Empty when the
	// search value was empty or nothing in it was valid for any field.
	Conditions []Condition

	// Count is the number of rows on this page.
	Count int

	// HasMore indicates whether there are more rows on subsequent pages.
	HasMore bool

	// TotalPages is a conservative estimate based on the current page and
	// HasMore.
	TotalPages int

	Page   int
	Limit  int
	Search string
}

// Search resolves params.Search and runs the conditions against collection.
// A *FieldNotFoundError is returned before the store is touched.
func (f *Filter) Search(ctx context.Context, store Store, collection string, params Params) (*Results, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = DefaultLimit
	}

	conditions, err := f.Parse(params.Search)
	if err != nil {
		return nil, err
	}

	result, err := store.Query(ctx, collection, conditions, params.Window())
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}

	totalPages := params.Page
	if result.HasMore {
		totalPages = params.Page + 1
	}

	return &Results{
		Rows:       result.Rows,
		Conditions: conditions,
		Count:      len(result.Rows),
		HasMore:    result.HasMore,
		TotalPages: totalPages,
		Page:       params.Page,
		Limit:      params.Limit,
		Search:     params.Search,
	}, nil
}
