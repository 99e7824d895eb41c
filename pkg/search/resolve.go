package search

import (
	"github.com/rubiojr/searchfields/pkg/fields"
)

// Condition is one (constructed path, term) pair handed to the store.
type Condition struct {
	Path string `json:"path"`
	Term string `json:"term"`
}

// ValidateFields returns the fields behind selectors that accept term, each
// field at most once and in selector order. An unknown selector fails the
// whole call with a *FieldNotFoundError.
func (f *Filter) ValidateFields(selectors []string, term string) ([]*fields.Field, error) {
	registry := f.Fields()
	seen := make(map[*fields.Field]struct{}, len(selectors))
	var valid []*fields.Field
	for _, selector := range selectors {
		field, ok := registry.Get(selector)
		if !ok {
			return nil, &FieldNotFoundError{Selector: selector}
		}
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		if !field.IsValid(term) {
			f.logger.Debugf("term %q rejected by %s (%s)", term, selector, field.Path())
			continue
		}
		valid = append(valid, field)
	}
	return valid, nil
}

// Conditions resolves parsed terms into a duplicate-free list of conditions
// in the order they were first produced. The first unknown selector aborts
// resolution.
func (f *Filter) Conditions(parsed []ParsedTerm) ([]Condition, error) {
	seen := make(map[Condition]struct{})
	var conditions []Condition
	for _, pt := range parsed {
		valid, err := f.ValidateFields(pt.Selectors, pt.Term)
		if err != nil {
			return nil, err
		}
		for _, field := range valid {
			cond := Condition{Path: field.Path(), Term: pt.Term}
			if _, dup := seen[cond]; dup {
				continue
			}
			seen[cond] = struct{}{}
			conditions = append(conditions, cond)
		}
	}
	return conditions, nil
}

// Parse splits, tokenizes and resolves a raw search value. An empty result
// means no filtering.
func (f *Filter) Parse(raw string) ([]Condition, error) {
	parsed := f.SplitTerms(SplitTerms(raw))
	conditions, err := f.Conditions(parsed)
	if err != nil {
		return nil, err
	}
	f.logger.Debugf("%s: %q resolved to %d conditions", f.class.name, raw, len(conditions))
	return conditions, nil
}
