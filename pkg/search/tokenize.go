package search

import (
	"regexp"
	"strings"
)

// ParsedTerm is one search term and the selectors it should be searched
// against.
type ParsedTerm struct {
	Selectors []string
	Term      string
}

// selectorPattern matches ":<selector>:<term>".
var selectorPattern = regexp.MustCompile(`(?s)^\s*:([^:]+):(.*)$`)

// SplitTerms splits a raw search value on top-level commas, trims every term
// and drops the empty ones. Commas inside brackets or double quotes belong to
// the term, so ":tags:[1,2]" stays whole. A value with an unclosed bracket
// or quote is split on every comma.
func SplitTerms(raw string) []string {
	var terms []string
	add := func(term string) {
		if term = strings.TrimSpace(term); term != "" {
			terms = append(terms, term)
		}
	}

	depth, start := 0, 0
	quoted, escaped := false, false
	for i, r := range raw {
		switch {
		case escaped:
			escaped = false
		case quoted:
			switch r {
			case '\\':
				escaped = true
			case '"':
				quoted = false
			}
		case r == '"':
			quoted = true
		case r == '[' || r == '{':
			depth++
		case r == ']' || r == '}':
			if depth > 0 {
				depth--
			}
		case r == ',' && depth == 0:
			add(raw[start:i])
			start = i + 1
		}
	}
	if depth > 0 || quoted {
		terms = terms[:0]
		for _, term := range strings.Split(raw, ",") {
			add(term)
		}
		return terms
	}
	add(raw[start:])
	return terms
}

// NormalizeSelector trims a selector and joins its words with underscores:
// "first  name" becomes "first_name".
func NormalizeSelector(selector string) string {
	return strings.Join(strings.Fields(selector), "_")
}

// ParseTerm extracts the selector from a term written as ":selector:term".
// ok is false when the term carries no selector.
func ParseTerm(term string) (selector, rest string, ok bool) {
	m := selectorPattern.FindStringSubmatch(term)
	if m == nil {
		return "", strings.TrimSpace(term), false
	}
	selector = NormalizeSelector(m[1])
	if selector == "" {
		return "", strings.TrimSpace(term), false
	}
	return selector, strings.TrimSpace(m[2]), true
}

// Tokenize parses already split terms. Terms without a selector are paired
// with defaults. Terms that are empty once their selector is removed are
// dropped.
func Tokenize(terms []string, defaults []string) []ParsedTerm {
	parsed := make([]ParsedTerm, 0, len(terms))
	for _, term := range terms {
		selector, rest, ok := ParseTerm(term)
		if rest == "" {
			continue
		}
		if ok {
			parsed = append(parsed, ParsedTerm{Selectors: []string{selector}, Term: rest})
			continue
		}
		parsed = append(parsed, ParsedTerm{Selectors: append([]string(nil), defaults...), Term: rest})
	}
	return parsed
}

// SplitTerms tokenizes terms against the filter's default fields.
func (f *Filter) SplitTerms(terms []string) []ParsedTerm {
	return Tokenize(terms, f.DefaultFields().Keys())
}
