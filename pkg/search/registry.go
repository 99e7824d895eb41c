package search

import (
	"github.com/rubiojr/searchfields/pkg/fields"
)

// Declaration binds a field to the name it is declared under on a class.
// The name is the field's primary selector.
type Declaration struct {
	Name  string
	Field *fields.Field
}

// Declare is shorthand for a Declaration literal.
func Declare(name string, field *fields.Field) Declaration {
	return Declaration{Name: name, Field: field}
}

type entry struct {
	key     string
	primary string
	field   *fields.Field
}

// Registry is an ordered mapping from selector (primary names and aliases)
// to field. A registry is never modified after it is built.
type Registry struct {
	entries []entry
	index   map[string]int
}

func newRegistry(entries []entry) *Registry {
	r := &Registry{
		entries: entries,
		index:   make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		r.index[e.key] = i
	}
	return r
}

// Get returns the field a selector resolves to.
func (r *Registry) Get(selector string) (*fields.Field, bool) {
	if r == nil {
		return nil, false
	}
	i, ok := r.index[selector]
	if !ok {
		return nil, false
	}
	return r.entries[i].field, true
}

// Primary returns the declared name behind a selector, which differs from
// the selector itself for aliases.
func (r *Registry) Primary(selector string) (string, bool) {
	if r == nil {
		return "", false
	}
	i, ok := r.index[selector]
	if !ok {
		return "", false
	}
	return r.entries[i].primary, true
}

// Keys returns every selector in registry order.
func (r *Registry) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, len(r.entries))
	for i, e := range r.entries {
		keys[i] = e.key
	}
	return keys
}

// Len returns the number of selectors.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Defaults returns the projection of the registry onto default fields,
// aliases included, in registry order.
func (r *Registry) Defaults() *Registry {
	if r == nil {
		return newRegistry(nil)
	}
	var defaults []entry
	for _, e := range r.entries {
		if e.field.IsDefault() {
			defaults = append(defaults, e)
		}
	}
	return newRegistry(defaults)
}

type candidate struct {
	entry
	rank int
}

const (
	rankOwn = iota
	rankOwnAlias
	rankBase
)

// BuildRegistry merges a class's own declarations with the registries of its
// bases. Every field in the result is a copy owned by the new registry;
// aliases share the copy of their primary field.
//
// Inherited selectors come first, grouped by base in the order the bases are
// listed, followed by the own declarations each immediately followed by its
// aliases. A selector keeps the position of its first occurrence. Its field
// is taken from the own declaration if there is one, otherwise from the
// earliest listed base that provides it. Base entries whose primary name is
// declared on the class are dropped along with their aliases.
func BuildRegistry(own []Declaration, bases ...*Registry) *Registry {
	copies := make(map[*fields.Field]*fields.Field)
	copyOf := func(f *fields.Field) *fields.Field {
		if c, ok := copies[f]; ok {
			return c
		}
		c := f.Clone()
		copies[f] = c
		return c
	}

	ownNames := make(map[string]struct{}, len(own))
	for _, d := range own {
		ownNames[d.Name] = struct{}{}
	}

	claimed := make(map[string]struct{})
	var merged []candidate
	for _, d := range own {
		c := copyOf(d.Field)
		merged = append(merged, candidate{entry{d.Name, d.Name, c}, rankOwn})
		claimed[d.Name] = struct{}{}
		for _, alias := range c.Aliases() {
			if _, ok := claimed[alias]; ok {
				continue
			}
			merged = append(merged, candidate{entry{alias, d.Name, c}, rankOwnAlias})
			claimed[alias] = struct{}{}
		}
	}

	for i := len(bases) - 1; i >= 0; i-- {
		base := bases[i]
		if base == nil {
			continue
		}
		rank := rankBase + i
		var block []candidate
		for _, e := range base.entries {
			if _, shadowed := ownNames[e.primary]; shadowed {
				continue
			}
			if _, shadowed := ownNames[e.key]; shadowed {
				continue
			}
			c := copyOf(e.field)
			block = append(block, candidate{entry{e.key, e.primary, c}, rank})
			claimed[e.key] = struct{}{}
			for _, alias := range c.Aliases() {
				if _, ok := claimed[alias]; ok {
					continue
				}
				block = append(block, candidate{entry{alias, e.primary, c}, rank})
				claimed[alias] = struct{}{}
			}
		}
		merged = append(block, merged...)
	}

	var entries []entry
	ranks := make(map[string]int)
	positions := make(map[string]int)
	for _, cand := range merged {
		pos, seen := positions[cand.key]
		if !seen {
			positions[cand.key] = len(entries)
			ranks[cand.key] = cand.rank
			entries = append(entries, cand.entry)
			continue
		}
		if cand.rank < ranks[cand.key] {
			ranks[cand.key] = cand.rank
			entries[pos] = cand.entry
		}
	}

	return newRegistry(entries)
}
