package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rubiojr/searchfields/pkg/fields"
	"github.com/rubiojr/searchfields/pkg/search"
)

var (
	ErrUnknownBase  = errors.New("unknown base filter")
	ErrBaseCycle    = errors.New("filter inheritance cycle")
	ErrUnknownKind  = errors.New("unknown field kind")
	ErrUnknownTable = errors.New("unknown table")
)

// FilterEntry is a filter class ready to serve searches.
type FilterEntry struct {
	Name  string
	Table string
	Class *search.Class
}

// Searchable reports whether the filter is bound to a table.
func (e *FilterEntry) Searchable() bool {
	return e.Table != ""
}

// Catalog holds every filter class built from a configuration.
type Catalog struct {
	filters map[string]*FilterEntry
	names   []string
}

// Get returns the filter named name.
func (c *Catalog) Get(name string) (*FilterEntry, bool) {
	if c == nil {
		return nil, false
	}
	e, ok := c.filters[name]
	return e, ok
}

// Names returns the filter names, sorted.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.names...)
}

// BuildCatalog builds the filter classes, every base before the filters
// that extend it.
func (c *Config) BuildCatalog() (*Catalog, error) {
	names := make([]string, 0, len(c.Filters))
	for name := range c.Filters {
		names = append(names, name)
	}
	sort.Strings(names)

	order, err := c.buildOrder(names)
	if err != nil {
		return nil, err
	}

	catalog := &Catalog{
		filters: make(map[string]*FilterEntry, len(names)),
		names:   names,
	}
	for _, name := range order {
		fc := c.Filters[name]
		if fc.Table != "" {
			if _, ok := c.Table(fc.Table); !ok {
				return nil, fmt.Errorf("filter %s: %w: %s", name, ErrUnknownTable, fc.Table)
			}
		}

		own := make([]search.Declaration, 0, len(fc.Fields))
		for _, fieldConfig := range fc.Fields {
			field, err := fieldConfig.Build()
			if err != nil {
				return nil, fmt.Errorf("filter %s: %w", name, err)
			}
			own = append(own, search.Declare(fieldConfig.Name, field))
		}

		bases := make([]*search.Class, len(fc.Bases))
		for i, base := range fc.Bases {
			bases[i] = catalog.filters[base].Class
		}

		catalog.filters[name] = &FilterEntry{
			Name:  name,
			Table: fc.Table,
			Class: search.NewClass(name, own, bases...),
		}
	}

	return catalog, nil
}

// buildOrder sorts filters so that bases come first.
func (c *Config) buildOrder(names []string) ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(names))
	order := make([]string, 0, len(names))

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %s", ErrBaseCycle, strings.Join(append(path, name), " -> "))
		}
		state[name] = visiting
		for _, base := range c.Filters[name].Bases {
			if _, ok := c.Filters[base]; !ok {
				return fmt.Errorf("filter %s: %w: %s", name, ErrUnknownBase, base)
			}
			if err := visit(base, append(path, name)); err != nil {
				return err
			}
		}
		state[name] = done
		order = append(order, name)
		return nil
	}

	for _, name := range names {
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Build creates the field described by fc.
func (fc FieldConfig) Build() (*fields.Field, error) {
	if fc.Name == "" {
		return nil, errors.New("field without name")
	}

	var opts []fields.Option
	if fc.Lookup != "" {
		opts = append(opts, fields.WithLookup(fc.Lookup))
	}
	if fc.Default {
		opts = append(opts, fields.AsDefault())
	}
	if fc.MatchCase != nil {
		opts = append(opts, fields.MatchCase(*fc.MatchCase))
	}
	if len(fc.Aliases) > 0 {
		opts = append(opts, fields.WithAliases(fc.Aliases...))
	}
	if fc.Partial {
		opts = append(opts, fields.Partial())
	}

	path := fc.Path
	if path == "" {
		path = fc.Name
	}

	field, ok := fields.ByKind(strings.ToLower(fc.Kind), path, opts...)
	if !ok {
		return nil, fmt.Errorf("field %s: %w: %s", fc.Name, ErrUnknownKind, fc.Kind)
	}
	return field, nil
}
