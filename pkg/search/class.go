package search

import (
	"sync"

	"github.com/rubiojr/searchfields/pkg/fields"
	"github.com/rubiojr/searchfields/pkg/log"
)

// Class is a filter definition: the fields declared on it, the classes it
// extends and the registry built from both when the class is created.
//
// The fields passed to NewClass stay reachable through Field and are shared
// by every Filter of the class, so changing one is visible to all of them.
// Resolution never looks at those fields: it uses the registry copies taken
// by NewClass.
type Class struct {
	name     string
	own      []Declaration
	bases    []*Class
	handles  map[string]*fields.Field
	registry *Registry
}

// NewClass builds a class from its own declarations and its bases, listed
// from highest to lowest precedence.
func NewClass(name string, own []Declaration, bases ...*Class) *Class {
	handles := make(map[string]*fields.Field)
	baseRegistries := make([]*Registry, 0, len(bases))
	for i := len(bases) - 1; i >= 0; i-- {
		for handleName, f := range bases[i].handles {
			handles[handleName] = f
		}
	}
	for _, b := range bases {
		baseRegistries = append(baseRegistries, b.registry)
	}
	for _, d := range own {
		handles[d.Name] = d.Field
	}

	c := &Class{
		name:     name,
		own:      append([]Declaration(nil), own...),
		bases:    append([]*Class(nil), bases...),
		handles:  handles,
		registry: BuildRegistry(own, baseRegistries...),
	}

	log.ForComponent("search").Debugf("class %s built with %d selectors", name, c.registry.Len())
	return c
}

// Name returns the class name.
func (c *Class) Name() string {
	return c.name
}

// Bases returns the names of the classes this class extends.
func (c *Class) Bases() []string {
	names := make([]string, len(c.bases))
	for i, b := range c.bases {
		names[i] = b.name
	}
	return names
}

// Registry returns the frozen selector registry of the class.
func (c *Class) Registry() *Registry {
	return c.registry
}

// Field returns the live field declared (or inherited) under name.
func (c *Class) Field(name string) (*fields.Field, bool) {
	f, ok := c.handles[name]
	return f, ok
}

// New returns a filter of this class.
func (c *Class) New() *Filter {
	return &Filter{
		class:  c,
		logger: log.ForComponent("search"),
	}
}

// Filter turns search strings into conditions using the fields of its class.
// A Filter is meant to serve one request at a time.
type Filter struct {
	class  *Class
	logger *log.Logger

	defaultsOnce sync.Once
	defaults     *Registry
}

// Class returns the class the filter was created from.
func (f *Filter) Class() *Class {
	return f.class
}

// Field returns the live field shared by all filters of the class.
func (f *Filter) Field(name string) (*fields.Field, bool) {
	return f.class.Field(name)
}

// Fields returns the class registry.
func (f *Filter) Fields() *Registry {
	return f.class.registry
}

// DefaultFields returns the fields searched by terms without a selector.
// It is computed on first use and cached for the life of the filter.
func (f *Filter) DefaultFields() *Registry {
	f.defaultsOnce.Do(func() {
		f.defaults = f.class.registry.Defaults()
	})
	return f.defaults
}

func (f *Filter) defaultsComputed() bool {
	return f.defaults != nil
}
