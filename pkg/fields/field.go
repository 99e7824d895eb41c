// Package fields declares searchable fields: a store path, the lookup
// operator applied to it and the validators a term must pass before the field
// is searched.
//
// Fields are built with New or one of the typed constructors (Exact,
// Contains, String, Regex, Email, Integer, Boolean, List), which only differ
// in their default lookup and the validator they put in front of the
// caller's own:
//
//	email := fields.Email("user.email", fields.AsDefault(), fields.WithAliases("@"))
//	email.Path()                  // "user.email.iexact"
//	email.IsValid("a@example.com") // true
//
// An explicit lookup that is not made of known operators (see Lookups) is
// silently replaced by the constructor's default.
package fields

import (
	"sync"
)

// Field describes one searchable field.
//
// Attributes may be changed after construction through the Set methods. The
// constructed path is memoized on first use and does not follow later
// changes to the lookup.
type Field struct {
	mu         sync.RWMutex
	kind       string
	name       string
	lookup     string
	matchCase  *bool
	isDefault  bool
	validators []Validator
	aliases    []string

	path    string
	pathSet bool
}

// Option configures a Field at construction time.
type Option func(*settings)

type settings struct {
	lookup     string
	hasLookup  bool
	matchCase  *bool
	isDefault  bool
	partial    bool
	validators []Validator
	aliases    []string
}

// WithLookup requests an explicit lookup chain such as "istartswith" or
// "month.gte".
func WithLookup(chain string) Option {
	return func(s *settings) {
		s.lookup = chain
		s.hasLookup = true
	}
}

// WithValidators appends validators run after any the constructor injects.
func WithValidators(validators ...Validator) Option {
	return func(s *settings) {
		s.validators = append(s.validators, validators...)
	}
}

// AsDefault makes the field eligible for terms given without a selector.
func AsDefault() Option {
	return func(s *settings) {
		s.isDefault = true
	}
}

// MatchCase picks the case-sensitive (true) or insensitive (false) flavour of
// the constructor's default lookup.
func MatchCase(sensitive bool) Option {
	return func(s *settings) {
		s.matchCase = &sensitive
	}
}

// WithAliases adds alternate selectors for the field.
func WithAliases(aliases ...string) Option {
	return func(s *settings) {
		s.aliases = append(s.aliases, aliases...)
	}
}

// Partial makes Email match substrings instead of whole addresses.
// Other constructors ignore it.
func Partial() Option {
	return func(s *settings) {
		s.partial = true
	}
}

// New returns a plain field. Its default lookup is icontains, or contains
// when MatchCase(true) is given.
func New(name string, opts ...Option) *Field {
	return build(KindField, name, opts, func(s *settings) string {
		return pick(s.matchCase, false, "contains", "icontains")
	}, nil)
}

// build applies opts, resolves the lookup against the constructor default
// and places the injected validators before the caller's.
func build(kind, name string, opts []Option, defaultLookup func(*settings) string, injected func(*settings) []Validator) *Field {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}

	lookup := defaultLookup(s)
	if s.hasLookup && ValidLookup(s.lookup) {
		lookup = s.lookup
	}

	var validators []Validator
	if injected != nil {
		validators = append(validators, injected(s)...)
	}
	validators = append(validators, s.validators...)

	return &Field{
		kind:       kind,
		name:       name,
		lookup:     lookup,
		matchCase:  s.matchCase,
		isDefault:  s.isDefault,
		validators: validators,
		aliases:    append([]string(nil), s.aliases...),
	}
}

// pick returns sensitive when matchCase is set to true, or when it is unset
// and the constructor treats unset as case sensitive.
func pick(matchCase *bool, unsetSensitive bool, sensitive, insensitive string) string {
	if matchCase == nil {
		if unsetSensitive {
			return sensitive
		}
		return insensitive
	}
	if *matchCase {
		return sensitive
	}
	return insensitive
}

// Kind names the constructor that built the field.
func (f *Field) Kind() string {
	return f.kind
}

// Name returns the store path searched by the field.
func (f *Field) Name() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.name
}

// Lookup returns the lookup chain, possibly empty.
func (f *Field) Lookup() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lookup
}

// MatchCase returns the case sensitivity the field was declared with and
// whether it was declared at all.
func (f *Field) MatchCase() (sensitive bool, set bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.matchCase == nil {
		return false, false
	}
	return *f.matchCase, true
}

// IsDefault reports whether the field receives terms without a selector.
func (f *Field) IsDefault() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.isDefault
}

// Aliases returns a copy of the field's alternate selectors.
func (f *Field) Aliases() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.aliases...)
}

// Validators returns the number of validators attached to the field.
func (f *Field) Validators() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.validators)
}

// SetDefault changes whether the field receives terms without a selector.
func (f *Field) SetDefault(isDefault bool) {
	f.mu.Lock()
	f.isDefault = isDefault
	f.mu.Unlock()
}

// SetLookup replaces the lookup chain as is. An empty chain yields a bare
// path. Has no effect on Path once it has been computed.
func (f *Field) SetLookup(chain string) {
	f.mu.Lock()
	f.lookup = chain
	f.mu.Unlock()
}

// Path returns the name joined with the lookup chain, e.g.
// "user.email.icontains", or the bare name when the lookup is empty.
func (f *Field) Path() string {
	f.mu.RLock()
	if f.pathSet {
		defer f.mu.RUnlock()
		return f.path
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.pathSet {
		f.path = f.name
		if f.lookup != "" {
			f.path += LookupSeparator + f.lookup
		}
		f.pathSet = true
	}
	return f.path
}

// String returns Path.
func (f *Field) String() string {
	return f.Path()
}

// IsValid reports whether every validator accepts term.
func (f *Field) IsValid(term any) bool {
	f.mu.RLock()
	validators := f.validators
	f.mu.RUnlock()

	for _, validate := range validators {
		if !validate(term) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy. Validator and alias slices are new
// slices holding the same values; the path is recomputed on demand.
func (f *Field) Clone() *Field {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var matchCase *bool
	if f.matchCase != nil {
		mc := *f.matchCase
		matchCase = &mc
	}

	return &Field{
		kind:       f.kind,
		name:       f.name,
		lookup:     f.lookup,
		matchCase:  matchCase,
		isDefault:  f.isDefault,
		validators: append([]Validator(nil), f.validators...),
		aliases:    append([]string(nil), f.aliases...),
		path:       f.path,
		pathSet:    f.pathSet,
	}
}
