package fields

// Kinds reported by Field.Kind.
const (
	KindField    = "field"
	KindExact    = "exact"
	KindContains = "contains"
	KindString   = "string"
	KindRegex    = "regex"
	KindEmail    = "email"
	KindInteger  = "integer"
	KindBoolean  = "boolean"
	KindList     = "list"
)

// Kinds lists every kind accepted by ByKind.
var Kinds = []string{
	KindField, KindExact, KindContains, KindString, KindRegex,
	KindEmail, KindInteger, KindBoolean, KindList,
}

// Exact matches whole values: exact, or iexact with MatchCase(false).
func Exact(name string, opts ...Option) *Field {
	return build(KindExact, name, opts, func(s *settings) string {
		return pick(s.matchCase, true, "exact", "iexact")
	}, nil)
}

// Contains matches substrings: icontains, or contains with MatchCase(true).
func Contains(name string, opts ...Option) *Field {
	return build(KindContains, name, opts, func(s *settings) string {
		return pick(s.matchCase, false, "contains", "icontains")
	}, nil)
}

// String is Contains for text columns: purely numeric terms are rejected.
func String(name string, opts ...Option) *Field {
	return build(KindString, name, opts, func(s *settings) string {
		return pick(s.matchCase, false, "contains", "icontains")
	}, func(*settings) []Validator {
		return []Validator{ValidateString}
	})
}

// Regex matches regular expressions: regex, or iregex with MatchCase(false).
func Regex(name string, opts ...Option) *Field {
	return build(KindRegex, name, opts, func(s *settings) string {
		return pick(s.matchCase, true, "regex", "iregex")
	}, nil)
}

// Email matches addresses. Whole addresses (iexact) are required unless
// Partial is given, in which case substrings (icontains) are searched.
// Terms with inner whitespace are always rejected.
func Email(name string, opts ...Option) *Field {
	return build(KindEmail, name, opts, func(s *settings) string {
		if s.partial {
			return pick(s.matchCase, false, "contains", "icontains")
		}
		return pick(s.matchCase, false, "exact", "iexact")
	}, func(s *settings) []Validator {
		if s.partial {
			return []Validator{ValidateNoWhitespace}
		}
		return []Validator{ValidateNoWhitespace, ValidateEmail}
	})
}

// Integer matches numbers exactly.
func Integer(name string, opts ...Option) *Field {
	return build(KindInteger, name, opts, func(*settings) string {
		return "exact"
	}, func(*settings) []Validator {
		return []Validator{ValidateNumeric}
	})
}

// Boolean matches true/false literals case-insensitively.
func Boolean(name string, opts ...Option) *Field {
	return build(KindBoolean, name, opts, func(*settings) string {
		return "iexact"
	}, func(*settings) []Validator {
		return []Validator{ValidateBoolean}
	})
}

// List matches membership in a list given as a JSON array.
func List(name string, opts ...Option) *Field {
	return build(KindList, name, opts, func(*settings) string {
		return "in"
	}, func(*settings) []Validator {
		return []Validator{ValidateList}
	})
}

// ByKind builds a field with the constructor named by kind. The second
// result is false for unknown kinds.
func ByKind(kind, name string, opts ...Option) (*Field, bool) {
	switch kind {
	case KindField, "":
		return New(name, opts...), true
	case KindExact:
		return Exact(name, opts...), true
	case KindContains:
		return Contains(name, opts...), true
	case KindString:
		return String(name, opts...), true
	case KindRegex:
		return Regex(name, opts...), true
	case KindEmail:
		return Email(name, opts...), true
	case KindInteger:
		return Integer(name, opts...), true
	case KindBoolean:
		return Boolean(name, opts...), true
	case KindList:
		return List(name, opts...), true
	}
	return nil, false
}
