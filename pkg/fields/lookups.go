package fields

import "strings"

// LookupSeparator joins a field name with its lookup chain and the links of
// the chain with each other.
const LookupSeparator = "."

// Lookups is the set of operator names a lookup chain may be built from.
// Operator semantics belong to the store; this package only checks names.
var Lookups = []string{
	"exact", "iexact",
	"contains", "icontains",
	"startswith", "istartswith",
	"endswith", "iendswith",
	"regex", "iregex",
	"gt", "gte",
	"lt", "lte",
	"in", "isnull",
	"range", "date",
	"year", "month", "week", "week_day", "quarter",
	"time", "hour", "minute", "second",
}

var lookupSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Lookups))
	for _, l := range Lookups {
		set[l] = struct{}{}
	}
	return set
}()

// IsLookup reports whether name is a single known operator.
func IsLookup(name string) bool {
	_, ok := lookupSet[name]
	return ok
}

// ValidLookup reports whether every link of a chain such as "month.gte" is a
// known operator. The empty chain is not valid.
func ValidLookup(chain string) bool {
	if chain == "" {
		return false
	}
	for _, link := range strings.Split(chain, LookupSeparator) {
		if !IsLookup(link) {
			return false
		}
	}
	return true
}
