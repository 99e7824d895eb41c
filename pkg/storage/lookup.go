package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rubiojr/searchfields/pkg/fields"
	"github.com/rubiojr/searchfields/pkg/search"
)

// transform wraps a column expression. numeric transforms produce integers,
// so terms compared against them are converted as well.
type transform struct {
	format  string
	numeric bool
}

var transforms = map[string]transform{
	"date":     {"date(%s)", false},
	"year":     {"CAST(strftime('%%Y', %s) AS INTEGER)", true},
	"month":    {"CAST(strftime('%%m', %s) AS INTEGER)", true},
	"week":     {"CAST(strftime('%%V', %s) AS INTEGER)", true},
	"week_day": {"(CAST(strftime('%%w', %s) AS INTEGER) + 1)", true},
	"quarter":  {"((CAST(strftime('%%m', %s) AS INTEGER) + 2) / 3)", true},
	"time":     {"time(%s)", false},
	"hour":     {"CAST(strftime('%%H', %s) AS INTEGER)", true},
	"minute":   {"CAST(strftime('%%M', %s) AS INTEGER)", true},
	"second":   {"CAST(strftime('%%S', %s) AS INTEGER)", true},
}

// resolvePath splits a condition path into the longest column path it
// starts with and the lookup chain that follows.
func (t *Table) resolvePath(path string) (Column, []string, error) {
	parts := strings.Split(path, fields.LookupSeparator)
	for k := len(parts); k > 0; k-- {
		if c, ok := t.Column(strings.Join(parts[:k], fields.LookupSeparator)); ok {
			return c, parts[k:], nil
		}
	}
	return Column{}, nil, fmt.Errorf("%w: %s in table %s", ErrUnknownPath, path, t.Name)
}

// clause translates one condition into a SQL boolean expression.
func (t *Table) clause(cond search.Condition) (string, []any, error) {
	col, lookups, err := t.resolvePath(cond.Path)
	if err != nil {
		return "", nil, err
	}

	expr := quoteIdent(col.ColumnName())
	colType := col.ColumnType()
	numeric := colType == TypeInteger || colType == TypeReal
	boolean := colType == TypeBoolean

	if len(lookups) == 0 {
		lookups = []string{"exact"}
	}
	chain, op := lookups[:len(lookups)-1], lookups[len(lookups)-1]
	if _, ok := transforms[op]; ok {
		chain, op = lookups, "exact"
	}

	for _, name := range chain {
		tr, ok := transforms[name]
		if !ok {
			return "", nil, fmt.Errorf("%w: %q cannot be chained in %s", ErrUnsupportedLookup, name, cond.Path)
		}
		expr = fmt.Sprintf(tr.format, expr)
		numeric = tr.numeric
		boolean = false
	}

	value := func(term string) any {
		switch {
		case boolean:
			return coerceBool(term)
		case numeric:
			return coerceNumber(term)
		}
		return term
	}

	term := cond.Term
	switch op {
	case "exact":
		return expr + " = ?", []any{value(term)}, nil
	case "iexact":
		if boolean || numeric {
			return expr + " = ?", []any{value(term)}, nil
		}
		return "lower(" + expr + ") = lower(?)", []any{term}, nil
	case "contains":
		return "instr(" + expr + ", ?) > 0", []any{term}, nil
	case "icontains":
		return expr + ` LIKE ? ESCAPE '\'`, []any{"%" + escapeLike(term) + "%"}, nil
	case "startswith":
		return "substr(" + expr + ", 1, length(?)) = ?", []any{term, term}, nil
	case "istartswith":
		return expr + ` LIKE ? ESCAPE '\'`, []any{escapeLike(term) + "%"}, nil
	case "endswith":
		return "substr(" + expr + ", -length(?)) = ?", []any{term, term}, nil
	case "iendswith":
		return expr + ` LIKE ? ESCAPE '\'`, []any{"%" + escapeLike(term)}, nil
	case "regex", "iregex":
		if op == "iregex" {
			term = "(?i)" + term
		}
		// An invalid pattern matches nothing.
		if _, err := regexp.Compile(term); err != nil {
			return "0", nil, nil
		}
		return expr + " IS NOT NULL AND " + expr + " REGEXP ?", []any{term}, nil
	case "gt":
		return expr + " > ?", []any{value(term)}, nil
	case "gte":
		return expr + " >= ?", []any{value(term)}, nil
	case "lt":
		return expr + " < ?", []any{value(term)}, nil
	case "lte":
		return expr + " <= ?", []any{value(term)}, nil
	case "isnull":
		if coerceBool(term) == 1 {
			return expr + " IS NULL", nil, nil
		}
		return expr + " IS NOT NULL", nil, nil
	case "in":
		items := splitList(term)
		if len(items) == 0 {
			return "0", nil, nil
		}
		args := make([]any, len(items))
		for i, item := range items {
			args[i] = value(item)
		}
		return expr + " IN (" + placeholders(len(items)) + ")", args, nil
	case "range":
		items := splitList(term)
		if len(items) != 2 {
			return "", nil, fmt.Errorf("%w: range on %s needs two values, got %d", ErrUnsupportedLookup, cond.Path, len(items))
		}
		return expr + " BETWEEN ? AND ?", []any{value(items[0]), value(items[1])}, nil
	}

	return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedLookup, op)
}

// splitList reads a JSON array or, failing that, a comma separated list.
func splitList(term string) []string {
	var decoded []any
	if err := json.Unmarshal([]byte(term), &decoded); err == nil {
		items := make([]string, 0, len(decoded))
		for _, v := range decoded {
			switch x := v.(type) {
			case string:
				items = append(items, x)
			case float64:
				items = append(items, strconv.FormatFloat(x, 'f', -1, 64))
			case bool:
				items = append(items, strconv.FormatBool(x))
			case nil:
			default:
				b, _ := json.Marshal(x)
				items = append(items, string(b))
			}
		}
		return items
	}

	var items []string
	for _, item := range strings.Split(term, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func coerceNumber(term string) any {
	s := strings.TrimSpace(term)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return term
}

func coerceBool(term string) int {
	switch strings.ToLower(strings.TrimSpace(term)) {
	case "true", "1", "yes", "on":
		return 1
	}
	return 0
}

func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
