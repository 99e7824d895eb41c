package storage

import (
	"fmt"
	"regexp"
	"strings"
)

// Column types accepted in table definitions.
const (
	TypeText     = "text"
	TypeInteger  = "integer"
	TypeReal     = "real"
	TypeBoolean  = "boolean"
	TypeDatetime = "datetime"
	TypeJSON     = "json"
)

var sqlTypes = map[string]string{
	TypeText:     "TEXT",
	TypeInteger:  "INTEGER",
	TypeReal:     "REAL",
	TypeBoolean:  "INTEGER",
	TypeDatetime: "DATETIME",
	TypeJSON:     "TEXT",
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Column maps a dotted field path to a table column.
type Column struct {
	// Path is what field names refer to, e.g. "user.email".
	Path string `toml:"path" yaml:"path" json:"path"`
	// Name is the SQL column. Defaults to Path with dots replaced by
	// underscores.
	Name string `toml:"name,omitempty" yaml:"name,omitempty" json:"name,omitempty"`
	// Type is one of the Type* constants. Defaults to text.
	Type string `toml:"type,omitempty" yaml:"type,omitempty" json:"type,omitempty"`
}

// ColumnName returns the SQL column name.
func (c Column) ColumnName() string {
	if c.Name != "" {
		return c.Name
	}
	return strings.ReplaceAll(c.Path, ".", "_")
}

// ColumnType returns the column type, text when unset.
func (c Column) ColumnType() string {
	if c.Type == "" {
		return TypeText
	}
	return strings.ToLower(c.Type)
}

// Table describes a collection.
type Table struct {
	Name    string   `toml:"name" yaml:"name" json:"name"`
	OrderBy string   `toml:"order_by,omitempty" yaml:"order_by,omitempty" json:"order_by,omitempty"`
	Columns []Column `toml:"columns" yaml:"columns" json:"columns"`
}

// Column returns the column mapped to path.
func (t *Table) Column(path string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Path == path {
			return c, true
		}
	}
	return Column{}, false
}

// orderColumn returns the column rows are sorted by: OrderBy (path or
// column name) or the first column.
func (t *Table) orderColumn() string {
	if t.OrderBy != "" {
		if c, ok := t.Column(t.OrderBy); ok {
			return c.ColumnName()
		}
		return t.OrderBy
	}
	return t.Columns[0].ColumnName()
}

func (t Table) validate() error {
	if !identPattern.MatchString(t.Name) {
		return fmt.Errorf("%w: table %q", ErrInvalidIdentifier, t.Name)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s has no columns", t.Name)
	}

	names := make(map[string]struct{}, len(t.Columns))
	paths := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		if c.Path == "" {
			return fmt.Errorf("table %s: column without path", t.Name)
		}
		name := c.ColumnName()
		if !identPattern.MatchString(name) {
			return fmt.Errorf("%w: column %q in table %s", ErrInvalidIdentifier, name, t.Name)
		}
		if _, ok := sqlTypes[c.ColumnType()]; !ok {
			return fmt.Errorf("%w: %q for column %s", ErrInvalidColumnType, c.Type, name)
		}
		if _, dup := names[name]; dup {
			return fmt.Errorf("table %s: duplicate column %s", t.Name, name)
		}
		if _, dup := paths[c.Path]; dup {
			return fmt.Errorf("table %s: duplicate path %s", t.Name, c.Path)
		}
		names[name] = struct{}{}
		paths[c.Path] = struct{}{}
	}

	if t.OrderBy != "" {
		if _, ok := t.Column(t.OrderBy); !ok {
			if _, ok := names[t.OrderBy]; !ok {
				return fmt.Errorf("table %s: order_by %q is not a column", t.Name, t.OrderBy)
			}
		}
	}
	return nil
}

func (t *Table) createStatement() string {
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = quoteIdent(c.ColumnName()) + " " + sqlTypes[c.ColumnType()]
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", quoteIdent(t.Name), strings.Join(defs, ",\n\t"))
}

func (t *Table) addColumnStatement(c Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", quoteIdent(t.Name), quoteIdent(c.ColumnName()), sqlTypes[c.ColumnType()])
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
