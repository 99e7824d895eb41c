package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/rubiojr/searchfields/pkg/search"
)

// Query returns one page of collection filtered by conditions. Conditions
// are combined with OR, duplicate rows are removed and no conditions means
// every row. Rows are keyed by column path.
func (s *Store) Query(ctx context.Context, collection string, conditions []search.Condition, page search.Page) (*search.Result, error) {
	t, err := s.Table(collection)
	if err != nil {
		return nil, err
	}

	query, args, err := t.selectStatement(conditions, page)
	if err != nil {
		return nil, err
	}
	s.logger.Debugf("query: %s %v", query, args)

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warnf("failed to close rows: %v", err)
		}
	}()

	paths := make(map[string]string, len(t.Columns))
	for _, c := range t.Columns {
		paths[c.ColumnName()] = c.Path
	}

	result := &search.Result{Rows: []search.Row{}}
	for rows.Next() {
		raw := make(map[string]any)
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		row := make(search.Row, len(raw))
		for name, v := range raw {
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			if path, ok := paths[name]; ok {
				name = path
			}
			row[name] = v
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	if page.Limit > 0 && len(result.Rows) > page.Limit {
		result.HasMore = true
		result.Rows = result.Rows[:page.Limit]
	}
	return result, nil
}

// selectStatement builds the SELECT for conditions. One extra row past the
// page is requested to tell whether more rows exist.
func (t *Table) selectStatement(conditions []search.Condition, page search.Page) (string, []any, error) {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quoteIdent(c.ColumnName())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT DISTINCT %s FROM %s", strings.Join(cols, ", "), quoteIdent(t.Name))

	var args []any
	if len(conditions) > 0 {
		clauses := make([]string, len(conditions))
		for i, cond := range conditions {
			clause, clauseArgs, err := t.clause(cond)
			if err != nil {
				return "", nil, err
			}
			clauses[i] = "(" + clause + ")"
			args = append(args, clauseArgs...)
		}
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(clauses, " OR "))
	}

	fmt.Fprintf(&b, " ORDER BY %s", quoteIdent(t.orderColumn()))

	limit := -1
	if page.Limit > 0 {
		limit = page.Limit + 1
	}
	offset := max(page.Offset, 0)
	b.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	return b.String(), args, nil
}
