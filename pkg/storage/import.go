package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Insert stores records in table. A record value is looked up by column
// path, then by column name, then by walking nested objects along the path.
// Missing values are stored as NULL.
func (s *Store) Insert(ctx context.Context, table string, records []map[string]any) (int, error) {
	t, err := s.Table(table)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				s.logger.Warnf("failed to rollback transaction: %v", err)
			}
		}
	}()

	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quoteIdent(c.ColumnName())
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(t.Name), strings.Join(cols, ", "), placeholders(len(cols)),
	))
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			s.logger.Warnf("failed to close statement: %v", err)
		}
	}()

	for i, record := range records {
		args := make([]any, len(t.Columns))
		for j, c := range t.Columns {
			v, err := columnValue(c, valueAt(record, c))
			if err != nil {
				return 0, fmt.Errorf("record %d: %w", i+1, err)
			}
			args[j] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("inserting record %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	committed = true

	s.logger.Debugf("inserted %d records into %s", len(records), t.Name)
	return len(records), nil
}

// Import reads JSON records from r, either one object per line or a single
// array of objects, and inserts them in batches.
func (s *Store) Import(ctx context.Context, table string, r io.Reader, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 500
	}

	br := bufio.NewReader(r)
	dec := json.NewDecoder(br)
	dec.UseNumber()

	array, err := startsWithArray(br)
	if err != nil {
		return 0, err
	}
	if array {
		if _, err := dec.Token(); err != nil {
			return 0, fmt.Errorf("reading array start: %w", err)
		}
	}

	total := 0
	batch := make([]map[string]any, 0, batchSize)
	flush := func() error {
		n, err := s.Insert(ctx, table, batch)
		total += n
		batch = batch[:0]
		return err
	}

	for {
		if array && !dec.More() {
			break
		}
		var record map[string]any
		if err := dec.Decode(&record); err != nil {
			if errors.Is(err, io.EOF) && !array {
				break
			}
			return total, fmt.Errorf("decoding record %d: %w", total+len(batch)+1, err)
		}
		batch = append(batch, record)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}

	if len(batch) > 0 {
		if err := flush(); err != nil {
			return total, err
		}
	}
	return total, nil
}

func startsWithArray(br *bufio.Reader) (bool, error) {
	for {
		b, err := br.Peek(1)
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("reading input: %w", err)
		}
		switch b[0] {
		case ' ', '\t', '\n', '\r':
			if _, err := br.Discard(1); err != nil {
				return false, err
			}
			continue
		}
		return b[0] == '[', nil
	}
}

func valueAt(record map[string]any, c Column) any {
	if v, ok := record[c.Path]; ok {
		return v
	}
	if v, ok := record[c.ColumnName()]; ok {
		return v
	}
	var current any = record
	for _, part := range strings.Split(c.Path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[part]
	}
	return current
}

func columnValue(c Column, v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.ColumnName(), err)
		}
		return f, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		if c.ColumnType() == TypeBoolean {
			return coerceBool(x), nil
		}
		return x, nil
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.ColumnName(), err)
		}
		return string(b), nil
	}
	return v, nil
}
