package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/ext/regexp"
	"github.com/rubiojr/searchfields/pkg/log"
)

var (
	ErrUnknownTable       = errors.New("unknown table")
	ErrUnknownPath        = errors.New("unknown path")
	ErrUnsupportedLookup  = errors.New("unsupported lookup")
	ErrInvalidIdentifier  = errors.New("invalid identifier")
	ErrInvalidColumnType  = errors.New("invalid column type")
	ErrTableAlreadyExists = errors.New("table already registered")
)

// Store keeps searchable collections in a SQLite database, one table per
// collection.
type Store struct {
	db     *sqlx.DB
	path   string
	logger *log.Logger

	mu     sync.RWMutex
	tables map[string]*Table
}

// Open opens (creating if needed) the database at path. Every connection
// gets the REGEXP operator.
func Open(path string) (*Store, error) {
	db, err := driver.Open(path, regexp.Register)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
		"PRAGMA cache_size = -64000", // 64MB cache
		"PRAGMA temp_store = memory",
		"PRAGMA mmap_size = 268435456", // 256MB mmap
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	return &Store{
		db:     sqlx.NewDb(db, "sqlite3"),
		path:   path,
		logger: log.ForComponent("storage"),
		tables: make(map[string]*Table),
	}, nil
}

// Close optimizes and closes the database.
func (s *Store) Close() error {
	if _, err := s.db.Exec("PRAGMA optimize"); err != nil {
		s.logger.Warnf("optimizing %s: %v", s.path, err)
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Register makes a table known to the store without touching the database.
func (s *Store) Register(t Table) error {
	if err := t.validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tables[t.Name]; exists {
		return fmt.Errorf("%w: %s", ErrTableAlreadyExists, t.Name)
	}
	s.tables[t.Name] = &t
	return nil
}

// CreateTable registers t and creates it if it does not exist yet. Columns
// missing from an existing table are added.
func (s *Store) CreateTable(ctx context.Context, t Table) error {
	if err := s.Register(t); err != nil {
		return err
	}

	if err := s.ensureSchema(ctx, &t); err != nil {
		s.mu.Lock()
		delete(s.tables, t.Name)
		s.mu.Unlock()
		return err
	}
	return nil
}

// UpdateTable replaces the definition of a registered table, or registers a
// new one, bringing the database schema up to date first. Columns dropped
// from the definition stay in the database but are no longer searchable.
func (s *Store) UpdateTable(ctx context.Context, t Table) error {
	if err := t.validate(); err != nil {
		return err
	}
	if err := s.ensureSchema(ctx, &t); err != nil {
		return err
	}

	s.mu.Lock()
	s.tables[t.Name] = &t
	s.mu.Unlock()
	return nil
}

func (s *Store) ensureSchema(ctx context.Context, t *Table) error {
	if _, err := s.db.ExecContext(ctx, t.createStatement()); err != nil {
		return fmt.Errorf("creating table %s: %w", t.Name, err)
	}

	var existing []string
	if err := s.db.SelectContext(ctx, &existing, "SELECT name FROM pragma_table_info(?)", t.Name); err != nil {
		return fmt.Errorf("reading columns of %s: %w", t.Name, err)
	}
	have := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		have[strings.ToLower(name)] = struct{}{}
	}

	for _, c := range t.Columns {
		if _, ok := have[strings.ToLower(c.ColumnName())]; ok {
			continue
		}
		if _, err := s.db.ExecContext(ctx, t.addColumnStatement(c)); err != nil {
			return fmt.Errorf("adding column %s to %s: %w", c.ColumnName(), t.Name, err)
		}
		s.logger.Infof("added column %s to table %s", c.ColumnName(), t.Name)
	}

	s.logger.Debugf("table %s ready with %d columns", t.Name, len(t.Columns))
	return nil
}

// Table returns a registered table.
func (s *Store) Table(name string) (*Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return t, nil
}

// Tables returns the names of the registered tables, sorted.
func (s *Store) Tables() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of rows stored in a table.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	t, err := s.Table(table)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+quoteIdent(t.Name)); err != nil {
		return 0, fmt.Errorf("counting %s: %w", t.Name, err)
	}
	return count, nil
}
