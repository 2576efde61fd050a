// Package source is the relational data source the dump engine reads from and
// replays into. It pairs a *sql.DB with the Dialect that knows how to talk to it.
package source

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"db-sync/internal/dialect"
)

// Source wraps a database handle and its dialect.
type Source struct {
	DB      *sql.DB
	Dialect dialect.Dialect
	Logger  *slog.Logger
}

// New creates a Source. A nil logger discards output.
func New(db *sql.DB, d dialect.Dialect, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Source{DB: db, Dialect: d, Logger: logger}
}

// ListTables returns every physical table name in name order.
func (s *Source) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, s.Dialect.ListTablesQuery())
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return tables, nil
}

// TableExists reports whether a physical table is present.
func (s *Source) TableExists(ctx context.Context, table string) (bool, error) {
	var n int
	if err := s.DB.QueryRowContext(ctx, s.Dialect.TableExistsQuery(), table).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return n > 0, nil
}

// CountRows returns the number of rows in table.
func (s *Source) CountRows(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := s.DB.QueryRowContext(ctx, s.Dialect.CountQuery(table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", table, err)
	}
	return n, nil
}

// ShowCreateTable returns the engine's own CREATE TABLE statement for table.
func (s *Source) ShowCreateTable(ctx context.Context, table string) (string, error) {
	return s.Dialect.ShowCreateTable(ctx, s.DB, table)
}

// RowFunc receives the column names once per table and then every row as
// SQL literals ready for a VALUES list: NULL, a quoted escaped string or a
// hex literal.
type RowFunc func(columns []string, literals []string) error

// SelectAll streams every row of table to fn.
func (s *Source) SelectAll(ctx context.Context, table string, fn RowFunc) error {
	rows, err := s.DB.QueryContext(ctx, s.Dialect.SelectAllQuery(table))
	if err != nil {
		return fmt.Errorf("failed to select from %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	dbTypes := make([]string, len(cols))
	if types, err := rows.ColumnTypes(); err == nil {
		for i, ct := range types {
			dbTypes[i] = ct.DatabaseTypeName()
		}
	} else {
		s.Logger.Debug("column types unavailable", "table", table, "err", err)
	}

	raw := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("failed to scan row of %s: %w", table, err)
		}
		literals := make([]string, len(cols))
		for i, v := range raw {
			literals[i] = s.Literal(v, dbTypes[i])
		}
		if err := fn(cols, literals); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows of %s: %w", table, err)
	}
	return nil
}

// Begin starts the import transaction.
func (s *Source) Begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Literal renders a scanned driver value of a column with the given database
// type name as a SQL literal.
func (s *Source) Literal(v any, databaseType string) string {
	if b, ok := v.([]byte); ok && s.Dialect.IsBinary(databaseType) {
		return "X'" + hex.EncodeToString(b) + "'"
	}
	text, ok := s.FormatValue(v, databaseType)
	if !ok {
		return "NULL"
	}
	return dialect.QuoteLiteral(s.Dialect, text)
}

// FormatValue converts a scanned driver value to its dump text. ok is false
// for SQL NULL.
func (s *Source) FormatValue(v any, databaseType string) (text string, ok bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case []byte:
		return string(x), true
	case string:
		return x, true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	case bool:
		if x {
			return "1", true
		}
		return "0", true
	case time.Time:
		return s.Dialect.FormatTime(x, databaseType), true
	default:
		return fmt.Sprint(x), true
	}
}
