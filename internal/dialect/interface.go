package dialect

import (
	"context"
	"database/sql"
	"time"
)

// RowQuerier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type RowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect abstracts the engine-specific parts of reading and replaying dumps.
type Dialect interface {
	// Name is written into dump headers, e.g. "MySQL".
	Name() string

	// Introspection
	ListTablesQuery() string
	TableExistsQuery() string // one placeholder: the physical table name
	ShowCreateTable(ctx context.Context, q RowQuerier, table string) (string, error)

	// Query Generation
	CountQuery(table string) string
	SelectAllQuery(table string) string
	QuoteIdent(name string) string

	// EscapeLiteral escapes s for use between single quotes.
	EscapeLiteral(s string) string
	// FormatTime renders a scanned time value of a column with the given
	// database type name, keeping fractional seconds.
	FormatTime(t time.Time, databaseType string) string
	// IsBinary reports whether []byte values of a column with the given
	// database type name are dumped as hex literals.
	IsBinary(databaseType string) bool

	// Execution Hooks (Import Level)
	BeforeImport(ctx context.Context, tx *sql.Tx) error
	AfterImport(ctx context.Context, tx *sql.Tx) error
}
