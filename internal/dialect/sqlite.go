package dialect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type SqliteDialect struct{}

func (d *SqliteDialect) Name() string { return "SQLite" }

func (d *SqliteDialect) ListTablesQuery() string {
	return `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
}

func (d *SqliteDialect) TableExistsQuery() string {
	return `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
}

// ShowCreateTable returns the CREATE TABLE text stored in sqlite_master.
func (d *SqliteDialect) ShowCreateTable(ctx context.Context, q RowQuerier, table string) (string, error) {
	var ddl sql.NullString
	err := q.QueryRowContext(ctx, `SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&ddl)
	if err != nil {
		return "", fmt.Errorf("failed to show create table %s: %w", table, err)
	}
	if !ddl.Valid {
		return "", fmt.Errorf("failed to show create table %s: no definition stored", table)
	}
	return ddl.String, nil
}

func (d *SqliteDialect) CountQuery(table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", d.QuoteIdent(table))
}

func (d *SqliteDialect) SelectAllQuery(table string) string {
	return fmt.Sprintf("SELECT * FROM %s", d.QuoteIdent(table))
}

func (d *SqliteDialect) QuoteIdent(name string) string {
	return backtickIdent(name)
}

// SQLite has no backslash escapes, but the statement splitter treats a
// backslash as escaping the next byte. Backslashes are therefore emitted as
// char(92) concatenated outside the literal.
var sqliteEscaper = strings.NewReplacer(
	"'", "''",
	"\\", "' || char(92) || '",
)

func (d *SqliteDialect) EscapeLiteral(s string) string {
	return sqliteEscaper.Replace(s)
}

// FormatTime uses the first layout the driver parses back, so DATETIME
// columns read the same instant and offset after an import.
func (d *SqliteDialect) FormatTime(t time.Time, _ string) string {
	return t.Format("2006-01-02 15:04:05.999999999-07:00")
}

// IsBinary is always true: the driver only returns []byte for values with
// the BLOB storage class, whatever the declared type.
func (d *SqliteDialect) IsBinary(string) bool {
	return true
}

func (d *SqliteDialect) BeforeImport(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, "PRAGMA defer_foreign_keys = ON")
	return err
}

// AfterImport is a no-op: defer_foreign_keys resets at commit.
func (d *SqliteDialect) AfterImport(ctx context.Context, tx *sql.Tx) error {
	return nil
}
