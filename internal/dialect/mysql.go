package dialect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type MysqlDialect struct{}

func (d *MysqlDialect) Name() string { return "MySQL" }

func (d *MysqlDialect) ListTablesQuery() string {
	return `SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`
}

func (d *MysqlDialect) TableExistsQuery() string {
	return `SELECT COUNT(*) FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?`
}

// ShowCreateTable returns the verbatim DDL reported by SHOW CREATE TABLE.
func (d *MysqlDialect) ShowCreateTable(ctx context.Context, q RowQuerier, table string) (string, error) {
	var name, ddl string
	if err := q.QueryRowContext(ctx, "SHOW CREATE TABLE "+d.QuoteIdent(table)).Scan(&name, &ddl); err != nil {
		return "", fmt.Errorf("failed to show create table %s: %w", table, err)
	}
	return ddl, nil
}

func (d *MysqlDialect) CountQuery(table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", d.QuoteIdent(table))
}

func (d *MysqlDialect) SelectAllQuery(table string) string {
	return fmt.Sprintf("SELECT * FROM %s", d.QuoteIdent(table))
}

func (d *MysqlDialect) QuoteIdent(name string) string {
	return backtickIdent(name)
}

var mysqlEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"\x00", "\\0",
	"\n", "\\n",
	"\r", "\\r",
	"'", "\\'",
	"\"", "\\\"",
	"\x1a", "\\Z",
)

// EscapeLiteral escapes the same characters as mysql_real_escape_string.
func (d *MysqlDialect) EscapeLiteral(s string) string {
	return mysqlEscaper.Replace(s)
}

// FormatTime writes the wall clock as the driver returned it. With
// parseTime=true the driver already applied the DSN's loc, so the stored
// value is reproduced. Zero times come from zero dates.
func (d *MysqlDialect) FormatTime(t time.Time, databaseType string) string {
	date := strings.EqualFold(databaseType, "DATE")
	switch {
	case t.IsZero() && date:
		return "0000-00-00"
	case t.IsZero():
		return "0000-00-00 00:00:00"
	case date:
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05.999999")
}

// IsBinary covers BINARY, VARBINARY and the BLOB family. The driver returns
// []byte for text columns too, so the type name decides.
func (d *MysqlDialect) IsBinary(databaseType string) bool {
	t := strings.ToUpper(databaseType)
	return strings.Contains(t, "BLOB") || strings.Contains(t, "BINARY")
}

func (d *MysqlDialect) BeforeImport(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 0")
	return err
}

func (d *MysqlDialect) AfterImport(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 1")
	return err
}
