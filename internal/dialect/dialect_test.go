package dialect_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"db-sync/internal/dialect"
	"db-sync/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDialect(t *testing.T) {
	d, err := dialect.GetDialect("mysql")
	require.NoError(t, err)
	assert.Equal(t, "MySQL", d.Name())

	d, err = dialect.GetDialect("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "SQLite", d.Name())

	_, err = dialect.GetDialect("postgres")
	assert.Error(t, err)

	assert.Equal(t, "sqlite", dialect.DriverName("sqlite3"))
	assert.Equal(t, "mysql", dialect.DriverName(""))
}

func TestMysqlEscapeLiteral(t *testing.T) {
	d := &dialect.MysqlDialect{}

	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"it's", `it\'s`},
		{`say "hi"`, `say \"hi\"`},
		{`C:\path`, `C:\\path`},
		{"line\nbreak\r", `line\nbreak\r`},
		{"nul\x00byte", `nul\0byte`},
		{"ctrl\x1az", `ctrl\Zz`},
		{`a:2:{s:1:"x";i:5;}`, `a:2:{s:1:\"x\";i:5;}`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, d.EscapeLiteral(tt.in), "input %q", tt.in)
	}
	assert.Equal(t, `'it\'s'`, dialect.QuoteLiteral(d, "it's"))
}

func TestQuoteIdent(t *testing.T) {
	d := &dialect.MysqlDialect{}
	assert.Equal(t, "`wp_posts`", d.QuoteIdent("wp_posts"))
	assert.Equal(t, "`we``ird`", d.QuoteIdent("we`ird"))
	assert.Equal(t, "`a`, `b`", dialect.QuoteIdentList(d, []string{"a", "b"}))
}

func TestMysqlShowCreateTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ddl := "CREATE TABLE `wp_posts` (\n  `ID` bigint unsigned NOT NULL AUTO_INCREMENT,\n  PRIMARY KEY (`ID`)\n) ENGINE=InnoDB"
	mock.ExpectQuery(regexp.QuoteMeta("SHOW CREATE TABLE `wp_posts`")).
		WillReturnRows(sqlmock.NewRows([]string{"Table", "Create Table"}).AddRow("wp_posts", ddl))

	d := &dialect.MysqlDialect{}
	got, err := d.ShowCreateTable(context.Background(), db, "wp_posts")
	require.NoError(t, err)
	assert.Equal(t, ddl, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMysqlImportHooks(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 0").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ctx := context.Background()
	d := &dialect.MysqlDialect{}
	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, d.BeforeImport(ctx, tx))
	require.NoError(t, d.AfterImport(ctx, tx))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqliteEscapeLiteral_RoundTrip(t *testing.T) {
	db := testutil.OpenSQLite(t)
	d := &dialect.SqliteDialect{}

	values := []string{
		"plain",
		"it's",
		`C:\path\to\file`,
		`trailing\`,
		`a:2:{s:1:"x";i:5;s:1:"y";s:3:"a;b";}`,
		"multi\nline",
	}

	for _, v := range values {
		var got string
		err := db.QueryRow("SELECT " + dialect.QuoteLiteral(d, v)).Scan(&got)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestSqliteShowCreateTable(t *testing.T) {
	db := testutil.OpenSQLite(t)
	testutil.MustExec(t, db, "CREATE TABLE `wp_options` (`option_id` INTEGER PRIMARY KEY, `option_name` TEXT)")

	d := &dialect.SqliteDialect{}
	ddl, err := d.ShowCreateTable(context.Background(), db, "wp_options")
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE `wp_options` (`option_id` INTEGER PRIMARY KEY, `option_name` TEXT)", ddl)

	_, err = d.ShowCreateTable(context.Background(), db, "missing")
	assert.Error(t, err)

	var n int
	require.NoError(t, db.QueryRow(d.TableExistsQuery(), "wp_options").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestMysqlFormatTime(t *testing.T) {
	d := &dialect.MysqlDialect{}
	ts := time.Date(2024, 1, 2, 3, 4, 5, 123456000, time.UTC)

	assert.Equal(t, "2024-01-02 03:04:05.123456", d.FormatTime(ts, "DATETIME"))
	assert.Equal(t, "2024-01-02 03:04:05", d.FormatTime(ts.Truncate(time.Second), "TIMESTAMP"))
	assert.Equal(t, "2024-01-02", d.FormatTime(ts, "DATE"))
	assert.Equal(t, "0000-00-00 00:00:00", d.FormatTime(time.Time{}, "DATETIME"))
	assert.Equal(t, "0000-00-00", d.FormatTime(time.Time{}, "DATE"))

	assert.True(t, d.IsBinary("LONGBLOB"))
	assert.True(t, d.IsBinary("VARBINARY"))
	assert.False(t, d.IsBinary("LONGTEXT"))
	assert.False(t, d.IsBinary(""))
}

func TestSqliteFormatTime_ParsesBack(t *testing.T) {
	db := testutil.OpenSQLite(t)
	testutil.MustExec(t, db, "CREATE TABLE `events` (`id` INTEGER PRIMARY KEY, `at` DATETIME)")
	d := &dialect.SqliteDialect{}

	values := []time.Time{
		time.Date(2024, 1, 2, 3, 4, 5, 123456789, time.UTC),
		time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("", 2*60*60)),
	}
	for i, v := range values {
		testutil.MustExec(t, db, fmt.Sprintf("INSERT INTO `events` VALUES (%d, %s)",
			i+1, dialect.QuoteLiteral(d, d.FormatTime(v, "DATETIME"))))

		var got time.Time
		require.NoError(t, db.QueryRow("SELECT `at` FROM `events` WHERE `id` = ?", i+1).Scan(&got))
		assert.True(t, v.Equal(got), "%v != %v", v, got)
		_, wantOffset := v.Zone()
		_, gotOffset := got.Zone()
		assert.Equal(t, wantOffset, gotOffset)
	}
}
