package source_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"db-sync/internal/dialect"
	"db-sync/internal/source"
	"db-sync/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteSource(t *testing.T) *source.Source {
	t.Helper()
	db := testutil.OpenSQLite(t)
	testutil.MustExec(t, db,
		"CREATE TABLE `wp_posts` (`ID` INTEGER PRIMARY KEY, `post_title` TEXT, `post_parent` INTEGER)",
		"CREATE TABLE `wp_options` (`option_id` INTEGER PRIMARY KEY, `option_value` TEXT)",
		"INSERT INTO `wp_posts` VALUES (1, 'Hello', NULL), (2, 'World', 1)",
	)
	return source.New(db, &dialect.SqliteDialect{}, testutil.NewTestLogger(t))
}

func TestSource_Introspection(t *testing.T) {
	ctx := context.Background()
	src := newSQLiteSource(t)

	tables, err := src.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"wp_options", "wp_posts"}, tables)

	ok, err := src.TableExists(ctx, "wp_posts")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = src.TableExists(ctx, "wp_users")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := src.CountRows(ctx, "wp_posts")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSource_SelectAll(t *testing.T) {
	src := newSQLiteSource(t)

	var cols []string
	var rows [][]string
	err := src.SelectAll(context.Background(), "wp_posts", func(c []string, v []string) error {
		cols = c
		rows = append(rows, v)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ID", "post_title", "post_parent"}, cols)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"'1'", "'Hello'", "NULL"}, rows[0])
	assert.Equal(t, []string{"'2'", "'World'", "'1'"}, rows[1])
}

func TestSource_MySQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	src := source.New(db, &dialect.MysqlDialect{}, nil)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_TYPE = 'BASE TABLE'")).
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).AddRow("wp_options").AddRow("wp_posts"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `wp_posts`")).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(42))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `wp_options`")).
		WillReturnRows(sqlmock.NewRows([]string{"option_id", "option_name", "autoload"}).
			AddRow([]byte("1"), []byte("siteurl"), nil))

	tables, err := src.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"wp_options", "wp_posts"}, tables)

	n, err := src.CountRows(ctx, "wp_posts")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	var got []string
	err = src.SelectAll(ctx, "wp_options", func(_ []string, v []string) error {
		got = v
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"'1'", "'siteurl'", "NULL"}, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLiteral(t *testing.T) {
	mysql := source.New(nil, &dialect.MysqlDialect{}, nil)
	sqlite := source.New(nil, &dialect.SqliteDialect{}, nil)

	tests := []struct {
		name   string
		src    *source.Source
		v      any
		dbType string
		want   string
	}{
		{"null", mysql, nil, "VARCHAR", "NULL"},
		{"mysql text bytes", mysql, []byte("it's"), "VARCHAR", `'it\'s'`},
		{"mysql blob bytes", mysql, []byte{0x00, 0xff, 'a'}, "BLOB", "X'00ff61'"},
		{"int", mysql, int64(-7), "BIGINT", "'-7'"},
		{"float", mysql, 3.25, "DOUBLE", "'3.25'"},
		{"bool", mysql, true, "TINYINT", "'1'"},
		{"mysql datetime", mysql, time.Date(2025, 8, 25, 14, 30, 22, 500000000, time.UTC), "DATETIME", "'2025-08-25 14:30:22.5'"},
		{"mysql date", mysql, time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC), "DATE", "'2025-08-25'"},
		{"sqlite text", sqlite, "C:\\x", "TEXT", "'C:' || char(92) || 'x'"},
		{"sqlite blob", sqlite, []byte("ab"), "", "X'6162'"},
		{"sqlite datetime", sqlite, time.Date(2024, 1, 2, 3, 4, 5, 123456000, time.FixedZone("", 2*60*60)), "DATETIME", "'2024-01-02 03:04:05.123456+02:00'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.src.Literal(tt.v, tt.dbType))
		})
	}
}

func TestSource_SelectAllBinaryAndTime(t *testing.T) {
	db := testutil.OpenSQLite(t)
	testutil.MustExec(t, db,
		"CREATE TABLE `wp_media` (`id` INTEGER PRIMARY KEY, `data` BLOB, `created` DATETIME)",
		"INSERT INTO `wp_media` VALUES (1, X'cafe', '2024-01-02 03:04:05.123456')",
	)
	src := source.New(db, &dialect.SqliteDialect{}, testutil.NewTestLogger(t))

	var got []string
	err := src.SelectAll(context.Background(), "wp_media", func(_ []string, v []string) error {
		got = v
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"'1'", "X'cafe'", "'2024-01-02 03:04:05.123456+00:00'"}, got)
}
