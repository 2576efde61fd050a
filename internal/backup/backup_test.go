package backup

import (
	"context"
	"database/sql"
	"testing"

	"db-sync/internal/dialect"
	"db-sync/internal/dump"
	"db-sync/internal/errs"
	"db-sync/internal/source"
	"db-sync/internal/storage"
	"db-sync/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const importName = "250825-143022-content-remote.sql"

const incoming = "-- SQLite Database Export\n" +
	"-- Source URL: https://example.com\n\n" +
	"DROP TABLE IF EXISTS `wp_posts`;\n" +
	"CREATE TABLE `wp_posts` (`ID` INTEGER PRIMARY KEY, `post_title` TEXT);\n" +
	"INSERT INTO `wp_posts` (`ID`, `post_title`) VALUES ('10', 'from remote');\n" +
	"DROP TABLE IF EXISTS `wp_terms`;\n" +
	"CREATE TABLE `wp_terms` (`term_id` INTEGER PRIMARY KEY, `name` TEXT);\n" +
	"DROP TABLE IF EXISTS `wp_termmeta`;\n" +
	"CREATE TABLE `wp_termmeta` (`meta_id` INTEGER PRIMARY KEY);\n"

func setup(t *testing.T) (*Manager, *sql.DB) {
	t.Helper()
	db := testutil.OpenSQLite(t)
	testutil.MustExec(t, db,
		"CREATE TABLE `wp_posts` (`ID` INTEGER PRIMARY KEY, `post_title` TEXT)",
		"INSERT INTO `wp_posts` VALUES (1, 'local ''one'''), (2, 'local\\two')",
		"CREATE TABLE `wp_terms` (`term_id` INTEGER PRIMARY KEY, `name` TEXT)",
		"INSERT INTO `wp_terms` VALUES (1, 'Uncategorized')",
	)
	dir, err := storage.Open(t.TempDir(), nil)
	require.NoError(t, err)

	src := source.New(db, &dialect.SqliteDialect{}, testutil.NewTestLogger(t))
	return NewManager(src, dir, "http://example.local", nil), db
}

func titles(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT `post_title` FROM `wp_posts` ORDER BY `ID`")
	require.NoError(t, err)
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		require.NoError(t, rows.Scan(&s))
		out = append(out, s)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestCreate_OnlyExistingTables(t *testing.T) {
	m, _ := setup(t)

	b, err := m.Create(context.Background(), importName, incoming)
	require.NoError(t, err)

	assert.Equal(t, "250825-143022-content-remote-BAK.sql", b.File.Name)
	assert.True(t, b.File.Info.IsBackup)
	assert.Equal(t, []string{"wp_posts", "wp_terms"}, b.Tables)
	assert.Equal(t, []string{"wp_termmeta"}, b.Skipped)
	assert.Equal(t, int64(3), b.Rows)

	text, err := m.Dir.ReadAll(b.File.Name)
	require.NoError(t, err)
	h := dump.ReadHeader(text)
	assert.Equal(t, "SQLite Database Backup", h.Title)
	assert.Equal(t, importName, h.Get(dump.FieldBackupOf))
	assert.Equal(t, "http://example.local", h.Get(dump.FieldTargetURL))
	assert.Equal(t, []string{"wp_posts", "wp_terms"}, dump.ExtractTables(text))
}

func TestCreate_NoTables(t *testing.T) {
	m, _ := setup(t)

	_, err := m.Create(context.Background(), importName, "INSERT INTO `wp_posts` VALUES ('1');")
	assert.True(t, errs.Is(err, errs.KindIntegrity))

	files, err := m.Dir.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCreate_Overwrites(t *testing.T) {
	m, db := setup(t)
	ctx := context.Background()

	_, err := m.Create(ctx, importName, incoming)
	require.NoError(t, err)
	testutil.MustExec(t, db, "INSERT INTO `wp_posts` VALUES (3, 'third')")
	b, err := m.Create(ctx, importName, incoming)
	require.NoError(t, err)
	assert.Equal(t, int64(4), b.Rows)

	files, err := m.Dir.List()
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestBackupThenRestore(t *testing.T) {
	m, db := setup(t)
	ctx := context.Background()
	before := titles(t, db)

	b, err := m.Create(ctx, importName, incoming)
	require.NoError(t, err)

	_, err = m.Importer.Import(ctx, incoming, dump.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"from remote"}, titles(t, db))

	res, err := m.Restore(ctx, b.File.Name, dump.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TablesProcessed)
	assert.Equal(t, 3, res.RowsImported)
	assert.Equal(t, before, titles(t, db))

	_, err = m.Dir.Stat(b.File.Name)
	assert.True(t, errs.Is(err, errs.KindValidation), "backup is deleted after restore")
}

func TestRestore_RejectsNonBackup(t *testing.T) {
	m, _ := setup(t)

	_, err := m.Restore(context.Background(), importName, dump.ImportOptions{})
	assert.True(t, errs.Is(err, errs.KindValidation))

	_, err = m.Restore(context.Background(), "../x-BAK.sql", dump.ImportOptions{})
	assert.True(t, errs.Is(err, errs.KindValidation))
}

func TestRestore_HeaderOnlyBackup(t *testing.T) {
	m, _ := setup(t)
	ctx := context.Background()

	fresh := "CREATE TABLE `wp_newtable` (`id` INTEGER);\nINSERT INTO `wp_newtable` VALUES (1);\n"
	b, err := m.Create(ctx, importName, fresh)
	require.NoError(t, err)
	assert.Empty(t, b.Tables)
	assert.Equal(t, []string{"wp_newtable"}, b.Skipped)

	res, err := m.Restore(ctx, b.File.Name, dump.ImportOptions{})
	require.NoError(t, err)
	assert.Zero(t, res.TablesProcessed)

	files, err := m.Dir.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}
