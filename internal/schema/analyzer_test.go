package schema_test

import (
	"context"
	"testing"

	"db-sync/internal/dialect"
	"db-sync/internal/schema"
	"db-sync/internal/source"
	"db-sync/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "posts", schema.DisplayName("wp_", "wp_posts"))
	assert.Equal(t, "custom_log", schema.DisplayName("wp_", "custom_log"))
	assert.Equal(t, "wp_", schema.DisplayName("wp_", "wp_"))
	assert.Equal(t, "wp_posts", schema.DisplayName("", "wp_posts"))
}

func TestCatalog_Resolve(t *testing.T) {
	c := schema.NewCatalog("wp_", []string{"wp_options", "wp_postmeta", "wp_posts", "wp_users"})

	found, missing := c.Resolve([]string{"posts", "postmeta", "widgets", "posts", "wp_users"})

	require.Len(t, found, 3)
	// input order is preserved, not catalog order
	assert.Equal(t, "wp_posts", found[0].Physical)
	assert.Equal(t, "wp_postmeta", found[1].Physical)
	assert.Equal(t, "users", found[2].Name)
	assert.Equal(t, []string{"widgets"}, missing)

	assert.Equal(t, "options", c.Label("wp_options"))
	assert.Equal(t, "other", c.Label("other"))
}

func TestAnalyze_CountRows(t *testing.T) {
	db := testutil.OpenSQLite(t)
	testutil.MustExec(t, db,
		"CREATE TABLE `wp_posts` (`ID` INTEGER PRIMARY KEY)",
		"CREATE TABLE `wp_terms` (`term_id` INTEGER PRIMARY KEY)",
		"INSERT INTO `wp_posts` VALUES (1), (2), (3)",
	)
	src := source.New(db, &dialect.SqliteDialect{}, testutil.NewTestLogger(t))
	ctx := context.Background()

	c, err := schema.Analyze(ctx, src, "wp_")
	require.NoError(t, err)
	require.Len(t, c.Tables, 2)
	assert.Equal(t, int64(-1), c.Tables[0].Rows)

	require.NoError(t, c.CountRows(ctx, src))

	posts, ok := c.Lookup("posts")
	require.True(t, ok)
	assert.Equal(t, int64(3), posts.Rows)

	terms, ok := c.Lookup("terms")
	require.True(t, ok)
	assert.Equal(t, int64(0), terms.Rows)
}
