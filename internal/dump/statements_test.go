package dump

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateTableName(t *testing.T) {
	tests := []struct {
		stmt string
		want string
		ok   bool
	}{
		{"CREATE TABLE `wp_posts` (\n  `ID` int\n)", "wp_posts", true},
		{"create table if not exists `wp_terms` (`term_id` int)", "wp_terms", true},
		{`CREATE TABLE "quoted" (id int)`, "quoted", true},
		{"CREATE TABLE bare_name (id int)", "bare_name", true},
		{"INSERT INTO `wp_posts` VALUES ('1')", "", false},
		{"DROP TABLE IF EXISTS `wp_posts`", "", false},
	}

	for _, tt := range tests {
		got, ok := CreateTableName(tt.stmt)
		assert.Equal(t, tt.ok, ok, tt.stmt)
		assert.Equal(t, tt.want, got, tt.stmt)
	}
}

func TestClassifiers(t *testing.T) {
	assert.True(t, IsCreateTable("create TABLE `x` (a int)"))
	assert.False(t, IsCreateTable("CREATE INDEX i ON x (a)"))
	assert.True(t, IsInsert("insert into `x` VALUES (1)"))
	assert.False(t, IsInsert("INSERT"))

	name, ok := InsertTableName("INSERT INTO `wp_postmeta` (`meta_id`) VALUES ('1')")
	assert.True(t, ok)
	assert.Equal(t, "wp_postmeta", name)
}

func TestExtractTables(t *testing.T) {
	text := "-- header\n" +
		"DROP TABLE IF EXISTS `wp_posts`;\n" +
		"CREATE TABLE `wp_posts` (`ID` int);\n" +
		"INSERT INTO `wp_posts` (`ID`) VALUES ('1');\n" +
		"INSERT INTO `wp_log` (`msg`) VALUES ('CREATE TABLE `fake` (x int);');\n" +
		"CREATE TABLE `wp_terms` (`term_id` int);\n" +
		"CREATE TABLE `wp_posts` (`ID` int);\n"

	assert.Equal(t, []string{"wp_posts", "wp_terms"}, ExtractTables(text))
	assert.Empty(t, ExtractTables("INSERT INTO `t` VALUES ('1');"))
	assert.Empty(t, ExtractTables(""))
}

func TestReadHeader(t *testing.T) {
	text := "-- MySQL Database Export\n" +
		"-- Generated: 2025-08-25 14:30:22\n" +
		"-- Source URL: http://example.local\n" +
		"-- Exported tables: posts, postmeta\n" +
		"\n" +
		"-- Table structure for posts\n" +
		"DROP TABLE IF EXISTS `wp_posts`;\n"

	h := ReadHeader(text)
	assert.Equal(t, "MySQL Database Export", h.Title)
	assert.Equal(t, "2025-08-25 14:30:22", h.Get(FieldGenerated))
	assert.Equal(t, "http://example.local", h.Get(FieldSourceURL))
	assert.Equal(t, "posts, postmeta", h.Get(FieldExportedTables))
	assert.Empty(t, h.Get("Table structure for posts"))

	assert.Empty(t, ReadHeader("SELECT 1;").Title)
}

func TestRewriteQuoted(t *testing.T) {
	const from, to = "http://old.test", "https://new.test"

	tests := []struct {
		name string
		in   string
		want string
		n    int
	}{
		{
			name: "single quoted value",
			in:   "INSERT INTO `t` VALUES ('see http://old.test/page');",
			want: "INSERT INTO `t` VALUES ('see https://new.test/page');",
			n:    1,
		},
		{
			name: "outside quotes untouched",
			in:   "-- Source URL: http://old.test\nSELECT http://old.test;",
			want: "-- Source URL: http://old.test\nSELECT http://old.test;",
			n:    0,
		},
		{
			name: "escaped quote keeps string open",
			in:   `INSERT INTO t VALUES ('it\'s http://old.test', "http://old.test");`,
			want: `INSERT INTO t VALUES ('it\'s https://new.test', "https://new.test");`,
			n:    2,
		},
		{
			name: "block comment untouched",
			in:   "/* 'http://old.test' */ INSERT INTO t VALUES ('http://old.test');",
			want: "/* 'http://old.test' */ INSERT INTO t VALUES ('https://new.test');",
			n:    1,
		},
		{
			name: "mysql escaped serialized lengths",
			in:   `INSERT INTO t VALUES ('a:2:{s:4:\"home\";s:20:\"http://old.test/blog\";}');`,
			want: `INSERT INTO t VALUES ('a:2:{s:4:\"home\";s:21:\"https://new.test/blog\";}');`,
			n:    1,
		},
		{
			name: "doubled quote counts once",
			in:   `INSERT INTO t VALUES ('a:1:{s:3:"url";s:20:"it''s http://old.test";}');`,
			want: `INSERT INTO t VALUES ('a:1:{s:3:"url";s:21:"it''s https://new.test";}');`,
			n:    1,
		},
		{
			name: "nested serialized lengths",
			in:   `INSERT INTO t VALUES ('s:33:\"a:1:{i:0;s:15:\"http://old.test\";}\";');`,
			want: `INSERT INTO t VALUES ('s:34:\"a:1:{i:0;s:16:\"https://new.test\";}\";');`,
			n:    1,
		},
		{
			name: "wrong declared length untouched",
			in:   `INSERT INTO t VALUES ('s:99:"http://old.test";');`,
			want: `INSERT INTO t VALUES ('s:99:"https://new.test";');`,
			n:    1,
		},
		{
			name: "unescaped serialized length",
			in:   `INSERT INTO t VALUES ('s:19:"http://old.test/abc";');`,
			want: `INSERT INTO t VALUES ('s:20:"https://new.test/abc";');`,
			n:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := RewriteQuoted(tt.in, from, to)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.n, n)
		})
	}

	unchanged, n := RewriteQuoted("VALUES ('x')", "it's", "y")
	assert.Equal(t, "VALUES ('x')", unchanged)
	assert.Zero(t, n)
}

func TestBuildPreview(t *testing.T) {
	text := "-- MySQL Database Export\n" +
		"-- Source URL: http://example.local\n\n" +
		"CREATE TABLE `wp_posts` (`ID` int);\n" +
		"INSERT INTO `wp_posts` (`ID`) VALUES ('1');\n" +
		"INSERT INTO `wp_posts` (`ID`) VALUES ('2');\n" +
		"CREATE TABLE `wp_terms` (`term_id` int);\n" +
		"-- No data found\n" +
		"INSERT INTO `wp_orphan` (`x`) VALUES ('a;b');\n"

	p := BuildPreview(text, "https://example.com")
	assert.Equal(t, "http://example.local", p.SourceURL)
	assert.Equal(t, "https://example.com", p.TargetURL)
	assert.True(t, p.NeedsRewrite())
	assert.Equal(t, 3, p.TotalRows)
	assert.Equal(t, []TableCount{
		{Table: "wp_posts", Rows: 2},
		{Table: "wp_terms", Rows: 0},
		{Table: "wp_orphan", Rows: 1},
	}, p.Tables)
}
