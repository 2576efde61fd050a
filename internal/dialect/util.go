package dialect

import (
	"strings"
)

// QuoteLiteral wraps an escaped value in single quotes.
func QuoteLiteral(d Dialect, s string) string {
	return "'" + d.EscapeLiteral(s) + "'"
}

// QuoteIdentList quotes every name and joins them with ", ".
func QuoteIdentList(d Dialect, names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.QuoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}

// backtickIdent is shared by both dialects: SQLite accepts MySQL-style
// backtick quoting, which keeps dumps portable between the two.
func backtickIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
