// Package dump serializes tables to dump text and replays dump text into a
// data source.
package dump

import (
	"bufio"
	"regexp"
	"strings"

	"db-sync/internal/splitter"
)

const identPattern = "(?:`([^`]+)`|\"([^\"]+)\"|([A-Za-z0-9_$.]+))"

var (
	createTableRe = regexp.MustCompile(`(?i)^CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?` + identPattern)
	insertIntoRe  = regexp.MustCompile(`(?i)^INSERT\s+INTO\s+` + identPattern)
)

// IsCreateTable reports whether stmt starts with CREATE TABLE, ignoring case.
func IsCreateTable(stmt string) bool {
	return hasPrefixFold(stmt, "CREATE TABLE")
}

// IsInsert reports whether stmt starts with INSERT INTO, ignoring case.
func IsInsert(stmt string) bool {
	return hasPrefixFold(stmt, "INSERT INTO")
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// CreateTableName returns the table defined by a CREATE TABLE statement.
func CreateTableName(stmt string) (string, bool) {
	return firstIdent(createTableRe, stmt)
}

// InsertTableName returns the table targeted by an INSERT INTO statement.
func InsertTableName(stmt string) (string, bool) {
	return firstIdent(insertIntoRe, stmt)
}

func firstIdent(re *regexp.Regexp, stmt string) (string, bool) {
	m := re.FindStringSubmatch(stmt)
	if m == nil {
		return "", false
	}
	for _, g := range m[1:] {
		if g != "" {
			return g, true
		}
	}
	return "", false
}

// ExtractTables returns the distinct tables created by a dump, in the order
// they are first defined.
func ExtractTables(text string) []string {
	var tables []string
	seen := make(map[string]bool)
	for stmt := range splitter.Statements(text) {
		name, ok := CreateTableName(stmt)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		tables = append(tables, name)
	}
	return tables
}

// Header holds the "-- Key: value" lines at the top of a dump.
type Header struct {
	Title  string // first line without "-- ", e.g. "MySQL Database Export"
	Fields map[string]string
}

// Get returns the value of a header field.
func (h Header) Get(key string) string {
	return h.Fields[key]
}

const (
	FieldGenerated      = "Generated"
	FieldSourceURL      = "Source URL"
	FieldTargetURL      = "Target URL"
	FieldExportedTables = "Exported tables"
	FieldBackupOf       = "Backup before import"
)

// ReadHeader parses the leading comment block of a dump. It stops at the
// first line that is neither blank nor a "--" comment.
func ReadHeader(text string) Header {
	h := Header{Fields: make(map[string]string)}
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	first := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			// header ends at the first blank line after the title
			if !first {
				break
			}
			continue
		}
		body, ok := strings.CutPrefix(line, "--")
		if !ok {
			break
		}
		body = strings.TrimSpace(body)
		if first {
			h.Title = body
			first = false
			continue
		}
		if k, v, ok := strings.Cut(body, ":"); ok {
			h.Fields[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return h
}
