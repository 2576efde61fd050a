// Package splitter turns SQL dump text into individual statements without a
// full SQL parser. It tracks quote state, backslash escapes and parenthesis
// depth so that semicolons inside string literals (serialized payloads in
// particular) never end a statement.
//
// Comments are removed textually before scanning, so a literal that contains
// "--" or "/*" loses the text after it.
package splitter

import (
	"iter"
	"regexp"
	"slices"
	"strings"
)

var (
	lineComment  = regexp.MustCompile(`(?m)--.*$`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// StripComments removes "-- ..." line comments and "/* ... */" block comments.
func StripComments(text string) string {
	text = lineComment.ReplaceAllString(text, "")
	return blockComment.ReplaceAllString(text, "")
}

// Statements yields every non-empty statement of text in order, trimmed and
// without its terminating semicolon. The returned sequence can be ranged over
// any number of times.
func Statements(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		src := StripComments(text)

		var (
			cur      strings.Builder
			inString bool
			delim    byte
			escaped  bool
			depth    int
		)

		emit := func() bool {
			stmt := strings.TrimSpace(cur.String())
			cur.Reset()
			if stmt == "" {
				return true
			}
			return yield(stmt)
		}

		for i := 0; i < len(src); i++ {
			c := src[i]

			if escaped {
				cur.WriteByte(c)
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				cur.WriteByte(c)
				continue
			}

			if !inString {
				switch c {
				case '(':
					depth++
				case ')':
					// a stray ')' must not push the depth below zero, otherwise
					// every following statement would be glued together
					if depth > 0 {
						depth--
					}
				}
			}

			switch {
			case !inString && (c == '\'' || c == '"'):
				inString = true
				delim = c
			case inString && c == delim:
				inString = false
				delim = 0
			case c == ';' && !inString && depth == 0:
				if !emit() {
					return
				}
				continue
			}
			cur.WriteByte(c)
		}

		emit()
	}
}

// Split returns all statements of text as a slice.
func Split(text string) []string {
	return slices.Collect(Statements(text))
}

// Join re-assembles statements into dump text, terminating each with ";".
func Join(stmts []string) string {
	var b strings.Builder
	for _, s := range stmts {
		b.WriteString(s)
		b.WriteString(";\n")
	}
	return b.String()
}
