package dump

import (
	"regexp"
	"strconv"
	"strings"
)

// serializedString matches the head of a PHP serialized string, s:N:"...";
// with the quote optionally backslash-escaped as MySQL dumps write it.
var serializedString = regexp.MustCompile(`s:(\d+):(\\?")`)

// RewriteQuoted replaces from with to, but only where from occurs inside a
// quoted string literal. Keywords, identifiers and comments are left alone.
// It returns the rewritten text and the number of replacements.
//
// PHP serialized strings inside a literal get their s:N: byte length
// adjusted, nested ones included. A declared length that does not match the
// content is left as it is and the content rewritten as plain text.
//
// Values containing quotes or backslashes are refused (n == 0) since a match
// could then straddle a literal boundary.
func RewriteQuoted(text, from, to string) (string, int) {
	if from == "" || from == to || strings.ContainsAny(from+to, "'\"\\") {
		return text, 0
	}
	if !strings.Contains(text, from) {
		return text, 0
	}

	var (
		b strings.Builder
		n int
	)
	b.Grow(len(text))

	for i := 0; i < len(text); i++ {
		c := text[i]

		switch {
		case c == '\'' || c == '"':
			end := literalEnd(text, i+1, c)
			body, k := rewriteLiteral(text[i+1:end], c, from, to)
			n += k
			b.WriteByte(c)
			b.WriteString(body)
			if end < len(text) {
				b.WriteByte(c)
			}
			i = end
			continue
		case c == '-' && strings.HasPrefix(text[i:], "--"):
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				end = len(text) - i
			}
			b.WriteString(text[i : i+end])
			i += end - 1
			continue
		case c == '/' && strings.HasPrefix(text[i:], "/*"):
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				end = len(text) - i
			} else {
				end += 4
			}
			b.WriteString(text[i : i+end])
			i += end - 1
			continue
		}
		b.WriteByte(c)
	}
	return b.String(), n
}

// literalEnd returns the index of the quote closing a literal whose body
// starts at start, or len(text) if it is never closed. Backslash escapes and
// doubled quotes stay inside the literal.
func literalEnd(text string, start int, delim byte) int {
	for j := start; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case delim:
			if j+1 < len(text) && text[j+1] == delim {
				j++
				continue
			}
			return j
		}
	}
	return len(text)
}

// rewriteLiteral rewrites the escaped body of one literal.
func rewriteLiteral(body string, delim byte, from, to string) (string, int) {
	var (
		b strings.Builder
		n int
	)
	for {
		loc := serializedString.FindStringSubmatchIndex(body)
		if loc == nil {
			break
		}
		size, err := strconv.Atoi(body[loc[2]:loc[3]])
		quote := body[loc[4]:loc[5]]
		rest := body[loc[1]:]
		end, ok := serializedEnd(rest, size, delim)
		if err != nil || !ok || !strings.HasPrefix(rest[end:], quote+";") {
			head, k := replaceEscaped(body[:loc[1]], from, to)
			b.WriteString(head)
			n += k
			body = rest
			continue
		}

		head, k := replaceEscaped(body[:loc[0]], from, to)
		b.WriteString(head)
		n += k

		content, k := rewriteLiteral(rest[:end], delim, from, to)
		b.WriteString("s:")
		b.WriteString(strconv.Itoa(size + k*(len(to)-len(from))))
		b.WriteByte(':')
		b.WriteString(quote)
		b.WriteString(content)
		n += k
		body = rest[end:]
	}
	tail, k := replaceEscaped(body, from, to)
	b.WriteString(tail)
	return b.String(), n + k
}

// serializedEnd walks size unescaped bytes of s and returns the escaped
// offset reached.
func serializedEnd(s string, size int, delim byte) (int, bool) {
	i := 0
	for count := 0; count < size; count++ {
		switch {
		case i >= len(s):
			return 0, false
		case s[i] == '\\' || (s[i] == delim && i+1 < len(s) && s[i+1] == delim):
			if i+1 >= len(s) {
				return 0, false
			}
			i += 2
		default:
			i++
		}
	}
	return i, true
}

// replaceEscaped replaces from with to in an escaped literal body, never
// matching across an escape sequence.
func replaceEscaped(s, from, to string) (string, int) {
	if !strings.Contains(s, from) {
		return s, 0
	}
	var (
		b strings.Builder
		n int
	)
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s):
			b.WriteString(s[i : i+2])
			i++
		case strings.HasPrefix(s[i:], from):
			b.WriteString(to)
			i += len(from) - 1
			n++
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), n
}
