// guard.go is the read-only gate for generated SQL. Prompt instructions
// are advisory; this check is the actual boundary between the model and
// the database.
package chat

import "strings"

// forbiddenKeywords are statement types that modify stored data or
// schema. Matched on word boundaries outside quoted literals, so a
// table named "status_updates" passes.
var forbiddenKeywords = map[string]struct{}{
	"insert":   {},
	"update":   {},
	"delete":   {},
	"drop":     {},
	"alter":    {},
	"truncate": {},
}

// ValidateReadOnly rejects anything that is not a single SELECT
// statement. Leading whitespace and SQL comments are ignored; one
// trailing semicolon is allowed.
func ValidateReadOnly(sqlText string) *Error {
	body := skipNoise(sqlText)
	if body == "" {
		return &Error{Kind: KindUnsafeQuery, Message: "generated query is empty"}
	}
	if !hasKeywordPrefix(body, "select") {
		return &Error{Kind: KindUnsafeQuery, Message: "generated query is not a SELECT statement", SQL: sqlText}
	}
	return scanStatement(body, sqlText)
}

// scanStatement walks the statement outside quoted literals and
// comments, rejecting modification keywords and statement chaining.
func scanStatement(body, original string) *Error {
	i := 0
	n := len(body)
	for i < n {
		c := body[i]
		switch {
		case c == '\'':
			i = skipQuoted(body, i, '\'')
		case c == '"':
			i = skipQuoted(body, i, '"')
		case c == '-' && i+1 < n && body[i+1] == '-':
			for i < n && body[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < n && body[i+1] == '*':
			end := strings.Index(body[i+2:], "*/")
			if end < 0 {
				i = n
			} else {
				i += 2 + end + 2
			}
		case c == ';':
			if skipNoise(body[i+1:]) != "" {
				return &Error{Kind: KindUnsafeQuery, Message: "generated query contains multiple statements", SQL: original}
			}
			i = n
		case isWordByte(c):
			j := i
			for j < n && isWordByte(body[j]) {
				j++
			}
			word := strings.ToLower(body[i:j])
			if _, bad := forbiddenKeywords[word]; bad {
				return &Error{Kind: KindUnsafeQuery, Message: "generated query contains a data-modification keyword: " + strings.ToUpper(word), SQL: original}
			}
			i = j
		default:
			i++
		}
	}
	return nil
}

// skipQuoted returns the index just past the closing quote, honoring
// the doubled-quote escape ('' or "").
func skipQuoted(s string, start int, quote byte) int {
	i := start + 1
	n := len(s)
	for i < n {
		if s[i] == quote {
			if i+1 < n && s[i+1] == quote {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return n
}

// skipNoise strips leading whitespace and SQL comments.
func skipNoise(s string) string {
	for {
		s = strings.TrimLeft(s, " \t\r\n")
		switch {
		case strings.HasPrefix(s, "--"):
			idx := strings.IndexByte(s, '\n')
			if idx < 0 {
				return ""
			}
			s = s[idx+1:]
		case strings.HasPrefix(s, "/*"):
			idx := strings.Index(s[2:], "*/")
			if idx < 0 {
				return ""
			}
			s = s[2+idx+2:]
		default:
			return s
		}
	}
}

// hasKeywordPrefix reports whether s starts with the keyword followed
// by a non-word byte or end of input, case-insensitively.
func hasKeywordPrefix(s, keyword string) bool {
	if len(s) < len(keyword) {
		return false
	}
	if !strings.EqualFold(s[:len(keyword)], keyword) {
		return false
	}
	return len(s) == len(keyword) || !isWordByte(s[len(keyword)])
}

func isWordByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
