package records

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the timestamp layout of every time cell.
const TimeLayout = "2006-01-02 15:04:05"

// NoReply fills the reply columns of a tweet that is not a reply.
const NoReply int64 = -1

// CleanText flattens text onto one line: newlines become spaces and
// carriage returns are dropped.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", "")
}

// FormatTime renders t in UTC, or "" for the zero time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

// ParseTime is the inverse of FormatTime.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(TimeLayout, s, time.UTC)
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func parseBool(s string) (bool, error) {
	switch s {
	case "1":
		return true, nil
	case "0", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid flag %q", s)
}

// FormatList renders items as a bracketed list of quoted strings, the way
// the tables have always stored collections: ['a', 'b'].
func FormatList(items []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		quoteItem(&b, item)
	}
	b.WriteByte(']')
	return b.String()
}

func quoteItem(b *strings.Builder, s string) {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteByte(q)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
}

// ParseList is the inverse of FormatList.
func ParseList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("invalid list %q", s)
	}
	body := s[1 : len(s)-1]

	var out []string
	for i := 0; i < len(body); {
		switch c := body[i]; {
		case c == ' ' || c == ',':
			i++
		case c == '\'' || c == '"':
			item, n, err := unquoteItem(body[i:])
			if err != nil {
				return nil, fmt.Errorf("invalid list %q: %w", s, err)
			}
			out = append(out, item)
			i += n
		default:
			return nil, fmt.Errorf("invalid list %q: unexpected %q at %d", s, c, i+1)
		}
	}
	return out, nil
}

// unquoteItem reads one quoted item from the start of s and returns it with
// the number of bytes consumed.
func unquoteItem(s string) (string, int, error) {
	q := s[0]
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == q:
			return b.String(), i + 1, nil
		case c == '\\' && i+1 < len(s):
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(s[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, fmt.Errorf("unterminated item")
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
