package records

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/kballard/go-shellquote"
)

// Matcher reports which of a fixed set of keywords occur in a text.
type Matcher struct {
	keywords []string
	patterns []*regexp.Regexp
}

// NewMatcher compiles keywords as case-insensitive regular expressions. A
// keyword that does not compile is matched literally.
func NewMatcher(keywords []string) *Matcher {
	m := &Matcher{}
	for _, k := range keywords {
		if k == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + k)
		if err != nil {
			re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(k))
		}
		m.keywords = append(m.keywords, k)
		m.patterns = append(m.patterns, re)
	}
	return m
}

// Keywords returns the compiled keywords in order.
func (m *Matcher) Keywords() []string {
	if m == nil {
		return nil
	}
	return m.keywords
}

// Match returns every keyword found in text, in keyword order.
func (m *Matcher) Match(text string) []string {
	if m == nil {
		return nil
	}
	var out []string
	for i, re := range m.patterns {
		if re.MatchString(text) {
			out = append(out, m.keywords[i])
		}
	}
	return out
}

var queryOperators = []string{"from:", "to:", "list:", "filter:", "url:", "since:", "until:"}

var queryTokens = map[string]bool{
	"OR": true, "AND": true, `"`: true, "#": true, "?": true, ":)": true, ":(": true,
}

// isQuerySyntax reports whether token is search syntax rather than a term.
func isQuerySyntax(token string) bool {
	if queryTokens[token] {
		return true
	}
	switch token[0] {
	case '-', '@', '#':
		return true
	}
	lower := strings.ToLower(token)
	for _, op := range queryOperators {
		if strings.Contains(lower, op) {
			return true
		}
	}
	return false
}

// ExtractQueryKeywords returns the plain search terms of a boolean search
// query, sorted and without duplicates. Operators, mentions, hashtags,
// exclusions and emoticons are dropped and grouping parentheses stripped.
func ExtractQueryKeywords(query string) []string {
	tokens := splitQuery(query)

	seen := make(map[string]bool)
	var out []string
	for _, tok := range tokens {
		if tok == "" || isQuerySyntax(tok) {
			continue
		}
		tok = strings.NewReplacer("(", "", ")", "").Replace(tok)
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// splitQuery tokenizes a query shell-style. Apostrophes inside words
// (don't) are escaped before a second attempt; if quotes are still
// unbalanced it splits on whitespace and trims stray quote characters.
func splitQuery(query string) []string {
	tokens, err := shellquote.Split(query)
	if err == nil {
		return tokens
	}
	if tokens, err = shellquote.Split(escapeApostrophes(query)); err == nil {
		return tokens
	}

	fields := strings.Fields(query)
	tokens = fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, `"'`); f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// escapeApostrophes backslash-escapes every ' that sits between two letters
// or digits outside a double-quoted phrase.
func escapeApostrophes(query string) string {
	r := []rune(query)
	var b strings.Builder
	inDouble, escaped := false, false
	for i, c := range r {
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inDouble = !inDouble
		case c == '\'' && !inDouble && i > 0 && i+1 < len(r) && isWordRune(r[i-1]) && isWordRune(r[i+1]):
			b.WriteRune('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

func isWordRune(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c)
}
