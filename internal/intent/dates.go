// internal/intent/dates.go
package intent

import (
	"regexp"
	"strings"
)

// Relative date phrases understood by the resolver.
const (
	PhraseLastYear      = "last year"
	PhraseThisYear      = "this year"
	PhraseLastQuarter   = "last quarter"
	PhrasePreviousMonth = "previous month"
)

var datePattern = regexp.MustCompile(
	`(?i)\b(\d{1,2}[/\-]\d{1,2}[/\-]\d{4}|\d{4}-\d{1,2}-\d{1,2}|last year|this year|last quarter|previous month)\b`,
)

// FindDateTokens returns every absolute date or relative phrase in query,
// left to right. Phrases are lower-cased; absolute dates are returned as
// written and are not checked against the calendar.
func FindDateTokens(query string) []string {
	matches := datePattern.FindAllString(query, -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		if isDigit(m[0]) {
			tokens = append(tokens, m)
			continue
		}
		tokens = append(tokens, strings.ToLower(m))
	}
	return tokens
}

// DateTokens returns the first two date tokens of query as the start and end
// candidates. Later tokens are ignored.
func DateTokens(query string) (start, end string) {
	tokens := FindDateTokens(query)
	if len(tokens) > 0 {
		start = tokens[0]
	}
	if len(tokens) > 1 {
		end = tokens[1]
	}
	return start, end
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
