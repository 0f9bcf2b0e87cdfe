// internal/intent/vocabulary.go
package intent

import (
	"regexp"
	"strings"
)

// Vocabulary is an immutable, ordered set of recognized names. Declaration
// order is the tie-break whenever a query mentions more than one entry.
type Vocabulary struct {
	names    []string
	lower    []string
	patterns []*regexp.Regexp
}

// NewVocabulary builds a vocabulary from names in the given order. Blank
// entries and case-insensitive duplicates are dropped; the first spelling
// wins.
func NewVocabulary(names ...string) Vocabulary {
	v := Vocabulary{}
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			continue
		}
		seen[key] = true

		v.names = append(v.names, trimmed)
		v.lower = append(v.lower, key)
		v.patterns = append(v.patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(trimmed)+`\b`))
	}

	return v
}

// Names returns a copy of the entries in declaration order.
func (v Vocabulary) Names() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

func (v Vocabulary) Len() int {
	return len(v.names)
}

// Overlap is a pair of entries where Inner is a case-insensitive substring of
// Outer. Such pairs make whole-word matching ambiguous.
type Overlap struct {
	Inner string
	Outer string
}

// Overlaps lists every entry pair that breaks the non-overlap rule. The rule
// is not enforced; callers decide whether to warn or refuse.
func (v Vocabulary) Overlaps() []Overlap {
	var out []Overlap
	for i := range v.lower {
		for j := range v.lower {
			if i == j {
				continue
			}
			if strings.Contains(v.lower[j], v.lower[i]) {
				out = append(out, Overlap{Inner: v.names[i], Outer: v.names[j]})
			}
		}
	}
	return out
}

// exact returns the first entry, in declaration order, that occurs in text
// as a whole word.
func (v Vocabulary) exact(text string) (string, bool) {
	for i, p := range v.patterns {
		if p.MatchString(text) {
			return v.names[i], true
		}
	}
	return "", false
}
