// internal/intent/matcher.go
package intent

import "strings"

// DefaultFuzzyThreshold is the partial-similarity score a candidate must
// strictly exceed to be accepted by the approximate pass.
const DefaultFuzzyThreshold = 80

// Matcher resolves one entity and one metric from free text.
type Matcher struct {
	threshold int
}

func NewMatcher(threshold int) *Matcher {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultFuzzyThreshold
	}
	return &Matcher{threshold: threshold}
}

func (m *Matcher) Threshold() int {
	return m.threshold
}

// Match returns the vocabulary entry found in query and how it was found.
// The exact whole-word pass runs first; the approximate pass only runs when
// it finds nothing. Both passes take the first hit in declaration order.
func (m *Matcher) Match(query string, vocab Vocabulary) (string, MatchStrategy) {
	if query == "" {
		return "", StrategyNone
	}

	if name, ok := vocab.exact(query); ok {
		return name, StrategyExact
	}

	lowered := strings.ToLower(query)
	for i, candidate := range vocab.lower {
		if PartialRatio(candidate, lowered) > m.threshold {
			return vocab.names[i], StrategyApproximate
		}
	}

	return "", StrategyNone
}

// Extract pulls the entity, the metric and the raw date tokens out of query.
func (m *Matcher) Extract(query string, entities, metrics Vocabulary) RawMatch {
	var raw RawMatch
	raw.Entity, raw.EntityStrategy = m.Match(query, entities)
	raw.Parameter, raw.ParameterStrategy = m.Match(query, metrics)
	raw.StartDate, raw.EndDate = DateTokens(query)
	return raw
}

// ExtractComponents runs Extract with the default threshold.
func ExtractComponents(query string, entities, metrics Vocabulary) RawMatch {
	return NewMatcher(DefaultFuzzyThreshold).Extract(query, entities, metrics)
}
