// internal/session/session.go
package session

import (
	"sync"

	"query-intent-workers/internal/common/logger"
	"query-intent-workers/internal/intent"
	"query-intent-workers/internal/vocabulary"
)

// Session threads the previous result from one query into the next so that
// comparison queries can append it.
type Session struct {
	builder *intent.Builder
	vocab   vocabulary.Set
	history *History
	log     logger.Logger

	mu       sync.Mutex
	previous intent.QueryResult
}

func New(builder *intent.Builder, vocab vocabulary.Set, historySize int, log logger.Logger) *Session {
	return &Session{
		builder: builder,
		vocab:   vocab,
		history: NewHistory(historySize),
		log:     log.WithFields(map[string]interface{}{"component": "session"}),
	}
}

// Submit records query in the history and builds its result. On success the
// result becomes the new previous result; on failure the previous result is
// left untouched.
func (s *Session) Submit(query string) (intent.QueryResult, error) {
	s.history.Add(query)

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.builder.Build(query, s.vocab.Entities, s.vocab.Metrics, s.previous)
	if err != nil {
		return nil, err
	}

	s.previous = result
	s.log.Debug("previous result replaced", map[string]interface{}{
		"records": len(result),
		"history": s.history.Len(),
	})
	return result, nil
}

// Previous returns a copy of the result the next comparison would append.
func (s *Session) Previous() intent.QueryResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.previous == nil {
		return nil
	}
	out := make(intent.QueryResult, len(s.previous))
	copy(out, s.previous)
	return out
}

func (s *Session) History() []string {
	return s.history.Entries()
}
