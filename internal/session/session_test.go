package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"query-intent-workers/internal/common/logger"
	"query-intent-workers/internal/intent"
	"query-intent-workers/internal/vocabulary"
)

// ===================================
// History
// ===================================

func TestHistory_EvictsOldest(t *testing.T) {
	h := NewHistory(6)

	for i := 1; i <= 8; i++ {
		h.Add(fmt.Sprintf("q%d", i))
	}

	assert.Equal(t, []string{"q3", "q4", "q5", "q6", "q7", "q8"}, h.Entries())
	assert.Equal(t, 6, h.Len())
}

func TestHistory_PartiallyFilled(t *testing.T) {
	h := NewHistory(3)
	assert.Empty(t, h.Entries())

	h.Add("a")
	h.Add("b")
	assert.Equal(t, []string{"a", "b"}, h.Entries())

	h.Add("c")
	assert.Equal(t, []string{"a", "b", "c"}, h.Entries())

	h.Add("d")
	assert.Equal(t, []string{"b", "c", "d"}, h.Entries())
}

func TestHistory_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultHistorySize, NewHistory(0).Cap())
	assert.Equal(t, DefaultHistorySize, NewHistory(-2).Cap())
}

func TestHistory_EntriesIsACopy(t *testing.T) {
	h := NewHistory(2)
	h.Add("a")

	got := h.Entries()
	got[0] = "changed"

	assert.Equal(t, []string{"a"}, h.Entries())
}

// ===================================
// Session
// ===================================

func newTestSession(t *testing.T) *Session {
	t.Helper()
	today := time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)
	builder := intent.NewBuilder(intent.WithClock(func() time.Time { return today }))
	vocab := vocabulary.NewSet("config",
		[]string{"Flipkart", "Amazon", "Walmart", "Apple", "Microsoft"},
		[]string{"GMV", "revenue", "profit", "sales", "loss"},
	)
	return New(builder, vocab, 6, logger.NewTestLogger(t))
}

func TestSession_ComparisonAppendsPrevious(t *testing.T) {
	s := newTestSession(t)

	first, err := s.Submit("What was the GMV of Flipkart last year?")
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := s.Submit("Compare the revenue of Amazon")
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "Amazon", second[0].Entity)
	assert.Equal(t, first[0], second[1])

	assert.Equal(t, second, s.Previous())
}

func TestSession_FailureKeepsPrevious(t *testing.T) {
	s := newTestSession(t)

	first, err := s.Submit("Flipkart GMV this year")
	require.NoError(t, err)

	_, err = s.Submit("hello there")
	require.ErrorIs(t, err, intent.ErrIncompleteQuery)
	assert.Equal(t, first, s.Previous())

	third, err := s.Submit("compare Apple profit")
	require.NoError(t, err)
	require.Len(t, third, 2)
	assert.Equal(t, first[0], third[1])
}

func TestSession_NonComparisonReplacesPrevious(t *testing.T) {
	s := newTestSession(t)

	_, err := s.Submit("Flipkart GMV")
	require.NoError(t, err)
	second, err := s.Submit("Walmart sales")
	require.NoError(t, err)

	assert.Equal(t, second, s.Previous())
	assert.Len(t, s.Previous(), 1)
}

func TestSession_HistoryRecordsFailedQueries(t *testing.T) {
	s := newTestSession(t)

	_, _ = s.Submit("Flipkart GMV")
	_, _ = s.Submit("nonsense")

	assert.Equal(t, []string{"Flipkart GMV", "nonsense"}, s.History())
}

func TestSession_PreviousIsACopy(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Submit("Flipkart GMV")
	require.NoError(t, err)

	prev := s.Previous()
	prev[0].Entity = "changed"

	assert.Equal(t, "Flipkart", s.Previous()[0].Entity)
}
