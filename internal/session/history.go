// internal/session/history.go
package session

import "sync"

// DefaultHistorySize is the number of raw queries kept when no size is configured.
const DefaultHistorySize = 6

// History is a fixed-capacity ring of raw queries. Adding to a full history
// evicts the oldest entry.
type History struct {
	mu      sync.Mutex
	entries []string
	next    int
	full    bool
}

// NewHistory returns a history holding at most capacity entries. A
// non-positive capacity falls back to DefaultHistorySize.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{entries: make([]string, capacity)}
}

func (h *History) Add(query string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries[h.next] = query
	h.next = (h.next + 1) % len(h.entries)
	if h.next == 0 {
		h.full = true
	}
}

// Entries returns the stored queries, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.full {
		out := make([]string, h.next)
		copy(out, h.entries[:h.next])
		return out
	}

	out := make([]string, 0, len(h.entries))
	out = append(out, h.entries[h.next:]...)
	out = append(out, h.entries[:h.next]...)
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.full {
		return len(h.entries)
	}
	return h.next
}

func (h *History) Cap() int {
	return len(h.entries)
}
