package navigation

import (
	"slices"
	"strings"
	"sync"
)

// Listener is called with the new location after every history change.
type Listener func(location string)

// History is an in-memory session history: a list of locations with a
// cursor. It is the environment a router runs in when there is no
// browser, and it satisfies router.Navigator.
//
// Every change (Push, Replace, Back, Forward) notifies listeners after the
// history lock is released, so a listener may call back into History.
type History struct {
	mu        sync.Mutex
	entries   []string
	index     int
	listeners map[int]Listener
	nextID    int
}

// NewHistory creates a history positioned at initial ("/" if empty).
func NewHistory(initial string) *History {
	if initial == "" {
		initial = "/"
	}
	return &History{
		entries:   []string{initial},
		listeners: make(map[int]Listener),
	}
}

// Location returns the current entry, including any query string.
func (h *History) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Pathname returns the path of the current entry without the query.
func (h *History) Pathname() string {
	return Pathname(h.Location())
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Push adds a new entry after the current one, discarding any forward
// entries.
func (h *History) Push(location string) {
	h.mu.Lock()
	h.entries = append(h.entries[:h.index+1], location)
	h.index++
	h.mu.Unlock()
	h.notify(location)
}

// Replace overwrites the current entry.
func (h *History) Replace(location string) {
	h.mu.Lock()
	h.entries[h.index] = location
	h.mu.Unlock()
	h.notify(location)
}

// Back moves to the previous entry. It reports false at the start of the
// history.
func (h *History) Back() bool {
	return h.move(-1)
}

// Forward moves to the next entry. It reports false at the end of the
// history.
func (h *History) Forward() bool {
	return h.move(1)
}

func (h *History) move(delta int) bool {
	h.mu.Lock()
	next := h.index + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.index = next
	location := h.entries[next]
	h.mu.Unlock()
	h.notify(location)
	return true
}

// OnChange registers l. The returned function removes it.
func (h *History) OnChange(l Listener) (remove func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = l
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

func (h *History) notify(location string) {
	h.mu.Lock()
	ids := make([]int, 0, len(h.listeners))
	for id := range h.listeners {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	// Registration order.
	slices.Sort(ids)
	for _, id := range ids {
		h.mu.Lock()
		l, ok := h.listeners[id]
		h.mu.Unlock()
		if ok {
			l(location)
		}
	}
}

// Pathname strips the query string and fragment from a location.
func Pathname(location string) string {
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		return location[:i]
	}
	return location
}
