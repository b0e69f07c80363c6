package editor

// DefaultHistoryCap is the bound on stored command lines. When the cap
// is reached the oldest entry is evicted.
const DefaultHistoryCap = 500

// History holds previously submitted command lines in insertion order,
// duplicates allowed, plus a navigation cursor and a live-edit slot.
//
// Navigating history never mutates stored entries; recalled entries are
// copied into the live buffer, and whatever the user submits (edited or
// not) is appended as a new entry. The live slot preserves the
// in-progress line while the user browses older entries.
type History struct {
	entries []string
	cap     int

	// cursor indexes entries while navigating; len(entries) means the
	// live (not yet submitted) position.
	cursor int
	live   string
}

// NewHistory creates a history bounded to maxEntries lines. A
// non-positive cap falls back to DefaultHistoryCap.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultHistoryCap
	}
	return &History{
		entries: make([]string, 0, maxEntries),
		cap:     maxEntries,
	}
}

// Append records a submitted line as the newest entry and resets the
// navigation cursor to the live position.
func (h *History) Append(line string) {
	if len(h.entries) >= h.cap {
		h.entries = h.entries[1:]
	}
	h.entries = append(h.entries, line)
	h.ResetCursor()
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Entry returns the stored line at index i (0 = oldest).
func (h *History) Entry(i int) string {
	return h.entries[i]
}

// AtLive reports whether the cursor sits on the live slot rather than
// a stored entry.
func (h *History) AtLive() bool {
	return h.cursor >= len(h.entries)
}

// ResetCursor moves the cursor past the newest entry and clears the
// live slot.
func (h *History) ResetCursor() {
	h.cursor = len(h.entries)
	h.live = ""
}

// Prev moves one entry back in time. The current live buffer is stashed
// when leaving the live position. Returns the recalled line and true,
// or ("", false) at the oldest boundary.
func (h *History) Prev(current string) (string, bool) {
	if h.cursor == 0 || len(h.entries) == 0 {
		return "", false
	}

	if h.AtLive() {
		h.live = current
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Next moves one entry forward in time. Moving past the newest entry
// restores the stashed live buffer. Returns ("", false) when already at
// the live position.
func (h *History) Next() (string, bool) {
	if h.AtLive() {
		return "", false
	}

	h.cursor++
	if h.AtLive() {
		return h.live, true
	}
	return h.entries[h.cursor], true
}

// Oldest jumps to the first stored entry. Returns ("", false) when the
// history is empty.
func (h *History) Oldest(current string) (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}

	if h.AtLive() {
		h.live = current
	}
	h.cursor = 0
	return h.entries[0], true
}

// Newest jumps to the live slot, restoring the in-progress edit that
// was active before navigation started.
func (h *History) Newest() (string, bool) {
	if h.AtLive() {
		return "", false
	}

	h.cursor = len(h.entries)
	return h.live, true
}
