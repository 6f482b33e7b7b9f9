// Package history implements per-field undo/redo logs for reviewer text
// edits. Every operation clamps instead of failing: the zero-cost recovery
// model is "no-op", never an error.
package history

// History is an append-only log of text snapshots with a movable position.
// The first entry is always the original text as loaded.
type History struct {
	entries []string
	index   int
}

// New creates a history seeded with the original text.
func New(original string) *History {
	return &History{entries: []string{original}, index: 0}
}

// Restore rebuilds a history from a snapshot, clamping the position into
// range. An empty snapshot yields a history of one empty entry.
func Restore(entries []string, index int) *History {
	if len(entries) == 0 {
		entries = []string{""}
	}
	h := &History{entries: append([]string(nil), entries...), index: index}
	h.clamp()
	return h
}

// Current returns the text at the current position.
func (h *History) Current() string {
	return h.entries[h.index]
}

// Original returns the text the history was seeded with.
func (h *History) Original() string {
	return h.entries[0]
}

// Commit records a new snapshot. Committing while undone discards the
// redo-able tail; committing the current text is a no-op.
func (h *History) Commit(text string) {
	if text == h.entries[h.index] {
		return
	}
	h.entries = append(h.entries[:h.index+1], text)
	h.index = len(h.entries) - 1
}

// Undo moves one step back, stopping at the original.
func (h *History) Undo() string {
	if h.index > 0 {
		h.index--
	}
	return h.Current()
}

// Redo moves one step forward, stopping at the newest snapshot.
func (h *History) Redo() string {
	if h.index < len(h.entries)-1 {
		h.index++
	}
	return h.Current()
}

// Reset appends the original text as a fresh snapshot rather than wiping
// the log, so a reset is itself undoable. The append is unconditional:
// even when already showing the original, a reset discards any pending
// redo branch and moves to a new tail.
func (h *History) Reset() string {
	h.entries = append(h.entries[:h.index+1], h.entries[0])
	h.index = len(h.entries) - 1
	return h.Current()
}

// CanUndo reports whether Undo would move the position.
func (h *History) CanUndo() bool { return h.index > 0 }

// CanRedo reports whether Redo would move the position.
func (h *History) CanRedo() bool { return h.index < len(h.entries)-1 }

// Len returns the number of recorded snapshots.
func (h *History) Len() int { return len(h.entries) }

// Snapshot returns a copy of the log and the current position for
// persistence.
func (h *History) Snapshot() ([]string, int) {
	return append([]string(nil), h.entries...), h.index
}

func (h *History) clamp() {
	if h.index < 0 {
		h.index = 0
	}
	if h.index > len(h.entries)-1 {
		h.index = len(h.entries) - 1
	}
}
