package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUndoRedoRoundTrip(t *testing.T) {
	h := New("X")
	h.Commit("Y")
	h.Commit("Z")

	assert.Equal(t, "Y", h.Undo())
	assert.Equal(t, "X", h.Undo())
	assert.Equal(t, "Y", h.Redo())
}

func TestCommitDiscardsRedoBranch(t *testing.T) {
	h := New("X")
	h.Commit("Y")
	h.Commit("Z")
	h.Undo()
	h.Undo() // back at "X"

	h.Commit("W")
	assert.Equal(t, "W", h.Current())
	assert.Equal(t, 2, h.Len(), `history becomes ["X","W"]`)
	assert.False(t, h.CanRedo())
	assert.Equal(t, "X", h.Undo())
}

func TestCommitEqualTextIsNoOp(t *testing.T) {
	h := New("X")
	h.Commit("X")
	assert.Equal(t, 1, h.Len())
	assert.False(t, h.CanUndo())
}

func TestClampAtBounds(t *testing.T) {
	h := New("only")
	assert.Equal(t, "only", h.Undo(), "undo at the original is a no-op")
	assert.Equal(t, "only", h.Redo(), "redo at the tail is a no-op")
}

func TestResetIsUndoable(t *testing.T) {
	h := New("orig")
	h.Commit("edited")

	assert.Equal(t, "orig", h.Reset())
	assert.Equal(t, 3, h.Len(), "reset appends, never wipes")
	assert.Equal(t, "edited", h.Undo(), "a reset can be undone")
}

func TestResetAtOriginalDiscardsRedoBranch(t *testing.T) {
	h := New("orig")
	h.Commit("edited")
	h.Undo() // showing "orig" again, redo pending

	assert.Equal(t, "orig", h.Reset())
	assert.False(t, h.CanRedo(), "reset drops the redo-able tail")
	assert.Equal(t, 2, h.Len())
	assert.True(t, h.CanUndo())
}

func TestSnapshotRestore(t *testing.T) {
	h := New("a")
	h.Commit("b")
	h.Commit("c")
	h.Undo()

	entries, index := h.Snapshot()
	restored := Restore(entries, index)
	assert.Equal(t, "b", restored.Current())
	assert.True(t, restored.CanUndo())
	assert.True(t, restored.CanRedo())

	// a corrupt position clamps instead of failing
	assert.Equal(t, "c", Restore(entries, 99).Current())
	assert.Equal(t, "a", Restore(entries, -4).Current())
	assert.Equal(t, "", Restore(nil, 0).Current())
}
