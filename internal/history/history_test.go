package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func state(i int) []byte { return []byte(fmt.Sprintf("state-%d", i)) }

func TestUndoRedoRoundTrip(t *testing.T) {
	m := New(DefaultMaxDepth)

	const n = 8
	for i := 0; i < n; i++ {
		m.Push(state(i))
	}

	// Undo n-1 times walks back to the initial state.
	for i := n - 2; i >= 0; i-- {
		got, err := m.Undo()
		require.NoError(t, err)
		assert.Equal(t, state(i), got)
	}
	_, err := m.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)

	// Redo n-1 times replays the forward sequence exactly.
	for i := 1; i < n; i++ {
		got, err := m.Redo()
		require.NoError(t, err)
		assert.Equal(t, state(i), got)
	}
	_, err = m.Redo()
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestPeekMatchesPopWithoutMoving(t *testing.T) {
	m := New(DefaultMaxDepth)
	m.Push(state(0))
	m.Push(state(1))

	peeked, err := m.PeekUndo()
	require.NoError(t, err)
	assert.Equal(t, state(0), peeked)
	assert.Equal(t, 2, m.Depth())
	assert.False(t, m.CanRedo())

	popped, err := m.Undo()
	require.NoError(t, err)
	assert.Equal(t, peeked, popped)

	peeked, err = m.PeekRedo()
	require.NoError(t, err)
	assert.Equal(t, state(1), peeked)
	require.True(t, m.CanRedo(), "peek must not consume the redo entry")

	popped, err = m.Redo()
	require.NoError(t, err)
	assert.Equal(t, peeked, popped)
}

func TestPeekAtBoundsFails(t *testing.T) {
	m := New(DefaultMaxDepth)
	m.Push(state(0))

	_, err := m.PeekUndo()
	assert.ErrorIs(t, err, ErrNothingToUndo)
	_, err = m.PeekRedo()
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestPushClearsRedo(t *testing.T) {
	m := New(DefaultMaxDepth)
	m.Push(state(0))
	m.Push(state(1))
	m.Push(state(2))

	_, err := m.Undo()
	require.NoError(t, err)
	require.True(t, m.CanRedo())

	m.Push(state(3))
	assert.False(t, m.CanRedo())
	_, err = m.Redo()
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestBoundEvictsOldest(t *testing.T) {
	const depth = 10
	const extra = 7
	m := New(depth)

	for i := 0; i < depth+extra; i++ {
		m.Push(state(i))
	}
	assert.Equal(t, depth, m.Depth())

	// Walk all the way back: the oldest reachable state is the one pushed
	// right after the evicted prefix.
	var last []byte
	for m.CanUndo() {
		var err error
		last, err = m.Undo()
		require.NoError(t, err)
	}
	assert.Equal(t, state(extra), last)
}

func TestInitialSnapshotNeverDiscardedByUndo(t *testing.T) {
	m := New(DefaultMaxDepth)
	m.Push(state(0))

	_, err := m.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)
	assert.Equal(t, 1, m.Depth())
	assert.Equal(t, state(0), m.Current())
}

func TestReplayGuardSuppressesPush(t *testing.T) {
	m := New(DefaultMaxDepth)
	m.Push(state(0))

	m.Replaying(true)
	m.Push(state(99))
	m.Replaying(false)

	assert.Equal(t, 1, m.Depth())
	assert.Equal(t, state(0), m.Current())
}

func TestSnapshotsAreCopies(t *testing.T) {
	m := New(DefaultMaxDepth)
	buf := []byte("mutable")
	m.Push(buf)
	buf[0] = 'X'
	assert.Equal(t, []byte("mutable"), m.Current())
}
