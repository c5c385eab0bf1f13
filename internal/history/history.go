// Package history implements the bounded snapshot-based undo/redo stacks.
// Snapshots are full serialized states, not diffs: element count and
// history depth are both small and bounded, so the memory cost is fixed
// and the restore path is trivial. If that ever changes, switch to
// inverse-operation diffs behind the same Push/Undo/Redo contract.
package history

import "errors"

// DefaultMaxDepth bounds the undo stack when no override is given.
const DefaultMaxDepth = 40

var (
	// ErrNothingToUndo is returned when only the session-initial snapshot
	// remains; that entry is never discarded.
	ErrNothingToUndo = errors.New("history: nothing to undo")
	// ErrNothingToRedo is returned when the redo stack is empty.
	ErrNothingToRedo = errors.New("history: nothing to redo")
)

// Snapshot is one immutable serialized state tagged with insertion order.
type Snapshot struct {
	Seq  uint64
	Data []byte
}

// Manager owns the two LIFO stacks. It is not goroutine-safe; the editor
// drives it from a single goroutine like the rest of the edit session.
type Manager struct {
	undo     []Snapshot
	redo     []Snapshot
	maxDepth int
	nextSeq  uint64

	// replaying guards against restore operations re-entering Push; the
	// act of restoring a state must not itself create history.
	replaying bool
}

// New returns a manager bounded to maxDepth entries; values below one fall
// back to DefaultMaxDepth.
func New(maxDepth int) *Manager {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}
	return &Manager{maxDepth: maxDepth}
}

// Push records a committed state. The oldest entry is evicted once the
// stack exceeds its bound, and any redo tail is cleared. Pushes issued
// while a restore is replaying are ignored.
func (m *Manager) Push(state []byte) {
	if m.replaying {
		return
	}
	snap := Snapshot{Seq: m.nextSeq, Data: append([]byte(nil), state...)}
	m.nextSeq++
	m.undo = append(m.undo, snap)
	if len(m.undo) > m.maxDepth {
		m.undo = m.undo[1:]
	}
	m.redo = m.redo[:0]
}

// Undo moves the current top onto the redo stack and returns the state
// beneath it. The first entry (the session's initial state) is never
// popped.
func (m *Manager) Undo() ([]byte, error) {
	if len(m.undo) <= 1 {
		return nil, ErrNothingToUndo
	}
	top := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, top)
	return append([]byte(nil), m.undo[len(m.undo)-1].Data...), nil
}

// Redo pops the redo top, restores it onto the undo stack and returns it.
func (m *Manager) Redo() ([]byte, error) {
	if len(m.redo) == 0 {
		return nil, ErrNothingToRedo
	}
	top := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = append(m.undo, top)
	return append([]byte(nil), top.Data...), nil
}

// PeekUndo returns the state Undo would restore without moving either
// stack, so callers can validate it before committing to the move.
func (m *Manager) PeekUndo() ([]byte, error) {
	if len(m.undo) <= 1 {
		return nil, ErrNothingToUndo
	}
	return append([]byte(nil), m.undo[len(m.undo)-2].Data...), nil
}

// PeekRedo returns the state Redo would restore without moving either stack.
func (m *Manager) PeekRedo() ([]byte, error) {
	if len(m.redo) == 0 {
		return nil, ErrNothingToRedo
	}
	return append([]byte(nil), m.redo[len(m.redo)-1].Data...), nil
}

// CanUndo reports whether Undo would succeed.
func (m *Manager) CanUndo() bool { return len(m.undo) > 1 }

// CanRedo reports whether Redo would succeed.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// Depth returns the undo stack size.
func (m *Manager) Depth() int { return len(m.undo) }

// Replaying marks the start or end of a restore; while set, Push is a
// no-op. Callers pair Replaying(true) with a deferred Replaying(false).
func (m *Manager) Replaying(on bool) { m.replaying = on }

// Current returns the top undo snapshot without mutating either stack, or
// nil when nothing was pushed yet.
func (m *Manager) Current() []byte {
	if len(m.undo) == 0 {
		return nil
	}
	return append([]byte(nil), m.undo[len(m.undo)-1].Data...)
}
