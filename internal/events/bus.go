// Package events is a lightweight in-process pub-sub channel used by the
// editor to announce committed layout changes, primarily to the autosave
// loop.
package events

// Kind is the type of editor event.
type Kind string

const (
	// KindLayoutChanged fires on every committed mutation (add, move,
	// resize, z-order, config edit, delete, undo/redo restore).
	KindLayoutChanged Kind = "layout_changed"
	// KindSelectionChanged fires when the selection moves or clears.
	KindSelectionChanged Kind = "selection_changed"
)

// Event carries the minimum data a consumer needs; the layout itself is
// read from the session, not from the event.
type Event struct {
	Kind      Kind
	CanvasID  string
	ElementID string // element the commit touched, empty for layout-wide ops
}

// Bus is a buffered, non-blocking fan-in channel. Publish never blocks the
// editor's pointer path: when the buffer is full the event is dropped and
// the next commit will carry the same dirty signal anyway.
type Bus struct {
	ch chan Event
}

// NewBus creates a bus with the given buffer size.
func NewBus(buffer int) *Bus {
	if buffer < 1 {
		buffer = 16
	}
	return &Bus{ch: make(chan Event, buffer)}
}

// Publish attempts to enqueue without blocking; false means dropped.
func (b *Bus) Publish(evt Event) bool {
	select {
	case b.ch <- evt:
		return true
	default:
		return false
	}
}

// Subscribe returns the read-only event channel.
func (b *Bus) Subscribe() <-chan Event {
	return b.ch
}
