// Package editor owns the live in-memory layout of one edit session: the
// selection, the drag/resize pointer tracking and the commit path that
// feeds the history manager and the autosave loop.
//
// The session is single-goroutine by contract, mirroring a UI event loop:
// pointer handling is pure arithmetic so it can run on every frame, and
// the only suspending operation (the save) lives outside this package.
package editor

import (
	"github.com/corkboard/corkboard/internal/canvas"
	"github.com/corkboard/corkboard/internal/events"
	"github.com/corkboard/corkboard/internal/geometry"
	"github.com/corkboard/corkboard/internal/history"
	"github.com/corkboard/corkboard/internal/model"
	"github.com/corkboard/corkboard/internal/registry"
	"github.com/corkboard/corkboard/internal/sanitize"
)

// State is the gesture state of the session.
type State int

const (
	StateIdle State = iota
	// StateSelecting covers pointer-down before any movement; releasing
	// without moving leaves only the selection changed.
	StateSelecting
	StateDragging
	StateResizing
)

// Handle names the corner being dragged during a resize. The opposite
// corner stays anchored.
type Handle int

const (
	HandleNone Handle = iota
	HandleNW
	HandleNE
	HandleSW
	HandleSE
)

// Session is the interaction state machine for one canvas.
type Session struct {
	canvasID string
	reg      *registry.Registry
	engine   *sanitize.Engine
	limits   geometry.Limits
	hist     *history.Manager
	bus      *events.Bus

	layout     *model.Layout
	state      State
	selectedID string

	// dirty/generation track unsaved committed work. Generation increments
	// on every commit so a save that raced a newer commit cannot clear the
	// flag for work it did not carry.
	dirty      bool
	generation uint64

	// gesture bookkeeping, valid while state != StateIdle
	activeID         string
	handle           Handle
	offsetX, offsetY int // pointer offset from element origin (drag)
	anchorX, anchorY int // fixed opposite corner (resize)
	pending          model.Geometry
}

// NewSession sanitizes the starting layout, records it as the session's
// initial history entry and returns an idle session.
func NewSession(canvasID string, reg *registry.Registry, engine *sanitize.Engine, hist *history.Manager, bus *events.Bus, start *model.Layout) *Session {
	s := &Session{
		canvasID: canvasID,
		reg:      reg,
		engine:   engine,
		limits:   engine.Limits(),
		hist:     hist,
		bus:      bus,
	}
	s.layout = engine.SanitizeLayout(start)
	if snap, err := s.layout.Encode(); err == nil {
		s.hist.Push(snap)
	}
	return s
}

// Layout returns the live layout. Callers must treat it as read-only and
// mutate only through session operations.
func (s *Session) Layout() *model.Layout { return s.layout }

// State returns the current gesture state.
func (s *Session) State() State { return s.state }

// CanvasID returns the canvas this session edits.
func (s *Session) CanvasID() string { return s.canvasID }

// SelectedID returns the sole selected element id, or empty.
func (s *Session) SelectedID() string { return s.selectedID }

// Dirty reports whether committed work is not yet saved.
func (s *Session) Dirty() bool { return s.dirty }

// Generation returns the commit counter. Savers capture it before
// serializing and pass it back to MarkSaved.
func (s *Session) Generation() uint64 { return s.generation }

// MarkSaved clears the dirty flag if no commit landed since gen was
// captured; a newer commit keeps the session dirty for the next save.
func (s *Session) MarkSaved(gen uint64) {
	if s.generation == gen {
		s.dirty = false
	}
}

// Select sets the sole selection. Selecting an unknown id clears instead.
func (s *Session) Select(id string) {
	if s.layout.FindElement(id) == nil {
		s.ClearSelection()
		return
	}
	if s.selectedID != id {
		s.selectedID = id
		s.publish(events.KindSelectionChanged, id)
	}
}

// ClearSelection drops the selection (clicking empty canvas).
func (s *Session) ClearSelection() {
	if s.selectedID != "" {
		s.selectedID = ""
		s.publish(events.KindSelectionChanged, "")
	}
	s.state = StateIdle
}

// PointerDown begins a potential drag on the element under the pointer.
// The offset between pointer and element origin is recorded so the element
// does not jump to the cursor.
func (s *Session) PointerDown(id string, px, py int) {
	el := s.layout.FindElement(id)
	if el == nil {
		s.ClearSelection()
		return
	}
	s.Select(id)
	s.state = StateSelecting
	s.activeID = id
	s.handle = HandleNone
	s.offsetX = px - el.X
	s.offsetY = py - el.Y
	s.pending = el.Geometry()
}

// BeginResize begins a potential resize via the given corner handle. The
// opposite corner becomes the anchor.
func (s *Session) BeginResize(id string, h Handle, px, py int) {
	el := s.layout.FindElement(id)
	if el == nil || h == HandleNone {
		return
	}
	s.Select(id)
	s.state = StateSelecting
	s.activeID = id
	s.handle = h
	s.pending = el.Geometry()
	switch h {
	case HandleNW:
		s.anchorX, s.anchorY = el.X+el.Width, el.Y+el.Height
	case HandleNE:
		s.anchorX, s.anchorY = el.X, el.Y+el.Height
	case HandleSW:
		s.anchorX, s.anchorY = el.X+el.Width, el.Y
	case HandleSE:
		s.anchorX, s.anchorY = el.X, el.Y
	}
}

// PointerMove advances an active gesture. It is pure arithmetic: clamp,
// snap, and update the pending geometry. No allocation, no I/O.
func (s *Session) PointerMove(px, py int) {
	switch s.state {
	case StateSelecting:
		if s.handle == HandleNone {
			s.state = StateDragging
		} else {
			s.state = StateResizing
		}
		s.PointerMove(px, py)
	case StateDragging:
		s.pending.X, s.pending.Y = s.dragTarget(px, py)
	case StateResizing:
		s.pending = s.resizeTarget(px, py)
	}
}

// PointerUp commits the gesture. A release without movement only leaves
// the selection changed; drag and resize releases commit the pending
// geometry atomically.
func (s *Session) PointerUp(px, py int) {
	switch s.state {
	case StateDragging, StateResizing:
		s.PointerMove(px, py)
		if el := s.layout.FindElement(s.activeID); el != nil {
			el.SetGeometry(s.pending)
			s.commit(s.activeID)
		}
	}
	s.state = StateIdle
	s.activeID = ""
	s.handle = HandleNone
}

// dragTarget computes the snapped, clamped position for the tracked
// element: pointer minus grab offset, clamped inside the canvas, snapped
// to the nearest grid multiple, then nudged back onto the last in-bounds
// multiple if nearest-rounding crossed the canvas edge.
func (s *Session) dragTarget(px, py int) (int, int) {
	x := px - s.offsetX
	y := py - s.offsetY
	x, y = s.limits.ClampPosition(x, y, s.pending.Width, s.pending.Height)
	x = snapWithin(x, s.limits.GridSize, s.limits.CanvasWidth-s.pending.Width)
	y = snapWithin(y, s.limits.GridSize, s.limits.CanvasHeight-s.pending.Height)
	return x, y
}

// resizeTarget computes the pending geometry for a resize: size from
// pointer to anchor, clamped to the global size range before snapping,
// then the origin re-derived from the anchor and clamped into the canvas.
func (s *Session) resizeTarget(px, py int) model.Geometry {
	g := s.pending

	var w, h int
	switch s.handle {
	case HandleNW:
		w, h = s.anchorX-px, s.anchorY-py
	case HandleNE:
		w, h = px-s.anchorX, s.anchorY-py
	case HandleSW:
		w, h = s.anchorX-px, py-s.anchorY
	case HandleSE:
		w, h = px-s.anchorX, py-s.anchorY
	default:
		return g
	}

	w, h = s.limits.ClampSize(w, h)
	w = snapSize(w, s.limits.GridSize, s.limits.MinSize, s.limits.MaxWidth)
	h = snapSize(h, s.limits.GridSize, s.limits.MinSize, s.limits.MaxHeight)

	switch s.handle {
	case HandleNW:
		g.X, g.Y = s.anchorX-w, s.anchorY-h
	case HandleNE:
		g.X, g.Y = s.anchorX, s.anchorY-h
	case HandleSW:
		g.X, g.Y = s.anchorX-w, s.anchorY
	case HandleSE:
		g.X, g.Y = s.anchorX, s.anchorY
	}
	g.Width, g.Height = w, h
	g.X, g.Y = s.limits.ClampPosition(g.X, g.Y, w, h)
	return g
}

// AddElement places a new element of the given type with its registered
// defaults, on top of the current stack, and commits.
func (s *Session) AddElement(typeTag string) (*model.Element, error) {
	def, ok := s.reg.Lookup(typeTag)
	if !ok {
		return nil, canvas.NewValidationError("type", "unknown element type "+typeTag)
	}
	if len(s.layout.Elements) >= s.limits.MaxElements {
		return nil, canvas.NewValidationError("elements", "canvas is full")
	}
	if def.MaxInstances > 0 && s.countType(typeTag) >= def.MaxInstances {
		return nil, canvas.NewValidationError("type", "instance limit reached for "+typeTag)
	}
	el, err := s.reg.NewElement(typeTag)
	if err != nil {
		return nil, canvas.NewValidationError("type", err.Error())
	}
	el.ZIndex = s.topZ()
	s.layout.Elements = append(s.layout.Elements, el)
	s.Select(el.ID)
	s.commit(el.ID)
	return el, nil
}

// DeleteElement removes an element unless its type is protected. Deleting
// the selected element clears the selection.
func (s *Session) DeleteElement(id string) error {
	el := s.layout.FindElement(id)
	if el == nil {
		return canvas.NewValidationError("id", "no such element")
	}
	def, ok := s.reg.Lookup(el.Type)
	if ok && !def.CanDelete {
		return canvas.ProtectedElementError{ElementID: id, Type: el.Type}
	}
	kept := s.layout.Elements[:0]
	for _, e := range s.layout.Elements {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	s.layout.Elements = kept
	if s.selectedID == id {
		s.ClearSelection()
	}
	s.commit(id)
	return nil
}

// BringForward raises the element one z step, re-clamped. Ties are fine;
// insertion order breaks them at render time.
func (s *Session) BringForward(id string) error {
	return s.shiftZ(id, geometry.ZStep)
}

// SendBack lowers the element one z step, re-clamped.
func (s *Session) SendBack(id string) error {
	return s.shiftZ(id, -geometry.ZStep)
}

func (s *Session) shiftZ(id string, delta int) error {
	el := s.layout.FindElement(id)
	if el == nil {
		return canvas.NewValidationError("id", "no such element")
	}
	next := geometry.ClampZ(el.ZIndex + delta)
	if next == el.ZIndex {
		return nil // already at the boundary, nothing to commit
	}
	el.ZIndex = next
	s.commit(id)
	return nil
}

// UpdateConfig replaces an element's config with the sanitized form of the
// given raw config and commits.
func (s *Session) UpdateConfig(id string, raw map[string]interface{}) error {
	el := s.layout.FindElement(id)
	if el == nil {
		return canvas.NewValidationError("id", "no such element")
	}
	def, ok := s.reg.Lookup(el.Type)
	if !ok {
		return canvas.NewValidationError("type", "unknown element type "+el.Type)
	}
	el.Config = def.Sanitize(raw)
	s.commit(id)
	return nil
}

// SetBackground updates the canvas background reference locally.
func (s *Session) SetBackground(v string) error {
	if v != "" && !sanitize.BackgroundAllowed(v) {
		return canvas.NewValidationError("background", "invalid background reference")
	}
	s.layout.Background = v
	s.commit("")
	return nil
}

// SetAudioURL updates the layout audio URL locally, against the same
// allow-list the server enforces.
func (s *Session) SetAudioURL(v string) error {
	if v != "" && !s.engine.AudioURLAllowed(v) {
		return canvas.NewValidationError("audioUrl", "audio host not allowed")
	}
	s.layout.AudioURL = v
	s.commit("")
	return nil
}

// Undo restores the previous committed state. The snapshot is decoded
// before the stacks move, so a failure leaves history exactly as it was.
func (s *Session) Undo() error {
	snap, err := s.hist.PeekUndo()
	if err != nil {
		return err
	}
	l, err := model.DecodeLayout(snap)
	if err != nil {
		return canvas.NewValidationError("history", "corrupt snapshot")
	}
	if _, err := s.hist.Undo(); err != nil {
		return err
	}
	s.restore(l)
	return nil
}

// Redo re-applies the most recently undone state, with the same
// validate-then-pop order as Undo.
func (s *Session) Redo() error {
	snap, err := s.hist.PeekRedo()
	if err != nil {
		return err
	}
	l, err := model.DecodeLayout(snap)
	if err != nil {
		return canvas.NewValidationError("history", "corrupt snapshot")
	}
	if _, err := s.hist.Redo(); err != nil {
		return err
	}
	s.restore(l)
	return nil
}

// restore installs an already-decoded snapshot. Flagged as replaying so
// the install never re-enters history.
func (s *Session) restore(l *model.Layout) {
	s.hist.Replaying(true)
	defer s.hist.Replaying(false)

	s.layout = l
	if s.selectedID != "" && s.layout.FindElement(s.selectedID) == nil {
		s.ClearSelection()
	}
	s.dirty = true
	s.generation++
	s.publish(events.KindLayoutChanged, "")
}

// commit seals one atomic mutation: snapshot to history, mark dirty, and
// announce the change.
func (s *Session) commit(elementID string) {
	s.dirty = true
	s.generation++
	if snap, err := s.layout.Encode(); err == nil {
		s.hist.Push(snap)
	}
	s.publish(events.KindLayoutChanged, elementID)
}

func (s *Session) publish(kind events.Kind, elementID string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Event{Kind: kind, CanvasID: s.canvasID, ElementID: elementID})
}

func (s *Session) countType(typeTag string) int {
	n := 0
	for _, e := range s.layout.Elements {
		if e.Type == typeTag {
			n++
		}
	}
	return n
}

// topZ returns a z-index one step above the current topmost element,
// clamped to the legal range.
func (s *Session) topZ() int {
	top := geometry.MinZIndex
	for _, e := range s.layout.Elements {
		if e.ZIndex > top {
			top = e.ZIndex
		}
	}
	return geometry.ClampZ(top + geometry.ZStep)
}

// snapWithin rounds v to the nearest grid multiple, stepping back to the
// last multiple inside [0, max] when rounding crossed the edge.
func snapWithin(v, grid, max int) int {
	if max < 0 {
		max = 0
	}
	snapped := geometry.Snap(v, grid)
	if snapped > max {
		if grid > 0 {
			snapped = (max / grid) * grid
		} else {
			snapped = max
		}
	}
	if snapped < 0 {
		snapped = 0
	}
	return snapped
}

// snapSize rounds a dimension to the grid without leaving [min, max].
func snapSize(v, grid, min, max int) int {
	snapped := geometry.Snap(v, grid)
	if snapped < min {
		snapped += grid
	}
	if snapped > max {
		snapped -= grid
	}
	return geometry.Clamp(snapped, min, max)
}
