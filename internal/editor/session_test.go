package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corkboard/corkboard/internal/canvas"
	"github.com/corkboard/corkboard/internal/events"
	"github.com/corkboard/corkboard/internal/geometry"
	"github.com/corkboard/corkboard/internal/history"
	"github.com/corkboard/corkboard/internal/model"
	"github.com/corkboard/corkboard/internal/registry"
	"github.com/corkboard/corkboard/internal/sanitize"
)

func newTestSession(t *testing.T, start *model.Layout) *Session {
	t.Helper()
	reg := registry.NewWithBuiltins()
	engine := sanitize.New(reg, geometry.DefaultLimits(), []string{"bandcamp.com"})
	hist := history.New(history.DefaultMaxDepth)
	bus := events.NewBus(64)
	return NewSession("canvas-1", reg, engine, hist, bus, start)
}

// sessionWithNote seeds the session with one note at the given geometry
// (the engine injects the mandatory profile card in front of it).
func sessionWithNote(t *testing.T, x, y, w, h int) (*Session, *model.Element) {
	t.Helper()
	start := &model.Layout{Elements: []*model.Element{
		{ID: "n1", Type: registry.TypeNote, X: x, Y: y, Width: w, Height: h, ZIndex: 2},
	}}
	s := newTestSession(t, start)
	el := s.Layout().FindElement("n1")
	require.NotNil(t, el)
	return s, el
}

func TestNewSessionStartsWithMandatoryElement(t *testing.T) {
	s := newTestSession(t, nil)
	require.Len(t, s.Layout().Elements, 1)
	assert.Equal(t, registry.TypeProfileCard, s.Layout().Elements[0].Type)
	assert.False(t, s.Dirty())
	assert.Equal(t, StateIdle, s.State())
}

func TestDragSnapScenario(t *testing.T) {
	s, el := sessionWithNote(t, 10, 10, 100, 60)

	// Grab the element at (27,22): offset from origin is (17,12).
	s.PointerDown(el.ID, 27, 22)
	assert.Equal(t, StateSelecting, s.State())

	s.PointerMove(100, 40)
	assert.Equal(t, StateDragging, s.State())

	// Release at pointer (137,52): raw position (120,40) snaps to (120,48).
	s.PointerUp(137, 52)

	assert.Equal(t, 120, el.X)
	assert.Equal(t, 48, el.Y)
	assert.Equal(t, StateIdle, s.State())
	assert.True(t, s.Dirty())
}

func TestDragClampsInsideCanvas(t *testing.T) {
	s, el := sessionWithNote(t, 10, 10, 100, 60)

	s.PointerDown(el.ID, 10, 10)
	s.PointerUp(99999, 99999)

	assert.LessOrEqual(t, el.X+el.Width, geometry.CanvasWidth)
	assert.LessOrEqual(t, el.Y+el.Height, geometry.CanvasHeight)
	assert.GreaterOrEqual(t, el.X, 0)
	assert.GreaterOrEqual(t, el.Y, 0)
	// Still on the grid after edge clamping.
	assert.Zero(t, el.X%geometry.GridSize)
	assert.Zero(t, el.Y%geometry.GridSize)
}

func TestClickWithoutMoveDoesNotCommit(t *testing.T) {
	s, el := sessionWithNote(t, 48, 48, 96, 96)
	gen := s.Generation()

	s.PointerDown(el.ID, 50, 50)
	s.PointerUp(50, 50)

	assert.Equal(t, gen, s.Generation())
	assert.Equal(t, el.ID, s.SelectedID())
	assert.Equal(t, 48, el.X)
}

func TestResizeSEAnchorsNorthWest(t *testing.T) {
	s, el := sessionWithNote(t, 48, 48, 96, 96)

	s.BeginResize(el.ID, HandleSE, el.X+el.Width, el.Y+el.Height)
	s.PointerMove(48+200, 48+130)
	s.PointerUp(48+200, 48+130)

	assert.Equal(t, 48, el.X)
	assert.Equal(t, 48, el.Y)
	assert.Equal(t, 192, el.Width)  // 200 snaps to 192
	assert.Equal(t, 120, el.Height) // 130 snaps to 120
}

func TestResizeNWMovesOriginKeepsOppositeCorner(t *testing.T) {
	s, el := sessionWithNote(t, 240, 240, 96, 96)
	right, bottom := el.X+el.Width, el.Y+el.Height

	s.BeginResize(el.ID, HandleNW, el.X, el.Y)
	s.PointerMove(el.X-24, el.Y-24)
	s.PointerUp(el.X-48, el.Y-48)

	assert.Equal(t, right, el.X+el.Width)
	assert.Equal(t, bottom, el.Y+el.Height)
	assert.Equal(t, 144, el.Width)
	assert.Equal(t, 144, el.Height)
}

func TestResizeClampsToSizeRange(t *testing.T) {
	s, el := sessionWithNote(t, 0, 0, 96, 96)

	s.BeginResize(el.ID, HandleSE, el.X+el.Width, el.Y+el.Height)
	s.PointerMove(4000, 4000)
	s.PointerUp(5000, 5000)
	assert.LessOrEqual(t, el.Width, geometry.MaxWidth)
	assert.LessOrEqual(t, el.Height, geometry.MaxHeight)

	s.BeginResize(el.ID, HandleSE, el.X+el.Width, el.Y+el.Height)
	s.PointerMove(2, 2)
	s.PointerUp(1, 1)
	assert.Equal(t, geometry.MinSize, el.Width)
	assert.Equal(t, geometry.MinSize, el.Height)
}

func TestSelectionFollowsClicks(t *testing.T) {
	s, el := sessionWithNote(t, 48, 48, 96, 96)

	s.Select(el.ID)
	assert.Equal(t, el.ID, s.SelectedID())

	s.ClearSelection()
	assert.Empty(t, s.SelectedID())

	s.Select("ghost")
	assert.Empty(t, s.SelectedID())
}

func TestDeleteProtectedElementRefused(t *testing.T) {
	s := newTestSession(t, nil)
	card := s.Layout().Elements[0]

	err := s.DeleteElement(card.ID)
	require.Error(t, err)
	assert.True(t, canvas.IsProtectedElementError(err))
	require.Len(t, s.Layout().Elements, 1)
}

func TestDeleteClearsSelection(t *testing.T) {
	s, el := sessionWithNote(t, 48, 48, 96, 96)
	s.Select(el.ID)

	require.NoError(t, s.DeleteElement(el.ID))
	assert.Empty(t, s.SelectedID())
	assert.Nil(t, s.Layout().FindElement(el.ID))
}

func TestZOrderStepsAndClamps(t *testing.T) {
	s, el := sessionWithNote(t, 48, 48, 96, 96)
	start := el.ZIndex

	require.NoError(t, s.BringForward(el.ID))
	assert.Equal(t, start+geometry.ZStep, el.ZIndex)

	for i := 0; i < 300; i++ {
		require.NoError(t, s.BringForward(el.ID))
	}
	assert.Equal(t, geometry.MaxZIndex, el.ZIndex)

	for i := 0; i < 300; i++ {
		require.NoError(t, s.SendBack(el.ID))
	}
	assert.Equal(t, geometry.MinZIndex, el.ZIndex)
}

func TestAddElementRespectsInstanceCap(t *testing.T) {
	s := newTestSession(t, nil)

	_, err := s.AddElement(registry.TypeProfileCard)
	require.Error(t, err) // already one, max 1

	for i := 0; i < 3; i++ {
		_, err = s.AddElement(registry.TypeMediaPlayer)
		require.NoError(t, err)
	}
	_, err = s.AddElement(registry.TypeMediaPlayer)
	assert.Error(t, err)
}

func TestAddElementRespectsCanvasCap(t *testing.T) {
	s := newTestSession(t, nil)
	for len(s.Layout().Elements) < geometry.MaxElements {
		_, err := s.AddElement(registry.TypeNote)
		require.NoError(t, err)
	}
	_, err := s.AddElement(registry.TypeNote)
	assert.Error(t, err)
}

func TestAddedElementLandsOnTop(t *testing.T) {
	s, el := sessionWithNote(t, 48, 48, 96, 96)
	el.ZIndex = 7 // seeded, not committed; only relative order matters

	added, err := s.AddElement(registry.TypeSticker)
	require.NoError(t, err)
	assert.Greater(t, added.ZIndex, el.ZIndex)
}

func TestUpdateConfigSanitizes(t *testing.T) {
	s, el := sessionWithNote(t, 48, 48, 96, 96)

	require.NoError(t, s.UpdateConfig(el.ID, map[string]interface{}{
		"text":     "<script>x</script>fine",
		"fontSize": 1000,
		"stray":    "gone",
	}))
	assert.Equal(t, "fine", el.Config["text"])
	assert.Equal(t, 32, el.Config["fontSize"])
	_, ok := el.Config["stray"]
	assert.False(t, ok)
}

func TestSetAudioURLHonorsAllowList(t *testing.T) {
	s := newTestSession(t, nil)

	require.NoError(t, s.SetAudioURL("https://me.bandcamp.com/t.mp3"))
	assert.Error(t, s.SetAudioURL("https://evil.example/t.mp3"))
	assert.Equal(t, "https://me.bandcamp.com/t.mp3", s.Layout().AudioURL)
}

func TestUndoRedoReplaysCommits(t *testing.T) {
	s, el := sessionWithNote(t, 10, 10, 100, 60)

	s.PointerDown(el.ID, 10, 10)
	s.PointerUp(130, 10) // x 130 snaps to 120, y 10 snaps to 0
	require.Equal(t, 120, s.Layout().FindElement(el.ID).X)

	require.NoError(t, s.Undo())
	assert.Equal(t, 10, s.Layout().FindElement(el.ID).X)
	assert.Equal(t, 10, s.Layout().FindElement(el.ID).Y)

	require.NoError(t, s.Redo())
	assert.Equal(t, 120, s.Layout().FindElement(el.ID).X)
	assert.Equal(t, 0, s.Layout().FindElement(el.ID).Y)
}

func TestUndoPastAddRemovesElement(t *testing.T) {
	s := newTestSession(t, nil)
	el, err := s.AddElement(registry.TypeNote)
	require.NoError(t, err)
	s.Select(el.ID)

	require.NoError(t, s.Undo())
	assert.Nil(t, s.Layout().FindElement(el.ID))
	// Selection cannot point at a removed element.
	assert.Empty(t, s.SelectedID())
}

func TestUndoAtInitialStateFails(t *testing.T) {
	s := newTestSession(t, nil)
	assert.ErrorIs(t, s.Undo(), history.ErrNothingToUndo)
}

func TestRestoreDoesNotGrowHistory(t *testing.T) {
	s := newTestSession(t, nil)
	_, err := s.AddElement(registry.TypeNote)
	require.NoError(t, err)
	_, err = s.AddElement(registry.TypeSticker)
	require.NoError(t, err)

	require.NoError(t, s.Undo())
	require.NoError(t, s.Redo())
	require.NoError(t, s.Undo())
	// Undo/redo alternation would exhaust immediately if restores pushed.
	require.NoError(t, s.Redo())
}

func TestUndoCorruptSnapshotLeavesHistoryIntact(t *testing.T) {
	s := newTestSession(t, nil)

	// Plant a damaged entry beneath the top, then commit on top of it.
	s.hist.Push([]byte(`{"elements":`))
	el, err := s.AddElement(registry.TypeNote)
	require.NoError(t, err)

	depth := s.hist.Depth()
	var vErr canvas.ValidationError
	require.ErrorAs(t, s.Undo(), &vErr)

	assert.Equal(t, depth, s.hist.Depth(), "failed undo must not move the stacks")
	assert.False(t, s.hist.CanRedo(), "failed undo must not seed the redo stack")
	assert.NotNil(t, s.Layout().FindElement(el.ID), "layout unchanged after failed undo")
}

func TestMarkSavedRacesNewerCommit(t *testing.T) {
	s := newTestSession(t, nil)
	_, err := s.AddElement(registry.TypeNote)
	require.NoError(t, err)

	gen := s.Generation()
	_, err = s.AddElement(registry.TypeSticker) // lands while "save" is in flight
	require.NoError(t, err)

	s.MarkSaved(gen)
	assert.True(t, s.Dirty(), "save of older generation must not clear dirty")

	s.MarkSaved(s.Generation())
	assert.False(t, s.Dirty())
}

func TestCommitsEmitLayoutChangedEvents(t *testing.T) {
	reg := registry.NewWithBuiltins()
	engine := sanitize.New(reg, geometry.DefaultLimits(), nil)
	bus := events.NewBus(64)
	s := NewSession("canvas-9", reg, engine, history.New(0), bus, nil)

	el, err := s.AddElement(registry.TypeNote)
	require.NoError(t, err)

	var sawLayoutChanged bool
	for done := false; !done; {
		select {
		case evt := <-bus.Subscribe():
			if evt.Kind == events.KindLayoutChanged && evt.CanvasID == "canvas-9" && evt.ElementID == el.ID {
				sawLayoutChanged = true
			}
		default:
			done = true
		}
	}
	assert.True(t, sawLayoutChanged)
}
