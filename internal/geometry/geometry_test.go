package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnap(t *testing.T) {
	cases := []struct {
		name string
		v    int
		want int
	}{
		{"zero", 0, 0},
		{"on grid", 120, 120},
		{"round down", 130, 120},
		{"round up", 137, 144},
		{"midpoint rounds up", 132, 144},
		{"just below midpoint", 131, 120},
		{"small value", 11, 0},
		{"small value up", 13, 24},
		{"negative", -13, -24},
		{"negative down", -11, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Snap(tc.v, GridSize))
		})
	}
}

func TestSnapDegenerateGrid(t *testing.T) {
	assert.Equal(t, 37, Snap(37, 0))
	assert.Equal(t, 37, Snap(37, -8))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(5, 0, 10))
	assert.Equal(t, 0, Clamp(-3, 0, 10))
	assert.Equal(t, 10, Clamp(99, 0, 10))
}

func TestClampPositionKeepsElementInsideCanvas(t *testing.T) {
	l := DefaultLimits()

	x, y := l.ClampPosition(-50, -50, 100, 100)
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)

	x, y = l.ClampPosition(5000, 5000, 100, 100)
	assert.Equal(t, l.CanvasWidth-100, x)
	assert.Equal(t, l.CanvasHeight-100, y)

	// Element wider than the canvas still clamps to a non-negative origin.
	x, _ = l.ClampPosition(10, 10, l.CanvasWidth+500, 100)
	assert.Equal(t, 0, x)
}

func TestClampSize(t *testing.T) {
	l := DefaultLimits()
	w, h := l.ClampSize(1, 1)
	assert.Equal(t, MinSize, w)
	assert.Equal(t, MinSize, h)

	w, h = l.ClampSize(5000, 5000)
	assert.Equal(t, MaxWidth, w)
	assert.Equal(t, MaxHeight, h)
}

func TestClampZ(t *testing.T) {
	assert.Equal(t, MaxZIndex, ClampZ(9999))
	assert.Equal(t, MinZIndex, ClampZ(0))
	assert.Equal(t, 42, ClampZ(42))
}

func TestSortLayersBreaksTiesByInsertionOrder(t *testing.T) {
	layers := []Layer{
		{ID: "c", ZIndex: 2, Seq: 2},
		{ID: "a", ZIndex: 1, Seq: 0},
		{ID: "b", ZIndex: 2, Seq: 1},
	}
	SortLayers(layers)

	ids := []string{layers[0].ID, layers[1].ID, layers[2].ID}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}
