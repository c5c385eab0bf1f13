// Package geometry holds the pure placement arithmetic shared by the
// editor and the sanitization engine: grid snapping, bounds clamping and
// z-index ordering. Everything here is integer math with no I/O so it is
// safe to run on every pointer move.
package geometry

import "sort"

// Default canvas limits. The config layer may override the Limits struct;
// these values match the classic editor surface.
const (
	GridSize  = 24
	MinSize   = 48
	MaxWidth  = 800
	MaxHeight = 600

	MinZIndex = 1
	MaxZIndex = 100
	ZStep     = 1

	CanvasWidth  = 1200
	CanvasHeight = 1600

	MaxElements = 50
)

// Limits bundles the tunable bounds so components can be constructed with
// overrides instead of reading package constants.
type Limits struct {
	GridSize     int
	MinSize      int
	MaxWidth     int
	MaxHeight    int
	CanvasWidth  int
	CanvasHeight int
	MaxElements  int
}

// DefaultLimits returns the package defaults as a Limits value.
func DefaultLimits() Limits {
	return Limits{
		GridSize:     GridSize,
		MinSize:      MinSize,
		MaxWidth:     MaxWidth,
		MaxHeight:    MaxHeight,
		CanvasWidth:  CanvasWidth,
		CanvasHeight: CanvasHeight,
		MaxElements:  MaxElements,
	}
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Snap rounds v to the nearest multiple of grid. A grid of zero or less
// leaves v unchanged. Negative inputs round toward the nearest multiple as
// well, not toward zero.
func Snap(v, grid int) int {
	if grid <= 0 {
		return v
	}
	half := grid / 2
	if v >= 0 {
		return ((v + half) / grid) * grid
	}
	return -(((-v + half) / grid) * grid)
}

// SnapPoint snaps both coordinates of a point.
func SnapPoint(x, y, grid int) (int, int) {
	return Snap(x, grid), Snap(y, grid)
}

// ClampPosition keeps an element of the given size fully inside the canvas.
// The result is non-negative even when the element is larger than the
// canvas.
func (l Limits) ClampPosition(x, y, width, height int) (int, int) {
	maxX := l.CanvasWidth - width
	if maxX < 0 {
		maxX = 0
	}
	maxY := l.CanvasHeight - height
	if maxY < 0 {
		maxY = 0
	}
	return Clamp(x, 0, maxX), Clamp(y, 0, maxY)
}

// ClampSize bounds a width/height pair to the global size range.
func (l Limits) ClampSize(width, height int) (int, int) {
	return Clamp(width, l.MinSize, l.MaxWidth), Clamp(height, l.MinSize, l.MaxHeight)
}

// ClampZ bounds a z-index to its legal range.
func ClampZ(z int) int { return Clamp(z, MinZIndex, MaxZIndex) }

// Layer is the minimal view of an element needed for z ordering.
type Layer struct {
	ID     string
	ZIndex int
	Seq    int // insertion order, breaks z ties
}

// SortLayers orders layers back-to-front: ascending z-index, ties broken
// by insertion order. The sort is stable with respect to Seq by
// construction.
func SortLayers(layers []Layer) {
	sort.SliceStable(layers, func(i, j int) bool {
		if layers[i].ZIndex != layers[j].ZIndex {
			return layers[i].ZIndex < layers[j].ZIndex
		}
		return layers[i].Seq < layers[j].Seq
	})
}
