package model

import (
	"encoding/json"
	"time"
)

// Geometry is the placement of one element on the canvas. All fields are
// integers in canvas pixels; ZIndex orders overlapping elements.
type Geometry struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
	ZIndex int `json:"zIndex"`
}

// Element is one placed item on a canvas. Config keys and value ranges are
// fully determined by Type; anything outside the registered schema is
// removed during sanitization.
type Element struct {
	ID     string                 `json:"id"`
	Type   string                 `json:"type"`
	X      int                    `json:"x"`
	Y      int                    `json:"y"`
	Width  int                    `json:"width"`
	Height int                    `json:"height"`
	ZIndex int                    `json:"zIndex"`
	Config map[string]interface{} `json:"config,omitempty"`
}

// Geometry returns the element's placement as a single value.
func (e *Element) Geometry() Geometry {
	return Geometry{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height, ZIndex: e.ZIndex}
}

// SetGeometry applies g to the element's placement fields.
func (e *Element) SetGeometry(g Geometry) {
	e.X, e.Y, e.Width, e.Height, e.ZIndex = g.X, g.Y, g.Width, g.Height, g.ZIndex
}

// Clone returns a deep copy; Config maps are never shared between copies.
func (e *Element) Clone() *Element {
	out := *e
	if e.Config != nil {
		out.Config = make(map[string]interface{}, len(e.Config))
		for k, v := range e.Config {
			out.Config[k] = v
		}
	}
	return &out
}

// Layout is the full ordered element set plus canvas-level metadata.
// Element order is insertion order and is significant: it breaks z-index
// ties and drives oldest-first truncation.
type Layout struct {
	Elements   []*Element `json:"elements"`
	Background string     `json:"background,omitempty"`
	AudioURL   string     `json:"audioUrl,omitempty"`
}

// Clone returns a deep copy of the layout.
func (l *Layout) Clone() *Layout {
	out := &Layout{Background: l.Background, AudioURL: l.AudioURL}
	out.Elements = make([]*Element, len(l.Elements))
	for i, e := range l.Elements {
		out.Elements[i] = e.Clone()
	}
	return out
}

// FindElement returns the element with the given id, or nil.
func (l *Layout) FindElement(id string) *Element {
	for _, e := range l.Elements {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Encode serializes the layout deterministically. Struct field order fixes
// the key order, so encoding a canonical layout is stable byte-for-byte.
func (l *Layout) Encode() ([]byte, error) {
	return json.Marshal(l)
}

// DecodeLayout parses raw JSON into a Layout without validating it. Callers
// that cross a trust boundary must run the sanitizer on the result.
func DecodeLayout(raw []byte) (*Layout, error) {
	var l Layout
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// Canvas is the stored aggregate owning one layout.
type Canvas struct {
	CanvasID     string    `json:"canvasId"`
	OwnerID      string    `json:"ownerId"`
	Title        string    `json:"title"`
	Revision     int64     `json:"revision"`
	CreationTime time.Time `json:"creationTime"`
	UpdateTime   time.Time `json:"updateTime"`
}

// GuestbookEntry is a free-text comment tied to a canvas. It bypasses the
// layout schema entirely and is rate-limited separately.
type GuestbookEntry struct {
	EntryID      string    `json:"entryId"`
	CanvasID     string    `json:"canvasId"`
	AuthorID     string    `json:"authorId"`
	Content      string    `json:"content"`
	Approved     bool      `json:"approved"`
	CreationTime time.Time `json:"creationTime"`
}

// TypeDescriptor is one row of the element-type catalog served to the
// editor's add-element palette.
type TypeDescriptor struct {
	Type            string                 `json:"type"`
	DefaultGeometry Geometry               `json:"defaultGeometry"`
	DefaultConfig   map[string]interface{} `json:"defaultConfig"`
	MaxInstances    int                    `json:"maxInstances,omitempty"`
	CanDelete       bool                   `json:"canDelete"`
}
