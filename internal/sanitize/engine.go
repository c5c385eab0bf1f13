// Package sanitize rebuilds a canonical, bounded, type-checked layout from
// arbitrary input. It is the single source of truth for what a valid
// layout is. The engine runs twice on every save: defensively where the
// layout is authored and authoritatively at the point of persistence; the
// two call sites sit on opposite sides of the trust boundary and are never
// collapsed into one.
package sanitize

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/corkboard/corkboard/internal/geometry"
	"github.com/corkboard/corkboard/internal/metrics"
	"github.com/corkboard/corkboard/internal/model"
	"github.com/corkboard/corkboard/internal/registry"
)

// Engine validates and canonicalizes layouts against one registry and one
// set of canvas limits.
type Engine struct {
	reg    *registry.Registry
	limits geometry.Limits

	// allowedAudioHosts is the approved domain set for the layout-level
	// audio URL; empty means audio is disabled entirely.
	allowedAudioHosts []string
}

// New constructs an engine. allowedAudioHosts entries are bare host
// suffixes such as "bandcamp.com".
func New(reg *registry.Registry, limits geometry.Limits, allowedAudioHosts []string) *Engine {
	return &Engine{reg: reg, limits: limits, allowedAudioHosts: allowedAudioHosts}
}

// Limits returns the engine's canvas limits.
func (e *Engine) Limits() geometry.Limits { return e.limits }

// Catalog returns the registry's element-type catalog.
func (e *Engine) Catalog() []model.TypeDescriptor { return e.reg.Catalog() }

// EmptyLayout returns the empty-but-for-the-mandatory-element layout.
func (e *Engine) EmptyLayout() *model.Layout {
	l := &model.Layout{Elements: []*model.Element{}}
	e.ensureMandatory(l)
	return l
}

// Sanitize rebuilds a canonical layout from an arbitrary JSON value. Any
// input shape is handled; input that is not an object holding an element
// array degrades to the empty layout.
func (e *Engine) Sanitize(raw []byte) *model.Layout {
	var root map[string]interface{}
	if err := json.Unmarshal(raw, &root); err != nil || root == nil {
		return e.EmptyLayout()
	}
	rawElems, ok := root["elements"].([]interface{})
	if !ok {
		return e.EmptyLayout()
	}

	out := &model.Layout{Elements: make([]*model.Element, 0, len(rawElems))}
	seenIDs := make(map[string]bool)
	instances := make(map[string]int)

	for _, item := range rawElems {
		em, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		el := e.sanitizeElement(em, seenIDs, instances)
		if el != nil {
			out.Elements = append(out.Elements, el)
		}
	}

	e.truncateElements(out)
	e.ensureMandatory(out)
	// The prepend can push a full layout one past the cap; the overflow
	// comes off the tail so the mandatory element stays.
	if len(out.Elements) > e.limits.MaxElements {
		metrics.ElementsDroppedTotal.WithLabelValues("canvas_cap").Inc()
		out.Elements = out.Elements[:e.limits.MaxElements]
	}

	out.Background = sanitizeBackground(stringField(root, "background"))
	out.AudioURL = e.sanitizeAudioURL(stringField(root, "audioUrl"))
	return out
}

// SanitizeLayout canonicalizes an in-process layout. Equivalent to
// round-tripping through Sanitize; used where the layout already has the
// typed shape.
func (e *Engine) SanitizeLayout(l *model.Layout) *model.Layout {
	if l == nil {
		return e.EmptyLayout()
	}
	raw, err := l.Encode()
	if err != nil {
		return e.EmptyLayout()
	}
	return e.Sanitize(raw)
}

// Canonical returns the deterministic serialized form of the sanitized
// layout. Sanitizing an already-canonical layout is a byte-level no-op,
// which is what makes save idempotence checks a plain compare.
func (e *Engine) Canonical(raw []byte) ([]byte, *model.Layout, error) {
	l := e.Sanitize(raw)
	enc, err := l.Encode()
	if err != nil {
		return nil, nil, err
	}
	return enc, l, nil
}

// sanitizeElement rebuilds one element, or returns nil when it must be
// dropped (missing id/type, unknown type, duplicate id, or per-type
// instance cap reached). Each drop is counted by reason.
func (e *Engine) sanitizeElement(em map[string]interface{}, seenIDs map[string]bool, instances map[string]int) *model.Element {
	id := stringField(em, "id")
	typeTag := stringField(em, "type")
	if id == "" || typeTag == "" {
		metrics.ElementsDroppedTotal.WithLabelValues("missing_field").Inc()
		return nil
	}
	def, ok := e.reg.Lookup(typeTag)
	if !ok {
		metrics.ElementsDroppedTotal.WithLabelValues("unknown_type").Inc()
		return nil
	}
	if seenIDs[id] {
		metrics.ElementsDroppedTotal.WithLabelValues("duplicate_id").Inc()
		return nil
	}
	if def.MaxInstances > 0 && instances[typeTag] >= def.MaxInstances {
		metrics.ElementsDroppedTotal.WithLabelValues("instance_cap").Inc()
		return nil
	}
	seenIDs[id] = true
	instances[typeTag]++

	dg := def.DefaultGeometry
	w := intField(em, "width", dg.Width)
	h := intField(em, "height", dg.Height)
	w, h = e.limits.ClampSize(w, h)
	x := intField(em, "x", dg.X)
	y := intField(em, "y", dg.Y)
	x, y = e.limits.ClampPosition(x, y, w, h)
	z := geometry.ClampZ(intField(em, "zIndex", dg.ZIndex))

	var rawCfg map[string]interface{}
	if m, ok := em["config"].(map[string]interface{}); ok {
		rawCfg = m
	}

	return &model.Element{
		ID:     truncateID(id),
		Type:   typeTag,
		X:      x,
		Y:      y,
		Width:  w,
		Height: h,
		ZIndex: z,
		Config: def.Sanitize(rawCfg),
	}
}

// truncateElements enforces the canvas cap oldest-first. A mandatory
// element sitting past the cut is not dropped: it takes the last kept
// slot, so the surviving input card is preserved rather than re-minted.
func (e *Engine) truncateElements(l *model.Layout) {
	max := e.limits.MaxElements
	if len(l.Elements) <= max {
		return
	}
	kept := l.Elements[:max:max]
	if def := e.reg.Mandatory(); def != nil && findType(kept, def.Type) == nil {
		if card := findType(l.Elements[max:], def.Type); card != nil {
			kept[max-1] = card
		}
	}
	dropped := len(l.Elements) - max
	metrics.ElementsDroppedTotal.WithLabelValues("canvas_cap").Add(float64(dropped))
	l.Elements = kept
}

// ensureMandatory prepends a default mandatory element when none survived.
func (e *Engine) ensureMandatory(l *model.Layout) {
	def := e.reg.Mandatory()
	if def == nil || findType(l.Elements, def.Type) != nil {
		return
	}
	el, err := e.reg.NewElement(def.Type)
	if err != nil {
		return
	}
	l.Elements = append([]*model.Element{el}, l.Elements...)
}

func findType(elems []*model.Element, typeTag string) *model.Element {
	for _, el := range elems {
		if el.Type == typeTag {
			return el
		}
	}
	return nil
}

func (e *Engine) sanitizeAudioURL(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || len(e.allowedAudioHosts) == 0 {
		return ""
	}
	u, err := url.Parse(v)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	for _, allowed := range e.allowedAudioHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return u.String()
		}
	}
	return ""
}

// AudioURLAllowed reports whether v passes the audio allow-list unchanged.
func (e *Engine) AudioURLAllowed(v string) bool {
	return v != "" && e.sanitizeAudioURL(v) == v
}

// sanitizeBackground keeps only opaque catalog references: short tokens of
// letters, digits and -_./: characters.
func sanitizeBackground(v string) string {
	v = strings.TrimSpace(v)
	if len(v) > 128 {
		return ""
	}
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.' || r == '/' || r == ':':
		default:
			return ""
		}
	}
	return v
}

// BackgroundAllowed reports whether v is a valid background reference.
func BackgroundAllowed(v string) bool {
	return v != "" && sanitizeBackground(v) == v
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// intField reads a numeric field, defaulting when missing or non-numeric.
// JSON numbers arrive as float64; in-process values may be ints.
func intField(m map[string]interface{}, key string, def int) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func truncateID(id string) string {
	if len(id) > 64 {
		return id[:64]
	}
	return id
}
