// Package registry maps element type tags to their defaults and config
// sanitizers. It is the single adapter between the open wire-format config
// map and the typed per-element configuration structs.
package registry

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/corkboard/corkboard/internal/geometry"
	"github.com/corkboard/corkboard/internal/model"
)

// SanitizeFunc rebuilds a well-typed config from arbitrary input. It must
// be pure and total: any input, including nil or wrongly-typed values,
// yields a valid config and never a panic.
type SanitizeFunc func(raw map[string]interface{}) map[string]interface{}

// Definition describes one registered element type.
type Definition struct {
	Type            string
	DefaultGeometry model.Geometry
	DefaultConfig   func() map[string]interface{}
	Sanitize        SanitizeFunc

	// MaxInstances bounds how many elements of this type a layout may
	// hold; zero means unlimited.
	MaxInstances int

	// CanDelete=false marks protected types; deletions are refused with
	// ProtectedElementError, never silently ignored.
	CanDelete bool

	// Mandatory types are injected by the sanitizer when absent. Exactly
	// one registered type is mandatory.
	Mandatory bool
}

// Registry is a constructed, explicitly-passed set of element type
// definitions. It is immutable after construction aside from Register.
type Registry struct {
	defs map[string]*Definition
}

// New returns an empty registry. Most callers want NewWithBuiltins.
func New() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds a definition. Duplicate tags and incomplete definitions
// are rejected.
func (r *Registry) Register(def *Definition) error {
	if def == nil || def.Type == "" {
		return fmt.Errorf("registry: definition must carry a type tag")
	}
	if def.Sanitize == nil || def.DefaultConfig == nil {
		return fmt.Errorf("registry: type %s missing sanitizer or default config", def.Type)
	}
	if _, dup := r.defs[def.Type]; dup {
		return fmt.Errorf("registry: type %s already registered", def.Type)
	}
	r.defs[def.Type] = def
	return nil
}

// Lookup returns the definition for a type tag. Unknown tags return
// ok=false; consumers reject such elements rather than dropping the error.
func (r *Registry) Lookup(typeTag string) (*Definition, bool) {
	def, ok := r.defs[typeTag]
	return def, ok
}

// Mandatory returns the single mandatory definition, or nil when none is
// registered (an empty registry).
func (r *Registry) Mandatory() *Definition {
	for _, def := range r.defs {
		if def.Mandatory {
			return def
		}
	}
	return nil
}

// Catalog lists all registered types sorted by tag, in the shape consumed
// by the editor's add-element palette.
func (r *Registry) Catalog() []model.TypeDescriptor {
	out := make([]model.TypeDescriptor, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, model.TypeDescriptor{
			Type:            def.Type,
			DefaultGeometry: def.DefaultGeometry,
			DefaultConfig:   def.DefaultConfig(),
			MaxInstances:    def.MaxInstances,
			CanDelete:       def.CanDelete,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// NewElement mints a fresh element of the given type with default geometry
// and config. The z-index starts at the bottom of the legal range; the
// editor raises it on add.
func (r *Registry) NewElement(typeTag string) (*model.Element, error) {
	def, ok := r.Lookup(typeTag)
	if !ok {
		return nil, fmt.Errorf("registry: unknown element type %q", typeTag)
	}
	el := &model.Element{
		ID:     uuid.New().String(),
		Type:   def.Type,
		Config: def.DefaultConfig(),
	}
	el.SetGeometry(def.DefaultGeometry)
	if el.ZIndex < geometry.MinZIndex {
		el.ZIndex = geometry.MinZIndex
	}
	return el, nil
}
