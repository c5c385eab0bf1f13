package registry

import "github.com/corkboard/corkboard/internal/model"

// Built-in element type tags.
const (
	TypeProfileCard     = "profile-card"
	TypeNote            = "note"
	TypeSticker         = "sticker"
	TypeMediaPlayer     = "media-player"
	TypeImage           = "image"
	TypeGuestbookWidget = "guestbook-widget"
)

// NewWithBuiltins returns a registry populated with the built-in element
// types. The profile card is the single mandatory, undeletable type.
func NewWithBuiltins() *Registry {
	r := New()
	s := newSanitizers()

	defs := []*Definition{
		{
			Type:            TypeProfileCard,
			DefaultGeometry: model.Geometry{X: 48, Y: 48, Width: 312, Height: 192, ZIndex: 1},
			DefaultConfig: func() map[string]interface{} {
				return s.profileCard(nil)
			},
			Sanitize:     s.profileCard,
			MaxInstances: 1,
			CanDelete:    false,
			Mandatory:    true,
		},
		{
			Type:            TypeNote,
			DefaultGeometry: model.Geometry{X: 96, Y: 96, Width: 216, Height: 168, ZIndex: 1},
			DefaultConfig: func() map[string]interface{} {
				return s.note(nil)
			},
			Sanitize:  s.note,
			CanDelete: true,
		},
		{
			Type:            TypeSticker,
			DefaultGeometry: model.Geometry{X: 120, Y: 120, Width: 96, Height: 96, ZIndex: 1},
			DefaultConfig: func() map[string]interface{} {
				return s.sticker(nil)
			},
			Sanitize:  s.sticker,
			CanDelete: true,
		},
		{
			Type:            TypeMediaPlayer,
			DefaultGeometry: model.Geometry{X: 96, Y: 312, Width: 336, Height: 120, ZIndex: 1},
			DefaultConfig: func() map[string]interface{} {
				return s.mediaPlayer(nil)
			},
			Sanitize:     s.mediaPlayer,
			MaxInstances: 3,
			CanDelete:    true,
		},
		{
			Type:            TypeImage,
			DefaultGeometry: model.Geometry{X: 144, Y: 144, Width: 240, Height: 192, ZIndex: 1},
			DefaultConfig: func() map[string]interface{} {
				return s.image(nil)
			},
			Sanitize:  s.image,
			CanDelete: true,
		},
		{
			Type:            TypeGuestbookWidget,
			DefaultGeometry: model.Geometry{X: 96, Y: 480, Width: 336, Height: 240, ZIndex: 1},
			DefaultConfig: func() map[string]interface{} {
				return s.guestbookWidget(nil)
			},
			Sanitize:     s.guestbookWidget,
			MaxInstances: 1,
			CanDelete:    true,
		},
	}

	for _, def := range defs {
		if err := r.Register(def); err != nil {
			// Built-ins are registered against a fresh registry; a failure
			// here is a programming error.
			panic(err)
		}
	}
	return r
}
