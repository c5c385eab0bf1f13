// Package store exposes the persistence operations required by services.
// Implementations live under internal/store/<driver>/.
package store

import (
	"context"

	"github.com/corkboard/corkboard/internal/model"
)

// Store groups the per-aggregate persistence interfaces.
type Store interface {
	Canvases() Canvases
	Layouts() Layouts
	Guestbook() Guestbook

	// Close releases the underlying connection pool.
	Close() error
}

// Canvases persists canvas aggregates.
type Canvases interface {
	Create(ctx context.Context, c *model.Canvas) (*model.Canvas, error)
	Get(ctx context.Context, canvasID string) (*model.Canvas, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Canvas, error)
	Delete(ctx context.Context, canvasID string) error
}

// Layouts persists the canonical layout blob per canvas. Writes bump the
// canvas revision atomically with the blob so idempotence checks and
// revision reporting cannot drift apart.
type Layouts interface {
	// Get returns the stored canonical JSON and its revision.
	Get(ctx context.Context, canvasID string) ([]byte, int64, error)
	// Put stores canonical JSON and returns the new revision.
	Put(ctx context.Context, canvasID string, canonical []byte) (int64, error)
}

// Guestbook persists free-text entries tied to a canvas.
type Guestbook interface {
	Create(ctx context.Context, e *model.GuestbookEntry) (*model.GuestbookEntry, error)
	List(ctx context.Context, canvasID string, approvedOnly bool, limit int) ([]*model.GuestbookEntry, error)
	Delete(ctx context.Context, canvasID, entryID string) error
}

// HealthPinger is implemented by stores that can probe their backend.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
