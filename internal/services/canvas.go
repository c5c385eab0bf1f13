// Package services holds the application services between the HTTP layer
// and the store. All authorization decisions beyond authentication happen
// here, never in handlers.
package services

import (
	"bytes"
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/corkboard/corkboard/internal/auth"
	"github.com/corkboard/corkboard/internal/canvas"
	"github.com/corkboard/corkboard/internal/metrics"
	"github.com/corkboard/corkboard/internal/model"
	"github.com/corkboard/corkboard/internal/sanitize"
	"github.com/corkboard/corkboard/internal/store"
)

// SaveStatus reports what a save request did.
type SaveStatus string

const (
	// SaveStatusSaved means a new revision was written.
	SaveStatusSaved SaveStatus = "saved"
	// SaveStatusSynced means the canonical payload matched the stored
	// blob and no write happened. Retrying an acknowledged save lands here.
	SaveStatusSynced SaveStatus = "synced"
)

// SaveResult is the outcome of a layout save.
type SaveResult struct {
	Status   SaveStatus    `json:"status"`
	Revision int64         `json:"revision"`
	Layout   *model.Layout `json:"layout"`
}

// CanvasService owns canvas lifecycle and layout persistence. Every
// incoming layout passes through the sanitize engine before it reaches the
// store, regardless of what the client claims to have validated.
type CanvasService struct {
	store  store.Store
	engine *sanitize.Engine
	log    zerolog.Logger
}

// NewCanvasService wires a CanvasService.
func NewCanvasService(s store.Store, engine *sanitize.Engine, log zerolog.Logger) *CanvasService {
	return &CanvasService{store: s, engine: engine, log: log}
}

// Engine exposes the sanitize engine for callers that pre-validate input.
func (s *CanvasService) Engine() *sanitize.Engine { return s.engine }

// CreateCanvas creates an empty canvas owned by the actor.
func (s *CanvasService) CreateCanvas(ctx context.Context, actor *auth.ActorInfo, title string) (*model.Canvas, error) {
	if actor == nil {
		return nil, canvas.NewUnauthenticatedError("authentication required")
	}
	if actor.Role != auth.RoleOwner && actor.Role != auth.RoleAdmin {
		return nil, canvas.NewNotOwnerError("visitors cannot create canvases")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, canvas.NewValidationError("title", "must not be empty")
	}
	if len(title) > 120 {
		title = title[:120]
	}

	cv, err := s.store.Canvases().Create(ctx, &model.Canvas{OwnerID: actor.ActorID, Title: title})
	if err != nil {
		return nil, canvas.NewPersistenceError("create canvas", err)
	}
	s.log.Info().Str("canvas_id", cv.CanvasID).Str("owner_id", cv.OwnerID).Msg("canvas created")
	return cv, nil
}

// GetCanvas returns canvas metadata.
func (s *CanvasService) GetCanvas(ctx context.Context, canvasID string) (*model.Canvas, error) {
	return s.store.Canvases().Get(ctx, canvasID)
}

// ListCanvases returns the actor's canvases.
func (s *CanvasService) ListCanvases(ctx context.Context, actor *auth.ActorInfo) ([]*model.Canvas, error) {
	if actor == nil {
		return nil, canvas.NewUnauthenticatedError("authentication required")
	}
	out, err := s.store.Canvases().ListByOwner(ctx, actor.ActorID)
	if err != nil {
		return nil, canvas.NewPersistenceError("list canvases", err)
	}
	return out, nil
}

// GetLayout returns the sanitized layout and its revision. A canvas that
// has never been saved yields the empty layout at revision 0.
func (s *CanvasService) GetLayout(ctx context.Context, canvasID string) (*model.Layout, int64, error) {
	blob, rev, err := s.store.Layouts().Get(ctx, canvasID)
	if err != nil {
		return nil, 0, err
	}
	if len(blob) == 0 {
		return s.engine.EmptyLayout(), rev, nil
	}
	// Stored blobs are canonical, but sanitizing on the way out keeps old
	// rows valid across registry changes.
	return s.engine.Sanitize(blob), rev, nil
}

// SaveLayout sanitizes raw and persists the canonical form. When the
// canonical bytes match what is stored, the save is a no-op and reports
// synced with the current revision, which is what makes retries after a
// lost acknowledgment safe.
func (s *CanvasService) SaveLayout(ctx context.Context, actor *auth.ActorInfo, canvasID string, raw []byte) (*SaveResult, error) {
	cv, err := s.store.Canvases().Get(ctx, canvasID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, canvas.NewUnauthenticatedError("authentication required")
	}
	if !actor.CanEdit(cv.OwnerID) {
		return nil, canvas.NewNotOwnerError("only the canvas owner may save its layout")
	}

	canonical, layout, err := s.engine.Canonical(raw)
	if err != nil {
		metrics.LayoutSavesTotal.WithLabelValues("rejected").Inc()
		return nil, canvas.NewValidationError("layout", err.Error())
	}

	stored, rev, err := s.store.Layouts().Get(ctx, canvasID)
	if err != nil {
		return nil, canvas.NewPersistenceError("read layout", err)
	}
	if bytes.Equal(stored, canonical) {
		metrics.LayoutSavesTotal.WithLabelValues("synced").Inc()
		return &SaveResult{Status: SaveStatusSynced, Revision: rev, Layout: layout}, nil
	}

	newRev, err := s.store.Layouts().Put(ctx, canvasID, canonical)
	if err != nil {
		metrics.LayoutSavesTotal.WithLabelValues("rejected").Inc()
		return nil, canvas.NewPersistenceError("write layout", err)
	}
	metrics.LayoutSavesTotal.WithLabelValues("saved").Inc()
	s.log.Info().Str("canvas_id", canvasID).Int64("revision", newRev).Int("elements", len(layout.Elements)).Msg("layout saved")
	return &SaveResult{Status: SaveStatusSaved, Revision: newRev, Layout: layout}, nil
}

// UpdateBackground sets the canvas background token. Empty clears it.
func (s *CanvasService) UpdateBackground(ctx context.Context, actor *auth.ActorInfo, canvasID, background string) (*SaveResult, error) {
	if background != "" && !sanitize.BackgroundAllowed(background) {
		return nil, canvas.NewValidationError("background", "not a valid background reference")
	}
	return s.mutateLayout(ctx, actor, canvasID, func(l *model.Layout) {
		l.Background = background
	})
}

// UpdateAudioURL sets the canvas audio embed URL. Empty clears it; anything
// off the allow-list is rejected rather than silently dropped.
func (s *CanvasService) UpdateAudioURL(ctx context.Context, actor *auth.ActorInfo, canvasID, audioURL string) (*SaveResult, error) {
	if audioURL != "" && !s.engine.AudioURLAllowed(audioURL) {
		return nil, canvas.NewValidationError("audioUrl", "host is not on the audio allow-list")
	}
	return s.mutateLayout(ctx, actor, canvasID, func(l *model.Layout) {
		l.AudioURL = audioURL
	})
}

// mutateLayout applies mutate to the current layout and saves the result
// through the normal save path, reusing its ownership and idempotence
// handling.
func (s *CanvasService) mutateLayout(ctx context.Context, actor *auth.ActorInfo, canvasID string, mutate func(*model.Layout)) (*SaveResult, error) {
	layout, _, err := s.GetLayout(ctx, canvasID)
	if err != nil {
		return nil, err
	}
	mutate(layout)
	raw, err := layout.Encode()
	if err != nil {
		return nil, canvas.NewValidationError("layout", err.Error())
	}
	return s.SaveLayout(ctx, actor, canvasID, raw)
}

// ElementTypes returns the catalog served to the editor palette.
func (s *CanvasService) ElementTypes() []model.TypeDescriptor {
	return s.engine.Catalog()
}
