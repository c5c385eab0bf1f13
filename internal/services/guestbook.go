package services

import (
	"context"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/corkboard/corkboard/internal/auth"
	"github.com/corkboard/corkboard/internal/canvas"
	"github.com/corkboard/corkboard/internal/metrics"
	"github.com/corkboard/corkboard/internal/model"
	"github.com/corkboard/corkboard/internal/ratelimit"
	"github.com/corkboard/corkboard/internal/store"
)

// MaxGuestbookContentLen bounds a single entry after sanitization.
const MaxGuestbookContentLen = 500

// GuestbookService handles visitor comments. Posts are rate limited per
// visitor per canvas; the layout save path is never throttled by guestbook
// traffic.
type GuestbookService struct {
	store       store.Store
	limiter     ratelimit.Limiter
	policy      *bluemonday.Policy
	log         zerolog.Logger
	autoApprove bool
}

// GuestbookOption configures a GuestbookService.
type GuestbookOption func(*GuestbookService)

// WithAutoApprove makes visitor entries visible immediately instead of
// waiting for owner moderation.
func WithAutoApprove(on bool) GuestbookOption {
	return func(s *GuestbookService) { s.autoApprove = on }
}

// NewGuestbookService wires a GuestbookService.
func NewGuestbookService(s store.Store, limiter ratelimit.Limiter, log zerolog.Logger, opts ...GuestbookOption) *GuestbookService {
	svc := &GuestbookService{
		store:   s,
		limiter: limiter,
		policy:  bluemonday.StrictPolicy(),
		log:     log,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// PostEntry records one guestbook entry for the actor. Content is stripped
// to plain text and bounded; entries start unapproved unless posted by the
// canvas owner.
func (s *GuestbookService) PostEntry(ctx context.Context, actor *auth.ActorInfo, canvasID, content string) (*model.GuestbookEntry, error) {
	if actor == nil {
		return nil, canvas.NewUnauthenticatedError("authentication required")
	}
	cv, err := s.store.Canvases().Get(ctx, canvasID)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(s.policy.Sanitize(content))
	if content == "" {
		metrics.GuestbookPostsTotal.WithLabelValues("rejected").Inc()
		return nil, canvas.NewValidationError("content", "must not be empty after sanitization")
	}
	if len(content) > MaxGuestbookContentLen {
		content = truncateRunes(content, MaxGuestbookContentLen)
	}

	allowed, retryAfter, err := s.limiter.Allow(ctx, canvasID+":"+actor.ActorID)
	if err != nil {
		return nil, canvas.NewPersistenceError("rate limit check", err)
	}
	if !allowed {
		metrics.GuestbookPostsTotal.WithLabelValues("rate_limited").Inc()
		secs := int(retryAfter.Seconds())
		if secs < 1 {
			secs = 1
		}
		return nil, canvas.RateLimitError{Resource: "guestbook", RetryAfterSeconds: secs}
	}

	entry := &model.GuestbookEntry{
		CanvasID: canvasID,
		AuthorID: actor.ActorID,
		Content:  content,
		Approved: s.autoApprove || actor.CanEdit(cv.OwnerID),
	}
	out, err := s.store.Guestbook().Create(ctx, entry)
	if err != nil {
		metrics.GuestbookPostsTotal.WithLabelValues("rejected").Inc()
		return nil, canvas.NewPersistenceError("create guestbook entry", err)
	}
	metrics.GuestbookPostsTotal.WithLabelValues("accepted").Inc()
	s.log.Info().Str("canvas_id", canvasID).Str("entry_id", out.EntryID).Msg("guestbook entry posted")
	return out, nil
}

// ListEntries returns guestbook entries for a canvas. The owner and admins
// see everything; everyone else sees approved entries only.
func (s *GuestbookService) ListEntries(ctx context.Context, actor *auth.ActorInfo, canvasID string, limit int) ([]*model.GuestbookEntry, error) {
	cv, err := s.store.Canvases().Get(ctx, canvasID)
	if err != nil {
		return nil, err
	}
	approvedOnly := !actor.CanEdit(cv.OwnerID)
	out, err := s.store.Guestbook().List(ctx, canvasID, approvedOnly, limit)
	if err != nil {
		return nil, canvas.NewPersistenceError("list guestbook entries", err)
	}
	return out, nil
}

// DeleteEntry removes an entry. Only the canvas owner or an admin may
// moderate the guestbook.
func (s *GuestbookService) DeleteEntry(ctx context.Context, actor *auth.ActorInfo, canvasID, entryID string) error {
	cv, err := s.store.Canvases().Get(ctx, canvasID)
	if err != nil {
		return err
	}
	if actor == nil {
		return canvas.NewUnauthenticatedError("authentication required")
	}
	if !actor.CanEdit(cv.OwnerID) {
		return canvas.NewNotOwnerError("only the canvas owner may delete guestbook entries")
	}
	if err := s.store.Guestbook().Delete(ctx, canvasID, entryID); err != nil {
		return err
	}
	return nil
}

func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
