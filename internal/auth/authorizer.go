package auth

import (
	"context"
)

// Role classifies what an actor is allowed to do before ownership checks.
type Role string

const (
	// RoleOwner actors may edit canvases they own.
	RoleOwner Role = "owner"
	// RoleVisitor actors may read public canvases and post guestbook entries.
	RoleVisitor Role = "visitor"
	// RoleAdmin actors may perform moderation operations on any canvas.
	RoleAdmin Role = "admin"
)

// ActorInfo describes an authenticated actor.
type ActorInfo struct {
	ActorID     string `json:"actor_id"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

// CanEdit reports whether the actor may mutate the given canvas owner's
// content. Ownership is still checked per canvas by services; this is the
// role-level gate.
func (a *ActorInfo) CanEdit(ownerID string) bool {
	if a == nil {
		return false
	}
	if a.Role == RoleAdmin {
		return true
	}
	return a.Role == RoleOwner && a.ActorID == ownerID
}

// Authorizer validates credentials and checks whether the actor may
// perform an operation on a resource, in one call.
type Authorizer interface {
	Authorize(ctx context.Context, token, operation, resource string) (*ActorInfo, error)
}
