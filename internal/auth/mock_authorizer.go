package auth

import (
	"context"
	"strings"
)

const (
	// LocalDevOwnerKey is the hardcoded owner credential for local
	// development only. It is intentionally obvious.
	LocalDevOwnerKey = "cb_local_dev_owner_key"

	// localDevVisitorPrefix lets local tooling mint visitor identities
	// without a signing secret: "cb_visitor:<id>".
	localDevVisitorPrefix = "cb_visitor:"
)

// MockAuthorizer resolves the hardcoded development credentials. It is the
// default when no signing secret is configured.
type MockAuthorizer struct{}

// NewMockAuthorizer creates an authorizer for local development.
func NewMockAuthorizer() *MockAuthorizer { return &MockAuthorizer{} }

// Authorize implements Authorizer.
func (m *MockAuthorizer) Authorize(_ context.Context, token, _, _ string) (*ActorInfo, error) {
	if token == LocalDevOwnerKey {
		return &ActorInfo{
			ActorID:     "local-dev-owner",
			DisplayName: "Local Development Owner",
			Role:        RoleOwner,
		}, nil
	}
	if id, ok := strings.CutPrefix(token, localDevVisitorPrefix); ok && id != "" {
		return &ActorInfo{ActorID: id, DisplayName: id, Role: RoleVisitor}, nil
	}
	return nil, ErrInvalidToken
}
