package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	_, err := ExtractToken(r)
	assert.ErrorIs(t, err, ErrMissingToken)

	r.Header.Set("Authorization", "Basic abc")
	_, err = ExtractToken(r)
	assert.ErrorIs(t, err, ErrInvalidToken)

	r.Header.Set("Authorization", "Bearer tok-123")
	tok, err := ExtractToken(r)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok)
}

func TestMockAuthorizer(t *testing.T) {
	m := NewMockAuthorizer()

	actor, err := m.Authorize(context.Background(), LocalDevOwnerKey, "layout:write", "canvas-1")
	require.NoError(t, err)
	assert.Equal(t, RoleOwner, actor.Role)

	actor, err = m.Authorize(context.Background(), "cb_visitor:alice", "guestbook:post", "canvas-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", actor.ActorID)
	assert.Equal(t, RoleVisitor, actor.Role)

	_, err = m.Authorize(context.Background(), "garbage", "layout:write", "canvas-1")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHMACTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	h := NewHMACAuthorizer(secret)

	tok := SignToken(secret, "owner-42", RoleOwner)
	actor, err := h.Authorize(context.Background(), tok, "layout:write", "canvas-1")
	require.NoError(t, err)
	assert.Equal(t, "owner-42", actor.ActorID)
	assert.Equal(t, RoleOwner, actor.Role)
}

func TestHMACTokenRejectsTampering(t *testing.T) {
	secret := []byte("test-secret")
	h := NewHMACAuthorizer(secret)

	tok := SignToken(secret, "owner-42", RoleVisitor)

	cases := map[string]string{
		"wrong secret":  SignToken([]byte("other"), "owner-42", RoleVisitor),
		"role upgrade":  "v1.owner-42.owner." + tok[len(tok)-64:],
		"empty actor":   SignToken(secret, "", RoleVisitor),
		"bad structure": "v1.owner-42",
		"unknown role":  SignToken(secret, "owner-42", Role("root")),
	}
	for name, bad := range cases {
		_, err := h.Authorize(context.Background(), bad, "op", "res")
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestCanEdit(t *testing.T) {
	owner := &ActorInfo{ActorID: "u1", Role: RoleOwner}
	assert.True(t, owner.CanEdit("u1"))
	assert.False(t, owner.CanEdit("u2"))

	visitor := &ActorInfo{ActorID: "u1", Role: RoleVisitor}
	assert.False(t, visitor.CanEdit("u1"))

	admin := &ActorInfo{ActorID: "mod", Role: RoleAdmin}
	assert.True(t, admin.CanEdit("anyone"))

	var nilActor *ActorInfo
	assert.False(t, nilActor.CanEdit("u1"))
}
