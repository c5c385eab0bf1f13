// Package storetest provides a compliance suite that every store.Store
// implementation must pass. Driver packages invoke Run from their own
// tests with a factory that yields a fresh store per case.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corkboard/corkboard/internal/model"
	"github.com/corkboard/corkboard/internal/store"
)

// Factory returns a fresh, empty store. The suite calls Close when the
// case finishes.
type Factory func(t *testing.T) store.Store

// Run executes the full compliance suite against stores produced by f.
func Run(t *testing.T, f Factory) {
	t.Run("CanvasLifecycle", func(t *testing.T) { testCanvasLifecycle(t, f) })
	t.Run("CanvasNotFound", func(t *testing.T) { testCanvasNotFound(t, f) })
	t.Run("ListByOwner", func(t *testing.T) { testListByOwner(t, f) })
	t.Run("LayoutRevisions", func(t *testing.T) { testLayoutRevisions(t, f) })
	t.Run("LayoutNotFound", func(t *testing.T) { testLayoutNotFound(t, f) })
	t.Run("GuestbookLifecycle", func(t *testing.T) { testGuestbookLifecycle(t, f) })
	t.Run("GuestbookApprovedFilter", func(t *testing.T) { testGuestbookApprovedFilter(t, f) })
	t.Run("GuestbookCascade", func(t *testing.T) { testGuestbookCascade(t, f) })
}

func newStore(t *testing.T, f Factory) store.Store {
	t.Helper()
	s := f(t)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustCanvas(t *testing.T, s store.Store, owner, title string) *model.Canvas {
	t.Helper()
	cv, err := s.Canvases().Create(context.Background(), &model.Canvas{OwnerID: owner, Title: title})
	require.NoError(t, err)
	require.NotEmpty(t, cv.CanvasID)
	return cv
}

func testCanvasLifecycle(t *testing.T, f Factory) {
	s := newStore(t, f)
	ctx := context.Background()

	created := mustCanvas(t, s, "owner-1", "my page")
	assert.EqualValues(t, 0, created.Revision)
	assert.False(t, created.CreationTime.IsZero())

	got, err := s.Canvases().Get(ctx, created.CanvasID)
	require.NoError(t, err)
	assert.Equal(t, created.CanvasID, got.CanvasID)
	assert.Equal(t, "owner-1", got.OwnerID)
	assert.Equal(t, "my page", got.Title)

	require.NoError(t, s.Canvases().Delete(ctx, created.CanvasID))
	_, err = s.Canvases().Get(ctx, created.CanvasID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func testCanvasNotFound(t *testing.T, f Factory) {
	s := newStore(t, f)
	ctx := context.Background()

	_, err := s.Canvases().Get(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, s.Canvases().Delete(ctx, "missing"), model.ErrNotFound)
}

func testListByOwner(t *testing.T, f Factory) {
	s := newStore(t, f)
	ctx := context.Background()

	a1 := mustCanvas(t, s, "alice", "first")
	a2 := mustCanvas(t, s, "alice", "second")
	mustCanvas(t, s, "bob", "other")

	got, err := s.Canvases().ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a1.CanvasID, got[0].CanvasID)
	assert.Equal(t, a2.CanvasID, got[1].CanvasID)

	empty, err := s.Canvases().ListByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testLayoutRevisions(t *testing.T, f Factory) {
	s := newStore(t, f)
	ctx := context.Background()
	cv := mustCanvas(t, s, "owner-1", "page")

	blob, rev, err := s.Layouts().Get(ctx, cv.CanvasID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, rev)
	assert.Empty(t, blob)

	rev, err = s.Layouts().Put(ctx, cv.CanvasID, []byte(`{"elements":[]}`))
	require.NoError(t, err)
	assert.EqualValues(t, 1, rev)

	rev, err = s.Layouts().Put(ctx, cv.CanvasID, []byte(`{"elements":[],"background":"dots"}`))
	require.NoError(t, err)
	assert.EqualValues(t, 2, rev)

	blob, rev, err = s.Layouts().Get(ctx, cv.CanvasID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, rev)
	assert.JSONEq(t, `{"elements":[],"background":"dots"}`, string(blob))
}

func testLayoutNotFound(t *testing.T, f Factory) {
	s := newStore(t, f)
	ctx := context.Background()

	_, _, err := s.Layouts().Get(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.Layouts().Put(ctx, "missing", []byte(`{}`))
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func testGuestbookLifecycle(t *testing.T, f Factory) {
	s := newStore(t, f)
	ctx := context.Background()
	cv := mustCanvas(t, s, "owner-1", "page")

	e, err := s.Guestbook().Create(ctx, &model.GuestbookEntry{
		CanvasID: cv.CanvasID,
		AuthorID: "visitor-1",
		Content:  "nice page!",
		Approved: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, e.EntryID)
	assert.False(t, e.CreationTime.IsZero())

	got, err := s.Guestbook().List(ctx, cv.CanvasID, false, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "nice page!", got[0].Content)
	assert.True(t, got[0].Approved)

	require.NoError(t, s.Guestbook().Delete(ctx, cv.CanvasID, e.EntryID))
	assert.ErrorIs(t, s.Guestbook().Delete(ctx, cv.CanvasID, e.EntryID), model.ErrNotFound)
}

func testGuestbookApprovedFilter(t *testing.T, f Factory) {
	s := newStore(t, f)
	ctx := context.Background()
	cv := mustCanvas(t, s, "owner-1", "page")

	_, err := s.Guestbook().Create(ctx, &model.GuestbookEntry{CanvasID: cv.CanvasID, AuthorID: "v1", Content: "visible", Approved: true})
	require.NoError(t, err)
	_, err = s.Guestbook().Create(ctx, &model.GuestbookEntry{CanvasID: cv.CanvasID, AuthorID: "v2", Content: "pending", Approved: false})
	require.NoError(t, err)

	all, err := s.Guestbook().List(ctx, cv.CanvasID, false, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	approved, err := s.Guestbook().List(ctx, cv.CanvasID, true, 0)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "visible", approved[0].Content)
}

func testGuestbookCascade(t *testing.T, f Factory) {
	s := newStore(t, f)
	ctx := context.Background()
	cv := mustCanvas(t, s, "owner-1", "page")

	_, err := s.Guestbook().Create(ctx, &model.GuestbookEntry{CanvasID: cv.CanvasID, AuthorID: "v1", Content: "hello"})
	require.NoError(t, err)

	require.NoError(t, s.Canvases().Delete(ctx, cv.CanvasID))

	got, err := s.Guestbook().List(ctx, cv.CanvasID, false, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
