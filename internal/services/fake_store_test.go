package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/corkboard/corkboard/internal/model"
	"github.com/corkboard/corkboard/internal/store"
)

// fakeStore is an in-memory store.Store used by service tests. Errors can
// be injected per operation through failOn.
type fakeStore struct {
	mu        sync.Mutex
	canvases  map[string]*model.Canvas
	layouts   map[string][]byte
	entries   map[string][]*model.GuestbookEntry
	nextID    int
	failOn    map[string]error
	putCalls  int
	lastBlob  []byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		canvases: make(map[string]*model.Canvas),
		layouts:  make(map[string][]byte),
		entries:  make(map[string][]*model.GuestbookEntry),
		failOn:   make(map[string]error),
	}
}

func (f *fakeStore) Canvases() store.Canvases   { return (*fakeCanvases)(f) }
func (f *fakeStore) Layouts() store.Layouts     { return (*fakeLayouts)(f) }
func (f *fakeStore) Guestbook() store.Guestbook { return (*fakeGuestbook)(f) }
func (f *fakeStore) Close() error               { return nil }

func (f *fakeStore) genID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

type fakeCanvases fakeStore

func (f *fakeCanvases) Create(_ context.Context, in *model.Canvas) (*model.Canvas, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn["canvas.create"]; err != nil {
		return nil, err
	}
	out := *in
	if out.CanvasID == "" {
		out.CanvasID = (*fakeStore)(f).genID("canvas")
	}
	now := time.Now().UTC()
	out.CreationTime, out.UpdateTime = now, now
	f.canvases[out.CanvasID] = &out
	f.layouts[out.CanvasID] = nil
	return &out, nil
}

func (f *fakeCanvases) Get(_ context.Context, canvasID string) (*model.Canvas, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cv, ok := f.canvases[canvasID]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := *cv
	return &out, nil
}

func (f *fakeCanvases) ListByOwner(_ context.Context, ownerID string) ([]*model.Canvas, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Canvas
	for _, cv := range f.canvases {
		if cv.OwnerID == ownerID {
			c := *cv
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeCanvases) Delete(_ context.Context, canvasID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.canvases[canvasID]; !ok {
		return model.ErrNotFound
	}
	delete(f.canvases, canvasID)
	delete(f.layouts, canvasID)
	delete(f.entries, canvasID)
	return nil
}

type fakeLayouts fakeStore

func (f *fakeLayouts) Get(_ context.Context, canvasID string) ([]byte, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cv, ok := f.canvases[canvasID]
	if !ok {
		return nil, 0, model.ErrNotFound
	}
	return f.layouts[canvasID], cv.Revision, nil
}

func (f *fakeLayouts) Put(_ context.Context, canvasID string, canonical []byte) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn["layout.put"]; err != nil {
		return 0, err
	}
	cv, ok := f.canvases[canvasID]
	if !ok {
		return 0, model.ErrNotFound
	}
	f.layouts[canvasID] = append([]byte(nil), canonical...)
	cv.Revision++
	f.putCalls++
	f.lastBlob = f.layouts[canvasID]
	return cv.Revision, nil
}

type fakeGuestbook fakeStore

func (f *fakeGuestbook) Create(_ context.Context, in *model.GuestbookEntry) (*model.GuestbookEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn["guestbook.create"]; err != nil {
		return nil, err
	}
	out := *in
	if out.EntryID == "" {
		out.EntryID = (*fakeStore)(f).genID("entry")
	}
	out.CreationTime = time.Now().UTC()
	f.entries[out.CanvasID] = append(f.entries[out.CanvasID], &out)
	return &out, nil
}

func (f *fakeGuestbook) List(_ context.Context, canvasID string, approvedOnly bool, limit int) ([]*model.GuestbookEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.GuestbookEntry
	for _, e := range f.entries[canvasID] {
		if approvedOnly && !e.Approved {
			continue
		}
		c := *e
		out = append(out, &c)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeGuestbook) Delete(_ context.Context, canvasID, entryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.entries[canvasID]
	for i, e := range list {
		if e.EntryID == entryID {
			f.entries[canvasID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}
