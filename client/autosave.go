package client

import (
	"context"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/corkboard/corkboard/internal/editor"
	"github.com/corkboard/corkboard/internal/events"
)

const (
	// DefaultDebounce is how long the autosaver waits after the last edit
	// before pushing a save. Rapid edit bursts collapse into one request.
	DefaultDebounce = 800 * time.Millisecond

	defaultMaxAttempts = 4
	defaultBaseBackoff = 250 * time.Millisecond
	defaultMaxInterval = 5 * time.Second
)

// Autosaver watches an editor session's event stream and persists the
// layout after edits settle. At most one save is in flight at a time;
// edits made while a save runs keep the session dirty and trigger another
// save, so the server always converges to the latest state.
type Autosaver struct {
	client  *Client
	session *editor.Session
	events  <-chan events.Event

	debounce    time.Duration
	maxAttempts int
	baseBackoff time.Duration

	mu sync.Mutex

	// OnResult, when set, observes each completed save attempt cycle.
	// Called from the autosave goroutine.
	OnResult func(*SaveResult, error)
}

// AutosaverOption configures an Autosaver.
type AutosaverOption func(*Autosaver)

// WithDebounce overrides the settle delay.
func WithDebounce(d time.Duration) AutosaverOption {
	return func(a *Autosaver) { a.debounce = d }
}

// WithMaxAttempts overrides how many times one save cycle retries.
func WithMaxAttempts(n int) AutosaverOption {
	return func(a *Autosaver) { a.maxAttempts = n }
}

// NewAutosaver wires an autosaver to a session. evts must be the channel
// returned by the session bus's Subscribe.
func NewAutosaver(c *Client, session *editor.Session, evts <-chan events.Event, opts ...AutosaverOption) *Autosaver {
	a := &Autosaver{
		client:      c,
		session:     session,
		events:      evts,
		debounce:    DefaultDebounce,
		maxAttempts: defaultMaxAttempts,
		baseBackoff: defaultBaseBackoff,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run consumes edit events until ctx is done or the event channel closes.
// It blocks; callers run it on its own goroutine.
func (a *Autosaver) Run(ctx context.Context) {
	timer := time.NewTimer(a.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-a.events:
			if !ok {
				return
			}
			if evt.Kind != events.KindLayoutChanged {
				continue
			}
			if armed && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(a.debounce)
			armed = true
		case <-timer.C:
			armed = false
			a.save(ctx)
		}
	}
}

// Flush saves immediately when there are unsaved changes. Used before
// navigation away from the editor.
func (a *Autosaver) Flush(ctx context.Context) {
	if a.session.Dirty() {
		a.save(ctx)
	}
}

// UnsavedChanges reports whether edits exist that the server has not
// acknowledged.
func (a *Autosaver) UnsavedChanges() bool { return a.session.Dirty() }

// save pushes the current layout with retries. The generation captured
// before the request guards the dirty flag: edits made mid-flight bump the
// generation and MarkSaved leaves the session dirty.
func (a *Autosaver) save(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.session.Dirty() {
		return
	}
	gen := a.session.Generation()
	layout := a.session.Layout().Clone()

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = a.baseBackoff
	exp.Multiplier = 2
	exp.MaxInterval = defaultMaxInterval
	exp.Reset()

	var res *SaveResult
	var err error
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		res, err = a.client.SaveLayout(ctx, a.session.CanvasID(), layout)
		if err == nil {
			a.session.MarkSaved(gen)
			autosaveRunsTotal.WithLabelValues(res.Status).Inc()
			break
		}
		if !IsRetryable(err) {
			break
		}
		if attempt == a.maxAttempts-1 {
			break
		}
		autosaveRetriesTotal.Inc()
		select {
		case <-ctx.Done():
			err = ctx.Err()
			attempt = a.maxAttempts
		case <-time.After(exp.NextBackOff()):
		}
	}
	if err != nil {
		autosaveRunsTotal.WithLabelValues("failed").Inc()
	}
	if a.OnResult != nil {
		a.OnResult(res, err)
	}
}
