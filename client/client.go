// Package client is the Go SDK for the corkboard API. It wraps the HTTP
// surface in typed calls and provides an autosave loop for editor
// sessions.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/corkboard/corkboard/internal/model"
)

// SaveResult mirrors the save endpoint's payload.
type SaveResult struct {
	Status   string        `json:"status"`
	Revision int64         `json:"revision"`
	Layout   *model.Layout `json:"layout"`
}

// LayoutResponse is the read endpoint's payload.
type LayoutResponse struct {
	Layout   *model.Layout `json:"layout"`
	Revision int64         `json:"revision"`
}

// Client talks to one corkboard service with one credential.
type Client struct {
	rest *resty.Client
}

// Option configures a Client during construction.
type Option func(*Client)

// WithTimeout bounds each HTTP request end to end.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.rest.SetTimeout(d) }
}

// New constructs a Client. token is sent as a bearer credential on every
// request; pass the empty string for anonymous reads.
func New(baseURL, token string, opts ...Option) *Client {
	if baseURL == "" {
		panic("baseURL cannot be empty")
	}
	rest := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
	if token != "" {
		rest.SetAuthToken(token)
	}

	c := &Client{rest: rest}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
}

// do executes the prepared request and decodes the envelope into out.
func do(req *resty.Request, method, path string, out interface{}) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode() == 204 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("%s %s: status %d with undecodable body", method, path, resp.StatusCode())
	}
	if !env.Success {
		if env.Error != nil {
			return env.Error
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode())
	}
	if out != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

// CreateCanvas creates a canvas owned by the authenticated actor.
func (c *Client) CreateCanvas(ctx context.Context, title string) (*model.Canvas, error) {
	var out model.Canvas
	req := c.rest.R().SetContext(ctx).SetBody(map[string]string{"title": title})
	if err := do(req, "POST", "/api/canvases", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCanvas fetches canvas metadata.
func (c *Client) GetCanvas(ctx context.Context, canvasID string) (*model.Canvas, error) {
	var out model.Canvas
	req := c.rest.R().SetContext(ctx)
	if err := do(req, "GET", "/api/canvases/"+canvasID, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLayout fetches the sanitized layout and its revision.
func (c *Client) GetLayout(ctx context.Context, canvasID string) (*model.Layout, int64, error) {
	var out LayoutResponse
	req := c.rest.R().SetContext(ctx)
	if err := do(req, "GET", "/api/canvases/"+canvasID+"/layout", &out); err != nil {
		return nil, 0, err
	}
	return out.Layout, out.Revision, nil
}

// SaveLayout persists the layout and reports saved or synced.
func (c *Client) SaveLayout(ctx context.Context, canvasID string, layout *model.Layout) (*SaveResult, error) {
	var out SaveResult
	req := c.rest.R().SetContext(ctx).SetBody(layout)
	if err := do(req, "PUT", "/api/canvases/"+canvasID+"/layout", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateBackground sets the canvas background token.
func (c *Client) UpdateBackground(ctx context.Context, canvasID, background string) (*SaveResult, error) {
	var out SaveResult
	req := c.rest.R().SetContext(ctx).SetBody(map[string]string{"background": background})
	if err := do(req, "PUT", "/api/canvases/"+canvasID+"/background", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAudioURL sets the canvas audio embed URL.
func (c *Client) UpdateAudioURL(ctx context.Context, canvasID, audioURL string) (*SaveResult, error) {
	var out SaveResult
	req := c.rest.R().SetContext(ctx).SetBody(map[string]string{"audioUrl": audioURL})
	if err := do(req, "PUT", "/api/canvases/"+canvasID+"/audio", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ElementTypes fetches the element-type catalog.
func (c *Client) ElementTypes(ctx context.Context) ([]model.TypeDescriptor, error) {
	var out struct {
		Types []model.TypeDescriptor `json:"types"`
	}
	req := c.rest.R().SetContext(ctx)
	if err := do(req, "GET", "/api/element-types", &out); err != nil {
		return nil, err
	}
	return out.Types, nil
}

// PostGuestbookEntry posts a guestbook entry to a canvas.
func (c *Client) PostGuestbookEntry(ctx context.Context, canvasID, content string) (*model.GuestbookEntry, error) {
	var out model.GuestbookEntry
	req := c.rest.R().SetContext(ctx).SetBody(map[string]string{"content": content})
	if err := do(req, "POST", "/api/canvases/"+canvasID+"/guestbook", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListGuestbookEntries fetches guestbook entries visible to the caller.
func (c *Client) ListGuestbookEntries(ctx context.Context, canvasID string, limit int) ([]*model.GuestbookEntry, error) {
	var out struct {
		Entries []*model.GuestbookEntry `json:"entries"`
	}
	req := c.rest.R().SetContext(ctx)
	if limit > 0 {
		req.SetQueryParam("limit", fmt.Sprintf("%d", limit))
	}
	if err := do(req, "GET", "/api/canvases/"+canvasID+"/guestbook", &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

// DeleteGuestbookEntry removes an entry (owner or admin only).
func (c *Client) DeleteGuestbookEntry(ctx context.Context, canvasID, entryID string) error {
	req := c.rest.R().SetContext(ctx)
	return do(req, "DELETE", "/api/canvases/"+canvasID+"/guestbook/"+entryID, nil)
}

// Health reports whether the service considers itself healthy.
func (c *Client) Health(ctx context.Context) (bool, error) {
	var out struct {
		Status string `json:"status"`
	}
	req := c.rest.R().SetContext(ctx)
	if err := do(req, "GET", "/api/health", &out); err != nil {
		return false, err
	}
	return out.Status == "healthy", nil
}
