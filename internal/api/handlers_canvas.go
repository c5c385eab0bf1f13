package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/corkboard/corkboard/internal/api/respond"
	"github.com/corkboard/corkboard/internal/auth"
	"github.com/corkboard/corkboard/internal/canvas"
	"github.com/corkboard/corkboard/internal/services"
)

// maxLayoutBody bounds a save payload well above any layout the sanitizer
// could emit.
const maxLayoutBody = 1 << 20

// TokenSigner mints a short credential the editor echoes back on saves.
// Nil disables token issuance (development mode).
type TokenSigner func(actorID string, role auth.Role) string

// CanvasHandler is the HTTP transport for canvas and layout operations.
type CanvasHandler struct {
	svc    *services.CanvasService
	az     auth.Authorizer
	signer TokenSigner
}

func NewCanvasHandler(svc *services.CanvasService, az auth.Authorizer, signer TokenSigner) *CanvasHandler {
	return &CanvasHandler{svc: svc, az: az, signer: signer}
}

// CreateCanvas POST /api/canvases
func (h *CanvasHandler) CreateCanvas(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(h.az, r, "canvas:create", "")
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, canvas.CodeValidation, "invalid JSON")
		return
	}
	out, err := h.svc.CreateCanvas(r.Context(), actor, req.Title)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteSuccess(w, http.StatusCreated, out)
}

// ListCanvases GET /api/canvases
func (h *CanvasHandler) ListCanvases(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(h.az, r, "canvas:list", "")
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	out, err := h.svc.ListCanvases(r.Context(), actor)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteSuccess(w, http.StatusOK, map[string]interface{}{"canvases": out, "count": len(out)})
}

// GetCanvas GET /api/canvases/{canvasId}
func (h *CanvasHandler) GetCanvas(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetCanvas(r.Context(), mux.Vars(r)["canvasId"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteSuccess(w, http.StatusOK, out)
}

// GetLayout GET /api/canvases/{canvasId}/layout
//
// Owners reading their own canvas also receive a fresh edit token to
// attach to subsequent saves.
func (h *CanvasHandler) GetLayout(w http.ResponseWriter, r *http.Request) {
	canvasID := mux.Vars(r)["canvasId"]
	layout, rev, err := h.svc.GetLayout(r.Context(), canvasID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	data := map[string]interface{}{
		"layout":   layout,
		"revision": rev,
	}
	if h.signer != nil {
		if actor := optionalActor(h.az, r, "layout:read", canvasID); actor != nil {
			if cv, err := h.svc.GetCanvas(r.Context(), canvasID); err == nil && actor.CanEdit(cv.OwnerID) {
				data["editToken"] = h.signer(actor.ActorID, actor.Role)
			}
		}
	}
	respond.WriteSuccess(w, http.StatusOK, data)
}

// SaveLayout PUT /api/canvases/{canvasId}/layout
//
// The raw body goes straight to the service; the sanitizer is the parser.
// A body the sanitizer cannot use degrades to the empty layout rather than
// a 400, so a hostile payload still converges to a valid saved state.
func (h *CanvasHandler) SaveLayout(w http.ResponseWriter, r *http.Request) {
	canvasID := mux.Vars(r)["canvasId"]
	actor, err := requireActor(h.az, r, "layout:write", canvasID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxLayoutBody))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, canvas.CodeValidation, "unreadable request body")
		return
	}
	res, err := h.svc.SaveLayout(r.Context(), actor, canvasID, raw)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteSuccess(w, http.StatusOK, res)
}

// UpdateBackground PUT /api/canvases/{canvasId}/background
func (h *CanvasHandler) UpdateBackground(w http.ResponseWriter, r *http.Request) {
	canvasID := mux.Vars(r)["canvasId"]
	actor, err := requireActor(h.az, r, "layout:write", canvasID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	var req struct {
		Background string `json:"background"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, canvas.CodeValidation, "invalid JSON")
		return
	}
	res, err := h.svc.UpdateBackground(r.Context(), actor, canvasID, req.Background)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteSuccess(w, http.StatusOK, res)
}

// UpdateAudioURL PUT /api/canvases/{canvasId}/audio
func (h *CanvasHandler) UpdateAudioURL(w http.ResponseWriter, r *http.Request) {
	canvasID := mux.Vars(r)["canvasId"]
	actor, err := requireActor(h.az, r, "layout:write", canvasID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	var req struct {
		AudioURL string `json:"audioUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, canvas.CodeValidation, "invalid JSON")
		return
	}
	res, err := h.svc.UpdateAudioURL(r.Context(), actor, canvasID, req.AudioURL)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteSuccess(w, http.StatusOK, res)
}

// ElementTypes GET /api/element-types
func (h *CanvasHandler) ElementTypes(w http.ResponseWriter, r *http.Request) {
	types := h.svc.ElementTypes()
	respond.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"types": types,
		"count": len(types),
	})
}
