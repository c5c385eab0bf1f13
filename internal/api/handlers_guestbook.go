package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/corkboard/corkboard/internal/api/respond"
	"github.com/corkboard/corkboard/internal/auth"
	"github.com/corkboard/corkboard/internal/canvas"
	"github.com/corkboard/corkboard/internal/services"
)

// GuestbookHandler is the HTTP transport for guestbook operations.
type GuestbookHandler struct {
	svc *services.GuestbookService
	az  auth.Authorizer
}

func NewGuestbookHandler(svc *services.GuestbookService, az auth.Authorizer) *GuestbookHandler {
	return &GuestbookHandler{svc: svc, az: az}
}

// PostEntry POST /api/canvases/{canvasId}/guestbook
func (h *GuestbookHandler) PostEntry(w http.ResponseWriter, r *http.Request) {
	canvasID := mux.Vars(r)["canvasId"]
	actor, err := requireActor(h.az, r, "guestbook:post", canvasID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, canvas.CodeValidation, "invalid JSON")
		return
	}
	out, err := h.svc.PostEntry(r.Context(), actor, canvasID, req.Content)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteSuccess(w, http.StatusCreated, out)
}

// ListEntries GET /api/canvases/{canvasId}/guestbook
func (h *GuestbookHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	canvasID := mux.Vars(r)["canvasId"]
	actor := optionalActor(h.az, r, "guestbook:list", canvasID)

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	out, err := h.svc.ListEntries(r.Context(), actor, canvasID, limit)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteSuccess(w, http.StatusOK, map[string]interface{}{"entries": out, "count": len(out)})
}

// DeleteEntry DELETE /api/canvases/{canvasId}/guestbook/{entryId}
func (h *GuestbookHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	actor, err := requireActor(h.az, r, "guestbook:delete", vars["canvasId"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	if err := h.svc.DeleteEntry(r.Context(), actor, vars["canvasId"], vars["entryId"]); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
