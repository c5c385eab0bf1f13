package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/corkboard/corkboard/internal/api/recovery"
	"github.com/corkboard/corkboard/internal/auth"
	"github.com/corkboard/corkboard/internal/services"
)

// RouterDeps carries everything the router needs; run.go builds it once.
type RouterDeps struct {
	Canvas     *services.CanvasService
	Guestbook  *services.GuestbookService
	Authorizer auth.Authorizer
	Signer     TokenSigner
	IsHealthy  func() bool
	Components func() map[string]bool
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(deps RouterDeps) *mux.Router {
	router := mux.NewRouter()

	router.Use(recovery.Middleware)
	router.Use(MetricsMiddleware)

	canvasHandler := NewCanvasHandler(deps.Canvas, deps.Authorizer, deps.Signer)
	guestbookHandler := NewGuestbookHandler(deps.Guestbook, deps.Authorizer)
	healthHandler := NewHealthHandler(deps.IsHealthy, deps.Components)

	// Health and metrics
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Element-type catalog
	router.HandleFunc("/api/element-types", canvasHandler.ElementTypes).Methods("GET")

	// Canvas endpoints
	router.HandleFunc("/api/canvases", canvasHandler.CreateCanvas).Methods("POST")
	router.HandleFunc("/api/canvases", canvasHandler.ListCanvases).Methods("GET")
	router.HandleFunc("/api/canvases/{canvasId}", canvasHandler.GetCanvas).Methods("GET")

	// Layout endpoints
	router.HandleFunc("/api/canvases/{canvasId}/layout", canvasHandler.GetLayout).Methods("GET")
	router.HandleFunc("/api/canvases/{canvasId}/layout", canvasHandler.SaveLayout).Methods("PUT")
	router.HandleFunc("/api/canvases/{canvasId}/background", canvasHandler.UpdateBackground).Methods("PUT")
	router.HandleFunc("/api/canvases/{canvasId}/audio", canvasHandler.UpdateAudioURL).Methods("PUT")

	// Guestbook endpoints
	router.HandleFunc("/api/canvases/{canvasId}/guestbook", guestbookHandler.PostEntry).Methods("POST")
	router.HandleFunc("/api/canvases/{canvasId}/guestbook", guestbookHandler.ListEntries).Methods("GET")
	router.HandleFunc("/api/canvases/{canvasId}/guestbook/{entryId}", guestbookHandler.DeleteEntry).Methods("DELETE")

	return router
}
