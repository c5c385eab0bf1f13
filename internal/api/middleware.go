package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/corkboard/corkboard/internal/auth"
	"github.com/corkboard/corkboard/internal/canvas"
	"github.com/corkboard/corkboard/internal/metrics"
)

// requireActor authenticates the request. Rejections are logged with the
// caller's address before the 401 propagates.
func requireActor(az auth.Authorizer, r *http.Request, operation, resource string) (*auth.ActorInfo, error) {
	token, err := auth.ExtractToken(r)
	if err != nil {
		log.Warn().Str("remote", r.RemoteAddr).Str("path", r.URL.Path).Str("operation", operation).Msg("request without valid credential")
		return nil, canvas.NewUnauthenticatedError(err.Error())
	}
	actor, err := az.Authorize(r.Context(), token, operation, resource)
	if err != nil {
		log.Warn().Str("remote", r.RemoteAddr).Str("path", r.URL.Path).Str("operation", operation).Msg("credential rejected")
		return nil, canvas.NewUnauthenticatedError("invalid credentials")
	}
	return actor, nil
}

// optionalActor authenticates when a credential is present and returns nil
// otherwise. Read endpoints use it so anonymous visitors can browse.
func optionalActor(az auth.Authorizer, r *http.Request, operation, resource string) *auth.ActorInfo {
	token, err := auth.ExtractToken(r)
	if err != nil {
		return nil
	}
	actor, err := az.Authorize(r.Context(), token, operation, resource)
	if err != nil {
		return nil
	}
	return actor
}

// statusRecorder captures the response status for the latency histogram.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware records request latency per route template.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		metrics.RequestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}
