// Package recovery converts downstream panics into 500 responses.
package recovery

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/corkboard/corkboard/internal/api/respond"
	"github.com/corkboard/corkboard/internal/canvas"
)

// Middleware intercepts panics from downstream handlers, logs details, and
// answers with the standard error envelope. A panic mid-write leaves the
// partial response as-is; WriteError's header call is then a no-op.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Str("method", r.Method).
					Str("url", r.URL.String()).
					Str("remote", r.RemoteAddr).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				respond.WriteError(w, http.StatusInternalServerError, canvas.CodePersistence, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
