// Package respond writes the uniform response envelope. Every API payload
// is either {"success":true,"data":...} or
// {"success":false,"error":{"code","message","status"}}.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/corkboard/corkboard/internal/canvas"
	"github.com/corkboard/corkboard/internal/model"
)

// Envelope is the top-level response shape.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody carries the machine-readable error detail.
type ErrorBody struct {
	Code    canvas.Code `json:"code"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
}

// WriteJSON writes an envelope with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteSuccess writes {"success":true,"data":...}.
func WriteSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	WriteJSON(w, statusCode, Envelope{Success: true, Data: data})
}

// WriteError writes a failure envelope.
func WriteError(w http.ResponseWriter, statusCode int, code canvas.Code, message string) {
	WriteJSON(w, statusCode, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message, Status: statusCode},
	})
}

// WriteDomainError maps a domain error to its HTTP status and envelope.
// Rate limit errors also set Retry-After.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		WriteError(w, http.StatusNotFound, canvas.CodeNotFound, "resource not found")
	case canvas.IsValidationError(err):
		WriteError(w, http.StatusBadRequest, canvas.CodeValidation, err.Error())
	case canvas.IsUnauthenticated(err):
		WriteError(w, http.StatusUnauthorized, canvas.CodeUnauthenticated, err.Error())
	case canvas.IsProtectedElementError(err):
		WriteError(w, http.StatusForbidden, canvas.CodeElementProtected, err.Error())
	case canvas.IsAuthorizationError(err):
		WriteError(w, http.StatusForbidden, canvas.CodeNotOwner, err.Error())
	case canvas.IsRateLimitError(err):
		var rle canvas.RateLimitError
		_ = errors.As(err, &rle)
		w.Header().Set("Retry-After", strconv.Itoa(rle.RetryAfterSeconds))
		WriteError(w, http.StatusTooManyRequests, canvas.CodeRateLimited, err.Error())
	case canvas.IsPersistenceError(err):
		log.Error().Stack().Err(err).Msg("persistence failure")
		WriteError(w, http.StatusInternalServerError, canvas.CodePersistence, "persistence failed, retry the request")
	default:
		log.Error().Stack().Err(err).Msg("unhandled error")
		WriteError(w, http.StatusInternalServerError, canvas.CodePersistence, "internal error")
	}
}
