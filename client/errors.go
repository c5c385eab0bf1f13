package client

import "errors"

// APIError is a failure envelope returned by the service.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}

// IsRateLimited reports whether err is a guestbook throttle rejection.
func IsRateLimited(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Code == "RATE_LIMITED"
}

// IsNotFound reports whether err is a missing-resource rejection.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Code == "NOT_FOUND"
}

// IsRetryable reports whether a save may be retried unchanged. Validation
// and authorization failures will not succeed on retry; persistence
// failures and transport errors will, because saves are idempotent.
func IsRetryable(err error) bool {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Code == "PERSISTENCE_FAILED"
	}
	// Transport-level errors (no envelope) are retryable.
	return true
}
