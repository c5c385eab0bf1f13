package auth

import "errors"

var (
	// ErrMissingToken is returned when no credential accompanies the request.
	ErrMissingToken = errors.New("authentication token required")

	// ErrInvalidToken is returned when the credential fails verification.
	ErrInvalidToken = errors.New("invalid authentication token")
)
