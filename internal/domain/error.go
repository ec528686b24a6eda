package domain

import "errors"

var (
	// Session lifecycle
	ErrInvalidSession  = errors.New("invalid session")
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyMessage    = errors.New("empty message")
	ErrRateLimited     = errors.New("too many messages")

	// Completion gateway
	ErrUpstreamUnavailable = errors.New("completion api key not configured")
	ErrUpstreamTimeout     = errors.New("completion request timed out")
	ErrUpstreamError       = errors.New("completion request failed")

	// Persistence
	ErrNothingToSave = errors.New("no messages to save")

	// Common
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInternalFault = errors.New("internal fault")
)

// IsUpstream reports whether err came from the completion gateway.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) ||
		errors.Is(err, ErrUpstreamTimeout) ||
		errors.Is(err, ErrUpstreamError)
}
