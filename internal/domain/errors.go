package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	// Validation: rejected before any side effect.
	ErrMissingToken       = errors.New("access denied: missing token")
	ErrMalformedToken     = errors.New("access denied: malformed token")
	ErrInvalidTokenFormat = errors.New("access denied: invalid token format")
	ErrInvalidInput       = errors.New("invalid input")

	// Not found.
	ErrNotFound             = errors.New("not found")
	ErrNoSession            = errors.New("no active queue session")
	ErrQueueEmpty           = errors.New("no more businesses available in the queue")
	ErrItemNotFound         = errors.New("business is not in the queue")
	ErrNoCandidateAvailable = errors.New("no next business found")

	// Conflict: the existing session is left untouched.
	ErrAlreadyActive   = errors.New("a queue session is already active for a different address")
	ErrAddressMismatch = errors.New("address does not match the active queue session")

	// Upstream: a dependency call failed or timed out.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)

// IsNotFound reports whether err belongs to the not-found class.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrNoSession) ||
		errors.Is(err, ErrQueueEmpty) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrNoCandidateAvailable)
}
