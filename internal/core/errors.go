// Package core holds the pure, transport-free room state: the photo
// ledger, the playlist, the rate limiter and the id codec.
package core

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrAlreadyInitialized signals create-or-fetch idempotency, not failure.
	ErrAlreadyInitialized = errors.New("event already initialized")
	ErrNotFound           = errors.New("event not found")
	ErrEventInactive      = errors.New("event is not active")
	ErrTooManyConnections = errors.New("connection cap reached")
	ErrSessionExpired     = errors.New("session expired")
)

// RateLimitError carries the retry hint surfaced on the wire.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry in %s", e.RetryAfter)
}
