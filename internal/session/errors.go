package session

import "errors"

var (
	// ErrNotFound is returned when no session matches the id or code.
	ErrNotFound = errors.New("session not found")
	// ErrNotLive is returned by the join flow for an ended session.
	ErrNotLive = errors.New("session is not live")
	// ErrExpired is returned by the join flow once now passes expiresAt.
	ErrExpired = errors.New("session code has expired")
	// ErrInvalid wraps validation failures.
	ErrInvalid = errors.New("invalid session request")
)
