package invite

import "errors"

var (
	// ErrNotFound indicates the invitation does not exist.
	ErrNotFound = errors.New("invitation not found")
	// ErrInvalid wraps validation failures.
	ErrInvalid = errors.New("invalid invitation request")
)
