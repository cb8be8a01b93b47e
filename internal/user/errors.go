package user

import "errors"

var (
	// ErrNotFound indicates no user matches the id or email.
	ErrNotFound = errors.New("user not found")
	// ErrExists indicates a registration collided with an existing email.
	ErrExists = errors.New("user already exists")
	// ErrBadCredentials covers both unknown email and wrong password.
	ErrBadCredentials = errors.New("invalid credentials")
	// ErrInvalid wraps validation failures.
	ErrInvalid = errors.New("invalid user request")
)
