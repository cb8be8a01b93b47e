package org

import "errors"

var (
	// ErrNotFound indicates the organization does not exist.
	ErrNotFound = errors.New("organization not found")
	// ErrExists indicates a create collided with an existing id.
	ErrExists = errors.New("organization id already exists")
	// ErrAlreadyMember indicates a duplicate membership.
	ErrAlreadyMember = errors.New("already a member")
	// ErrInvalid wraps validation failures.
	ErrInvalid = errors.New("invalid organization request")
)
