package entity

import "errors"

var (
	// ErrNotFound marks a referenced user, video or task that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState marks a lifecycle transition attempted out of order.
	// The store is left untouched when it is returned.
	ErrInvalidState = errors.New("invalid state")

	// ErrCapacityExceeded marks the active-video cap and the empty candidate set.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrUnauthorized marks a non-owner review or a non-admin command.
	ErrUnauthorized = errors.New("unauthorized")
)
