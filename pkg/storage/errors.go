package storage

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCollision is returned when a row being written already exists.
	ErrCollision = errors.New("item already exists")

	// ErrInvalidWriteInput is returned for writes that violate a relation
	// invariant, such as a self-follow.
	ErrInvalidWriteInput = errors.New("invalid write input")

	// ErrCancelled is returned when the request context was cancelled
	// mid-operation.
	ErrCancelled = errors.New("request has been cancelled")

	// ErrUnavailable is returned when the backing store could not be
	// reached after retrying. Results carrying it are never cached.
	ErrUnavailable = errors.New("storage unavailable")
)
