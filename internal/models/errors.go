package models

import "errors"

// Sentinel errors shared across repositories, services and handlers.
// Handlers translate these to HTTP statuses in a single place.
var (
	// ErrNotFound means the requested story, scene or record does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNotRated means an unrate was requested but no rating is stored.
	ErrNotRated = errors.New("no rating found to remove")

	// ErrNoneAvailable means filtering plus history exclusion left no
	// candidate stories. Distinct from ErrNotFound so the caller can suggest
	// relaxing filters or clearing history instead of reporting a failure.
	ErrNoneAvailable = errors.New("no stories available matching criteria")

	// ErrBadRequest means the request is missing or has a malformed field.
	ErrBadRequest = errors.New("bad request")

	// ErrInternal means the key-value store is unreachable or returned
	// corrupt data.
	ErrInternal = errors.New("internal server error")
)
