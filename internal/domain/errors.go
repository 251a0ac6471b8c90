package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrConcurrentUpdate is returned when a compare-and-swap write finds a newer version.
	ErrConcurrentUpdate = errors.New("record was modified concurrently")
	// ErrAlreadyExists is returned when a unique constraint rejects an insert.
	ErrAlreadyExists = errors.New("already exists")
)
