package repository

import "errors"

var (
	// ErrNotFound is returned when a row does not exist (or is soft-deleted).
	ErrNotFound = errors.New("not found")

	// ErrStaleStatus is returned when a status-preconditioned update matched
	// no rows: the record moved on under the caller, who must re-fetch the
	// current state before retrying.
	ErrStaleStatus = errors.New("stale status")
)
