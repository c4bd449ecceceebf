package services

import "errors"

var (
	// ErrValidation marks a missing or malformed required field. Surfaced to
	// the caller as a 400; never retried.
	ErrValidation = errors.New("validation error")

	// ErrStore marks a record store read/write failure. Surfaced as a 500;
	// views should show a stale/error state and offer a resync.
	ErrStore = errors.New("store error")
)
