package store

import "errors"

var (
	// ErrMalformedStore is returned when the metadata document does not parse.
	ErrMalformedStore = errors.New("malformed session context store")

	// ErrIO wraps filesystem failures while reading or writing the document.
	ErrIO = errors.New("session context store i/o failure")

	// ErrInvalidStatus is returned for an unrecognized status token.
	ErrInvalidStatus = errors.New("invalid status")
)
