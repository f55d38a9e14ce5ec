package domain

import "errors"

var (
	// ErrNotFound is returned when no record matches the requested code or URL.
	ErrNotFound = errors.New("short code not found")
	// ErrDuplicateCode is returned by a store when a record with the same
	// short code already exists.
	ErrDuplicateCode = errors.New("short code exists")
	// ErrDuplicateURL is returned by a store when a record for the same
	// original URL already exists.
	ErrDuplicateURL = errors.New("original url exists")
	// ErrCodeSpaceExhausted is returned when no free short code could be
	// allocated within the configured number of attempts.
	ErrCodeSpaceExhausted = errors.New("could not allocate short code")
	// ErrInvalidURL is returned when the submitted URL is not an absolute
	// http or https URL.
	ErrInvalidURL = errors.New("invalid URL")
)
