package vset

import "errors"

var (
	// ErrNotFound indicates the vector set or element does not exist.
	ErrNotFound = errors.New("vector set not found")

	// ErrMalformedReply indicates the server reply did not have the
	// expected shape.
	ErrMalformedReply = errors.New("malformed server reply")
)
