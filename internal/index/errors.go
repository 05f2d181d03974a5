package index

import "errors"

// Sentinel errors for index encoding and decoding.
var (
	// ErrBadMagic is returned when a stream does not start with the index magic number.
	ErrBadMagic = errors.New("pathindex: wrong magic number")

	// ErrVersionMismatch is returned when a stream was written by a different format version.
	ErrVersionMismatch = errors.New("pathindex: wrong index format version")

	// ErrCorrupt is returned when a stream is truncated or contains malformed values.
	ErrCorrupt = errors.New("pathindex: corrupt index")

	// ErrTooLarge is returned when a string or collection cannot be represented in the format.
	ErrTooLarge = errors.New("pathindex: value too large for index format")
)
