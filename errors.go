package pathindex

import (
	"errors"

	"github.com/meigma/pathindex/internal/index"
)

// Sentinel errors re-exported from internal/index.
var (
	// ErrBadMagic is returned when a stream is not a search-path index.
	ErrBadMagic = index.ErrBadMagic

	// ErrVersionMismatch is returned when an index was written by another format version.
	ErrVersionMismatch = index.ErrVersionMismatch

	// ErrCorrupt is returned when an index stream is truncated or malformed.
	ErrCorrupt = index.ErrCorrupt

	// ErrTooLarge is returned when a value exceeds the limits of the index format.
	ErrTooLarge = index.ErrTooLarge
)

// Sentinel errors specific to the pathindex package.
var (
	// ErrClosed is returned when resources are opened after Application.Close.
	ErrClosed = errors.New("pathindex: application closed")
)
