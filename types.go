package pathindex

import (
	"github.com/meigma/pathindex/internal/container"
	"github.com/meigma/pathindex/internal/index"
)

// Re-export types from internal packages for the public API.
type (
	// Manifest holds the identity attributes of an archive's metadata record.
	Manifest = index.Manifest

	// NullString is an optional manifest attribute.
	NullString = index.NullString

	// Compression identifies the frame around a saved index.
	Compression = container.Compression
)

// Some returns a present NullString holding s.
var Some = index.Some

// Re-export compression constants.
const (
	CompressionNone = container.CompressionNone
	CompressionZstd = container.CompressionZstd
	CompressionLZ4  = container.CompressionLZ4
)

// ParseCompression parses "none", "zstd" or "lz4".
var ParseCompression = container.ParseCompression

// Format constants.
const (
	// Magic is the first field of every index stream.
	Magic = index.Magic

	// FormatVersion is the index format version written and accepted by this package.
	FormatVersion = index.Version
)
