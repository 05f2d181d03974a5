// Package index implements the binary search-path index format.
//
// The stream is a fixed sequence of big-endian fields: magic, version, main
// class, the entry table (path, optional manifest, directories), the
// parent-first package set, the known-absent resource list and the
// directly-indexed resource table. Collections are count-prefixed, optional
// values are presence-flagged and strings carry a uint16 byte length.
//
// The format makes no compatibility promise: any magic or version mismatch
// is rejected before further bytes are read.
package index
