package pathindex

import (
	"bufio"
	_ "crypto/sha256" // registers the canonical digest algorithm
	"fmt"
	"io"
	"os"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/pathindex/internal/container"
	"github.com/meigma/pathindex/internal/index"
)

// Read parses a raw index stream into an Application.
//
// The magic number and format version are validated before anything else;
// a mismatch fails with ErrBadMagic or ErrVersionMismatch. Truncated or
// malformed streams fail with ErrCorrupt and other read errors are returned
// as-is. No Application is returned on any error.
//
// Entry locations are resolved against appRoot. Read may buffer bytes of r
// beyond the end of the index.
func Read(r io.Reader, appRoot string, opts ...ReadOption) (*Application, error) {
	cfg := readConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	digester := digest.Canonical.Digester()
	f, err := index.Decode(io.TeeReader(bufio.NewReader(r), digester.Hash()))
	if err != nil {
		return nil, err
	}

	app := newApplication(f, appRoot, digester.Digest(), cfg.logger)
	app.log().Debug("index loaded",
		"digest", app.digest,
		"entries", len(app.entries),
		"directories", len(app.dirs),
		"resources", len(app.resources),
	)
	return app, nil
}

// OpenFile reads the index stored at path, which may be raw or wrapped in
// any supported compression frame.
func OpenFile(path, appRoot string, opts ...ReadOption) (*Application, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rc, _, err := container.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	defer rc.Close()

	app, err := Read(rc, appRoot, opts...)
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", path, err)
	}
	return app, nil
}
