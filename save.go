package pathindex

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/pathindex/internal/container"
)

// SaveFile writes idx to path and returns the digest of the raw index
// stream, before any compression.
//
// Uses atomic writes (temp file + rename) to prevent partial writes on failure.
// Parent directories are created as needed.
func SaveFile(path string, idx *Index, opts ...SaveOption) (digest.Digest, error) {
	cfg := saveConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".pathindex-*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()

	dgst, err := writeIndex(tmp, idx, cfg.compression)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write index file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	return dgst, nil
}

func writeIndex(w io.Writer, idx *Index, c Compression) (digest.Digest, error) {
	cw, err := container.NewWriter(w, c)
	if err != nil {
		return "", err
	}
	digester := digest.Canonical.Digester()
	if _, err := idx.WriteTo(io.MultiWriter(cw, digester.Hash())); err != nil {
		cw.Close()
		return "", err
	}
	if err := cw.Close(); err != nil {
		return "", err
	}
	return digester.Digest(), nil
}
