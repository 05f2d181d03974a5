// Package testutil builds archive and directory fixtures for tests.
package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
)

// TestEntry holds one entry of a test archive.
// A Name ending in "/" is written as a directory marker.
type TestEntry struct {
	Name string
	Data []byte
}

// Files returns file entries with generated content, in the given order.
func Files(names ...string) []TestEntry {
	entries := make([]TestEntry, len(names))
	for i, name := range names {
		entries[i] = TestEntry{Name: name, Data: []byte("content of " + name)}
	}
	return entries
}

// ManifestEntry returns a metadata record entry holding the given
// attribute/value pairs after the Manifest-Version header.
func ManifestEntry(kv ...string) TestEntry {
	var b strings.Builder
	b.WriteString("Manifest-Version: 1.0\r\n")
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, "%s: %s\r\n", kv[i], kv[i+1])
	}
	b.WriteString("\r\n")
	return TestEntry{Name: "META-INF/MANIFEST.MF", Data: []byte(b.String())}
}

// BuildTestJar returns a zip archive holding entries in order.
// No directory markers are added beyond those listed.
func BuildTestJar(tb testing.TB, entries []TestEntry) []byte {
	tb.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			tb.Fatalf("create entry %s: %v", e.Name, err)
		}
		if strings.HasSuffix(e.Name, "/") {
			continue
		}
		if _, err := w.Write(e.Data); err != nil {
			tb.Fatalf("write entry %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

// WriteTestJar writes a zip archive to dir/name and returns its path.
func WriteTestJar(tb testing.TB, dir, name string, entries []TestEntry) string {
	tb.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		tb.Fatalf("create directory: %v", err)
	}
	if err := os.WriteFile(path, BuildTestJar(tb, entries), 0o600); err != nil {
		tb.Fatalf("write archive: %v", err)
	}
	return path
}

// WriteTree creates the slash-separated files under root, with parent
// directories, and returns root.
func WriteTree(tb testing.TB, root string, names ...string) string {
	tb.Helper()

	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			tb.Fatalf("create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(name), 0o600); err != nil {
			tb.Fatalf("write %s: %v", name, err)
		}
	}
	return root
}
