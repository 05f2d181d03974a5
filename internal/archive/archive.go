// Package archive provides read access to the archive packages on a search path.
//
// Only two capabilities are needed by the indexer: listing entry names in
// archive order and opening a named entry. Zip-structured archives are
// supported through [Zip].
package archive

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/klauspost/compress/zip"
)

// Archive is a read-only view of one archive package.
type Archive interface {
	// Names returns every entry name, including directory markers, in
	// archive order.
	Names() []string

	// Open opens the named entry. It returns an error wrapping
	// fs.ErrNotExist when the archive holds no such entry.
	Open(name string) (io.ReadCloser, error)
}

// Zip is an Archive backed by a zip file.
//
// Zip is safe for concurrent use once opened.
type Zip struct {
	r      *zip.Reader
	closer io.Closer
	files  map[string]*zip.File
}

var _ Archive = (*Zip)(nil)

// OpenZip opens the zip archive at path. The caller must Close it.
func OpenZip(path string) (*Zip, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	z := newZip(&rc.Reader)
	z.closer = rc
	return z, nil
}

// NewZip reads a zip archive of the given size from r.
func NewZip(r io.ReaderAt, size int64) (*Zip, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return newZip(zr), nil
}

func newZip(r *zip.Reader) *Zip {
	files := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		// First occurrence wins for duplicated names.
		if _, ok := files[f.Name]; !ok {
			files[f.Name] = f
		}
	}
	return &Zip{r: r, files: files}
}

// Names implements Archive.
func (z *Zip) Names() []string {
	names := make([]string, len(z.r.File))
	for i, f := range z.r.File {
		names[i] = f.Name
	}
	return names
}

// Open implements Archive.
func (z *Zip) Open(name string) (io.ReadCloser, error) {
	f, ok := z.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return rc, nil
}

// Has reports whether the archive holds an entry with exactly this name.
func (z *Zip) Has(name string) bool {
	_, ok := z.files[name]
	return ok
}

// Close releases the underlying file, if any.
func (z *Zip) Close() error {
	if z.closer == nil {
		return nil
	}
	return z.closer.Close()
}
