package index

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// countingWriter wraps a writer and counts bytes written.
type countingWriter struct {
	w io.Writer
	n int64
}

// Write implements io.Writer.
func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// encoder writes wire primitives, keeping the first error.
type encoder struct {
	w   *bufio.Writer
	buf [4]byte
	err error
}

func (e *encoder) putUint32(v uint32) {
	if e.err != nil {
		return
	}
	binary.BigEndian.PutUint32(e.buf[:], v)
	_, e.err = e.w.Write(e.buf[:])
}

func (e *encoder) putCount(what string, n int) {
	if e.err != nil {
		return
	}
	if n > MaxCount {
		e.err = fmt.Errorf("%w: %s count %d", ErrTooLarge, what, n)
		return
	}
	e.putUint32(uint32(n)) //nolint:gosec // bounded by MaxCount
}

func (e *encoder) putBool(b bool) {
	if e.err != nil {
		return
	}
	var v byte
	if b {
		v = 1
	}
	e.err = e.w.WriteByte(v)
}

func (e *encoder) putString(s string) {
	if e.err != nil {
		return
	}
	if len(s) > MaxStringLen {
		e.err = fmt.Errorf("%w: string of %d bytes", ErrTooLarge, len(s))
		return
	}
	binary.BigEndian.PutUint16(e.buf[:2], uint16(len(s))) //nolint:gosec // bounded by MaxStringLen
	if _, e.err = e.w.Write(e.buf[:2]); e.err != nil {
		return
	}
	_, e.err = e.w.WriteString(s)
}

func (e *encoder) putNullString(ns NullString) {
	e.putBool(ns.Valid)
	if ns.Valid {
		e.putString(ns.String)
	}
}

// Encode writes f to w and returns the number of bytes written.
//
// Collections are written in the order they appear in f; callers that need
// byte-identical output for equal inputs must order them first. Encode fails
// only on an I/O fault or a value that exceeds the format's limits.
func Encode(w io.Writer, f *File) (int64, error) {
	cw := &countingWriter{w: w}
	e := &encoder{w: bufio.NewWriter(cw)}

	e.putUint32(Magic)
	e.putUint32(Version)
	e.putString(f.MainClass)

	e.putCount("entry", len(f.Entries))
	for i := range f.Entries {
		rec := &f.Entries[i]
		e.putString(rec.Path)
		e.putBool(rec.Manifest != nil)
		if rec.Manifest != nil {
			for _, field := range rec.Manifest.fields() {
				e.putNullString(*field)
			}
		}
		e.putCount("directory", len(rec.Dirs))
		for _, dir := range rec.Dirs {
			e.putString(dir)
		}
	}

	e.putCount("package", len(f.ParentFirst))
	for _, pkg := range f.ParentFirst {
		e.putString(pkg)
	}

	e.putCount("non-existent resource", len(f.NonExistent))
	for _, name := range f.NonExistent {
		e.putString(name)
	}

	e.putCount("resource", len(f.Resources))
	for _, res := range f.Resources {
		e.putString(res.Name)
		e.putCount("position", len(res.Positions))
		for _, pos := range res.Positions {
			if e.err == nil && (pos < 0 || pos >= len(f.Entries)) {
				e.err = fmt.Errorf("%w: resource %q references position %d of %d entries",
					ErrCorrupt, res.Name, pos, len(f.Entries))
			}
			e.putUint32(uint32(pos)) //nolint:gosec // range checked above
		}
	}

	if e.err != nil {
		return cw.n, e.err
	}
	if err := e.w.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}
