package index

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// preallocLimit caps slice preallocation driven by untrusted counts.
const preallocLimit = 4096

// decoder reads wire primitives. Short reads are reported as ErrCorrupt;
// any other read error is returned unchanged.
type decoder struct {
	r   io.Reader
	buf [4]byte
}

func (d *decoder) full(p []byte) error {
	if _, err := io.ReadFull(d.r, p); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %w", ErrCorrupt, io.ErrUnexpectedEOF)
		}
		return err
	}
	return nil
}

func (d *decoder) readUint32() (uint32, error) {
	if err := d.full(d.buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(d.buf[:]), nil
}

func (d *decoder) readCount(what string) (int, error) {
	v, err := d.readUint32()
	if err != nil {
		return 0, err
	}
	if v > MaxCount {
		return 0, fmt.Errorf("%w: negative %s count", ErrCorrupt, what)
	}
	return int(v), nil
}

func (d *decoder) readBool() (bool, error) {
	if err := d.full(d.buf[:1]); err != nil {
		return false, err
	}
	switch d.buf[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: invalid presence flag %#x", ErrCorrupt, d.buf[0])
	}
}

func (d *decoder) readString() (string, error) {
	if err := d.full(d.buf[:2]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint16(d.buf[:2])
	if n == 0 {
		return "", nil
	}
	b := make([]byte, n)
	if err := d.full(b); err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *decoder) readNullString() (NullString, error) {
	ok, err := d.readBool()
	if err != nil || !ok {
		return NullString{}, err
	}
	s, err := d.readString()
	if err != nil {
		return NullString{}, err
	}
	return Some(s), nil
}

func (d *decoder) readStrings(what string) ([]string, error) {
	n, err := d.readCount(what)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, min(n, preallocLimit))
	for range n {
		s, err := d.readString()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Decode reads one index stream from r.
//
// The magic number and version are validated before anything else is
// read; on any error no partial File is returned. Bytes following the
// resource table are left unread.
func Decode(r io.Reader) (*File, error) {
	d := &decoder{r: r}

	magic, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, fmt.Errorf("%w: %#08x", ErrBadMagic, magic)
	}
	version, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, version, Version)
	}

	f := &File{}
	if f.MainClass, err = d.readString(); err != nil {
		return nil, err
	}
	if f.Entries, err = d.entries(); err != nil {
		return nil, err
	}
	if f.ParentFirst, err = d.readStrings("package"); err != nil {
		return nil, err
	}
	if f.NonExistent, err = d.readStrings("non-existent resource"); err != nil {
		return nil, err
	}
	if f.Resources, err = d.resources(len(f.Entries)); err != nil {
		return nil, err
	}
	return f, nil
}

func (d *decoder) entries() ([]EntryRecord, error) {
	n, err := d.readCount("entry")
	if err != nil {
		return nil, err
	}
	entries := make([]EntryRecord, 0, min(n, preallocLimit))
	for range n {
		var rec EntryRecord
		if rec.Path, err = d.readString(); err != nil {
			return nil, err
		}
		hasManifest, err := d.readBool()
		if err != nil {
			return nil, err
		}
		if hasManifest {
			m := &Manifest{}
			for _, field := range m.fields() {
				if *field, err = d.readNullString(); err != nil {
					return nil, err
				}
			}
			rec.Manifest = m
		}
		if rec.Dirs, err = d.readStrings("directory"); err != nil {
			return nil, err
		}
		entries = append(entries, rec)
	}
	return entries, nil
}

func (d *decoder) resources(numEntries int) ([]ResourceRecord, error) {
	n, err := d.readCount("resource")
	if err != nil {
		return nil, err
	}
	resources := make([]ResourceRecord, 0, min(n, preallocLimit))
	for range n {
		var res ResourceRecord
		if res.Name, err = d.readString(); err != nil {
			return nil, err
		}
		np, err := d.readCount("position")
		if err != nil {
			return nil, err
		}
		res.Positions = make([]int, 0, min(np, preallocLimit))
		for range np {
			v, err := d.readUint32()
			if err != nil {
				return nil, err
			}
			if int64(v) >= int64(numEntries) {
				return nil, fmt.Errorf("%w: resource %q references position %d of %d entries",
					ErrCorrupt, res.Name, v, numEntries)
			}
			res.Positions = append(res.Positions, int(v))
		}
		resources = append(resources, res)
	}
	return resources, nil
}
