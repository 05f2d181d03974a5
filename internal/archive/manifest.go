package archive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/meigma/pathindex/internal/index"
)

// ManifestName is the conventional location of an archive's metadata record.
const ManifestName = "META-INF/MANIFEST.MF"

// maxManifestSize bounds how much of a metadata record is read.
const maxManifestSize = 1 << 20

// Main-section attribute names, matched case-insensitively.
const (
	attrSpecTitle   = "Specification-Title"
	attrSpecVersion = "Specification-Version"
	attrSpecVendor  = "Specification-Vendor"
	attrImplTitle   = "Implementation-Title"
	attrImplVersion = "Implementation-Version"
	attrImplVendor  = "Implementation-Vendor"
)

// ReadManifest returns the identity attributes of the archive's metadata
// record, or nil when the archive carries none.
func ReadManifest(a Archive) (*index.Manifest, error) {
	name, ok := findManifest(a)
	if !ok {
		return nil, nil
	}
	rc, err := a.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer rc.Close()

	m, err := ParseManifest(io.LimitReader(rc, maxManifestSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return m, nil
}

func findManifest(a Archive) (string, bool) {
	if z, ok := a.(*Zip); ok && z.Has(ManifestName) {
		return ManifestName, true
	}
	for _, name := range a.Names() {
		if strings.EqualFold(name, ManifestName) {
			return name, true
		}
	}
	return "", false
}

// ParseManifest parses the main section of a metadata record.
//
// The main section ends at the first blank line. Lines starting with a
// single space continue the previous value. Malformed header lines are
// skipped. Attributes that are not present stay absent.
func ParseManifest(r io.Reader) (*index.Manifest, error) {
	attrs := make(map[string]string)
	var last string

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxManifestSize)
	sc.Split(scanManifestLines)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			break
		}
		if line[0] == ' ' {
			if last != "" {
				attrs[last] += line[1:]
			}
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok || key == "" {
			last = ""
			continue
		}
		last = strings.ToLower(key)
		attrs[last] = strings.TrimPrefix(value, " ")
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	get := func(name string) index.NullString {
		v, ok := attrs[strings.ToLower(name)]
		if !ok {
			return index.NullString{}
		}
		return index.Some(v)
	}
	return &index.Manifest{
		SpecificationTitle:    get(attrSpecTitle),
		SpecificationVersion:  get(attrSpecVersion),
		SpecificationVendor:   get(attrSpecVendor),
		ImplementationTitle:   get(attrImplTitle),
		ImplementationVersion: get(attrImplVersion),
		ImplementationVendor:  get(attrImplVendor),
	}, nil
}

// scanManifestLines splits on CRLF, LF or a lone CR.
func scanManifestLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, b := range data {
		switch b {
		case '\n':
			return i + 1, data[:i], nil
		case '\r':
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if atEOF {
				return i + 1, data[:i], nil
			}
			// Need one more byte to tell CR from CRLF.
			return 0, nil, nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
