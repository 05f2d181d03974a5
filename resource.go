package pathindex

import (
	"io"
	"io/fs"

	"github.com/meigma/pathindex/internal/pathutil"
)

// OpenResource opens name from the highest-priority entry holding it.
//
// Names recorded as known absent, and names no candidate entry holds, fail
// with an error wrapping fs.ErrNotExist. Candidate archives are opened on
// first use and stay open until Close.
func (a *Application) OpenResource(name string) (io.ReadCloser, *Entry, error) {
	if a.closed.Load() {
		return nil, nil, ErrClosed
	}
	name = pathutil.Normalize(name)
	if a.IsKnownAbsent(name) {
		return nil, nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	for _, e := range a.Resource(name) {
		z, err := e.archive()
		if err != nil {
			return nil, nil, err
		}
		if !z.Has(name) {
			continue
		}
		rc, err := z.Open(name)
		if err != nil {
			return nil, nil, err
		}
		a.log().Debug("resource resolved", "name", name, "position", e.position, "path", e.path)
		return rc, e, nil
	}
	return nil, nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// ReadResource reads name from the highest-priority entry holding it.
func (a *Application) ReadResource(name string) ([]byte, *Entry, error) {
	rc, e, err := a.OpenResource(name)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, nil, err
	}
	return data, e, nil
}
