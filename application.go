package pathindex

import (
	"errors"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/pathindex/internal/archive"
	"github.com/meigma/pathindex/internal/index"
	"github.com/meigma/pathindex/internal/pathutil"
	"github.com/meigma/pathindex/internal/scan"
)

// Entry is one archive on a loaded search path.
type Entry struct {
	position int
	path     string
	location string
	manifest *Manifest

	openOnce sync.Once
	zip      *archive.Zip
	openErr  error
}

// Position returns the entry's index on the search path. Lower positions
// take priority.
func (e *Entry) Position() int { return e.position }

// Path returns the entry's slash-separated path relative to the application root.
func (e *Entry) Path() string { return e.path }

// Location returns the entry's path resolved against the application root.
func (e *Entry) Location() string { return e.location }

// Manifest returns the archive's identity attributes, or nil when the
// archive has no metadata record. The result must be treated as immutable.
func (e *Entry) Manifest() *Manifest { return e.manifest }

// archive opens the entry's archive on first use.
func (e *Entry) archive() (*archive.Zip, error) {
	e.openOnce.Do(func() {
		e.zip, e.openErr = archive.OpenZip(e.location)
	})
	return e.zip, e.openErr
}

// close releases the archive, if opened, and prevents later opens.
func (e *Entry) close() error {
	e.openOnce.Do(func() { e.openErr = ErrClosed })
	if e.zip != nil {
		return e.zip.Close()
	}
	return nil
}

// Application is the resolution structure loaded from an index.
//
// Lookups never lock or mutate state and are safe for unsynchronized
// concurrent use. Slices returned by lookups are shared and must not be
// modified.
type Application struct {
	mainClass        string
	entries          []*Entry
	dirs             map[string][]*Entry
	resources        map[string][]*Entry
	overridePackages map[string]struct{}
	absent           map[string]struct{}
	digest           digest.Digest
	closed           atomic.Bool
	logger           *slog.Logger
}

// newApplication assembles the lookup maps of a decoded index. Positions in
// f have been range checked by the decoder.
func newApplication(f *index.File, appRoot string, dgst digest.Digest, logger *slog.Logger) *Application {
	app := &Application{
		mainClass:        f.MainClass,
		entries:          make([]*Entry, len(f.Entries)),
		dirs:             make(map[string][]*Entry),
		resources:        make(map[string][]*Entry, len(f.Resources)),
		overridePackages: make(map[string]struct{}, len(f.ParentFirst)),
		absent:           make(map[string]struct{}, len(f.NonExistent)),
		digest:           dgst,
		logger:           logger,
	}

	for pos, rec := range f.Entries {
		e := &Entry{
			position: pos,
			path:     rec.Path,
			location: filepath.Join(appRoot, filepath.FromSlash(rec.Path)),
			manifest: rec.Manifest,
		}
		app.entries[pos] = e
		for _, dir := range rec.Dirs {
			list := app.dirs[dir]
			if len(list) > 0 && list[len(list)-1] == e {
				continue
			}
			app.dirs[dir] = append(list, e)
		}
	}
	for _, res := range f.Resources {
		list := make([]*Entry, len(res.Positions))
		for i, pos := range res.Positions {
			list[i] = app.entries[pos]
		}
		app.resources[res.Name] = list
	}
	for _, pkg := range f.ParentFirst {
		app.overridePackages[pkg] = struct{}{}
	}
	for _, name := range f.NonExistent {
		app.absent[name] = struct{}{}
	}
	return app
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Application) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// MainClass returns the application's entry point.
func (a *Application) MainClass() string { return a.mainClass }

// Digest returns the sha256 digest of the index stream the Application was read from.
func (a *Application) Digest() digest.Digest { return a.digest }

// Entries returns the search path in position order.
func (a *Application) Entries() []*Entry { return a.entries }

// Entry returns the entry at position pos.
func (a *Application) Entry(pos int) (*Entry, bool) {
	if pos < 0 || pos >= len(a.entries) {
		return nil, false
	}
	return a.entries[pos], true
}

// Directory returns, in priority order, the entries holding at least one
// resource in dir. The root directory is "".
func (a *Application) Directory(dir string) []*Entry {
	return a.dirs[pathutil.Normalize(dir)]
}

// Resource returns, in priority order, the entries that may hold name.
//
// For resources directly under a fully indexed directory the result is
// exact: only entries holding name are returned. Otherwise it is every
// entry populating the resource's directory.
func (a *Application) Resource(name string) []*Entry {
	name = pathutil.Normalize(name)
	dir := pathutil.Dir(name)
	if scan.IsFullyIndexed(dir) {
		return a.resources[name]
	}
	return a.dirs[dir]
}

// IsOverridePackage reports whether the dotted package pkg is resolved
// parent-first.
func (a *Application) IsOverridePackage(pkg string) bool {
	_, ok := a.overridePackages[pkg]
	return ok
}

// IsOverrideClass reports whether the package of the dotted class name is
// resolved parent-first.
func (a *Application) IsOverrideClass(className string) bool {
	return a.IsOverridePackage(pathutil.ClassPackage(className))
}

// IsKnownAbsent reports whether name was recorded at build time as absent
// from the whole search path. A false result says nothing about names that
// were never recorded.
func (a *Application) IsKnownAbsent(name string) bool {
	_, ok := a.absent[name]
	return ok
}

// Directories returns every indexed directory, sorted.
func (a *Application) Directories() []string {
	return slices.Sorted(maps.Keys(a.dirs))
}

// Resources returns every directly indexed resource name, sorted.
func (a *Application) Resources() []string {
	return slices.Sorted(maps.Keys(a.resources))
}

// OverridePackages returns the parent-first packages, sorted.
func (a *Application) OverridePackages() []string {
	return slices.Sorted(maps.Keys(a.overridePackages))
}

// KnownAbsent returns the resource names recorded as absent, sorted.
func (a *Application) KnownAbsent() []string {
	return slices.Sorted(maps.Keys(a.absent))
}

// Close releases every archive opened by OpenResource or ReadResource.
// Close must not be called concurrently with them.
func (a *Application) Close() error {
	if a.closed.Swap(true) {
		return nil
	}
	var errs []error
	for _, e := range a.entries {
		if err := e.close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
