package pathindex

import (
	"io"
	"slices"
	"strings"

	"github.com/meigma/pathindex/internal/index"
)

// IndexEntry is one archive on the search path, as recorded by Build.
type IndexEntry struct {
	// Position is the entry's index on the search path and its resolution priority.
	Position int

	// Path is relative to the application root and slash-separated.
	Path string

	// Manifest is nil when the archive has no metadata record.
	Manifest *Manifest

	// Dirs lists, sorted, every directory the archive populates.
	Dirs []string
}

// Index is the build-time form of a search-path index.
//
// All position lists are ascending. An Index is not modified by WriteTo and
// may be written any number of times.
type Index struct {
	// MainClass identifies the application's entry point.
	MainClass string

	// Entries holds the search path; Entries[i].Position == i.
	Entries []IndexEntry

	// Directories maps each populated directory to the positions of the
	// archives populating it.
	Directories map[string][]int

	// Resources maps each resource directly under a fully indexed
	// directory to the positions of the archives holding it.
	Resources map[string][]int

	// OverridePackages lists, sorted, the dotted packages resolved parent-first.
	OverridePackages []string

	// NonExistentResources lists resource names known to be absent, in
	// the order they were supplied.
	NonExistentResources []string
}

// WriteTo writes the index in the binary index format and returns the
// number of bytes written.
//
// Output is deterministic: equal indexes produce identical bytes.
func (idx *Index) WriteTo(w io.Writer) (int64, error) {
	return index.Encode(w, idx.file())
}

// file converts the index to its wire form with a deterministic ordering.
func (idx *Index) file() *index.File {
	f := &index.File{
		MainClass:   idx.MainClass,
		Entries:     make([]index.EntryRecord, len(idx.Entries)),
		ParentFirst: idx.OverridePackages,
		NonExistent: idx.NonExistentResources,
		Resources:   make([]index.ResourceRecord, 0, len(idx.Resources)),
	}
	for i, e := range idx.Entries {
		f.Entries[i] = index.EntryRecord{Path: e.Path, Manifest: e.Manifest, Dirs: e.Dirs}
	}
	for name, pos := range idx.Resources {
		f.Resources = append(f.Resources, index.ResourceRecord{Name: name, Positions: pos})
	}
	slices.SortFunc(f.Resources, func(a, b index.ResourceRecord) int {
		return strings.Compare(a.Name, b.Name)
	})
	return f
}
