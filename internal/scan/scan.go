// Package scan walks archive packages and directory trees to collect the
// directory and resource listings stored in a search-path index.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/meigma/pathindex/internal/archive"
	"github.com/meigma/pathindex/internal/index"
	"github.com/meigma/pathindex/internal/pathutil"
)

// VersionsPrefix holds version-specific overlays of archive entries.
const VersionsPrefix = "META-INF/versions/"

// fullyIndexedRoots lists the directories whose direct children are indexed
// by exact resource name. "" is the archive root.
var fullyIndexedRoots = [...]string{"", "META-INF/services"}

// IsFullyIndexed reports whether dir is a fully indexed directory.
func IsFullyIndexed(dir string) bool {
	return slices.Contains(fullyIndexedRoots[:], dir)
}

// Result is the outcome of scanning one archive.
type Result struct {
	// Dirs lists, sorted, every directory holding at least one file entry.
	// The root is reported as "".
	Dirs []string

	// Resources maps each fully indexed directory to the names of the
	// files directly under it, in archive order. Directories without such
	// files are omitted.
	Resources map[string][]string

	// Manifest is nil when the archive has no metadata record.
	Manifest *index.Manifest
}

// Indexed returns every fully indexed resource name, grouped by directory in
// the fixed root order.
func (r *Result) Indexed() []string {
	var out []string
	for _, root := range fullyIndexedRoots {
		out = append(out, r.Resources[root]...)
	}
	return out
}

// Archive scans every entry of a once.
//
// Directory membership is derived from file entry names only, since archives
// do not reliably carry directory markers. Entries under VersionsPrefix also
// contribute the directory of their path inside the overlay.
func Archive(a archive.Archive) (*Result, error) {
	m, err := archive.ReadManifest(a)
	if err != nil {
		return nil, err
	}

	dirs := make(map[string]struct{})
	resources := make(map[string][]string)
	hasRoot := false

	for _, name := range a.Names() {
		slash := strings.LastIndexByte(name, '/')
		if slash < 0 {
			hasRoot = true
			if name != "" && IsFullyIndexed("") {
				resources[""] = append(resources[""], name)
			}
			continue
		}
		if pathutil.IsDirMarker(name) {
			continue
		}

		dir := name[:slash]
		dirs[dir] = struct{}{}

		if inner, ok := strings.CutPrefix(name, VersionsPrefix); ok {
			if d, ok := overlayDir(inner); ok {
				dirs[d] = struct{}{}
			}
		}

		if dir != "" && IsFullyIndexed(dir) {
			resources[dir] = append(resources[dir], name)
		}
	}
	if hasRoot {
		dirs[""] = struct{}{}
	}

	return &Result{
		Dirs:      sortedKeys(dirs),
		Resources: resources,
		Manifest:  m,
	}, nil
}

// overlayDir returns the directory of an overlay entry relative to its
// version segment, e.g. "11/com/a/Y.class" yields "com/a".
func overlayDir(part string) (string, bool) {
	first := strings.IndexByte(part, '/')
	if first < 0 {
		return "", false
	}
	last := strings.LastIndexByte(part, '/')
	if last == first {
		return "", false
	}
	return part[first+1 : last], true
}

// ArchiveFile opens the zip archive at path and scans it.
func ArchiveFile(path string) (*Result, error) {
	z, err := archive.OpenZip(path)
	if err != nil {
		return nil, err
	}
	defer z.Close()

	res, err := Archive(z)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return res, nil
}

// Packages collects the directories of a search-path entry, sorted and
// slash-separated.
//
// For a directory tree every directory visited is reported, including the
// tree's own root as "", whether or not it holds files directly. For an
// archive the directories are derived from file entry names, excluding the
// root.
func Packages(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return treePackages(path)
	}

	z, err := archive.OpenZip(path)
	if err != nil {
		return nil, err
	}
	defer z.Close()

	dirs := make(map[string]struct{})
	for _, name := range z.Names() {
		if pathutil.IsDirMarker(name) {
			continue
		}
		if i := strings.LastIndexByte(name, '/'); i > 0 {
			dirs[name[:i]] = struct{}{}
		}
	}
	return sortedKeys(dirs), nil
}

func treePackages(dir string) ([]string, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	var dirs []string
	err = fs.WalkDir(root.FS(), ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		if path == "." {
			path = ""
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	slices.Sort(dirs)
	return dirs, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
