// Package pathutil provides path manipulation for slash-separated archive paths.
package pathutil

import "strings"

// Dir returns the containing directory of a slash-separated entry name.
// Names without a separator live in the archive root, reported as "".
func Dir(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[:i]
	}
	return ""
}

// IsDirMarker reports whether an entry name denotes a directory rather than a file.
func IsDirMarker(name string) bool {
	return strings.HasSuffix(name, "/")
}

// PackageName converts a directory path to a dotted package name.
// Both slash and backslash separators are accepted.
func PackageName(dir string) string {
	return strings.NewReplacer("/", ".", `\`, ".").Replace(dir)
}

// ClassPackage returns the package of a dotted class name, or "" for the
// default package.
func ClassPackage(className string) string {
	if i := strings.LastIndexByte(className, '.'); i >= 0 {
		return className[:i]
	}
	return ""
}

// Normalize converts a user-provided resource or directory name to index form.
//
// It performs the following transformations:
//   - Strips leading slashes: "/com/acme" → "com/acme"
//   - Strips trailing slashes: "com/acme/" → "com/acme"
//   - Collapses consecutive slashes: "com//acme" → "com/acme"
//   - Converts empty string and "/" to the root: ""
//
// Note: "." and ".." elements are preserved; the index never contains them,
// so lookups of such names simply miss.
func Normalize(p string) string {
	p = strings.Trim(p, "/")
	if p == "" || !strings.Contains(p, "//") {
		return p
	}
	parts := strings.Split(p, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" {
			result = append(result, part)
		}
	}
	return strings.Join(result, "/")
}
