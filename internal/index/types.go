package index

const (
	// Magic is the first field of every index stream.
	Magic uint32 = 0xF0315432

	// Version is the only format version this package reads and writes.
	Version uint32 = 1

	// MaxStringLen is the largest encodable string, in bytes.
	MaxStringLen = 1<<16 - 1

	// MaxCount is the largest encodable collection length.
	MaxCount = 1<<31 - 1
)

// NullString is an optional string. Valid is false when the value is absent,
// which is distinct from a present empty string.
type NullString struct {
	String string
	Valid  bool
}

// Some returns a present NullString holding s.
func Some(s string) NullString {
	return NullString{String: s, Valid: true}
}

// Manifest holds the identity attributes of an archive's metadata record.
// Each attribute is independently optional.
type Manifest struct {
	SpecificationTitle    NullString
	SpecificationVersion  NullString
	SpecificationVendor   NullString
	ImplementationTitle   NullString
	ImplementationVersion NullString
	ImplementationVendor  NullString
}

// fields returns the attributes in wire order.
func (m *Manifest) fields() [6]*NullString {
	return [6]*NullString{
		&m.SpecificationTitle,
		&m.SpecificationVersion,
		&m.SpecificationVendor,
		&m.ImplementationTitle,
		&m.ImplementationVersion,
		&m.ImplementationVendor,
	}
}

// EntryRecord is one search-path entry as stored in the stream.
// Its position is its index in File.Entries.
type EntryRecord struct {
	// Path is relative to the application root and slash-separated.
	Path string

	// Manifest is nil when the archive has no metadata record.
	Manifest *Manifest

	// Dirs lists every directory holding at least one entry of the archive.
	Dirs []string
}

// ResourceRecord maps a directly-indexed resource name to the positions of
// the entries containing it.
type ResourceRecord struct {
	Name      string
	Positions []int
}

// File is the decoded form of an index stream.
type File struct {
	MainClass   string
	Entries     []EntryRecord
	ParentFirst []string
	NonExistent []string
	Resources   []ResourceRecord
}
