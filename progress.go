package pathindex

// ProgressEvent represents a progress update during an index build.
type ProgressEvent struct {
	// Stage identifies the current phase of the build.
	Stage ProgressStage

	// Path is the search-path entry currently being processed, if applicable.
	Path string

	// Done is the number of entries completed in the current stage.
	Done int

	// Total is the number of entries in the current stage.
	Total int
}

// ProgressStage identifies the current phase of a build.
type ProgressStage uint8

// Progress stages of a build.
const (
	// StageScanning indicates search-path archives are being scanned.
	StageScanning ProgressStage = iota

	// StageCollecting indicates parent-first entries are being walked for packages.
	StageCollecting

	// StageAggregating indicates per-archive results are being merged in position order.
	StageAggregating
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageScanning:
		return "scanning"
	case StageCollecting:
		return "collecting"
	case StageAggregating:
		return "aggregating"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during a build.
// Implementations must be safe for concurrent calls.
type ProgressFunc func(ProgressEvent)
