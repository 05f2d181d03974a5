package pathindex

import "log/slog"

// buildConfig holds configuration for index builds.
type buildConfig struct {
	parentFirst []string
	nonExistent []string
	workers     int
	logger      *slog.Logger
	progress    ProgressFunc
}

// BuildOption configures Build and Write.
type BuildOption func(*buildConfig)

// BuildWithParentFirst adds search-path entries whose packages must be
// resolved by the parent layer first. Entries may be archives or directory
// trees and need not be on the search path itself.
func BuildWithParentFirst(paths ...string) BuildOption {
	return func(cfg *buildConfig) {
		cfg.parentFirst = append(cfg.parentFirst, paths...)
	}
}

// BuildWithNonExistentResources adds resource names known not to exist
// anywhere on the search path. They are stored unchanged and in order.
func BuildWithNonExistentResources(names ...string) BuildOption {
	return func(cfg *buildConfig) {
		cfg.nonExistent = append(cfg.nonExistent, names...)
	}
}

// BuildWithWorkers sets the number of archives scanned concurrently.
// Zero uses GOMAXPROCS. Negative values force serial scanning.
// The resulting index does not depend on this setting.
func BuildWithWorkers(n int) BuildOption {
	return func(cfg *buildConfig) {
		cfg.workers = n
	}
}

// BuildWithLogger sets the logger for build operations.
// If not set, logging is disabled.
func BuildWithLogger(logger *slog.Logger) BuildOption {
	return func(cfg *buildConfig) {
		cfg.logger = logger
	}
}

// BuildWithProgress sets a callback receiving build progress.
func BuildWithProgress(fn ProgressFunc) BuildOption {
	return func(cfg *buildConfig) {
		cfg.progress = fn
	}
}
