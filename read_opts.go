package pathindex

import "log/slog"

// readConfig holds configuration for loading an index.
type readConfig struct {
	logger *slog.Logger
}

// ReadOption configures Read and OpenFile.
type ReadOption func(*readConfig)

// ReadWithLogger sets the logger for the loaded Application.
// If not set, logging is disabled.
func ReadWithLogger(logger *slog.Logger) ReadOption {
	return func(cfg *readConfig) {
		cfg.logger = logger
	}
}
