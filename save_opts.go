package pathindex

// saveConfig holds configuration for SaveFile.
type saveConfig struct {
	compression Compression
}

// SaveOption configures SaveFile.
type SaveOption func(*saveConfig)

// SaveWithCompression wraps the saved index in a compression frame.
// OpenFile detects the frame automatically.
func SaveWithCompression(c Compression) SaveOption {
	return func(cfg *saveConfig) {
		cfg.compression = c
	}
}
