package server

import "go.uber.org/zap"

// Config defines the config for the HTTP server.
type Config struct {
	Logger *zap.SugaredLogger
	// MaxUploadBytes bounds the size of an uploaded route-sheet PDF.
	MaxUploadBytes int64
}

// ConfigDefault is the default config
var ConfigDefault = Config{
	MaxUploadBytes: 100 << 20,
}

// Helper function to set default values
func configDefault(config ...Config) Config {
	// Return default config if nothing provided
	if len(config) < 1 {
		return ConfigDefault
	}

	// Override default config
	cfg := config[0]

	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = ConfigDefault.MaxUploadBytes
	}

	return cfg
}
