package job

import (
	"time"

	"go.uber.org/zap"
)

// Config defines the config for the background worker.
type Config struct {
	Logger            *zap.SugaredLogger
	PollInterval      time.Duration
	PollLimit         int
	UseMemoryFallback bool
	QueueWorkspace    string
	MaxQuarantine     int
	DeadLetterDir     string
	// Process runs one job; overridable in tests.
	Process func(store *Store, jid string) error
}

// ConfigDefault is the default config
var ConfigDefault = Config{
	PollInterval:      250 * time.Millisecond,
	PollLimit:         1,
	UseMemoryFallback: true,
	MaxQuarantine:     3,
}

// Helper function to set default values
func configDefault(config ...Config) Config {
	// Return default config if nothing provided
	if len(config) < 1 {
		return ConfigDefault
	}

	// Override default config
	cfg := config[0]

	if cfg.PollInterval < 100*time.Millisecond {
		cfg.PollInterval = ConfigDefault.PollInterval
	}

	if cfg.PollLimit == 0 {
		cfg.PollLimit = ConfigDefault.PollLimit
	}

	if cfg.MaxQuarantine == 0 {
		cfg.MaxQuarantine = ConfigDefault.MaxQuarantine
	}

	if cfg.Process == nil {
		cfg.Process = Process
	}

	return cfg
}
