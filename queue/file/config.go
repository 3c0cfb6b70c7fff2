package file

// Config defines the config for the on-disk task queue.
type Config struct {
	// Workspace is the directory holding queue files.
	Workspace string
	// Name is the queue file base name.
	Name string
	// MaxQuarantine limits how many corrupt queue files are kept aside.
	MaxQuarantine int
}

// ConfigDefault is the default config
var ConfigDefault = Config{
	Workspace:     "/tmp",
	Name:          "pending",
	MaxQuarantine: 3,
}

// Helper function to set default values
func configDefault(config ...Config) Config {
	// Return default config if nothing provided
	if len(config) < 1 {
		return ConfigDefault
	}

	// Override default config
	cfg := config[0]

	if cfg.Workspace == "" {
		cfg.Workspace = ConfigDefault.Workspace
	}

	if cfg.Name == "" {
		cfg.Name = ConfigDefault.Name
	}

	if cfg.MaxQuarantine == 0 {
		cfg.MaxQuarantine = ConfigDefault.MaxQuarantine
	}

	return cfg
}
