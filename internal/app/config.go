package app

import "errors"

// Config holds everything an App instance needs to run.
type Config struct {
	ManifestPath string // .hcl target manifests, file or directory
	DerivedRoot  string // root for derived outputs (archives, module maps)
	SDKRoot      string // platform SDK root for system include remapping

	LogFormat   string
	LogLevel    string
	WorkerCount int
}

// NewConfig validates a Config and applies defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ManifestPath == "" {
		return nil, errors.New("ManifestPath is a required configuration field and cannot be empty")
	}
	if cfg.DerivedRoot == "" {
		cfg.DerivedRoot = "out"
	}
	if cfg.SDKRoot == "" {
		cfg.SDKRoot = "/"
	}
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	return &cfg, nil
}
