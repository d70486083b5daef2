package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// NetworkPath is a single .hcl file or a directory of .hcl files
	// describing the process network.
	NetworkPath string
	// Boundary is the active boundary tag for this run.
	Boundary string
	// MaxIterations overrides the network's convergence ceiling when
	// positive.
	MaxIterations int
	// ValidateOnly stops after building and validating the network.
	ValidateOnly bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates and returns an application configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.NetworkPath == "" {
		return nil, errors.New("NetworkPath is a required configuration field and cannot be empty")
	}
	if cfg.MaxIterations < 0 {
		return nil, errors.New("MaxIterations cannot be negative")
	}
	return &cfg, nil
}
