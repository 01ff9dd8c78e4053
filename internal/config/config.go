// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type Config struct {
	Scan struct {
		Workers  int      `json:"workers"`  // digest workers, 0 = NumCPU
		Excludes []string `json:"excludes"` // glob patterns matched against relative paths
	} `json:"scan"`

	Baseline struct {
		Path     string `json:"path"`     // default baseline file
		Compress bool   `json:"compress"` // write zstd-compressed baselines
	} `json:"baseline"`

	History struct {
		Path string `json:"path"` // check-history database directory
	} `json:"history"`

	Hash     string `json:"hash"`      // sha256 (default)
	LogLevel string `json:"log_level"` // debug, info, warn, error
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	var cfg Config
	cfg.Baseline.Path = "baseline.json"
	cfg.Hash = "sha256"
	cfg.LogLevel = "warn"
	return &cfg
}

func getConfigPath() string {
	if p := os.Getenv("VIGIL_CONFIG"); p != "" {
		return p
	}
	return "vigil.json"
}

// Load reads the JSON config at path, falling back to defaults for any
// field left unset. A missing file is tolerated only for the implicit
// default/env lookup; a path the caller named must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = getConfigPath()
	}

	cfg := Default()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("opening config: %w", err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Baseline.Path == "" {
		cfg.Baseline.Path = "baseline.json"
	}
	if cfg.Hash == "" {
		cfg.Hash = "sha256"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}

	return cfg, nil
}
