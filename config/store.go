package config

import (
	"os"
	"path/filepath"
	"sync"
)

// EnvConfigPath overrides the configuration file location for the whole
// session.
const EnvConfigPath = "HARNESS_CONFIG"

const configFileName = "discovery-harness/config.yaml"

var (
	loadOnce  sync.Once
	loadedCfg Config
	loadErr   error
)

// DefaultPath resolves the configuration file location: the HARNESS_CONFIG
// environment variable when set, the XDG config directory otherwise.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, configFileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return configFileName
	}
	return filepath.Join(home, ".config", configFileName)
}

// Load reads and validates the session configuration exactly once per
// process. Every later call returns the same validated Config (or the same
// ConfigError) without touching the file again.
func Load() (Config, error) {
	loadOnce.Do(func() {
		path := DefaultPath()
		cfg, err := ReadConfig(path)
		if err != nil {
			loadErr = &ConfigError{Path: path, Err: err}
			return
		}
		if err := cfg.Validate(); err != nil {
			loadErr = &ConfigError{Path: path, Err: err}
			return
		}
		loadedCfg = cfg
	})
	return loadedCfg, loadErr
}

func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
