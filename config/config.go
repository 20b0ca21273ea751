// Package config loads the TOML configuration, writing defaults on first run.
package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultStateFileName  = "state.json"
	appDirName            = "tasktrack"
)

type Config struct {
	StatePath          string `toml:"state_path"`
	SoonHorizonHours   int    `toml:"soon_horizon_hours"`
	RecentHorizonHours int    `toml:"recent_horizon_hours"`
	UndoSeconds        int    `toml:"undo_seconds"`
}

// ResolveConfigPath returns the per-user config file location, falling back
// to the working directory when no user config dir is available.
func ResolveConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(base, appDirName, DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, creating it with defaults when it
// does not exist. Missing fields fall back to their defaults.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig(filepath.Dir(path))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.StatePath == "" {
		cfg.StatePath = filepath.Join(filepath.Dir(path), DefaultStateFileName)
	}
	if cfg.SoonHorizonHours < 1 {
		cfg.SoonHorizonHours = 48
	}
	if cfg.RecentHorizonHours < 1 {
		cfg.RecentHorizonHours = 24
	}
	if cfg.UndoSeconds < 1 {
		cfg.UndoSeconds = 7
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig(dir string) Config {
	return Config{
		StatePath:          filepath.Join(dir, DefaultStateFileName),
		SoonHorizonHours:   48,
		RecentHorizonHours: 24,
		UndoSeconds:        7,
	}
}
