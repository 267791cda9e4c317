// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Server    ServerConfig    `toml:"server"`
	Dashboard DashboardConfig `toml:"dashboard"`
}

// ServerConfig maps analysis-service settings.
type ServerConfig struct {
	URL *string `toml:"url"`
}

// DashboardConfig maps dashboard defaults.
type DashboardConfig struct {
	Limit            *int     `toml:"limit"`
	PearsonThreshold *float64 `toml:"pearson-threshold"`
	CramerVThreshold *float64 `toml:"cramer-v-threshold"`
	EtaThreshold     *float64 `toml:"eta-threshold"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
