package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ShooterFile is the config file name looked up in every config directory.
const ShooterFile = "shooter.yaml"

// LoadShooter loads the shooter configuration.
// Search order: customPath -> ~/.stackfall/configs/shooter.yaml -> ./configs/shooter.yaml -> embedded default
// Keys missing from a file keep their default values. The result is sanitized.
func LoadShooter(customPath string) (ShooterConfig, error) {
	cfg, _, err := LoadShooterFrom(customPath)
	return cfg, err
}

// LoadShooterFrom is LoadShooter that also reports where the config came
// from: a file path, or "embedded".
func LoadShooterFrom(customPath string) (ShooterConfig, string, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return ShooterConfig{}, "", fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := ParseShooter(data)
		if err != nil {
			return ShooterConfig{}, "", fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, customPath, nil
	}

	// Try user config directory, then the local configs directory
	for _, path := range []string{userConfigPath(ShooterFile), filepath.Join("configs", ShooterFile)} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if cfg, err := ParseShooter(data); err == nil {
			return cfg, path, nil
		}
	}

	// Use embedded default YAML
	cfg, err := ParseShooter(defaultShooterYAML)
	if err != nil {
		cfg = DefaultShooterConfig() // Fallback to hardcoded if embed fails
		cfg.Sanitize()
	}
	return cfg, "embedded", nil
}

// ParseShooter decodes YAML over the default configuration and sanitizes it.
func ParseShooter(data []byte) (ShooterConfig, error) {
	cfg := DefaultShooterConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ShooterConfig{}, err
	}
	cfg.Sanitize()
	return cfg, nil
}

// MarshalShooter encodes a configuration as YAML.
func MarshalShooter(cfg ShooterConfig) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	dir := UserDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "configs", filename)
}

// UserDir returns ~/.stackfall, or empty if home is unavailable.
func UserDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".stackfall")
}
