package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// FileName is the config file name searched for in standard locations.
const FileName = "meshveil.yaml"

// Load loads configuration with priority: defaults < file < flags.
// An empty path searches the standard locations.
func Load(path string, flags Flags) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	flags.apply(cfg)

	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		filepath.Join(".", FileName),
		filepath.Join(ConfigDir(), FileName),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "meshveil")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "meshveil")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "meshveil")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "meshveil")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
// Keys given without target_count set the target count, as the keys flag does.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}

	var present struct {
		Encryption struct {
			TargetCount *int      `yaml:"target_count"`
			Keys        []float32 `yaml:"keys"`
		} `yaml:"encryption"`
	}
	if err := yaml.Unmarshal(data, &present); err != nil {
		return err
	}
	if present.Encryption.TargetCount == nil && len(present.Encryption.Keys) > 0 {
		cfg.Encryption.TargetCount = len(present.Encryption.Keys)
	}
	return nil
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
