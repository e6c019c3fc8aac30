package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalPath is the project-local config location, relative to the working
// directory.
const LocalPath = "configs/basetetris.yaml"

// Load loads the application configuration and validates it.
// Search order: customPath -> ~/.basetetris/config.yaml -> ./configs/basetetris.yaml -> embedded default
//
// A custom path must exist and parse. The user and local files are skipped
// when missing or malformed. Each file is layered over the defaults, so it
// only needs the keys it changes.
func Load(customPath string) (Config, error) {
	cfg, _, err := LoadWithSource(customPath)
	return cfg, err
}

// LoadWithSource is Load that also reports which file was used, or
// "embedded" for the built-in default.
func LoadWithSource(customPath string) (Config, string, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Config{}, "", fmt.Errorf("config: cannot read %s: %w", customPath, err)
		}
		cfg, err := parse(data)
		if err != nil {
			return Config{}, "", fmt.Errorf("config: cannot parse %s: %w", customPath, err)
		}
		if err := cfg.Validate(); err != nil {
			return Config{}, "", err
		}
		return cfg, customPath, nil
	}

	for _, path := range []string{userConfigPath(), LocalPath} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		cfg, err := parse(data)
		if err != nil {
			continue
		}
		if err := cfg.Validate(); err != nil {
			return Config{}, "", fmt.Errorf("%w (in %s)", err, path)
		}
		return cfg, path, nil
	}

	cfg := embedded()
	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}
	return cfg, "embedded", nil
}

// parse decodes data over the embedded defaults.
func parse(data []byte) (Config, error) {
	cfg := embedded()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func embedded() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return Default() // Fallback to hardcoded if embed fails
	}
	return cfg
}

// userConfigPath returns the path to the user config file, or empty if home
// is unavailable.
func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".basetetris", "config.yaml")
}
