package config

import (
	"errors"
	"fmt"
	"os"

	"scsm/pkg/logging"

	"gopkg.in/yaml.v3"
)

const subsystem = "Config"

// Load reads config.yaml from paths.ConfigDir. A missing file is not an
// error: the defaults are returned.
func Load(paths Paths) (Config, error) {
	configFilePath := paths.ConfigFile()
	config := Default(paths)

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info(subsystem, "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		return Config{}, NewConfigurationError(configFilePath, "io", err.Error())
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, NewConfigurationError(configFilePath, "parse", err.Error())
	}
	config.Paths = paths

	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration in %s: %w", configFilePath, err)
	}

	logging.Info(subsystem, "Loaded configuration from %s", configFilePath)
	return config, nil
}

// Exists reports whether config.yaml is present.
func Exists(paths Paths) bool {
	_, err := os.Stat(paths.ConfigFile())
	return err == nil
}

// Create writes a default config.yaml and the override descriptor
// directory. An existing file is overwritten.
func Create(paths Paths) (Config, error) {
	config := Default(paths)
	if err := config.Save(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Save writes c to its config file, creating the config directory tree.
func (c Config) Save() error {
	if err := os.MkdirAll(c.Paths.AppsDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", c.Paths.ConfigDir, err)
	}

	data, err := yaml.Marshal(&c)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	// Credentials may be stored here.
	if err := os.WriteFile(c.Paths.ConfigFile(), data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Paths.ConfigFile(), err)
	}

	logging.Info(subsystem, "Wrote configuration to %s", c.Paths.ConfigFile())
	return nil
}
