package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osGetwd = os.Getwd

const (
	projectConfigFile = "stackval.yaml"
)

// ErrInvalidConfig marks a present-but-unusable project config file. Callers
// treat it as a missing prerequisite (exit 2), not a validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// LoadConfig loads the validation configuration: built-in defaults overlaid
// with the optional project config file in the working directory. A missing
// project file is fine; a malformed one aborts the session.
func LoadConfig() (Config, error) {
	cfg := GetDefaultConfig()

	path, err := getProjectConfigPath()
	if err != nil {
		// Log this error but don't fail; project config is optional
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return mergeConfigs(cfg, overlay), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd() // Use mockable variable
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigFile), nil
}

// loadConfigFromFile loads a Config overlay from a YAML file.
func loadConfigFromFile(filePath string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mergeConfigs merges 'overlay' config into 'base' config.
func mergeConfigs(base, overlay Config) Config {
	merged := base

	if overlay.ComposeFile != "" {
		merged.ComposeFile = overlay.ComposeFile
	}
	if overlay.ProjectBase != "" {
		merged.ProjectBase = overlay.ProjectBase
	}
	if len(overlay.Services) > 0 {
		merged.Services = overlay.Services
	}
	if len(overlay.Budgets) > 0 {
		if merged.Budgets == nil {
			merged.Budgets = map[EnvironmentClass]PollBudget{}
		}
		for class, budget := range overlay.Budgets {
			merged.Budgets[class] = budget
		}
	}
	if overlay.ProbeTimeout > 0 {
		merged.ProbeTimeout = overlay.ProbeTimeout
	}

	return merged
}
