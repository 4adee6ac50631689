package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentClass identifies one of the supported deployment profile shapes.
type EnvironmentClass string

const (
	EnvLocal      EnvironmentClass = "local"
	EnvStaging    EnvironmentClass = "staging"
	EnvProduction EnvironmentClass = "production"
)

// AllClasses returns the supported environment classes in validation order.
func AllClasses() []EnvironmentClass {
	return []EnvironmentClass{EnvLocal, EnvStaging, EnvProduction}
}

// Valid reports whether the class is one of the supported environment classes.
func (c EnvironmentClass) Valid() bool {
	switch c {
	case EnvLocal, EnvStaging, EnvProduction:
		return true
	}
	return false
}

// ParseSelector maps the command-line environment selector to the list of
// classes to validate. An empty or "all" selector selects every class in
// order. ok is false for anything else.
func ParseSelector(selector string) (classes []EnvironmentClass, ok bool) {
	switch selector {
	case "", "all":
		return AllClasses(), true
	}
	c := EnvironmentClass(selector)
	if c.Valid() {
		return []EnvironmentClass{c}, true
	}
	return nil, false
}

// HealthContract defines how "healthy" is determined for a service from the
// outside.
type HealthContract string

const (
	// HealthContractCompose trusts the health status the compose runtime
	// reports for the service (the service declares its own healthcheck).
	HealthContractCompose HealthContract = "compose"
	// HealthContractRunning falls back to "container is running" for
	// services without a declared healthcheck.
	HealthContractRunning HealthContract = "running"
)

// ServiceSpec describes one service in the validated stack.
type ServiceSpec struct {
	Name   string         `yaml:"name"`
	Health HealthContract `yaml:"health,omitempty"`
	// DependsOn is informational; start ordering is enforced by the
	// compose runtime, not by this tool.
	DependsOn []string `yaml:"dependsOn,omitempty"`
}

// PollBudget bounds the health poller for one environment class.
type PollBudget struct {
	Attempts int           `yaml:"attempts,omitempty"`
	Interval time.Duration `yaml:"interval,omitempty"`
}

// UnmarshalYAML accepts the interval as a duration string ("5s", "1m30s");
// yaml.v3 has no native time.Duration support.
func (b *PollBudget) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Attempts int    `yaml:"attempts"`
		Interval string `yaml:"interval"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	b.Attempts = raw.Attempts
	if raw.Interval != "" {
		d, err := time.ParseDuration(raw.Interval)
		if err != nil {
			return fmt.Errorf("invalid poll interval %q: %w", raw.Interval, err)
		}
		b.Interval = d
	}
	return nil
}

// Config is the top-level configuration for a validation session.
type Config struct {
	// ComposeFile is the declarative service-graph file handed to the
	// compose runtime.
	ComposeFile string `yaml:"composeFile,omitempty"`
	// ProjectBase is the prefix for per-run isolated project names.
	ProjectBase string `yaml:"projectBase,omitempty"`

	Services []ServiceSpec `yaml:"services,omitempty"`

	// Budgets holds per-class health poll budgets; staging and production
	// intentionally get longer warm-up windows than local.
	Budgets map[EnvironmentClass]PollBudget `yaml:"budgets,omitempty"`

	// ProbeTimeout is the per-probe completion ceiling.
	ProbeTimeout time.Duration `yaml:"probeTimeout,omitempty"`
}

// UnmarshalYAML accepts probeTimeout as a duration string, see
// PollBudget.UnmarshalYAML.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		ComposeFile  string                          `yaml:"composeFile"`
		ProjectBase  string                          `yaml:"projectBase"`
		Services     []ServiceSpec                   `yaml:"services"`
		Budgets      map[EnvironmentClass]PollBudget `yaml:"budgets"`
		ProbeTimeout string                          `yaml:"probeTimeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	c.ComposeFile = raw.ComposeFile
	c.ProjectBase = raw.ProjectBase
	c.Services = raw.Services
	c.Budgets = raw.Budgets
	if raw.ProbeTimeout != "" {
		d, err := time.ParseDuration(raw.ProbeTimeout)
		if err != nil {
			return fmt.Errorf("invalid probe timeout %q: %w", raw.ProbeTimeout, err)
		}
		c.ProbeTimeout = d
	}
	return nil
}

// BudgetFor returns the poll budget for the given class, falling back to the
// local budget if the class has none configured.
func (c Config) BudgetFor(class EnvironmentClass) PollBudget {
	if b, ok := c.Budgets[class]; ok && b.Attempts > 0 {
		return b
	}
	return c.Budgets[EnvLocal]
}

// ServiceNames returns the declared service names in dependency order.
func (c Config) ServiceNames() []string {
	names := make([]string, 0, len(c.Services))
	for _, s := range c.Services {
		names = append(names, s.Name)
	}
	return names
}
