package config

import (
	"time"
)

// GetDefaultConfig returns the built-in validation configuration: the
// service graph of the validated stack and per-class health poll budgets.
// Everything here can be overridden from the project config file.
func GetDefaultConfig() Config {
	return Config{
		ComposeFile: "docker-compose.yaml",
		ProjectBase: "stackval",
		Services: []ServiceSpec{
			{Name: "db", Health: HealthContractCompose},
			{Name: "cache", Health: HealthContractCompose},
			{Name: "backend", Health: HealthContractCompose, DependsOn: []string{"db", "cache"}},
			{Name: "frontend", Health: HealthContractRunning, DependsOn: []string{"backend"}},
			{Name: "proxy", Health: HealthContractRunning, DependsOn: []string{"backend", "frontend"}},
		},
		Budgets: map[EnvironmentClass]PollBudget{
			// Local images are warm; staging and production mimic real
			// cold starts and need a longer window.
			EnvLocal:      {Attempts: 30, Interval: 2 * time.Second},
			EnvStaging:    {Attempts: 60, Interval: 5 * time.Second},
			EnvProduction: {Attempts: 60, Interval: 5 * time.Second},
		},
		ProbeTimeout: 10 * time.Second,
	}
}
