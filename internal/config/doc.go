// Package config provides configuration management for stackval.
//
// Configuration is layered: built-in defaults describe the validated service
// graph and per-environment health poll budgets, and an optional
// stackval.yaml in the working directory overlays them. Later layers win.
//
// # Configuration Structure
//
// The project file uses YAML with the following sections:
//
//	composeFile: docker-compose.yaml
//	projectBase: stackval
//	services:
//	  - name: db
//	    health: compose       # trust the compose-reported health status
//	  - name: proxy
//	    health: running       # no declared healthcheck; running is enough
//	    dependsOn: [backend]
//	budgets:
//	  local:      {attempts: 30, interval: 2s}
//	  staging:    {attempts: 60, interval: 5s}
//	  production: {attempts: 60, interval: 5s}
//	probeTimeout: 10s
//
// Environment profiles (ports, credentials, feature flags) are not part of
// this package; they are generated per run by internal/profile and never
// persisted.
package config
