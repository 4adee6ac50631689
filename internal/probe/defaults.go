package probe

import (
	"stackval/internal/config"
)

// DefaultSet is the built-in validation matrix for the stack. Declaration
// order is report order.
func DefaultSet() []Probe {
	return []Probe{
		// The rendered spec must never fall back to the images' stock
		// credentials; that path would validate an unset-password setup.
		{
			Name:        "db-password-not-image-default",
			Category:    CategoryConfigShape,
			Fragment:    "POSTGRES_PASSWORD: postgres",
			WantPresent: false,
		},
		{
			Name:               "backend-declares-healthcheck",
			Category:           CategoryConfigShape,
			RequireHealthcheck: "backend",
		},
		{
			Name:        "debug-enabled-locally",
			Category:    CategoryConfigShape,
			AppliesTo:   []config.EnvironmentClass{config.EnvLocal},
			Fragment:    `DEBUG: "true"`,
			WantPresent: true,
		},
		{
			Name:        "debug-disabled-when-deployed",
			Category:    CategoryConfigShape,
			AppliesTo:   []config.EnvironmentClass{config.EnvStaging, config.EnvProduction},
			Fragment:    `DEBUG: "true"`,
			WantPresent: false,
		},
		{
			Name:             "backend-api-responds",
			Category:         CategoryConnectivity,
			PortKey:          "BACKEND_PORT",
			Path:             "/api/health",
			WantBodyContains: "ok",
		},
		{
			Name:             "frontend-serves-assets",
			Category:         CategoryConnectivity,
			PortKey:          "FRONTEND_PORT",
			Path:             "/",
			WantBodyContains: "<html",
		},
		{
			Name:     "proxy-routes-http",
			Category: CategoryConnectivity,
			PortKey:  "PROXY_HTTP_PORT",
			Path:     "/",
		},
		// Databases are developer-reachable locally but must stay inside
		// the isolated network in deployed environments.
		{
			Name:     "db-port-exposure",
			Category: CategoryExposure,
			PortKey:  "DB_PORT",
			ExpectReachable: map[config.EnvironmentClass]bool{
				config.EnvLocal:      true,
				config.EnvStaging:    false,
				config.EnvProduction: false,
			},
		},
		{
			Name:     "cache-port-exposure",
			Category: CategoryExposure,
			PortKey:  "CACHE_PORT",
			ExpectReachable: map[config.EnvironmentClass]bool{
				config.EnvLocal:      true,
				config.EnvStaging:    false,
				config.EnvProduction: false,
			},
		},
	}
}
