package profile

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"stackval/internal/config"
)

// ErrUnknownEnvironment is returned by Generate for a class outside the
// supported set.
var ErrUnknownEnvironment = errors.New("unknown environment class")

// Profile is the fully-populated configuration set for one environment
// class. It exists only for the duration of one validation pass and is never
// persisted beyond the env file the driver materializes (and removes).
type Profile struct {
	Class  config.EnvironmentClass
	Values map[string]string
}

// secretSeed keys the per-class credential derivation. Values only need to
// be stable within one binary and distinct from the collaborator images'
// built-in defaults, not cryptographically secret.
const secretSeed = "stackval-credential-v1"

// Generate deterministically produces the profile for a known environment
// class. All classes produce the same key set with class-specific values;
// key drift between classes is a configuration bug the tests guard against.
func Generate(class config.EnvironmentClass) (Profile, error) {
	if !class.Valid() {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownEnvironment, class)
	}

	values := map[string]string{
		"BACKEND_PORT":         port(class, 8000),
		"FRONTEND_PORT":        port(class, 3000),
		"PROXY_HTTP_PORT":      port(class, 8080),
		"PROXY_HTTPS_PORT":     port(class, 8443),
		"DB_PORT":              port(class, 5432),
		"CACHE_PORT":           port(class, 6379),
		"DB_USER":              fmt.Sprintf("app_%s", class),
		"DB_PASSWORD":          deriveSecret(class, "DB_PASSWORD"),
		"DB_NAME":              fmt.Sprintf("appdb_%s", class),
		"CACHE_PASSWORD":       deriveSecret(class, "CACHE_PASSWORD"),
		"APP_SECRET_KEY":       deriveSecret(class, "APP_SECRET_KEY"),
		"DEBUG":                debugFlag(class),
		"LOG_LEVEL":            logLevel(class),
		"BACKEND_MEMORY_LIMIT": memoryLimit(class, "512m", "1g"),
		"DB_MEMORY_LIMIT":      memoryLimit(class, "256m", "2g"),
	}

	return Profile{Class: class, Values: values}, nil
}

// Keys returns the profile's configuration keys in sorted order.
func (p Profile) Keys() []string {
	keys := make([]string, 0, len(p.Values))
	for k := range p.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value returns the value for key, empty if absent.
func (p Profile) Value(key string) string {
	return p.Values[key]
}

// port gives each class its own host port block so sequential runs that
// overlap during teardown never collide on exposed ports.
func port(class config.EnvironmentClass, base int) string {
	offset := 0
	switch class {
	case config.EnvStaging:
		offset = 10000
	case config.EnvProduction:
		offset = 20000
	}
	return fmt.Sprintf("%d", base+offset)
}

// deriveSecret produces a stable per-class credential. The result is a hex
// string, so it can never equal an image's built-in default such as
// "postgres" or an empty password.
func deriveSecret(class config.EnvironmentClass, key string) string {
	sum := sha256.Sum256([]byte(secretSeed + "/" + string(class) + "/" + key))
	return hex.EncodeToString(sum[:])[:32]
}

func debugFlag(class config.EnvironmentClass) string {
	if class == config.EnvLocal {
		return "true"
	}
	return "false"
}

func logLevel(class config.EnvironmentClass) string {
	switch class {
	case config.EnvLocal:
		return "debug"
	case config.EnvStaging:
		return "info"
	default:
		return "warning"
	}
}

func memoryLimit(class config.EnvironmentClass, local, deployed string) string {
	if class == config.EnvLocal {
		return local
	}
	return deployed
}
