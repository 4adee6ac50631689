package profile

import (
	"fmt"
	"os"
	"strings"

	"stackval/pkg/logging"
)

// Materialize writes the profile to an env file the compose runtime can
// consume and returns its path plus a cleanup func. The cleanup must run on
// every exit path of the environment pass; it tolerates being called more
// than once and the file already being gone.
func (p Profile) Materialize(dir string) (string, func(), error) {
	f, err := os.CreateTemp(dir, fmt.Sprintf("stackval-%s-*.env", p.Class))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create env file for %s: %w", p.Class, err)
	}

	var b strings.Builder
	for _, key := range p.Keys() {
		fmt.Fprintf(&b, "%s=%s\n", key, p.Values[key])
	}

	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("failed to write env file for %s: %w", p.Class, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("failed to close env file for %s: %w", p.Class, err)
	}

	path := f.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logging.Warn("Profile", "Failed to remove env file %s: %v", path, err)
		}
	}
	return path, cleanup, nil
}
