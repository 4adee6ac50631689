package probe

import (
	"stackval/internal/config"
)

// Category selects the evaluation policy for a probe.
type Category string

const (
	// CategoryConfigShape asserts the rendered deployment specification
	// contains or omits a fragment. Static, no network access.
	CategoryConfigShape Category = "config-shape"
	// CategoryConnectivity asserts an HTTP request against a declared port
	// succeeds, optionally matching a body marker.
	CategoryConnectivity Category = "connectivity"
	// CategoryExposure asserts a port is or is not reachable from outside
	// the isolated network; the expected polarity depends on the
	// environment class, not the probe name.
	CategoryExposure Category = "exposure"
)

// Probe is one named assertion against a running deployment. The
// environment-specific behavior is carried as data on the declaration so
// adding an environment class never grows conditional branches in the
// runner.
type Probe struct {
	Name     string
	Category Category

	// AppliesTo limits the probe to the listed classes; empty means
	// universal. Exposure probes are instead scoped by ExpectReachable.
	AppliesTo []config.EnvironmentClass

	// Config-shape fields. Fragment is matched textually against the
	// rendered spec; RequireHealthcheck names a service that must declare
	// a healthcheck (structural check).
	Fragment           string
	WantPresent        bool
	RequireHealthcheck string

	// PortKey names the profile key holding the host port, used by
	// connectivity and exposure probes.
	PortKey string

	// Connectivity fields.
	Path             string
	WantBodyContains string

	// ExpectReachable is the exposure probe's expected polarity per class.
	ExpectReachable map[config.EnvironmentClass]bool
}

// AppliesToClass reports whether the probe should run for the given class.
func (p Probe) AppliesToClass(class config.EnvironmentClass) bool {
	if p.Category == CategoryExposure {
		_, ok := p.ExpectReachable[class]
		return ok
	}
	if len(p.AppliesTo) == 0 {
		return true
	}
	for _, c := range p.AppliesTo {
		if c == class {
			return true
		}
	}
	return false
}

// Filter returns the probes applicable to the class, preserving declaration
// order.
func Filter(probes []Probe, class config.EnvironmentClass) []Probe {
	var out []Probe
	for _, p := range probes {
		if p.AppliesToClass(class) {
			out = append(out, p)
		}
	}
	return out
}
