package probe

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"gopkg.in/yaml.v3"

	"stackval/internal/config"
	"stackval/internal/profile"
	"stackval/internal/report"
	"stackval/pkg/logging"
)

// dialTimeout bounds the exposure probe's TCP reachability check. It is
// deliberately short: the services are already healthy by the time probes
// run, so an unanswered dial means the port is not exposed.
const dialTimeout = 2 * time.Second

// Target is everything a probe can be evaluated against: the rendered spec
// for static assertions and the host plus profile for network assertions.
type Target struct {
	Host         string
	RenderedSpec string
	Profile      profile.Profile
}

// Runner executes probes against a healthy deployment.
type Runner struct {
	timeout time.Duration
	client  *retryablehttp.Client
}

// NewRunner creates a Runner with the given per-probe completion ceiling.
func NewRunner(timeout time.Duration) *Runner {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = timeout
	client.Logger = nil
	// Surface the final response instead of a "giving up" error so a 5xx
	// ends up in the probe diagnostic with its status code.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Runner{timeout: timeout, client: client}
}

// Run filters the probe set down to the given class and executes each probe
// independently: a failing probe never aborts the rest, so the report
// reflects the true failure surface. One Result per probe, declaration
// order preserved.
func (r *Runner) Run(ctx context.Context, probes []Probe, class config.EnvironmentClass, target Target) []report.Result {
	applicable := Filter(probes, class)
	results := make([]report.Result, 0, len(applicable))

	for _, p := range applicable {
		probeCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.evaluate(probeCtx, p, class, target)
		cancel()

		result := report.Result{
			Probe:       p.Name,
			Environment: class,
			Passed:      err == nil,
		}
		if err != nil {
			result.Diagnostic = err.Error()
			logging.Warn("Probe", "[%s] %s failed: %v", class, p.Name, err)
		} else {
			logging.Debug("Probe", "[%s] %s passed", class, p.Name)
		}
		results = append(results, result)
	}

	return results
}

func (r *Runner) evaluate(ctx context.Context, p Probe, class config.EnvironmentClass, target Target) error {
	switch p.Category {
	case CategoryConfigShape:
		return evalConfigShape(p, target.RenderedSpec)
	case CategoryConnectivity:
		return r.evalConnectivity(ctx, p, target)
	case CategoryExposure:
		return evalExposure(p, class, target)
	}
	return fmt.Errorf("probe %s has unknown category %q", p.Name, p.Category)
}

// evalConfigShape is pure static evaluation against the rendered spec.
func evalConfigShape(p Probe, spec string) error {
	if p.RequireHealthcheck != "" {
		return specDeclaresHealthcheck(spec, p.RequireHealthcheck)
	}

	present := strings.Contains(spec, p.Fragment)
	if present == p.WantPresent {
		return nil
	}
	if p.WantPresent {
		return fmt.Errorf("rendered spec does not contain %q", p.Fragment)
	}
	return fmt.Errorf("rendered spec contains forbidden fragment %q", p.Fragment)
}

// renderedSpec mirrors just enough of the compose schema for structural
// assertions.
type renderedSpec struct {
	Services map[string]struct {
		Healthcheck map[string]interface{} `yaml:"healthcheck"`
	} `yaml:"services"`
}

func specDeclaresHealthcheck(spec, service string) error {
	var parsed renderedSpec
	if err := yaml.Unmarshal([]byte(spec), &parsed); err != nil {
		return fmt.Errorf("rendered spec is not parseable: %w", err)
	}
	svc, ok := parsed.Services[service]
	if !ok {
		return fmt.Errorf("rendered spec declares no service %q", service)
	}
	if len(svc.Healthcheck) == 0 {
		return fmt.Errorf("service %q declares no healthcheck", service)
	}
	return nil
}

func (r *Runner) evalConnectivity(ctx context.Context, p Probe, target Target) error {
	port := target.Profile.Value(p.PortKey)
	if port == "" {
		return fmt.Errorf("profile has no port under key %s", p.PortKey)
	}

	url := fmt.Sprintf("http://%s%s", net.JoinHostPort(target.Host, port), p.Path)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s returned status %d", url, resp.StatusCode)
	}

	if p.WantBodyContains != "" {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return fmt.Errorf("failed to read response from %s: %w", url, err)
		}
		if !strings.Contains(string(body), p.WantBodyContains) {
			return fmt.Errorf("response from %s does not contain %q", url, p.WantBodyContains)
		}
	}

	return nil
}

// evalExposure checks TCP reachability; the expected polarity comes off the
// probe declaration for the class under test.
func evalExposure(p Probe, class config.EnvironmentClass, target Target) error {
	port := target.Profile.Value(p.PortKey)
	if port == "" {
		return fmt.Errorf("profile has no port under key %s", p.PortKey)
	}

	address := net.JoinHostPort(target.Host, port)
	conn, err := net.DialTimeout("tcp", address, dialTimeout)
	reachable := err == nil
	if conn != nil {
		conn.Close()
	}

	expected := p.ExpectReachable[class]
	if reachable == expected {
		return nil
	}
	if expected {
		return fmt.Errorf("port %s should be reachable in %s but is not: %v", address, class, err)
	}
	return fmt.Errorf("port %s is reachable in %s but must not be exposed", address, class)
}
