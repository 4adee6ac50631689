package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stackval/internal/compose"
	"stackval/internal/config"
	"stackval/internal/health"
	"stackval/internal/probe"
	"stackval/internal/profile"
	"stackval/internal/report"
	"stackval/internal/retry"
	"stackval/pkg/logging"
)

// State is the per-environment validation state.
type State string

const (
	StatePending      State = "PENDING"
	StateProfiled     State = "PROFILED"
	StateDeployed     State = "DEPLOYED"
	StateHealthy      State = "HEALTHY"
	StateProbed       State = "PROBED"
	StateUnhealthy    State = "UNHEALTHY"
	StateDeployFailed State = "DEPLOY_FAILED"
	StateTornDown     State = "TORN_DOWN"
)

// Deployer is one environment pass's view of the deployment driver.
type Deployer interface {
	BringUp(ctx context.Context) error
	TearDown(ctx context.Context)
	Render(ctx context.Context) (string, error)
	Status(ctx context.Context, service string) (compose.ServiceStatus, error)
	LogTail(ctx context.Context, service string, tail int) string
}

// HealthWaiter waits for the declared services to become healthy.
type HealthWaiter interface {
	WaitHealthy(ctx context.Context, services []config.ServiceSpec) error
}

// ProbeRunner executes the probe set for one class against a target.
type ProbeRunner interface {
	Run(ctx context.Context, probes []probe.Probe, class config.EnvironmentClass, target probe.Target) []report.Result
}

// Controller loops the per-environment state machine over the requested
// classes, sequentially: isolated namespaces still share host ports, so
// passes never overlap. Results accumulate in an append-only log that feeds
// the final summary.
type Controller struct {
	cfg    config.Config
	probes []probe.Probe
	log    *report.Log
	host   string

	// Factories, swapped by tests.
	newDeployer func(class config.EnvironmentClass, envFile string) Deployer
	newPoller   func(d Deployer, budget retry.Budget) HealthWaiter
	newRunner   func(timeout time.Duration) ProbeRunner
}

// NewController wires a Controller against the real compose runtime.
func NewController(cfg config.Config) *Controller {
	return &Controller{
		cfg:    cfg,
		probes: probe.DefaultSet(),
		log:    report.NewLog(),
		host:   "localhost",
		newDeployer: func(class config.EnvironmentClass, envFile string) Deployer {
			project := fmt.Sprintf("%s-%s-%s", cfg.ProjectBase, class, uuid.NewString()[:8])
			return compose.NewDriver(compose.NewClient(cfg.ComposeFile, project, envFile))
		},
		newPoller: func(d Deployer, budget retry.Budget) HealthWaiter {
			return health.NewPoller(d, budget)
		},
		newRunner: func(timeout time.Duration) ProbeRunner {
			return probe.NewRunner(timeout)
		},
	}
}

// CheckPrerequisites verifies the compose runtime is installed and the
// service-graph file parses. It runs once, before any environment; failure
// aborts the whole session.
func (c *Controller) CheckPrerequisites(ctx context.Context) error {
	if err := compose.CheckPrerequisites(c.cfg.ComposeFile); err != nil {
		return err
	}

	// Rendering needs a complete profile; use a throwaway local one.
	prof, err := profile.Generate(config.EnvLocal)
	if err != nil {
		return err
	}
	envFile, cleanup, err := prof.Materialize("")
	if err != nil {
		return err
	}
	defer cleanup()

	client := compose.NewClient(c.cfg.ComposeFile, c.cfg.ProjectBase+"-prereq", envFile)
	return client.Validate(ctx)
}

// Run validates each requested class in order and returns the session
// summary. A failing environment never skips a later one; a cancelled
// context stops before the next pass starts (the in-flight pass still tears
// down).
func (c *Controller) Run(ctx context.Context, classes []config.EnvironmentClass) report.Summary {
	for _, class := range classes {
		if ctx.Err() != nil {
			logging.Warn("Session", "Interrupted; skipping remaining environments")
			break
		}
		finalState := c.validateEnvironment(ctx, class)
		logging.Info("Session", "Environment %s finished in state %s", class, finalState)
	}
	return report.Summarize(c.log.Results())
}

// Results returns the session's accumulated result sequence.
func (c *Controller) Results() []report.Result {
	return c.log.Results()
}

// validateEnvironment drives one class through the pipeline and then the
// unconditional cleanup transition. It always returns StateTornDown; the
// state the pipeline reached before cleanup is logged so failures stay
// visible. Teardown has already completed (or was a no-op for passes that
// never created resources) by the time this returns.
func (c *Controller) validateEnvironment(ctx context.Context, class config.EnvironmentClass) State {
	reached := c.runPipeline(ctx, class)
	logging.Info("Session", "Environment %s reached %s before cleanup", class, reached)
	return StateTornDown
}

// runPipeline advances one class through
// PENDING → PROFILED → DEPLOYED → HEALTHY → PROBED and returns the state
// it reached. Probe failures are recorded, never fatal; deployment and
// health failures fail the pass and are recorded as whole-environment
// failures. Once a deployer exists, teardown runs exactly once before
// this function returns.
func (c *Controller) runPipeline(ctx context.Context, class config.EnvironmentClass) State {
	state := StatePending
	logging.Info("Session", "Validating environment %s", class)

	prof, err := profile.Generate(class)
	if err != nil {
		// Nothing was created; teardown from PENDING is a no-op.
		c.recordFailure(class, "profile", err.Error())
		return state
	}
	state = StateProfiled

	envFile, cleanup, err := prof.Materialize("")
	if err != nil {
		c.recordFailure(class, "profile", err.Error())
		return state
	}
	// The profile artifact must be gone on every exit path of this pass.
	defer cleanup()

	// From here on teardown runs exactly once, whatever happens below.
	deployer := c.newDeployer(class, envFile)
	defer deployer.TearDown(ctx)

	if err := deployer.BringUp(ctx); err != nil {
		state = StateDeployFailed
		c.recordFailure(class, "bring-up", deployFailureDiag(err))
		return state
	}
	state = StateDeployed

	poller := c.newPoller(deployer, retry.Budget(c.cfg.BudgetFor(class)))
	if err := poller.WaitHealthy(ctx, c.cfg.Services); err != nil {
		state = StateUnhealthy
		c.recordFailure(class, healthFailureName(err), healthFailureDiag(err))
		return state
	}
	state = StateHealthy

	spec, err := deployer.Render(ctx)
	if err != nil {
		c.recordFailure(class, "render-spec", err.Error())
		return state
	}

	runner := c.newRunner(c.cfg.ProbeTimeout)
	results := runner.Run(ctx, c.probes, class, probe.Target{
		Host:         c.host,
		RenderedSpec: spec,
		Profile:      prof,
	})
	c.log.Append(results...)
	state = StateProbed

	return state
}

// recordFailure appends a whole-environment failure to the result log.
func (c *Controller) recordFailure(class config.EnvironmentClass, name, diagnostic string) {
	logging.Error("Session", errors.New(diagnostic), "Environment %s failed at %s", class, name)
	c.log.Append(report.Result{
		Probe:       name,
		Environment: class,
		Passed:      false,
		Diagnostic:  diagnostic,
	})
}

func deployFailureDiag(err error) string {
	var deployErr *compose.DeploymentError
	if errors.As(err, &deployErr) && deployErr.LogTail != "" {
		return fmt.Sprintf("%v\nlast logs:\n%s", err, deployErr.LogTail)
	}
	return err.Error()
}

func healthFailureName(err error) string {
	var unhealthy *health.ServiceUnhealthy
	if errors.As(err, &unhealthy) {
		return "health:" + unhealthy.Service
	}
	return "health"
}

func healthFailureDiag(err error) string {
	var unhealthy *health.ServiceUnhealthy
	if errors.As(err, &unhealthy) && unhealthy.LogTail != "" {
		return fmt.Sprintf("%v\nlast logs:\n%s", err, unhealthy.LogTail)
	}
	return err.Error()
}
