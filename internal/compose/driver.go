package compose

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"stackval/pkg/logging"
)

// For mocking in tests
var lookPath = exec.LookPath

// failureLogTail is how many log lines are captured for diagnostics when a
// bring-up fails.
const failureLogTail = 60

// teardownTimeout bounds the unconditional cleanup so a wedged runtime
// cannot hang the session. Teardown gets its own deadline because it must
// also run when the pass context is already cancelled.
const teardownTimeout = 2 * time.Minute

// CheckPrerequisites verifies the compose runtime is installed and the
// declarative service-graph file exists. File validity is checked separately
// via Client.Validate, which needs a materialized profile.
func CheckPrerequisites(composeFile string) error {
	if _, err := lookPath("docker"); err != nil {
		return &PrerequisiteError{Reason: "docker is not installed or not on PATH", Err: err}
	}
	if _, err := os.Stat(composeFile); err != nil {
		return &PrerequisiteError{Reason: "compose file " + composeFile + " not found", Err: err}
	}
	return nil
}

// Validate asks the runtime to parse and render the compose file. A file the
// runtime rejects is a missing prerequisite, not a validation failure.
func (c *Client) Validate(ctx context.Context) error {
	if _, err := c.Render(ctx); err != nil {
		return &PrerequisiteError{Reason: "compose file " + c.composeFile + " is malformed", Err: err}
	}
	return nil
}

// Driver drives one environment pass's deployment lifecycle against the
// compose runtime.
type Driver struct {
	client *Client
}

// NewDriver creates a Driver over the given client.
func NewDriver(client *Client) *Driver {
	return &Driver{client: client}
}

// Render exposes the rendered deployment specification for static probes.
func (d *Driver) Render(ctx context.Context) (string, error) {
	return d.client.Render(ctx)
}

// Status exposes the observed status of one service.
func (d *Driver) Status(ctx context.Context, service string) (ServiceStatus, error) {
	return d.client.Ps(ctx, service)
}

// LogTail returns the last lines of a service's output, empty on error
// (diagnostics capture must never mask the failure it is diagnosing).
func (d *Driver) LogTail(ctx context.Context, service string, tail int) string {
	out, err := d.client.Logs(ctx, service, tail)
	if err != nil {
		logging.Debug("Driver", "Could not capture log tail for %s: %v", service, err)
		return ""
	}
	return out
}

// BringUp provisions the service graph. It first issues a clean-slate down
// so residue from a previous failed run cannot block this one, then brings
// the project up detached. On failure the project log tail is captured and
// the whole environment pass fails; no probing happens against a deployment
// that never came up.
func (d *Driver) BringUp(ctx context.Context) error {
	if err := d.client.Down(ctx, true); err != nil {
		// A failed pre-clean on a pristine namespace is expected noise.
		logging.Debug("Driver", "Clean-slate down for project %s: %v", d.client.Project(), err)
	}

	if _, err := d.client.Up(ctx); err != nil {
		tail := d.LogTail(ctx, "", failureLogTail)
		return &DeploymentError{Project: d.client.Project(), Err: err, LogTail: tail}
	}

	logging.Info("Driver", "Project %s is up", d.client.Project())
	return nil
}

// TearDown removes the project's containers and backing volumes. It always
// runs, including after a failed bring-up; errors are logged and never
// override the result already recorded for the environment. A project with
// nothing to remove is an explicit no-op.
func (d *Driver) TearDown(ctx context.Context) {
	// Detach from the pass context: teardown must still run when the pass
	// was cancelled or timed out.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), teardownTimeout)
	defer cancel()

	err := d.client.Down(ctx, true)
	if err == nil {
		logging.Info("Driver", "Project %s torn down", d.client.Project())
		return
	}
	if isNothingToRemove(err) {
		logging.Debug("Driver", "Nothing to tear down for project %s", d.client.Project())
		return
	}
	logging.Error("Driver", err, "Teardown of project %s failed; resources may be left behind", d.client.Project())
}

// isNothingToRemove recognizes the runtime's "no such project" family of
// complaints when tearing down a namespace where bring-up created nothing.
func isNothingToRemove(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such project") ||
		strings.Contains(msg, "no container") ||
		strings.Contains(msg, "not found")
}
