package compose

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"stackval/internal/config"
	"stackval/pkg/logging"
)

// CommandRunner executes an external command and captures its output. It is
// a field on the Client so tests can substitute a fake compose runtime.
type CommandRunner func(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)

// defaultRunner shells out with captured stdout/stderr buffers.
func defaultRunner(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	runErr := cmd.Run()

	stdoutStr := stdoutBuf.String()
	stderrStr := stderrBuf.String()

	if runErr != nil {
		return stdoutStr, stderrStr, fmt.Errorf("failed to execute '%s %s': %w. Stderr: %s",
			name, strings.Join(args, " "), runErr, stderrStr)
	}
	return stdoutStr, stderrStr, nil
}

// Client wraps the compose CLI scoped to one compose file, one isolated
// project namespace, and one materialized env file. All state the runtime
// creates for this client is addressable (and removable) via the project
// name.
type Client struct {
	composeFile string
	project     string
	envFile     string
	run         CommandRunner
}

// NewClient creates a compose client for the given file, project namespace
// and env file.
func NewClient(composeFile, project, envFile string) *Client {
	return &Client{
		composeFile: composeFile,
		project:     project,
		envFile:     envFile,
		run:         defaultRunner,
	}
}

// WithRunner replaces the command runner; used by tests.
func (c *Client) WithRunner(run CommandRunner) *Client {
	c.run = run
	return c
}

// Project returns the isolated project namespace this client is scoped to.
func (c *Client) Project() string {
	return c.project
}

func (c *Client) args(sub ...string) []string {
	base := []string{"compose", "-f", c.composeFile, "-p", c.project}
	if c.envFile != "" {
		base = append(base, "--env-file", c.envFile)
	}
	return append(base, sub...)
}

// Render validates the compose file against the profile and returns the
// fully rendered deployment specification.
func (c *Client) Render(ctx context.Context) (string, error) {
	stdout, stderr, err := c.run(ctx, "docker", c.args("config")...)
	if err != nil {
		return "", fmt.Errorf("compose config failed for project %s: %w", c.project, composeErr(err, stderr))
	}
	return stdout, nil
}

// Up brings the service graph up detached. It returns the command's stderr
// so callers can attach it to a failure diagnostic.
func (c *Client) Up(ctx context.Context) (string, error) {
	_, stderr, err := c.run(ctx, "docker", c.args("up", "-d")...)
	if err != nil {
		return stderr, fmt.Errorf("compose up failed for project %s: %w", c.project, composeErr(err, stderr))
	}
	return stderr, nil
}

// Down stops the project and removes its containers, optionally with its
// backing volumes so no state leaks into a subsequent run.
func (c *Client) Down(ctx context.Context, removeVolumes bool) error {
	sub := []string{"down", "--remove-orphans"}
	if removeVolumes {
		sub = append(sub, "--volumes")
	}
	_, stderr, err := c.run(ctx, "docker", c.args(sub...)...)
	if err != nil {
		return fmt.Errorf("compose down failed for project %s: %w", c.project, composeErr(err, stderr))
	}
	return nil
}

// ServiceStatus is the externally observable state of one service instance.
type ServiceStatus struct {
	Name   string `json:"Name"`
	State  string `json:"State"`
	Health string `json:"Health"`
}

// Satisfies reports whether the status meets the given health contract.
func (s ServiceStatus) Satisfies(contract config.HealthContract) bool {
	switch contract {
	case config.HealthContractCompose:
		return s.Health == "healthy"
	case config.HealthContractRunning:
		return s.State == "running"
	}
	return false
}

// Ps returns the status of one service. A service with no instance yet
// yields a zero ServiceStatus, not an error.
func (c *Client) Ps(ctx context.Context, service string) (ServiceStatus, error) {
	stdout, stderr, err := c.run(ctx, "docker", c.args("ps", "--format", "json", service)...)
	if err != nil {
		return ServiceStatus{}, fmt.Errorf("compose ps failed for service %s: %w", service, composeErr(err, stderr))
	}

	// One JSON object per line, possibly none if the instance is gone.
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var status ServiceStatus
		if err := json.Unmarshal([]byte(line), &status); err != nil {
			logging.Debug("Compose", "Skipping unparseable ps line for %s: %v", service, err)
			continue
		}
		return status, nil
	}
	return ServiceStatus{}, nil
}

// Logs returns the last tail lines of output, for one service or for the
// whole project when service is empty.
func (c *Client) Logs(ctx context.Context, service string, tail int) (string, error) {
	sub := []string{"logs", "--no-color", "--tail", fmt.Sprintf("%d", tail)}
	if service != "" {
		sub = append(sub, service)
	}
	stdout, stderr, err := c.run(ctx, "docker", c.args(sub...)...)
	if err != nil {
		return "", fmt.Errorf("compose logs failed: %w", composeErr(err, stderr))
	}
	return stdout, nil
}

// ExecIn runs a command inside a running service instance.
func (c *Client) ExecIn(ctx context.Context, service string, command ...string) (string, error) {
	sub := append([]string{"exec", "-T", service}, command...)
	stdout, stderr, err := c.run(ctx, "docker", c.args(sub...)...)
	if err != nil {
		return "", fmt.Errorf("compose exec in %s failed: %w", service, composeErr(err, stderr))
	}
	return stdout, nil
}

// composeErr keeps the underlying error chain but avoids duplicating stderr
// when the runner already attached it.
func composeErr(err error, stderr string) error {
	if stderr == "" || strings.Contains(err.Error(), stderr) {
		return err
	}
	return fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr))
}
