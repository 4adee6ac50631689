package compose

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriver_BringUpCleansSlateFirst(t *testing.T) {
	// Residue from a previous failed run must not block a new run, so the
	// first thing bring-up does is a full down.
	runner := &recordingRunner{}
	d := NewDriver(newTestClient(runner))

	require.NoError(t, d.BringUp(context.Background()))

	require.Len(t, runner.calls, 2)
	assert.Contains(t, runner.calls[0], " down --remove-orphans --volumes")
	assert.Contains(t, runner.calls[1], " up -d")
}

func TestDriver_BringUpToleratesFailedPreClean(t *testing.T) {
	runner := &recordingRunner{
		failOn:  map[string]error{"down": errors.New("exit status 1")},
		stderrs: map[string]string{"down": "no such project"},
	}
	d := NewDriver(newTestClient(runner))

	require.NoError(t, d.BringUp(context.Background()))
}

func TestDriver_BringUpFailureCapturesLogTail(t *testing.T) {
	runner := &recordingRunner{
		failOn:  map[string]error{"up": errors.New("exit status 1")},
		stderrs: map[string]string{"up": "backend exited with code 1"},
		stdout:  map[string]string{"logs": "panic: missing DB_PASSWORD\n"},
	}
	d := NewDriver(newTestClient(runner))

	err := d.BringUp(context.Background())
	require.Error(t, err)

	var deployErr *DeploymentError
	require.ErrorAs(t, err, &deployErr)
	assert.Equal(t, "stackval-local-abc123", deployErr.Project)
	assert.Contains(t, deployErr.LogTail, "missing DB_PASSWORD")
	assert.Contains(t, deployErr.Error(), "stackval-local-abc123")
}

func TestDriver_TearDownRemovesVolumes(t *testing.T) {
	runner := &recordingRunner{}
	d := NewDriver(newTestClient(runner))

	d.TearDown(context.Background())

	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0], "--volumes")
}

func TestDriver_TearDownNothingToRemoveIsNoop(t *testing.T) {
	runner := &recordingRunner{
		failOn:  map[string]error{"down": errors.New("exit status 1")},
		stderrs: map[string]string{"down": "no such project: stackval-local-abc123"},
	}
	d := NewDriver(newTestClient(runner))

	// Must not panic and must not surface an error to the caller.
	assert.NotPanics(t, func() { d.TearDown(context.Background()) })
}

func TestDriver_TearDownRunsOnCancelledContext(t *testing.T) {
	runner := &recordingRunner{}
	d := NewDriver(newTestClient(runner))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d.TearDown(ctx)
	require.Len(t, runner.calls, 1, "teardown must run even after the pass was cancelled")
}

func TestDriver_StatusAndLogTail(t *testing.T) {
	runner := &recordingRunner{stdout: map[string]string{
		"ps":   `{"Name":"db-1","State":"running","Health":"healthy"}` + "\n",
		"logs": "ready to accept connections\n",
	}}
	d := NewDriver(newTestClient(runner))
	ctx := context.Background()

	status, err := d.Status(ctx, "db")
	require.NoError(t, err)
	assert.Equal(t, "running", status.State)

	tail := d.LogTail(ctx, "db", 40)
	assert.Contains(t, tail, "ready to accept connections")
}

func TestDriver_LogTailSwallowsErrors(t *testing.T) {
	runner := &recordingRunner{failOn: map[string]error{"logs": errors.New("exit status 1")}}
	d := NewDriver(newTestClient(runner))

	assert.Empty(t, d.LogTail(context.Background(), "db", 40))
}

func TestCheckPrerequisites(t *testing.T) {
	composeFile := filepath.Join(t.TempDir(), "docker-compose.yaml")
	require.NoError(t, os.WriteFile(composeFile, []byte("services: {}\n"), 0o644))

	origLookPath := lookPath
	t.Cleanup(func() { lookPath = origLookPath })

	t.Run("runtime missing", func(t *testing.T) {
		lookPath = func(string) (string, error) { return "", errors.New("not found") }

		err := CheckPrerequisites(composeFile)
		require.Error(t, err)
		var prereq *PrerequisiteError
		assert.ErrorAs(t, err, &prereq)
	})

	t.Run("compose file missing", func(t *testing.T) {
		lookPath = func(string) (string, error) { return "/usr/bin/docker", nil }

		err := CheckPrerequisites(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		var prereq *PrerequisiteError
		assert.ErrorAs(t, err, &prereq)
	})

	t.Run("all present", func(t *testing.T) {
		lookPath = func(string) (string, error) { return "/usr/bin/docker", nil }

		assert.NoError(t, CheckPrerequisites(composeFile))
	})
}

func TestClient_ValidateMapsToPrerequisiteError(t *testing.T) {
	runner := &recordingRunner{
		failOn:  map[string]error{"config": errors.New("exit status 15")},
		stderrs: map[string]string{"config": "yaml: line 3: mapping values are not allowed"},
	}
	c := newTestClient(runner)

	err := c.Validate(context.Background())
	require.Error(t, err)
	var prereq *PrerequisiteError
	require.ErrorAs(t, err, &prereq)
	assert.Contains(t, prereq.Error(), "malformed")
}
