package compose

import "fmt"

// PrerequisiteError means the compose runtime or the declarative service
// graph file is missing or unusable. It aborts the whole session (exit 2)
// before any environment is validated.
type PrerequisiteError struct {
	Reason string
	Err    error
}

func (e *PrerequisiteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("prerequisite missing: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("prerequisite missing: %s", e.Reason)
}

func (e *PrerequisiteError) Unwrap() error { return e.Err }

// DeploymentError means bring-up failed. It is fatal to the affected
// environment's pass only; the session records the failure and moves on.
type DeploymentError struct {
	Project string
	Err     error
	// LogTail is the captured tail of the project's logs at failure time,
	// for diagnostics.
	LogTail string
}

func (e *DeploymentError) Error() string {
	return fmt.Sprintf("deployment of project %s failed: %v", e.Project, e.Err)
}

func (e *DeploymentError) Unwrap() error { return e.Err }
