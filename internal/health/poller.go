package health

import (
	"context"
	"fmt"

	"stackval/internal/compose"
	"stackval/internal/config"
	"stackval/internal/retry"
	"stackval/pkg/logging"
)

// unhealthyLogTail is how many log lines are attached to a ServiceUnhealthy
// failure for diagnosis.
const unhealthyLogTail = 40

// StatusReader is the slice of the deployment driver the poller consumes.
type StatusReader interface {
	Status(ctx context.Context, service string) (compose.ServiceStatus, error)
	LogTail(ctx context.Context, service string, tail int) string
}

// ServiceUnhealthy means a service exhausted its health poll budget. It is
// fatal to the environment pass: remaining services are not polled and no
// probes run, but teardown still does.
type ServiceUnhealthy struct {
	Service string
	Err     error
	// LogTail is the last known output of the offending service.
	LogTail string
}

func (e *ServiceUnhealthy) Error() string {
	return fmt.Sprintf("service %s never became healthy: %v", e.Service, e.Err)
}

func (e *ServiceUnhealthy) Unwrap() error { return e.Err }

// Poller samples externally observable service health until every declared
// service is healthy or a retry budget runs out.
type Poller struct {
	statuses StatusReader
	budget   retry.Budget
}

// NewPoller creates a Poller over the given status source with the per-class
// poll budget.
func NewPoller(statuses StatusReader, budget retry.Budget) *Poller {
	return &Poller{statuses: statuses, budget: budget}
}

// WaitHealthy polls each declared service in order. The first service to
// exhaust the budget short-circuits the rest; a deployment with a known
// unhealthy dependency is not worth probing.
func (p *Poller) WaitHealthy(ctx context.Context, services []config.ServiceSpec) error {
	for _, svc := range services {
		logging.Info("Health", "Waiting for service %s (%d attempts, %s apart)",
			svc.Name, p.budget.Attempts, p.budget.Interval)

		err := p.budget.Do(ctx, func(ctx context.Context) error {
			return p.checkOnce(ctx, svc)
		})
		if err != nil {
			tail := p.statuses.LogTail(ctx, svc.Name, unhealthyLogTail)
			return &ServiceUnhealthy{Service: svc.Name, Err: err, LogTail: tail}
		}

		logging.Info("Health", "Service %s is healthy", svc.Name)
	}
	return nil
}

func (p *Poller) checkOnce(ctx context.Context, svc config.ServiceSpec) error {
	status, err := p.statuses.Status(ctx, svc.Name)
	if err != nil {
		return err
	}
	if status.Name == "" {
		return fmt.Errorf("service %s has no running instance", svc.Name)
	}
	if !status.Satisfies(svc.Health) {
		return fmt.Errorf("service %s is %s (health %q), want %s",
			svc.Name, status.State, status.Health, svc.Health)
	}
	return nil
}
