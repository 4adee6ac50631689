// Package session provides the top-level validation loop for stackval.
//
// The session controller drives one state machine per requested environment
// class and loops them sequentially. Isolated project namespaces still share
// host resources (exposed ports), so passes never run concurrently.
//
// # State Machine
//
// Each environment pass moves through:
//
//	PENDING → PROFILED → DEPLOYED → HEALTHY → PROBED
//
// with two failure states, DEPLOY_FAILED and UNHEALTHY, that end the pass
// early. Teardown is an unconditional transition into the terminal
// TORN_DOWN state: it runs exactly once from every state in which
// deployment resources may exist, including after a failed bring-up and
// after cancellation. From PENDING there is nothing to tear down and the
// transition is a no-op, but the pass still ends in TORN_DOWN.
//
// # Failure Propagation
//
// Deployment and health failures fail only the current environment; they
// are recorded in the result log as whole-environment failures and the
// session moves on to the next class. Probe failures are pure data and
// never abort anything. Prerequisite failures are checked once, up front,
// and abort the whole session before any environment runs.
//
// # Results
//
// All outcomes accumulate in an append-only result log that outlives the
// per-pass profiles and deployments; the final summary is derived from it
// and is the single source of truth for overall success.
package session
