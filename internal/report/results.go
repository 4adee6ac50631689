package report

import (
	"stackval/internal/config"
)

// Result is the recorded outcome of one probe (or one whole-environment
// failure) in one environment.
type Result struct {
	Probe       string
	Environment config.EnvironmentClass
	Passed      bool
	// Diagnostic carries human-readable failure detail, empty on pass.
	Diagnostic string
}

// Log is the session's append-only result sequence. Results are only ever
// appended by the currently running environment pass and never mutated once
// recorded; reads return a copy.
type Log struct {
	results []Result
}

// NewLog creates an empty result log.
func NewLog() *Log {
	return &Log{}
}

// Append records results in order.
func (l *Log) Append(results ...Result) {
	l.results = append(l.results, results...)
}

// Results returns the recorded sequence in append order.
func (l *Log) Results() []Result {
	out := make([]Result, len(l.results))
	copy(out, l.results)
	return out
}

// Len returns how many results have been recorded.
func (l *Log) Len() int {
	return len(l.results)
}
