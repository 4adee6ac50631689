package report

import (
	"stackval/internal/config"
)

// Counts tallies probe outcomes.
type Counts struct {
	Total  int
	Passed int
	Failed int
}

// Summary is derived from the result log, never stored. It always reflects
// every environment that was requested, including ones that failed early.
type Summary struct {
	Counts
	ByEnvironment map[config.EnvironmentClass]Counts
}

// Summarize is a pure function over the accumulated result sequence.
func Summarize(results []Result) Summary {
	summary := Summary{
		ByEnvironment: map[config.EnvironmentClass]Counts{},
	}
	for _, r := range results {
		envCounts := summary.ByEnvironment[r.Environment]
		summary.Total++
		envCounts.Total++
		if r.Passed {
			summary.Passed++
			envCounts.Passed++
		} else {
			summary.Failed++
			envCounts.Failed++
		}
		summary.ByEnvironment[r.Environment] = envCounts
	}
	return summary
}

// ExitCode maps the summary to the process exit status: 0 when everything
// passed, 1 when anything failed.
func (s Summary) ExitCode() int {
	if s.Failed > 0 {
		return 1
	}
	return 0
}
