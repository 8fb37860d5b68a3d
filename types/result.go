package types

import "time"

// TestResult captures the outcome of one test node after a suite execution.
// Results are ephemeral: they are recomputed on every run and never persisted.
type TestResult struct {
	NodeID  string
	Status  TestStatus
	Message string // Combined or reported output for this test

	// FailLine is the 0-based source line of a failure annotation.
	// It is negative when no location was reported.
	FailLine int
}

// SuiteResult captures aggregated results for one executed suite
type SuiteResult struct {
	SuiteID  string
	Results  []TestResult
	Duration time.Duration
}

// RunStats tracks test statistics across one run request
type RunStats struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
	Errored int
}

// Add accumulates a single result into the stats
func (s *RunStats) Add(r TestResult) {
	s.Total++
	switch r.Status {
	case TestStatusPass:
		s.Passed++
	case TestStatusFail:
		s.Failed++
	case TestStatusSkip:
		s.Skipped++
	case TestStatusError:
		s.Errored++
	}
}

// PassRate returns the percentage of passed tests
func (s RunStats) PassRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Total) * 100
}

// Status reduces the stats to one overall terminal status
func (s RunStats) Status() TestStatus {
	switch {
	case s.Errored > 0:
		return TestStatusError
	case s.Failed > 0:
		return TestStatusFail
	case s.Passed > 0:
		return TestStatusPass
	default:
		return TestStatusSkip
	}
}
