package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunStatsAdd(t *testing.T) {
	var stats RunStats
	stats.Add(TestResult{Status: TestStatusPass})
	stats.Add(TestResult{Status: TestStatusPass})
	stats.Add(TestResult{Status: TestStatusFail})
	stats.Add(TestResult{Status: TestStatusSkip})
	stats.Add(TestResult{Status: TestStatusError})

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 2, stats.Passed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Errored)
	assert.InDelta(t, 40.0, stats.PassRate(), 0.01)
}

func TestRunStatsStatus(t *testing.T) {
	tests := []struct {
		name     string
		stats    RunStats
		expected TestStatus
	}{
		{"errored wins", RunStats{Errored: 1, Failed: 1, Passed: 1}, TestStatusError},
		{"failed beats passed", RunStats{Failed: 1, Passed: 3}, TestStatusFail},
		{"all passed", RunStats{Passed: 2}, TestStatusPass},
		{"only skips", RunStats{Skipped: 2}, TestStatusSkip},
		{"empty", RunStats{}, TestStatusSkip},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.stats.Status())
		})
	}
}

func TestRunStatsPassRateEmpty(t *testing.T) {
	assert.Zero(t, RunStats{}.PassRate())
}
