package metrics

import (
	"github.com/ceedling-tools/adapter/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	MetricsNamespace = "ceedling_adapter"
)

var (
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	discoveryPassesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "discovery_passes_total",
		Help:      "Count of discovery passes",
	}, []string{
		"result",
	})

	discoveredTests = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "discovered_tests",
		Help:      "Number of test nodes found by the last discovery pass",
	}, []string{
		"project",
	})

	invocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "tool_invocations_total",
		Help:      "Count of build tool invocations",
	}, []string{
		"subcommand",
		"result",
	})

	testResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "test_results_total",
		Help:      "Count of correlated test results",
	}, []string{
		"project",
		"status",
	})

	lastRunPassRate = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "last_run_pass_rate",
		Help:      "Pass rate percentage of the last run request",
	})
)

// RecordError increments the error counter for the given error label
func RecordError(errorLabel string) {
	errorsTotal.WithLabelValues(errorLabel).Inc()
}

// RecordDiscovery records the outcome of one discovery pass
func RecordDiscovery(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	discoveryPassesTotal.WithLabelValues(result).Inc()
}

// RecordDiscoveredTests records the test count found in one project
func RecordDiscoveredTests(project string, count int) {
	discoveredTests.WithLabelValues(project).Set(float64(count))
}

// RecordInvocation records one build tool invocation
func RecordInvocation(subcommand string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	invocationsTotal.WithLabelValues(subcommand, result).Inc()
}

// RecordTestResult records one correlated terminal state
func RecordTestResult(project string, status types.TestStatus) {
	testResultsTotal.WithLabelValues(project, status.String()).Inc()
}

// RecordRunStats publishes the aggregate of the last run request
func RecordRunStats(stats types.RunStats) {
	lastRunPassRate.Set(stats.PassRate())
}
