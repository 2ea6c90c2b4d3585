package observability

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "transit_lc"

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	scenarioResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "harness",
			Name:      "scenarios_total",
			Help:      "Scenario outcomes by scenario family, result and failure kind.",
		},
		[]string{"scenario", "result", "kind"},
	)
	scenarioDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "harness",
			Name:      "scenario_duration_seconds",
			Help:      "Scenario wall-clock duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 9),
		},
		[]string{"scenario"},
	)
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lightcurve",
			Name:      "cache_lookups_total",
			Help:      "Light-curve response cache lookups.",
		},
		[]string{"result"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, scenarioResults, scenarioDuration, cacheLookups)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// RecordScenario counts one scenario outcome. An empty kind is a pass.
// Sweep cases share the family of their name before the first '/'.
func RecordScenario(name, kind string, duration time.Duration) {
	RegisterMetrics()
	family := ScenarioFamily(name)
	result := "pass"
	if kind != "" {
		result = "fail"
	} else {
		kind = "NONE"
	}
	scenarioResults.WithLabelValues(family, result, kind).Inc()
	scenarioDuration.WithLabelValues(family).Observe(duration.Seconds())
}

func RecordCacheLookup(hit bool) {
	RegisterMetrics()
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(result).Inc()
}

// ScenarioFamily strips the per-case suffix from a scenario name.
func ScenarioFamily(name string) string {
	family, _, _ := strings.Cut(name, "/")
	return family
}
