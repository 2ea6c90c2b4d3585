package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterMetricsIsIdempotent(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()
}

func TestRecordScenario(t *testing.T) {
	passed := scenarioResults.WithLabelValues("metrics_case", "pass", "NONE")
	failed := scenarioResults.WithLabelValues("metrics_case", "fail", "FUNCTIONAL_DIVERGENCE")
	beforePass, beforeFail := testutil.ToFloat64(passed), testutil.ToFloat64(failed)

	RecordScenario("metrics_case/order=1/radius=0.1", "", 3*time.Millisecond)
	RecordScenario("metrics_case/order=2/radius=0.1", "FUNCTIONAL_DIVERGENCE", time.Millisecond)
	RecordScenario("metrics_case", "FUNCTIONAL_DIVERGENCE", time.Millisecond)

	assert.Equal(t, beforePass+1, testutil.ToFloat64(passed))
	assert.Equal(t, beforeFail+2, testutil.ToFloat64(failed))
}

func TestRecordHTTPRequestAndCache(t *testing.T) {
	ok := httpRequests.WithLabelValues("GET", "/health", "200")
	hits := cacheLookups.WithLabelValues("hit")
	before, beforeHits := testutil.ToFloat64(ok), testutil.ToFloat64(hits)

	RecordHTTPRequest("GET", "/health", 200, 2*time.Millisecond)
	RecordCacheLookup(true)
	RecordCacheLookup(false)

	assert.Equal(t, before+1, testutil.ToFloat64(ok))
	assert.Equal(t, beforeHits+1, testutil.ToFloat64(hits))
}

func TestScenarioFamily(t *testing.T) {
	assert.Equal(t, "quad_limb_dark_consistency", ScenarioFamily("quad_limb_dark_consistency/order=0/radius=1.5"))
	assert.Equal(t, "idempotence", ScenarioFamily("idempotence"))
}
