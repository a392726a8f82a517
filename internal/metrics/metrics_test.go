package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatheredNames(t *testing.T) map[string]bool {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestAIMetrics_Registered(t *testing.T) {
	AIRequests.WithLabelValues("doubt", "basic", "gpt-4o-mini", "ok").Inc()
	AITokens.WithLabelValues("doubt", "basic", "gpt-4o-mini").Add(120)
	AILatency.WithLabelValues("doubt", "gpt-4o-mini").Observe(1.2)
	QuotaRejections.WithLabelValues("pro").Inc()

	names := gatheredNames(t)
	for _, name := range []string{
		"tutor_ai_requests_total",
		"tutor_ai_tokens_total",
		"tutor_ai_latency_seconds",
		"tutor_quota_rejections_total",
	} {
		assert.True(t, names[name], "metric %q not found", name)
	}
}

func TestAITokens_Accumulates(t *testing.T) {
	c := AITokens.WithLabelValues("derivation", "premium", "gpt-4o")
	before := testutil.ToFloat64(c)

	c.Add(50)
	c.Add(25)

	assert.Equal(t, before+75, testutil.ToFloat64(c))
}

func TestBreakerAndHealthGauges(t *testing.T) {
	BreakerState.WithLabelValues("key-0").Set(1)
	DependencyUp.WithLabelValues("database").Set(1)

	assert.Equal(t, float64(1), testutil.ToFloat64(BreakerState.WithLabelValues("key-0")))
	assert.Equal(t, float64(1), testutil.ToFloat64(DependencyUp.WithLabelValues("database")))
}
