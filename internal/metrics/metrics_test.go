package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/tenancy/internal/connection"
	"github.com/openkcm/tenancy/internal/metrics"
	"github.com/openkcm/tenancy/internal/resolver"
)

func TestTenancyMetrics(t *testing.T) {
	m := metrics.New()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	var (
		_ resolver.Recorder   = m
		_ connection.Recorder = m
	)

	m.ResolutionObserved(resolver.OutcomeMatched, false)
	m.ResolutionObserved(resolver.OutcomeMatched, true)
	m.ResolutionObserved(resolver.OutcomeFallback, false)
	m.ActivationObserved(connection.OutcomeOpened, 3*time.Millisecond)
	m.PoolsOpen(2)
	m.RequestServed(http.StatusServiceUnavailable)

	assert.InDelta(t, 1, testutil.ToFloat64(m.Resolutions.WithLabelValues(resolver.OutcomeMatched, "true")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Resolutions.WithLabelValues(resolver.OutcomeFallback, "false")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.Pools), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Requests.WithLabelValues("503")), 0)

	t.Run("Should refuse double registration", func(t *testing.T) {
		assert.Error(t, m.Register(reg))
	})

	t.Run("Should serve the registry", func(t *testing.T) {
		srv := httptest.NewServer(metrics.Handler(reg))
		defer srv.Close()

		resp, err := http.Get(srv.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "tenancy_connection_pools_open 2")
		assert.Contains(t, string(body), "tenancy_connection_activation_duration_seconds_count{outcome=\"opened\"} 1")
	})
}
