package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveInvocation("allowed")
	m.ObserveInvocation("allowed")
	m.ObserveInvocation("rejected")
	m.ObserveClosed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.invocations.WithLabelValues("allowed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invocations.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.closedTotal))
}

func TestLimiterMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveInvocation("allowed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `comment_invocations_total{result="allowed"} 1`)
}
