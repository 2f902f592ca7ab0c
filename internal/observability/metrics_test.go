package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()
	m.ObserveRecompute(OutcomeOK, 3*time.Millisecond)
	m.ObserveRecompute(OutcomeOK, time.Millisecond)
	m.ObserveRecompute(OutcomeIntegrity, time.Millisecond)
	m.AddUnlocks(3)
	m.AddUnlocks(0)
	m.AddRecommendationsPersisted(5)
	m.IncHookFailure("roadmap")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.recomputeTotal.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recomputeTotal.WithLabelValues(OutcomeIntegrity)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.unlocksTotal))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.recsPersisted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hookFailures.WithLabelValues("roadmap")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRecompute(OutcomeOK, time.Second)
	m.AddUnlocks(1)
	m.IncStateWarning()
	m.ObserveHTTP("GET", "/healthz", 200, time.Millisecond)
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveHTTP("GET", "/users/:id/readiness", 404, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `skillforge_http_requests_total{method="GET",route="/users/:id/readiness",status="4xx"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}
