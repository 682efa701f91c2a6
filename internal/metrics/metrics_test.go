package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCapability(t *testing.T) {
	m := New()
	m.ObserveCapability("Calculator", 20*time.Millisecond, nil)
	m.ObserveCapability("Calculator", 10*time.Millisecond, errors.New("bad expression"))
	m.ObserveCapability("Wikipedia", time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.capabilityCalls.WithLabelValues("Calculator", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.capabilityCalls.WithLabelValues("Calculator", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.capabilityCalls.WithLabelValues("Wikipedia", "ok")))
}

func TestObserveQuestionAndSessions(t *testing.T) {
	m := New()
	m.ObserveQuestion("agent", nil)
	m.ObserveQuestion("agent", nil)
	m.ObserveQuestion("keyword", errors.New("boom"))
	m.SetActiveSessions(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.questions.WithLabelValues("agent", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.questions.WithLabelValues("keyword", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeSessions))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveAgentIterations(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), "mathai_agent_iterations_count 1")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveQuestion("agent", nil)
		m.ObserveCapability("Calculator", time.Second, nil)
		m.ObserveAgentIterations(1)
		m.SetActiveSessions(1)
	})
	assert.Nil(t, m.Registry())
}
