package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveGeneration(t *testing.T) {
	m := New()

	m.ObserveGeneration("gemini-pro", "gemini", "success", 150*time.Millisecond)
	m.ObserveGeneration("gemini-pro", "gemini", "success", 300*time.Millisecond)
	m.ObserveGeneration("grok-4", "openai", "transport", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.generationsTotal.WithLabelValues("gemini-pro", "gemini", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generationsTotal.WithLabelValues("grok-4", "openai", "transport")))
}

func TestObserveNormalization(t *testing.T) {
	m := New()

	m.ObserveNormalization("script", "segmented")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.normalizedTotal.WithLabelValues("script", "segmented")))
}

func TestHandlerServesMetrics(t *testing.T) {
	m := New()
	m.ObserveNormalization("analysis", "keywords")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ai_crm_normalizations_total{kind="analysis",stage="keywords"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveGeneration("a", "b", "c", time.Second)
		m.ObserveNormalization("a", "b")
	})
	assert.Nil(t, m.Registry())
}
