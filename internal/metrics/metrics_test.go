package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordExport(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)

	m.RecordExport("png", 20*time.Millisecond, 4096, nil)
	m.RecordExport("png", 10*time.Millisecond, 2048, nil)
	m.RecordExport("svg", 0, 0, errors.New("boom"))

	assert.InDelta(t, 2, testutil.ToFloat64(m.exportsTotal.WithLabelValues("png", StatusSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.exportsTotal.WithLabelValues("svg", StatusError)), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.exportBytes))
}

func TestRecordRequestAndValidation(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)

	m.RecordRequest(http.MethodGet, "/healthz", http.StatusOK, time.Millisecond)
	m.RecordValidation(true)
	m.RecordValidation(false)
	m.RecordValidation(false)
	m.ObserveScene(3)

	assert.InDelta(t, 1, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/healthz", "200")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.validations.WithLabelValues("invalid")), 0)
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)
	assert.Same(t, reg, m.Registry())

	_, err = New(reg)
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	m.RecordExport("jpeg", time.Millisecond, 100, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `labelkit_exports_total{format="jpeg",status="success"} 1`)
}
