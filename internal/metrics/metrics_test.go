package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveConnection(OutcomeDispatched, 3*time.Millisecond)
	m.ObserveConnection(OutcomeDispatched, time.Millisecond)
	m.ObserveConnection(OutcomeClientError, time.Millisecond)
	m.ObserveResponse(200)
	m.ObserveResponse(200)
	m.ObserveResponse(400)
	m.ObserveFrame(78)
	m.ObserveWriteError()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ConnectionsTotal.WithLabelValues(OutcomeDispatched)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConnectionsTotal.WithLabelValues(OutcomeClientError)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ConnectionsTotal.WithLabelValues(OutcomeAborted)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ResponsesTotal.WithLabelValues("200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResponsesTotal.WithLabelValues("400")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WriteErrors))

	n, err := testutil.GatherAndCount(reg, "minihttp_conn_handle_seconds", "minihttp_http_header_bytes")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMetricsSeparateRegistries(t *testing.T) {
	// Registering twice on one registry panics; separate registries don't.
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})

	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveConnection(OutcomeAborted, time.Second)
		m.ObserveResponse(500)
		m.ObserveFrame(10)
		m.ObserveWriteError()
	})
}
