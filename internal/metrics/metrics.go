package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "minihttp"

// Outcome labels for ConnectionsTotal.
const (
	OutcomeDispatched  = "dispatched"
	OutcomeClientError = "client_error"
	OutcomeAborted     = "aborted"
)

// Metrics holds the collectors updated by the connection loop. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	ConnectionsTotal *prometheus.CounterVec
	ResponsesTotal   *prometheus.CounterVec
	FramedBytes      prometheus.Histogram
	HandleDuration   prometheus.Histogram
	WriteErrors      prometheus.Counter
}

// New registers the collectors with reg. Passing a fresh prometheus.Registry
// keeps tests isolated from the global default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ConnectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "conn",
				Name:      "handled_total",
				Help:      "Total number of connections handled, by outcome",
			},
			[]string{"outcome"},
		),
		ResponsesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "responses_total",
				Help:      "Total number of responses written, by status code",
			},
			[]string{"code"},
		),
		FramedBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "header_bytes",
				Help:      "Size of the framed request header block",
				Buckets:   prometheus.ExponentialBuckets(64, 2, 8),
			},
		),
		HandleDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "conn",
				Name:      "handle_seconds",
				Help:      "Time from accept to close for a single connection",
				Buckets:   prometheus.DefBuckets,
			},
		),
		WriteErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "conn",
				Name:      "write_errors_total",
				Help:      "Total number of responses that could not be written",
			},
		),
	}
}

func (m *Metrics) ObserveConnection(outcome string, d time.Duration) {
	if m == nil {
		return
	}

	m.ConnectionsTotal.WithLabelValues(outcome).Inc()
	m.HandleDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveResponse(code int) {
	if m == nil {
		return
	}

	m.ResponsesTotal.WithLabelValues(strconv.Itoa(code)).Inc()
}

func (m *Metrics) ObserveFrame(size int) {
	if m == nil {
		return
	}

	m.FramedBytes.Observe(float64(size))
}

func (m *Metrics) ObserveWriteError() {
	if m == nil {
		return
	}

	m.WriteErrors.Inc()
}
