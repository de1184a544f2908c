// Package metrics defines the relay's custom Prometheus metrics.
//
// New registers every metric with the given registerer, so tests can use an
// isolated prometheus.NewRegistry().
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/datapusher/webhook-relay/internal/core/domain"
)

const namespace = "relay"

// Metrics implements ports.DispatchRecorder and exposes the queue depth gauge.
type Metrics struct {
	// DispatchesTotal counts ingress requests that reached fan-out.
	// Label:
	//   - outcome: "accepted" or "partial_failure"
	DispatchesTotal *prometheus.CounterVec

	// DeliveriesTotal counts outbound calls.
	// Labels:
	//   - method: GET, POST, PUT or DELETE
	//   - outcome: "success" or "failure"
	DeliveriesTotal *prometheus.CounterVec

	// DeliveryDuration measures a single outbound call, failures included.
	DeliveryDuration *prometheus.HistogramVec

	// QueueDepth tracks jobs waiting for a delivery worker.
	QueueDepth prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DispatchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatches_total",
				Help:      "Total number of ingress payloads fanned out, by outcome.",
			},
			[]string{"outcome"},
		),
		DeliveriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deliveries_total",
				Help:      "Total number of outbound destination calls, by method and outcome.",
			},
			[]string{"method", "outcome"},
		),
		DeliveryDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "delivery_duration_seconds",
				Help:      "Duration of outbound destination calls.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "delivery_queue_depth",
			Help:      "Current number of deliveries waiting for a worker.",
		}),
	}
}

func (m *Metrics) RecordDelivery(method string, ok bool, d time.Duration) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.DeliveriesTotal.WithLabelValues(method, outcome).Inc()
	m.DeliveryDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) RecordDispatch(status domain.OutcomeStatus) {
	m.DispatchesTotal.WithLabelValues(string(status)).Inc()
}
