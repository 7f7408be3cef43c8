package observability

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus instruments for Courier.
type Metrics struct {
	EventsDispatchedTotal prometheus.Counter
	DeliveriesTotal       *prometheus.CounterVec
	AttemptsTotal         *prometheus.CounterVec
	DeliveryLatency       prometheus.Histogram
	InFlightDeliveries    prometheus.Gauge
	HistorySize           prometheus.Gauge
}

// NewMetrics creates Courier metric instruments and registers them with reg.
// It panics if any instrument is already registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsDispatchedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courier_events_dispatched_total",
			Help: "Total number of events dispatched to the relay.",
		}),
		DeliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courier_deliveries_total",
			Help: "Completed deliveries by final status.",
		}, []string{"status"}),
		AttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courier_delivery_attempts_total",
			Help: "Individual HTTP delivery attempts by outcome.",
		}, []string{"outcome"}),
		DeliveryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "courier_delivery_latency_seconds",
			Help:    "Latency of individual delivery attempts.",
			Buckets: prometheus.DefBuckets,
		}),
		InFlightDeliveries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courier_inflight_deliveries",
			Help: "Deliveries currently being attempted or backing off.",
		}),
		HistorySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courier_history_size",
			Help: "Delivery records currently retained.",
		}),
	}

	reg.MustRegister(
		m.EventsDispatchedTotal,
		m.DeliveriesTotal,
		m.AttemptsTotal,
		m.DeliveryLatency,
		m.InFlightDeliveries,
		m.HistorySize,
	)
	return m
}

// RecordAttempt records one HTTP attempt and its latency.
func (m *Metrics) RecordAttempt(success bool, latencySeconds float64) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.AttemptsTotal.WithLabelValues(outcome).Inc()
	m.DeliveryLatency.Observe(latencySeconds)
}

// RecordDelivery records a completed delivery with the given final status.
func (m *Metrics) RecordDelivery(status string) {
	m.DeliveriesTotal.WithLabelValues(status).Inc()
}
