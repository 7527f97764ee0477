package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DeliveriesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ghmetrics_deliveries_received_total",
		Help: "Total webhook deliveries accepted, labelled by event type.",
	}, []string{"event_type"})

	DeliveriesUnauthorized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ghmetrics_deliveries_unauthorized_total",
		Help: "Total deliveries rejected by the signature gate.",
	})

	DeliveriesMalformed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ghmetrics_deliveries_malformed_total",
		Help: "Total deliveries rejected for an empty or unparseable body.",
	})

	DeliveriesForbidden = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ghmetrics_deliveries_forbidden_total",
		Help: "Total deliveries rejected by the origin address filter.",
	})

	UnknownEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ghmetrics_unknown_events_total",
		Help: "Total deliveries that fell through to the fallback measure.",
	})

	SinkWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ghmetrics_sink_writes_total",
		Help: "Total sink writes, labelled by outcome (ok, transient, permanent).",
	}, []string{"outcome"})

	ProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ghmetrics_processing_duration_ms",
		Help:    "End-to-end webhook processing latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})

	StreamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ghmetrics_stream_clients",
		Help: "Currently connected live-tail websocket clients.",
	})
)
