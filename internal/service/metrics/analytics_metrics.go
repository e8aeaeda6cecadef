package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	AnalyticsLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "signaldesk",
			Subsystem: "analytics",
			Name:      "latency_seconds",
			Help:      "Latency of analysis stages and endpoints",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"stage"},
	)

	AnalyticsErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signaldesk",
			Subsystem: "analytics",
			Name:      "errors_total",
			Help:      "Errors by analysis stage or endpoint",
		},
		[]string{"stage"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signaldesk",
			Subsystem: "analytics",
			Name:      "cache_lookups_total",
			Help:      "Report cache lookups by result",
		},
		[]string{"result"},
	)

	SignalsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signaldesk",
			Subsystem: "analytics",
			Name:      "signals_total",
			Help:      "Price-action signals emitted by type",
		},
		[]string{"type"},
	)
)

// Register adds the analytics collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(AnalyticsLatency, AnalyticsErrors, CacheLookups, SignalsEmitted)
	})
}
