package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	messagesSent *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
	desyncs      *prometheus.CounterVec
	bookUpdates  *prometheus.CounterVec
	score        *prometheus.GaugeVec
	confidence   *prometheus.GaugeVec
}

// New registers the recorder on the default registry.
func New() *Recorder { return NewWithRegisterer(prometheus.DefaultRegisterer) }

// NewWithRegisterer registers the recorder's collectors on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		messagesSent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "signaldesk_messages_sent_total",
			Help: "Messages written to a backend (kafka, clickhouse)",
		}, []string{"backend", "symbol"}),
		errorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "signaldesk_errors_total",
			Help: "Errors by kind",
		}, []string{"type"}),
		lastPrice: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "signaldesk_last_price",
			Help: "Last close seen for a symbol",
		}, []string{"symbol"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signaldesk_operation_duration_seconds",
			Help:    "Duration of operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		desyncs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "signaldesk_orderbook_desync_total",
			Help: "Diff sequence gaps that forced a snapshot refetch",
		}, []string{"symbol"}),
		bookUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "signaldesk_orderbook_updates_total",
			Help: "Depth diffs by outcome",
		}, []string{"symbol", "outcome"}),
		score: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "signaldesk_composite_score",
			Help: "Latest composite score in [-100, 100]",
		}, []string{"symbol"}),
		confidence: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "signaldesk_composite_confidence",
			Help: "Latest composite confidence in [0, 100]",
		}, []string{"symbol"}),
	}
}

func (r *Recorder) RecordMessageSent(backend, symbol string) {
	r.messagesSent.WithLabelValues(backend, symbol).Inc()
}

func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordDesync(symbol string) {
	r.desyncs.WithLabelValues(symbol).Inc()
}

func (r *Recorder) RecordBookUpdate(symbol, outcome string) {
	r.bookUpdates.WithLabelValues(symbol, outcome).Inc()
}

func (r *Recorder) RecordScore(symbol string, score, confidence float64) {
	r.score.WithLabelValues(symbol).Set(score)
	r.confidence.WithLabelValues(symbol).Set(confidence)
}
