package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"
	"SignalDesk/internal/middleware"
	pkgkafka "SignalDesk/pkg/kafka"
	applogger "SignalDesk/pkg/logger"
)

// Recomputer rebuilds and publishes a symbol's report.
type Recomputer interface {
	Recompute(ctx context.Context, symbol string) error
}

// KafkaCandlesHandler stores closed candles and triggers throttled recomputes.
type KafkaCandlesHandler struct {
	topic     string
	writer    domrepo.CandleWriter
	throttle  *middleware.RecomputeThrottle
	job       Recomputer
	metrics   domrepo.Metrics
	triggerTF domrepo.Timeframe
	l         *applogger.Logger
	now       func() time.Time
}

func NewKafkaCandlesHandler(topic string, writer domrepo.CandleWriter, throttle *middleware.RecomputeThrottle, job Recomputer, metrics domrepo.Metrics, triggerTF domrepo.Timeframe, l *applogger.Logger) *KafkaCandlesHandler {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &KafkaCandlesHandler{
		topic:     topic,
		writer:    writer,
		throttle:  throttle,
		job:       job,
		metrics:   metrics,
		triggerTF: triggerTF,
		l:         l,
		now:       time.Now,
	}
}

func (h *KafkaCandlesHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, tf, t, o, h, l, c, v, closed}
func (h *KafkaCandlesHandler) Handle(ctx context.Context, b []byte) error {
	var ev models.CandleEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode candle: %w", err)
	}
	ev.Symbol = strings.ToUpper(ev.Symbol)
	tf := domrepo.Timeframe(ev.TF)
	if ev.Symbol == "" || ev.T <= 0 || !domrepo.IsValidTimeframe(tf) {
		h.metrics.RecordError("consumer_invalid")
		return fmt.Errorf("invalid candle event symbol=%q tf=%q t=%d", ev.Symbol, ev.TF, ev.T)
	}

	c := ev.Candle()
	h.metrics.RecordLastPrice(ev.Symbol, c.Close)
	if !ev.Closed {
		return nil
	}
	h.metrics.RecordLatency("ingest_e2e_seconds", h.now().Sub(c.Time.Add(tf.Duration())).Seconds())

	start := time.Now()
	err := h.writer.StoreCandles(ctx, tf, []models.Candle{c})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordMessageSent("clickhouse", ev.Symbol)

	if tf != h.triggerTF || h.job == nil {
		return nil
	}
	if h.throttle != nil && !h.throttle.AllowCandle(ev.Symbol, c.Time, h.now()) {
		return nil
	}
	// storage succeeded; a failed recompute must not replay the insert
	if err := h.job.Recompute(ctx, ev.Symbol); err != nil {
		h.metrics.RecordError("recompute")
		h.l.Error("kafka.candles recompute failed", applogger.String("symbol", ev.Symbol), applogger.Error(err))
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaCandlesHandler)(nil)
