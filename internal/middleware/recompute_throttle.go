package middleware

import (
	"sync"
	"time"

	domrepo "SignalDesk/internal/domain/repository"
)

// RecomputeThrottle gates per-symbol recomputation. A symbol passes at most
// once per interval, and at most once per closed candle.
type RecomputeThrottle struct {
	mu         sync.Mutex
	interval   time.Duration
	lastRun    map[string]time.Time
	lastCandle map[string]time.Time
	metrics    domrepo.Metrics
}

type ThrottleOption func(*RecomputeThrottle)

// WithThrottleMetrics counts rejected recomputes as "recompute_throttled".
func WithThrottleMetrics(m domrepo.Metrics) ThrottleOption {
	return func(t *RecomputeThrottle) { t.metrics = m }
}

func NewRecomputeThrottle(interval time.Duration, opts ...ThrottleOption) *RecomputeThrottle {
	t := &RecomputeThrottle{
		interval:   interval,
		lastRun:    make(map[string]time.Time),
		lastCandle: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Allow reports whether symbol may recompute at now and, if so, records the run.
func (t *RecomputeThrottle) Allow(symbol string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if last, ok := t.lastRun[symbol]; ok && now.Sub(last) < t.interval {
		t.reject()
		return false
	}
	t.lastRun[symbol] = now
	return true
}

// AllowCandle is Allow plus the candle gate: a candle at or before the last
// accepted one for symbol is rejected, as are repeats of the same close.
func (t *RecomputeThrottle) AllowCandle(symbol string, candle, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.lastCandle[symbol]; ok && !candle.After(prev) {
		t.reject()
		return false
	}
	if last, ok := t.lastRun[symbol]; ok && now.Sub(last) < t.interval {
		t.reject()
		return false
	}
	t.lastCandle[symbol] = candle
	t.lastRun[symbol] = now
	return true
}

// Reset forgets symbol so the next call passes.
func (t *RecomputeThrottle) Reset(symbol string) {
	t.mu.Lock()
	delete(t.lastRun, symbol)
	delete(t.lastCandle, symbol)
	t.mu.Unlock()
}

func (t *RecomputeThrottle) reject() {
	if t.metrics != nil {
		t.metrics.RecordError("recompute_throttled")
	}
}
