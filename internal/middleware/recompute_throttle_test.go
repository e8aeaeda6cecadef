package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingMetrics struct{ errors map[string]int }

func (m *countingMetrics) RecordMessageSent(string, string)     {}
func (m *countingMetrics) RecordError(kind string)              { m.errors[kind]++ }
func (m *countingMetrics) RecordLastPrice(string, float64)      {}
func (m *countingMetrics) RecordLatency(string, float64)        {}
func (m *countingMetrics) RecordDesync(string)                  {}
func (m *countingMetrics) RecordBookUpdate(string, string)      {}
func (m *countingMetrics) RecordScore(string, float64, float64) {}

func TestThrottleInterval(t *testing.T) {
	m := &countingMetrics{errors: map[string]int{}}
	th := NewRecomputeThrottle(10*time.Second, WithThrottleMetrics(m))
	t0 := time.Unix(0, 0)

	assert.True(t, th.Allow("BTCUSDT", t0))
	assert.False(t, th.Allow("BTCUSDT", t0.Add(5*time.Second)))
	assert.True(t, th.Allow("ETHUSDT", t0.Add(5*time.Second)))
	assert.True(t, th.Allow("BTCUSDT", t0.Add(10*time.Second)))
	assert.Equal(t, 1, m.errors["recompute_throttled"])
}

func TestThrottleCandleGate(t *testing.T) {
	th := NewRecomputeThrottle(0)
	c1 := time.Unix(60, 0)
	now := time.Unix(120, 0)

	assert.True(t, th.AllowCandle("BTCUSDT", c1, now))
	assert.False(t, th.AllowCandle("BTCUSDT", c1, now.Add(time.Minute)), "same candle twice")
	assert.False(t, th.AllowCandle("BTCUSDT", c1.Add(-time.Minute), now.Add(time.Minute)), "older candle")
	assert.True(t, th.AllowCandle("BTCUSDT", c1.Add(time.Minute), now.Add(time.Minute)))

	th.Reset("BTCUSDT")
	assert.True(t, th.AllowCandle("BTCUSDT", c1, now))
}
