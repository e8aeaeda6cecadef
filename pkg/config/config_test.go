package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, []string{"localhost:9092"}, c.Kafka.Brokers)
	assert.Equal(t, []string{"BTCUSDT"}, c.Binance.Symbols)
	assert.Equal(t, 300, c.Analysis.Candles)
	assert.Equal(t, 30*time.Second, c.Analysis.CacheTTL)
	assert.Equal(t, 3, c.Analysis.Analyzer.SwingLeftBars)
	assert.Equal(t, 20, c.Analysis.Analyzer.SweepLookahead)
	assert.True(t, c.Kafka.Enabled)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	p := writeConfig(t, `
environment: production
server:
  port: 9090
kafka:
  enabled: false
binance:
  symbols: [ETHUSDT, SOLUSDT]
  reconnect_delay: 7s
analysis:
  timeframe: 5m
  analyzer:
    swing_left_bars: 5
  weights:
    - {id: trend, weight: 2, enabled: true}
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, 9090, c.Server.Port)
	assert.False(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"ETHUSDT", "SOLUSDT"}, c.Binance.Symbols)
	assert.Equal(t, 7*time.Second, c.Binance.ReconnectDelay)
	assert.Equal(t, "5m", c.Analysis.Timeframe)
	assert.Equal(t, 5, c.Analysis.Analyzer.SwingLeftBars)
	assert.Equal(t, 3, c.Analysis.Analyzer.SwingRightBars)
	require.Len(t, c.Analysis.Weights, 1)
	assert.Equal(t, 2.0, c.Analysis.Weights[0].Weight)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	p := writeConfig(t, "environment: staging\n")
	c, err := loadWithEnv(p, map[string]string{
		"SIGNALDESK_KAFKA_BROKERS":          "k1:9092,k2:9092",
		"SIGNALDESK_BINANCE_SYMBOLS":        "btcusdt, ethusdt",
		"SIGNALDESK_LOG_LEVEL":              "debug",
		"SIGNALDESK_KAFKA_CONSUMER_WORKERS": "8",
		"SIGNALDESK_ANALYSIS_CACHE_TTL":     "1m",
	})
	require.NoError(t, err)
	assert.Equal(t, "staging", c.Environment)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, c.Binance.Symbols)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, 8, c.Kafka.Consumer.Workers)
	assert.Equal(t, time.Minute, c.Analysis.CacheTTL)
}

func TestLoadWithEnvMissingFile(t *testing.T) {
	c, err := loadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"), map[string]string{
		"SIGNALDESK_ENVIRONMENT": "ci",
	})
	require.NoError(t, err)
	assert.Equal(t, "ci", c.Environment)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"timeframe": "analysis:\n  timeframe: 4h\n",
		"candles":   "analysis:\n  candles: 5\n",
		"brokers":   "kafka:\n  brokers: []\n",
		"port":      "server:\n  port: 70000\n",
		"weights":   "analysis:\n  weights:\n    - {weight: 1}\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
		})
	}
}
