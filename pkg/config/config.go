package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/services/priceaction"
	"SignalDesk/pkg/logger"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "SIGNALDESK_"

type Config struct {
	Environment string         `yaml:"environment" env:"ENVIRONMENT" default:"development"`
	Log         logger.Config  `yaml:"log" envPrefix:"LOG_"`
	Server      ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Metrics     MetricsConfig  `yaml:"metrics" envPrefix:"METRICS_"`
	Kafka       KafkaConfig    `yaml:"kafka" envPrefix:"KAFKA_"`
	ClickHouse  ClickHouse     `yaml:"clickhouse" envPrefix:"CLICKHOUSE_"`
	Redis       RedisConfig    `yaml:"redis" envPrefix:"REDIS_"`
	Binance     BinanceConfig  `yaml:"binance" envPrefix:"BINANCE_"`
	Analysis    AnalysisConfig `yaml:"analysis" envPrefix:"ANALYSIS_"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" env:"HOST" default:"0.0.0.0"`
	Port            int           `yaml:"port" env:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" default:"15s"`
	SlowRequest     time.Duration `yaml:"slow_request" env:"SLOW_REQUEST" default:"500ms"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:"," default:"[\"*\"]"`
	RateLimit       float64       `yaml:"rate_limit" env:"RATE_LIMIT" default:"10"` // requests per second per client
	RateBurst       float64       `yaml:"rate_burst" env:"RATE_BURST" default:"20"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED" default:"true"`
	Path    string `yaml:"path" env:"PATH" default:"/metrics"`
}

type KafkaConfig struct {
	Enabled      bool     `yaml:"enabled" env:"ENABLED" default:"true"`
	Brokers      []string `yaml:"brokers" env:"BROKERS" envSeparator:"," default:"[\"localhost:9092\"]"`
	CandlesTopic string   `yaml:"candles_topic" env:"CANDLES_TOPIC" default:"candles"`
	ScoresTopic  string   `yaml:"scores_topic" env:"SCORES_TOPIC" default:"signaldesk.scores"`
	RequiredAcks int      `yaml:"required_acks" env:"REQUIRED_ACKS" default:"-1"`
	Compression  string   `yaml:"compression" env:"COMPRESSION" default:"snappy"`
	Producer     struct {
		MaxAttempts     int           `yaml:"max_attempts" env:"MAX_ATTEMPTS" default:"5"`
		Linger          time.Duration `yaml:"linger" env:"LINGER" default:"50ms"`
		BatchBytes      int           `yaml:"batch_bytes" env:"BATCH_BYTES" default:"1048576"`
		BatchSize       int           `yaml:"batch_size" env:"BATCH_SIZE" default:"100"`
		WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT" default:"10s"`
		ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT" default:"10s"`
		Async           bool          `yaml:"async" env:"ASYNC"`
		AutoCreateTopic bool          `yaml:"auto_create_topic" env:"AUTO_CREATE_TOPIC"`
	} `yaml:"producer" envPrefix:"PRODUCER_"`
	Consumer struct {
		GroupID    string        `yaml:"group_id" env:"GROUP_ID" default:"signaldesk"`
		Workers    int           `yaml:"workers" env:"WORKERS" default:"2"`
		BufferSize int           `yaml:"buffer_size" env:"BUFFER_SIZE" default:"256"`
		RetryMax   int           `yaml:"retry_max" env:"RETRY_MAX" default:"3"`
		BackoffMin time.Duration `yaml:"backoff_min" env:"BACKOFF_MIN" default:"100ms"`
		BackoffMax time.Duration `yaml:"backoff_max" env:"BACKOFF_MAX" default:"2s"`
		DLQTopic   string        `yaml:"dlq_topic" env:"DLQ_TOPIC"`
		MinBytes   int           `yaml:"min_bytes" env:"MIN_BYTES" default:"1"`
		MaxBytes   int           `yaml:"max_bytes" env:"MAX_BYTES" default:"10485760"`
	} `yaml:"consumer" envPrefix:"CONSUMER_"`
}

type ClickHouse struct {
	Host             string        `yaml:"host" env:"HOST" default:"localhost"`
	Port             int           `yaml:"port" env:"PORT" default:"9000"`
	Database         string        `yaml:"database" env:"DATABASE" default:"signaldesk"`
	User             string        `yaml:"user" env:"USER" default:"default"`
	Password         string        `yaml:"password" env:"PASSWORD"`
	UseHTTP          bool          `yaml:"use_http" env:"USE_HTTP"`
	AsyncInsert      bool          `yaml:"async_insert" env:"ASYNC_INSERT"`
	WaitForAsync     bool          `yaml:"wait_for_async_insert" env:"WAIT_FOR_ASYNC_INSERT"`
	DialTimeout      time.Duration `yaml:"dial_timeout" env:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT" default:"10s"`
	WriteTimeout     time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT" default:"10s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" env:"MAX_EXECUTION_TIME" default:"30s"`
	InitSchema       bool          `yaml:"init_schema" env:"INIT_SCHEMA" default:"true"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	Addr     string `yaml:"addr" env:"ADDR" default:"localhost:6379"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	Prefix   string `yaml:"prefix" env:"PREFIX" default:"signaldesk"`
}

type BinanceConfig struct {
	Enabled        bool          `yaml:"enabled" env:"ENABLED" default:"true"`
	RestURL        string        `yaml:"rest_url" env:"REST_URL" default:"https://api.binance.com"`
	WSURL          string        `yaml:"ws_url" env:"WS_URL" default:"wss://stream.binance.com:9443"`
	Symbols        []string      `yaml:"symbols" env:"SYMBOLS" envSeparator:"," default:"[\"BTCUSDT\"]"`
	DepthLimit     int           `yaml:"depth_limit" env:"DEPTH_LIMIT" default:"1000"`
	UpdateSpeed    string        `yaml:"update_speed" env:"UPDATE_SPEED" default:"100ms"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" default:"10s"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay" env:"RECONNECT_DELAY" default:"3s"`
	PingInterval   time.Duration `yaml:"ping_interval" env:"PING_INTERVAL" default:"30s"`
}

type AnalysisConfig struct {
	Timeframe         string                  `yaml:"timeframe" env:"TIMEFRAME" default:"1m"`
	Candles           int                     `yaml:"candles" env:"CANDLES" default:"300"`
	RecomputeInterval time.Duration           `yaml:"recompute_interval" env:"RECOMPUTE_INTERVAL" default:"5s"`
	Cron              string                  `yaml:"cron" env:"CRON" default:"0 * * * * *"`
	Timeout           time.Duration           `yaml:"timeout" env:"TIMEOUT" default:"10s"`
	CacheTTL          time.Duration           `yaml:"cache_ttl" env:"CACHE_TTL" default:"30s"`
	LocalCacheTTL     time.Duration           `yaml:"local_cache_ttl" env:"LOCAL_CACHE_TTL" default:"5s"`
	Analyzer          priceaction.Config      `yaml:"analyzer" env:"-"`
	Weights           []models.StrategyWeight `yaml:"weights" env:"-"`
}

// Load reads a YAML file over the defaults. An empty path yields the
// defaults alone.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv is Load with SIGNALDESK_* environment overrides applied before
// validation. A missing file is not an error.
func LoadWithEnv(path string) (*Config, error) {
	return loadWithEnv(path, nil)
}

func loadWithEnv(path string, environ map[string]string) (*Config, error) {
	c, err := read(path)
	if errors.Is(err, os.ErrNotExist) {
		c, err = read("")
	}
	if err != nil {
		return nil, err
	}

	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	for i, s := range c.Binance.Symbols {
		c.Binance.Symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// read applies defaults first so explicit zero values in the file survive.
func read(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	c.Analysis.Analyzer = mergeAnalyzer(c.Analysis.Analyzer)
	return &c, nil
}

func mergeAnalyzer(c priceaction.Config) priceaction.Config {
	d := priceaction.DefaultConfig()
	if c.SwingLeftBars <= 0 {
		c.SwingLeftBars = d.SwingLeftBars
	}
	if c.SwingRightBars <= 0 {
		c.SwingRightBars = d.SwingRightBars
	}
	if c.FVGMinGapPct <= 0 {
		c.FVGMinGapPct = d.FVGMinGapPct
	}
	if c.EqualLevelTolerancePct <= 0 {
		c.EqualLevelTolerancePct = d.EqualLevelTolerancePct
	}
	if c.DisplacementMinPct <= 0 {
		c.DisplacementMinPct = d.DisplacementMinPct
	}
	if c.SweepWickThresholdPct <= 0 {
		c.SweepWickThresholdPct = d.SweepWickThresholdPct
	}
	if c.BreakLookahead <= 0 {
		c.BreakLookahead = d.BreakLookahead
	}
	if c.SweepLookahead <= 0 {
		c.SweepLookahead = d.SweepLookahead
	}
	return c
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Analysis.Timeframe {
	case "1m", "5m", "15m", "1h":
	default:
		return fmt.Errorf("analysis.timeframe must be one of 1m, 5m, 15m, 1h, got %q", c.Analysis.Timeframe)
	}
	if c.Analysis.Candles < priceaction.MinCandles {
		return fmt.Errorf("analysis.candles must be at least %d", priceaction.MinCandles)
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
		}
		if c.Kafka.CandlesTopic == "" || c.Kafka.ScoresTopic == "" {
			return fmt.Errorf("kafka.candles_topic and kafka.scores_topic are required")
		}
	}
	if c.Binance.Enabled && len(c.Binance.Symbols) == 0 {
		return fmt.Errorf("binance.symbols cannot be empty")
	}
	for _, w := range c.Analysis.Weights {
		if w.ID == "" || w.Weight < 0 {
			return fmt.Errorf("analysis.weights: invalid entry %+v", w)
		}
	}
	return nil
}
