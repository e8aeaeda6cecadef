package di

import (
	"context"
	"fmt"
	"time"

	"SignalDesk/internal/domain/repository"
	"SignalDesk/internal/handler/api"
	mid "SignalDesk/internal/middleware"
	internalrepo "SignalDesk/internal/repository"
	"SignalDesk/internal/service/binance"
	"SignalDesk/internal/service/cache"
	"SignalDesk/internal/service/ratelimit"
	"SignalDesk/internal/service/scheduler"
	"SignalDesk/internal/services/indicators"
	"SignalDesk/internal/services/priceaction"
	"SignalDesk/internal/services/scoring"
	"SignalDesk/internal/usecase"
	pkgch "SignalDesk/pkg/clickhouse"
	"SignalDesk/pkg/config"
	xhttp "SignalDesk/pkg/http"
	pkgkafka "SignalDesk/pkg/kafka"
	applogger "SignalDesk/pkg/logger"
	"SignalDesk/pkg/metrics"
	"SignalDesk/pkg/server"
)

// ProvideLogger builds the process logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient connects and, unless disabled, creates the candle tables.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	if !cfg.ClickHouse.InitSchema {
		return client, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.Schema(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	l.Info("clickhouse schema ready", applogger.String("database", cfg.ClickHouse.Database))
	return client, nil
}

func ProvideCandleStore(ch *pkgch.Client, cfg *config.Config, l *applogger.Logger) *internalrepo.CHCandleStore {
	s := internalrepo.NewCHCandleStore(ch, cfg.ClickHouse.Database)
	s.SetLogger(l)
	return s
}

// ProvideKafkaProducer returns nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithAutoCreateTopic(cfg.Kafka.Producer.AutoCreateTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideReportPublisher returns nil when there is no producer.
func ProvideReportPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.ReportPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaReportPublisher(producer, cfg.Kafka.ScoresTopic)
}

// ProvideRedisCache returns nil when Redis is disabled. An unreachable Redis
// is logged, not fatal: cache reads then miss and the locker denies.
func ProvideRedisCache(cfg *config.Config, l *applogger.Logger) *cache.RedisCache {
	if !cfg.Redis.Enabled {
		return nil
	}
	rc := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Redis.Prefix,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		l.Warn("redis ping failed", applogger.String("addr", cfg.Redis.Addr), applogger.Error(err))
	}
	return rc
}

func ProvideLocalCache() *cache.TTLCache {
	return cache.NewTTLCache()
}

// ProvideReportCache layers the local cache over Redis when Redis is enabled.
func ProvideReportCache(cfg *config.Config, local *cache.TTLCache, rc *cache.RedisCache) cache.BytesCache {
	if rc == nil {
		return local
	}
	return cache.NewLayered(local, rc, cfg.Analysis.LocalCacheTTL)
}

func ProvideAnalyzer(cfg *config.Config) *priceaction.Analyzer {
	return priceaction.NewAnalyzer(cfg.Analysis.Analyzer)
}

func ProvideScorer(cfg *config.Config) *scoring.Scorer {
	return scoring.NewScorer(scoring.WithAnalyzerConfig(cfg.Analysis.Analyzer))
}

func ProvideIndicatorCalculator() *indicators.Calculator {
	return indicators.NewCalculator()
}

func ProvideMarketAnalysis(
	cfg *config.Config,
	store *internalrepo.CHCandleStore,
	analyzer *priceaction.Analyzer,
	calc *indicators.Calculator,
	scorer *scoring.Scorer,
	m repository.Metrics,
	reportCache cache.BytesCache,
	pub repository.ReportPublisher,
	l *applogger.Logger,
) *usecase.MarketAnalysisUseCase {
	opts := []usecase.AnalysisOption{
		usecase.WithReportCache(reportCache, cfg.Analysis.CacheTTL),
		usecase.WithWeights(cfg.Analysis.Weights),
		usecase.WithDefaultSeries(cfg.Analysis.Candles, repository.Timeframe(cfg.Analysis.Timeframe)),
		usecase.WithAnalysisTimeout(cfg.Analysis.Timeout),
		usecase.WithAnalysisLogger(l),
	}
	if pub != nil {
		opts = append(opts, usecase.WithReportPublisher(pub))
	}
	return usecase.NewMarketAnalysisUseCase(store, analyzer, calc, scorer, m, opts...)
}

func ProvideCandlesUseCase(store *internalrepo.CHCandleStore) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(store)
}

func ProvideRecomputeThrottle(cfg *config.Config, m repository.Metrics) *mid.RecomputeThrottle {
	return mid.NewRecomputeThrottle(cfg.Analysis.RecomputeInterval, mid.WithThrottleMetrics(m))
}

// ProvideKafkaCandlesHandler returns nil when Kafka is disabled.
func ProvideKafkaCandlesHandler(
	cfg *config.Config,
	store *internalrepo.CHCandleStore,
	throttle *mid.RecomputeThrottle,
	uc *usecase.MarketAnalysisUseCase,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.KafkaCandlesHandler {
	if !cfg.Kafka.Enabled {
		return nil
	}
	return usecase.NewKafkaCandlesHandler(cfg.Kafka.CandlesTopic, store, throttle, uc, m,
		repository.Timeframe(cfg.Analysis.Timeframe), l)
}

// ProvideKafkaConsumer returns nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(pkgkafka.TraceHook(), pkgkafka.LoggingHook(l)))
	return consumer, nil
}

// ProvideBookRegistry creates one sync per configured symbol. The registry is
// empty when the Binance feed is disabled.
func ProvideBookRegistry(cfg *config.Config, m repository.Metrics, l *applogger.Logger) *usecase.BookRegistry {
	if !cfg.Binance.Enabled {
		return usecase.NewBookRegistry()
	}
	snapshots := binance.NewSnapshotClient(cfg.Binance.RestURL, cfg.Binance.RequestTimeout)
	syncs := make([]*usecase.OrderBookSync, 0, len(cfg.Binance.Symbols))
	for _, sym := range cfg.Binance.Symbols {
		stream := binance.NewStream(cfg.Binance.WSURL, sym, cfg.Binance.ReconnectDelay, cfg.Binance.PingInterval,
			binance.WithLogger(l), binance.WithUpdateSpeed(cfg.Binance.UpdateSpeed))
		syncs = append(syncs, usecase.NewOrderBookSync(sym, cfg.Binance.DepthLimit, stream, snapshots, m,
			usecase.WithBookSyncLogger(l), usecase.WithRetryDelay(cfg.Binance.ReconnectDelay)))
	}
	return usecase.NewBookRegistry(syncs...)
}

func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Server.RateBurst, cfg.Server.RateLimit)
}

// ProvideHTTPHandler combines the API route sets.
func ProvideHTTPHandler(
	cfg *config.Config,
	l *applogger.Logger,
	uc *usecase.MarketAnalysisUseCase,
	candles *usecase.CandlesUseCase,
	scorer *scoring.Scorer,
	rl *ratelimit.Limiter,
	books *usecase.BookRegistry,
) xhttp.Handler {
	return xhttp.Handlers{
		api.NewAnalysisHandler(l, uc, candles, scorer, cfg.Analysis.Analyzer, rl),
		api.NewOrderBookHandler(l, books),
	}
}

func ProvideHTTPServer(cfg *config.Config, h xhttp.Handler, l *applogger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(h,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
		xhttp.WithCORSOrigins(cfg.Server.CORSOrigins),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(l),
	)
}

// ProvideScheduler registers the recompute timer and cache/limiter housekeeping.
func ProvideScheduler(
	cfg *config.Config,
	uc *usecase.MarketAnalysisUseCase,
	rc *cache.RedisCache,
	local *cache.TTLCache,
	rl *ratelimit.Limiter,
	l *applogger.Logger,
) (*scheduler.Scheduler, error) {
	opts := []scheduler.Option{scheduler.WithLogger(l), scheduler.WithJobTimeout(cfg.Analysis.Timeout)}
	if rc != nil {
		opts = append(opts, scheduler.WithLocker(rc, cfg.Analysis.RecomputeInterval))
	}
	s := scheduler.New(uc, cfg.Binance.Symbols, opts...)
	if err := s.Register(cfg.Analysis.Cron); err != nil {
		return nil, err
	}
	if err := s.RegisterFunc("@every 1m", "cache_sweep", func() { local.Sweep() }); err != nil {
		return nil, err
	}
	if err := s.RegisterFunc("@every 5m", "ratelimit_forget", func() { rl.Forget(10 * time.Minute) }); err != nil {
		return nil, err
	}
	return s, nil
}

// ProvideClosers lists resources to release after shutdown, skipping disabled ones.
func ProvideClosers(ch *pkgch.Client, pub repository.ReportPublisher, rc *cache.RedisCache) server.Closers {
	closers := server.Closers{ch}
	if pub != nil {
		closers = append(closers, pub)
	}
	if rc != nil {
		closers = append(closers, rc)
	}
	return closers
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaCandlesHandler,
	books *usecase.BookRegistry,
	sched *scheduler.Scheduler,
	closers server.Closers,
) *server.App {
	var handler pkgkafka.MessageHandler
	if kh != nil {
		handler = kh
	}
	return server.New(cfg, l, httpServer, consumer, handler, books, sched, closers)
}
