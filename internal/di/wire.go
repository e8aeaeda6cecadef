//go:build wireinject
// +build wireinject

package di

import (
	"SignalDesk/pkg/config"
	"SignalDesk/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisCache,
		ProvideLocalCache,

		// Repositories
		ProvideCandleStore,
		ProvideReportPublisher,
		ProvideReportCache,

		// Analysis services
		ProvideAnalyzer,
		ProvideScorer,
		ProvideIndicatorCalculator,

		// Use cases
		ProvideMarketAnalysis,
		ProvideCandlesUseCase,
		ProvideRecomputeThrottle,
		ProvideKafkaCandlesHandler,
		ProvideBookRegistry,

		// HTTP
		ProvideRateLimiter,
		ProvideHTTPHandler,
		ProvideHTTPServer,

		// Application server
		ProvideScheduler,
		ProvideClosers,
		ProvideApp,
	)
	return &server.App{}, nil
}
