package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"
	domsvc "SignalDesk/internal/domain/service"
	"SignalDesk/internal/service/cache"
	svcmetrics "SignalDesk/internal/service/metrics"
	"SignalDesk/internal/services/features"
	"SignalDesk/internal/services/scoring"
	applogger "SignalDesk/pkg/logger"
)

// ErrNoCandles is returned when the store has nothing for the requested series.
var ErrNoCandles = errors.New("no candles")

// MarketAnalysisUseCase builds AnalysisReports from stored candles and
// fans them out to the cache and the score topic.
type MarketAnalysisUseCase struct {
	store     domrepo.CandleStore
	analyzer  domsvc.StructureAnalyzer
	calc      domsvc.IndicatorCalculator
	scorer    domsvc.CompositeScorer
	metrics   domrepo.Metrics
	cache     cache.BytesCache
	cacheTTL  time.Duration
	publisher domrepo.ReportPublisher
	weights   []models.StrategyWeight
	defaultN  int
	defaultTF domrepo.Timeframe
	timeout   time.Duration
	l         *applogger.Logger
	now       func() time.Time
}

type AnalysisOption func(*MarketAnalysisUseCase)

// WithReportCache enables read-through caching of reports for ttl.
func WithReportCache(c cache.BytesCache, ttl time.Duration) AnalysisOption {
	return func(uc *MarketAnalysisUseCase) {
		uc.cache = c
		uc.cacheTTL = ttl
	}
}

// WithReportPublisher publishes every recomputed report.
func WithReportPublisher(p domrepo.ReportPublisher) AnalysisOption {
	return func(uc *MarketAnalysisUseCase) { uc.publisher = p }
}

func WithWeights(w []models.StrategyWeight) AnalysisOption {
	return func(uc *MarketAnalysisUseCase) { uc.weights = w }
}

// WithDefaultSeries sets the series Recompute uses.
func WithDefaultSeries(n int, tf domrepo.Timeframe) AnalysisOption {
	return func(uc *MarketAnalysisUseCase) {
		if n > 0 {
			uc.defaultN = n
		}
		if domrepo.IsValidTimeframe(tf) {
			uc.defaultTF = tf
		}
	}
}

func WithAnalysisTimeout(d time.Duration) AnalysisOption {
	return func(uc *MarketAnalysisUseCase) {
		if d > 0 {
			uc.timeout = d
		}
	}
}

func WithAnalysisLogger(l *applogger.Logger) AnalysisOption {
	return func(uc *MarketAnalysisUseCase) {
		if l != nil {
			uc.l = l
		}
	}
}

func NewMarketAnalysisUseCase(
	store domrepo.CandleStore,
	analyzer domsvc.StructureAnalyzer,
	calc domsvc.IndicatorCalculator,
	scorer domsvc.CompositeScorer,
	metrics domrepo.Metrics,
	opts ...AnalysisOption,
) *MarketAnalysisUseCase {
	uc := &MarketAnalysisUseCase{
		store:     store,
		analyzer:  analyzer,
		calc:      calc,
		scorer:    scorer,
		metrics:   metrics,
		defaultN:  300,
		defaultTF: domrepo.TF1m,
		timeout:   10 * time.Second,
		l:         applogger.Nop(),
		now:       time.Now,
	}
	if uc.metrics == nil {
		uc.metrics = nopMetrics{}
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type AnalysisParams struct {
	Symbol    string
	N         int
	Timeframe domrepo.Timeframe
}

// Analyze returns the cached report for p when present and builds it otherwise.
func (uc *MarketAnalysisUseCase) Analyze(ctx context.Context, p AnalysisParams) (*models.AnalysisReport, error) {
	p = uc.normalize(p)
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	key := reportKey(p)
	if uc.cache != nil {
		var cached models.AnalysisReport
		hit, err := cache.GetJSON(ctx, uc.cache, key, &cached)
		switch {
		case err != nil:
			svcmetrics.CacheLookups.WithLabelValues("error").Inc()
			uc.l.Warn("analysis.cache get failed", applogger.String("key", key), applogger.Error(err))
		case hit:
			svcmetrics.CacheLookups.WithLabelValues("hit").Inc()
			return &cached, nil
		default:
			svcmetrics.CacheLookups.WithLabelValues("miss").Inc()
		}
	}

	report, err := uc.build(ctx, p)
	if err != nil {
		return nil, err
	}
	uc.saveReport(ctx, key, report)
	return report, nil
}

// Recompute rebuilds the default-series report for symbol, refreshes the
// cache and publishes it.
func (uc *MarketAnalysisUseCase) Recompute(ctx context.Context, symbol string) error {
	p := uc.normalize(AnalysisParams{Symbol: symbol})
	report, err := uc.build(ctx, p)
	if err != nil {
		return fmt.Errorf("recompute %s: %w", symbol, err)
	}
	uc.saveReport(ctx, reportKey(p), report)
	if uc.publisher == nil {
		return nil
	}
	if err := uc.publisher.Publish(ctx, report); err != nil {
		uc.metrics.RecordError("report_publish")
		return fmt.Errorf("publish %s: %w", symbol, err)
	}
	uc.metrics.RecordMessageSent("kafka", symbol)
	return nil
}

func (uc *MarketAnalysisUseCase) normalize(p AnalysisParams) AnalysisParams {
	if p.N <= 0 {
		p.N = uc.defaultN
	}
	if !domrepo.IsValidTimeframe(p.Timeframe) {
		p.Timeframe = uc.defaultTF
	}
	return p
}

func (uc *MarketAnalysisUseCase) build(ctx context.Context, p AnalysisParams) (*models.AnalysisReport, error) {
	start := time.Now()
	defer func() {
		elapsed := time.Since(start).Seconds()
		svcmetrics.AnalyticsLatency.WithLabelValues("analysis").Observe(elapsed)
		uc.metrics.RecordLatency("analysis_build", elapsed)
	}()

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	candles, err := uc.store.GetLatestNCandles(ctx, p.Symbol, p.N, p.Timeframe)
	if err != nil {
		svcmetrics.AnalyticsErrors.WithLabelValues("candles").Inc()
		return nil, fmt.Errorf("load candles: %w", err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%s %s: %w", p.Symbol, p.Timeframe, ErrNoCandles)
	}

	last := candles[len(candles)-1]
	res := &models.AnalysisReport{
		ID:          uuid.NewString(),
		Symbol:      p.Symbol,
		Timeframe:   string(p.Timeframe),
		GeneratedAt: uc.now().UTC(),
		LastClose:   last.Close,
		CandleCount: len(candles),
		Errors:      map[string]string{},
	}

	// stages are independent reads of the same series; the composite score
	// combines their results afterwards
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		fail = func(stage string, err error) {
			mu.Lock()
			res.Errors[stage] = err.Error()
			mu.Unlock()
			svcmetrics.AnalyticsErrors.WithLabelValues(stage).Inc()
		}
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		res.PriceAction = uc.analyzer.Analyze(candles)
	}()
	go func() {
		defer wg.Done()
		snap, err := uc.calc.Compute(candles)
		if err != nil {
			fail("indicators", err)
			return
		}
		res.Indicators = &snap
	}()
	go func() {
		defer wg.Done()
		res.Regime = features.Summarize(candles, p.Timeframe)
		if res.Regime == nil {
			fail("regime", fmt.Errorf("no usable rows"))
		}
	}()
	wg.Wait()

	switch {
	case len(candles) < scoring.MinCandles:
		fail("composite", fmt.Errorf("insufficient data: %d candles", len(candles)))
	case res.Indicators == nil:
		fail("composite", fmt.Errorf("indicators unavailable"))
	default:
		score := uc.scorer.Combine(p.Symbol, candles, *res.Indicators, res.PriceAction, uc.weights)
		res.Composite = &score
	}

	for _, s := range res.PriceAction.Signals {
		svcmetrics.SignalsEmitted.WithLabelValues(string(s.Type)).Inc()
	}
	uc.metrics.RecordLastPrice(p.Symbol, last.Close)
	if res.Composite != nil {
		uc.metrics.RecordScore(p.Symbol, res.Composite.Score, res.Composite.Confidence)
	}
	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}

func (uc *MarketAnalysisUseCase) saveReport(ctx context.Context, key string, r *models.AnalysisReport) {
	if uc.cache == nil {
		return
	}
	if err := cache.SetJSON(ctx, uc.cache, key, r, uc.cacheTTL); err != nil {
		uc.metrics.RecordError("cache_set")
		uc.l.Warn("analysis.cache set failed", applogger.String("key", key), applogger.Error(err))
	}
}

func reportKey(p AnalysisParams) string {
	return fmt.Sprintf("report:%s:%s:%d", p.Symbol, p.Timeframe, p.N)
}
