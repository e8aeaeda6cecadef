package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"
)

func rampCandles(n int, start time.Time, tf domrepo.Timeframe) []models.Candle {
	out := make([]models.Candle, n)
	price := 100.0
	for i := range out {
		open := price
		price += 0.5
		if i%3 == 0 {
			price -= 0.8
		}
		out[i] = models.Candle{
			Symbol: "BTCUSDT",
			Time:   start.Add(time.Duration(i) * tf.Duration()),
			Open:   open,
			High:   max(open, price) + 0.3,
			Low:    min(open, price) - 0.3,
			Close:  price,
			Volume: 100 + float64(i%7)*10,
		}
	}
	return out
}

type fakeStore struct {
	mu       sync.Mutex
	candles  []models.Candle
	err      error
	calls    int
	lastFrom time.Time
	lastTo   time.Time
}

func (s *fakeStore) GetCandles(_ context.Context, _ string, from, to time.Time, _ domrepo.Timeframe) ([]models.Candle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastFrom, s.lastTo = from, to
	return s.candles, s.err
}

func (s *fakeStore) GetLatestNCandles(_ context.Context, _ string, n int, _ domrepo.Timeframe) ([]models.Candle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if len(s.candles) > n {
		return s.candles[len(s.candles)-n:], nil
	}
	return s.candles, nil
}

func (s *fakeStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeWriter struct {
	mu     sync.Mutex
	stored map[domrepo.Timeframe][]models.Candle
	err    error
}

func (w *fakeWriter) StoreCandles(_ context.Context, tf domrepo.Timeframe, cs []models.Candle) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	if w.stored == nil {
		w.stored = map[domrepo.Timeframe][]models.Candle{}
	}
	w.stored[tf] = append(w.stored[tf], cs...)
	return nil
}

func (w *fakeWriter) Health(context.Context) error { return nil }

type fakeAnalyzer struct{}

func (fakeAnalyzer) Analyze(candles []models.Candle) models.PriceActionAnalysis {
	return models.PriceActionAnalysis{
		CandleCount: len(candles),
		Trend:       models.TrendBullish,
		Signals:     []models.PriceActionSignal{{Type: models.SignalBOS, Direction: models.SideBuy, Confidence: 70}},
	}
}

type fakeCalc struct{ err error }

func (c fakeCalc) Compute(candles []models.Candle) (models.IndicatorSnapshot, error) {
	if c.err != nil {
		return models.IndicatorSnapshot{}, c.err
	}
	return models.IndicatorSnapshot{Close: candles[len(candles)-1].Close, RSI: 55}, nil
}

type fakeScorer struct{ ok bool }

func (s fakeScorer) Score(symbol string, _ []models.Candle, _ []models.StrategyWeight) (models.CompositeScore, bool) {
	if !s.ok {
		return models.CompositeScore{}, false
	}
	return models.CompositeScore{Symbol: symbol, Score: 42, Confidence: 0.6, Recommendation: models.RecommendBuy}, true
}

func (fakeScorer) Combine(symbol string, _ []models.Candle, _ models.IndicatorSnapshot, _ models.PriceActionAnalysis, _ []models.StrategyWeight) models.CompositeScore {
	return models.CompositeScore{Symbol: symbol, Score: 42, Confidence: 0.6, Recommendation: models.RecommendBuy}
}

// recordingScorer counts calls and keeps the inputs handed to Combine.
type recordingScorer struct {
	mu       sync.Mutex
	scores   int
	combines int
	snap     models.IndicatorSnapshot
	pa       models.PriceActionAnalysis
}

func (s *recordingScorer) Score(symbol string, _ []models.Candle, _ []models.StrategyWeight) (models.CompositeScore, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores++
	return models.CompositeScore{Symbol: symbol}, true
}

func (s *recordingScorer) Combine(symbol string, _ []models.Candle, snap models.IndicatorSnapshot, pa models.PriceActionAnalysis, _ []models.StrategyWeight) models.CompositeScore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.combines++
	s.snap, s.pa = snap, pa
	return models.CompositeScore{Symbol: symbol, Score: -17}
}

type fakePublisher struct {
	mu      sync.Mutex
	reports []*models.AnalysisReport
	err     error
}

func (p *fakePublisher) Publish(_ context.Context, r *models.AnalysisReport) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.reports = append(p.reports, r)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeRecomputer struct {
	mu      sync.Mutex
	symbols []string
}

func (r *fakeRecomputer) Recompute(_ context.Context, symbol string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.symbols = append(r.symbols, symbol)
	return nil
}

type countingMetrics struct {
	mu       sync.Mutex
	errors   map[string]int
	outcomes map[string]int
	desyncs  int
	scores   int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{errors: map[string]int{}, outcomes: map[string]int{}}
}

func (m *countingMetrics) RecordMessageSent(string, string) {}
func (m *countingMetrics) RecordLastPrice(string, float64)  {}
func (m *countingMetrics) RecordLatency(string, float64)    {}

func (m *countingMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *countingMetrics) RecordDesync(string) {
	m.mu.Lock()
	m.desyncs++
	m.mu.Unlock()
}

func (m *countingMetrics) RecordBookUpdate(_, outcome string) {
	m.mu.Lock()
	m.outcomes[outcome]++
	m.mu.Unlock()
}

func (m *countingMetrics) RecordScore(string, float64, float64) {
	m.mu.Lock()
	m.scores++
	m.mu.Unlock()
}

func (m *countingMetrics) snapshot() (errs map[string]int, outcomes map[string]int, desyncs int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	errs = map[string]int{}
	for k, v := range m.errors {
		errs[k] = v
	}
	outcomes = map[string]int{}
	for k, v := range m.outcomes {
		outcomes[k] = v
	}
	return errs, outcomes, m.desyncs
}

var errBoom = errors.New("boom")
