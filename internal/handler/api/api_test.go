package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"
	"SignalDesk/internal/service/ratelimit"
	"SignalDesk/internal/services/indicators"
	"SignalDesk/internal/services/orderbook"
	"SignalDesk/internal/services/priceaction"
	"SignalDesk/internal/services/scoring"
	"SignalDesk/internal/usecase"
)

var t0 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func series(n int) []models.Candle {
	out := make([]models.Candle, n)
	price := 200.0
	for i := range out {
		open := price
		if i%4 == 3 {
			price -= 1.1
		} else {
			price += 0.9
		}
		out[i] = models.Candle{
			Time:   t0.Add(time.Duration(i) * time.Minute),
			Open:   open,
			High:   max(open, price) + 0.4,
			Low:    min(open, price) - 0.4,
			Close:  price,
			Volume: 50 + float64(i%5),
		}
	}
	return out
}

type memStore struct{ candles []models.Candle }

func (s memStore) GetCandles(_ context.Context, _ string, from, to time.Time, _ domrepo.Timeframe) ([]models.Candle, error) {
	var out []models.Candle
	for _, c := range s.candles {
		if !c.Time.Before(from) && !c.Time.After(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s memStore) GetLatestNCandles(_ context.Context, _ string, n int, _ domrepo.Timeframe) ([]models.Candle, error) {
	if len(s.candles) > n {
		return s.candles[len(s.candles)-n:], nil
	}
	return s.candles, nil
}

type stubScorer struct{}

func (stubScorer) Score(symbol string, candles []models.Candle, _ []models.StrategyWeight) (models.CompositeScore, bool) {
	if len(candles) < scoring.MinCandles {
		return models.CompositeScore{}, false
	}
	return models.CompositeScore{Symbol: symbol, Score: 12.5, Recommendation: models.RecommendNeutral}, true
}

func (stubScorer) Combine(symbol string, _ []models.Candle, _ models.IndicatorSnapshot, _ models.PriceActionAnalysis, _ []models.StrategyWeight) models.CompositeScore {
	return models.CompositeScore{Symbol: symbol, Score: 12.5, Recommendation: models.RecommendNeutral}
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newAPI(store memStore, rl *ratelimit.Limiter) *echo.Echo {
	uc := usecase.NewMarketAnalysisUseCase(store, priceaction.NewAnalyzer(priceaction.DefaultConfig()),
		indicators.NewCalculator(), scoring.NewScorer(), nil)
	h := NewAnalysisHandler(nil, uc, usecase.NewCandlesUseCase(store), stubScorer{}, priceaction.DefaultConfig(), rl)
	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, target string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestAnalysisEndpoint(t *testing.T) {
	e := newAPI(memStore{candles: series(120)}, nil)

	rec, env := do(t, e, http.MethodGet, "/api/analysis?symbol=btcusdt&n=100", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report models.AnalysisReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, "BTCUSDT", report.Symbol)
	assert.Equal(t, 100, report.CandleCount)
	assert.Equal(t, "1m", report.Timeframe)

	rec, _ = do(t, e, http.MethodGet, "/api/analysis", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, e, http.MethodGet, "/api/analysis?symbol=BTCUSDT&tf=4h", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisNotFoundAndRateLimit(t *testing.T) {
	e := newAPI(memStore{}, ratelimit.New(1, 0))

	rec, _ := do(t, e, http.MethodGet, "/api/analysis?symbol=BTCUSDT", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env := do(t, e, http.MethodGet, "/api/analysis?symbol=BTCUSDT", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, http.StatusTooManyRequests, env.Status)
}

func TestCandlesEndpoint(t *testing.T) {
	e := newAPI(memStore{candles: series(60)}, nil)

	from := t0.Add(10 * time.Minute).Format(time.RFC3339)
	to := t0.Add(19 * time.Minute).UnixMilli()
	rec, env := do(t, e, http.MethodGet, "/api/candles?symbol=BTCUSDT&from="+from+"&to="+itoa(to), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var res usecase.GetCandlesResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 10, res.Count)

	rec, _ = do(t, e, http.MethodGet, "/api/candles?symbol=BTCUSDT&from="+itoa(t0.Add(time.Hour).Unix())+"&to="+itoa(t0.Unix()), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPriceActionEndpoint(t *testing.T) {
	e := newAPI(memStore{}, nil)

	rec, env := do(t, e, http.MethodPost, "/api/price-action", models.PriceActionRequest{
		Candles: series(40),
		Config:  models.AnalyzerConfigRequest{SwingLeftBars: 2, SwingRightBars: 2},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var pa models.PriceActionAnalysis
	require.NoError(t, json.Unmarshal(env.Data, &pa))
	assert.Equal(t, 40, pa.CandleCount)

	bad := series(20)
	bad[3].Close = 0
	rec, _ = do(t, e, http.MethodPost, "/api/price-action", models.PriceActionRequest{Candles: bad})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, e, http.MethodPost, "/api/price-action", map[string]any{"candles": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoreEndpoint(t *testing.T) {
	e := newAPI(memStore{}, nil)

	rec, env := do(t, e, http.MethodPost, "/api/score", models.ScoreRequest{Symbol: "ethusdt", Candles: series(10)})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, string(env.Data), "ERR_INSUFFICIENT_DATA")

	rec, env = do(t, e, http.MethodPost, "/api/score", models.ScoreRequest{Symbol: "ethusdt", Candles: series(60)})
	require.Equal(t, http.StatusOK, rec.Code)
	var score models.CompositeScore
	require.NoError(t, json.Unmarshal(env.Data, &score))
	assert.Equal(t, "ETHUSDT", score.Symbol)
	assert.Equal(t, 12.5, score.Score)
}

type mapBooks map[string]models.OrderBook

func (m mapBooks) Book(symbol string) (models.OrderBook, bool) {
	b, ok := m[symbol]
	return b, ok
}

func TestOrderBookEndpoint(t *testing.T) {
	book, err := orderbook.FromSnapshot("BTCUSDT", models.DepthSnapshot{
		LastUpdateID: 42,
		Bids:         []models.RawLevel{{"100", "2"}, {"99", "1"}, {"98", "5"}},
		Asks:         []models.RawLevel{{"101", "1"}, {"102", "3"}},
	})
	require.NoError(t, err)

	e := echo.New()
	NewOrderBookHandler(nil, mapBooks{"BTCUSDT": book, "EMPTY": {Symbol: "EMPTY"}}).RegisterRoutes(e)

	rec, env := do(t, e, http.MethodGet, "/api/orderbook?symbol=btcusdt&depth=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var res OrderBookResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Len(t, res.Book.Bids, 2)
	assert.Equal(t, "100.5", res.Summary.Mid.String())
	assert.EqualValues(t, 42, res.Summary.LastUpdateID)

	rec, _ = do(t, e, http.MethodGet, "/api/orderbook?symbol=ETHUSDT", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = do(t, e, http.MethodGet, "/api/orderbook?symbol=EMPTY", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = do(t, e, http.MethodGet, "/api/orderbook?symbol=BTCUSDT&depth=5000", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderBookEndpointCrossedBook(t *testing.T) {
	crossed, err := orderbook.FromSnapshot("ETHUSDT", models.DepthSnapshot{
		LastUpdateID: 7,
		Bids:         []models.RawLevel{{"101", "1"}},
		Asks:         []models.RawLevel{{"100", "1"}},
	})
	require.NoError(t, err)

	e := echo.New()
	NewOrderBookHandler(nil, mapBooks{"ETHUSDT": crossed}).RegisterRoutes(e)

	rec, env := do(t, e, http.MethodGet, "/api/orderbook?symbol=ETHUSDT", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	var errs []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &errs))
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_CONFLICT", errs[0].Code)
	assert.Contains(t, errs[0].Message, "crossed")
}
