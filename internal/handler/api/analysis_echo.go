package api

import (
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"
	domsvc "SignalDesk/internal/domain/service"
	"SignalDesk/internal/service/metrics"
	"SignalDesk/internal/service/ratelimit"
	"SignalDesk/internal/services/priceaction"
	"SignalDesk/internal/services/scoring"
	"SignalDesk/internal/usecase"
	xhttp "SignalDesk/pkg/http"
	xlogger "SignalDesk/pkg/logger"
	"SignalDesk/pkg/util"
)

// AnalysisHandler serves stored-series analysis and stateless analysis of
// caller-supplied candles.
type AnalysisHandler struct {
	logger   *xlogger.Logger
	analysis *usecase.MarketAnalysisUseCase
	candles  *usecase.CandlesUseCase
	scorer   domsvc.CompositeScorer
	paConfig priceaction.Config
	rl       *ratelimit.Limiter
}

func NewAnalysisHandler(
	logger *xlogger.Logger,
	analysis *usecase.MarketAnalysisUseCase,
	candles *usecase.CandlesUseCase,
	scorer domsvc.CompositeScorer,
	paConfig priceaction.Config,
	rl *ratelimit.Limiter,
) *AnalysisHandler {
	metrics.Register()
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &AnalysisHandler{logger: logger, analysis: analysis, candles: candles, scorer: scorer, paConfig: paConfig, rl: rl}
}

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/analysis", h.Analysis)
	g.GET("/candles", h.Candles)
	g.POST("/price-action", h.PriceAction)
	g.POST("/score", h.Score)
}

func (h *AnalysisHandler) observe(endpoint string, start time.Time) {
	metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// Analysis returns the (possibly cached) report for a stored series.
func (h *AnalysisHandler) Analysis(c echo.Context) error {
	defer h.observe("http_analysis", time.Now())
	if h.rl != nil && !h.rl.Allow(c.RealIP()) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError())
	}
	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analysis.Analyze(c.Request().Context(), usecase.AnalysisParams{
		Symbol:    strings.ToUpper(req.Symbol),
		N:         req.N,
		Timeframe: domrepo.NormalizeTimeframe(req.TF),
	})
	if errors.Is(err, usecase.ErrNoCandles) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no candles for %s %s", req.Symbol, req.TF))
	}
	if err != nil {
		h.logger.Error("analysis usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=5")
	return xhttp.SuccessResponse(c, res)
}

// Candles returns a stored range. Without from, the range is the limit bars before to.
func (h *AnalysisHandler) Candles(c echo.Context) error {
	defer h.observe("http_candles", time.Now())
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)
	to := util.ParseTimeDefault(req.To, time.Now().UTC())
	from := util.ParseTimeDefault(req.From, to.Add(-time.Duration(req.Limit)*tf.Duration()))
	if from.After(to) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("from must not be after to"))
	}

	res, err := h.candles.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
		Symbol:    strings.ToUpper(req.Symbol),
		From:      from,
		To:        to,
		Timeframe: tf,
		Limit:     req.Limit,
	})
	if err != nil {
		h.logger.Error("candles usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// PriceAction analyzes the posted candles. Zero config fields fall back to the server's analyzer config.
func (h *AnalysisHandler) PriceAction(c echo.Context) error {
	defer h.observe("http_price_action", time.Now())
	req := &models.PriceActionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, priceaction.Analyze(req.Candles, h.mergeConfig(req.Config)))
}

// Score returns the composite score of the posted candles, 422 when the series is too short.
func (h *AnalysisHandler) Score(c echo.Context) error {
	defer h.observe("http_score", time.Now())
	req := &models.ScoreRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	score, ok := h.scorer.Score(strings.ToUpper(req.Symbol), req.Candles, req.Weights)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.InsufficientDataError(scoring.MinCandles, len(req.Candles)))
	}
	return xhttp.SuccessResponse(c, score)
}

func (h *AnalysisHandler) mergeConfig(r models.AnalyzerConfigRequest) priceaction.Config {
	cfg := h.paConfig
	if r.SwingLeftBars > 0 {
		cfg.SwingLeftBars = r.SwingLeftBars
	}
	if r.SwingRightBars > 0 {
		cfg.SwingRightBars = r.SwingRightBars
	}
	if r.FVGMinGapPct > 0 {
		cfg.FVGMinGapPct = r.FVGMinGapPct
	}
	if r.EqualLevelTolerancePct > 0 {
		cfg.EqualLevelTolerancePct = r.EqualLevelTolerancePct
	}
	if r.DisplacementMinPct > 0 {
		cfg.DisplacementMinPct = r.DisplacementMinPct
	}
	if r.SweepWickThresholdPct > 0 {
		cfg.SweepWickThresholdPct = r.SweepWickThresholdPct
	}
	return cfg
}

var _ xhttp.Handler = (*AnalysisHandler)(nil)
