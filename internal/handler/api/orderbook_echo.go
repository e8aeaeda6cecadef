package api

import (
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"SignalDesk/internal/domain/models"
	domsvc "SignalDesk/internal/domain/service"
	"SignalDesk/internal/service/metrics"
	"SignalDesk/internal/services/orderbook"
	xhttp "SignalDesk/pkg/http"
	xlogger "SignalDesk/pkg/logger"
)

type OrderBookHandler struct {
	logger *xlogger.Logger
	books  domsvc.BookSource
}

func NewOrderBookHandler(logger *xlogger.Logger, books domsvc.BookSource) *OrderBookHandler {
	metrics.Register()
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &OrderBookHandler{logger: logger, books: books}
}

func (h *OrderBookHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/orderbook", h.OrderBook)
}

type OrderBookResponse struct {
	Book    models.OrderBook    `json:"book"`
	Summary models.DepthSummary `json:"summary"`
}

// OrderBook returns the top depth levels and their summary.
func (h *OrderBookHandler) OrderBook(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.AnalyticsLatency.WithLabelValues("http_orderbook").Observe(time.Since(start).Seconds())
	}()

	req := &models.OrderBookRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := strings.ToUpper(req.Symbol)
	book, ok := h.books.Book(symbol)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("order book for %s not synchronized", symbol))
	}

	summary, err := orderbook.Summarize(book, req.Depth)
	if errors.Is(err, orderbook.ErrEmptyBook) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("order book for %s is empty", symbol))
	}
	if errors.Is(err, orderbook.ErrCrossedBook) {
		h.logger.Warn("orderbook crossed", xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ConflictErrorf("order book for %s is crossed", symbol).WithError(err))
	}
	if err != nil {
		h.logger.Error("orderbook summarize error", xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, OrderBookResponse{Book: orderbook.Top(book, req.Depth), Summary: summary})
}

var _ xhttp.Handler = (*OrderBookHandler)(nil)
