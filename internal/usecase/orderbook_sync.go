package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"
	"SignalDesk/internal/services/orderbook"
	applogger "SignalDesk/pkg/logger"
)

var errStreamClosed = errors.New("depth stream closed")

// OrderBookSync owns the live book of one symbol. Diffs are applied on the
// Run goroutine in arrival order; readers get the latest value lock-free.
type OrderBookSync struct {
	symbol     string
	depthLimit int
	stream     domrepo.DepthStream
	snapshots  domrepo.SnapshotSource
	metrics    domrepo.Metrics
	retryDelay time.Duration
	l          *applogger.Logger

	book atomic.Pointer[models.OrderBook]
}

type BookSyncOption func(*OrderBookSync)

func WithBookSyncLogger(l *applogger.Logger) BookSyncOption {
	return func(s *OrderBookSync) {
		if l != nil {
			s.l = l
		}
	}
}

// WithRetryDelay is the pause after a failed session before reconnecting.
func WithRetryDelay(d time.Duration) BookSyncOption {
	return func(s *OrderBookSync) {
		if d >= 0 {
			s.retryDelay = d
		}
	}
}

func NewOrderBookSync(symbol string, depthLimit int, stream domrepo.DepthStream, snapshots domrepo.SnapshotSource, metrics domrepo.Metrics, opts ...BookSyncOption) *OrderBookSync {
	s := &OrderBookSync{
		symbol:     symbol,
		depthLimit: depthLimit,
		stream:     stream,
		snapshots:  snapshots,
		metrics:    metrics,
		retryDelay: 2 * time.Second,
		l:          applogger.Nop(),
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *OrderBookSync) Symbol() string { return s.symbol }

// Current returns the latest synchronized book. ok is false until the first
// snapshot lands and while a failed connection is being re-established.
func (s *OrderBookSync) Current() (models.OrderBook, bool) {
	b := s.book.Load()
	if b == nil {
		return models.OrderBook{}, false
	}
	return *b, true
}

// Run keeps the book synchronized until ctx is done.
func (s *OrderBookSync) Run(ctx context.Context) error {
	first := true
	for {
		err := s.session(ctx, first)
		if ctx.Err() != nil {
			return nil
		}
		first = false
		s.book.Store(nil)
		s.metrics.RecordError("orderbook_session")
		s.l.Warn("orderbook.sync session ended", applogger.String("symbol", s.symbol), applogger.Error(err))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.retryDelay):
		}
	}
}

func (s *OrderBookSync) session(ctx context.Context, first bool) error {
	if first {
		if err := s.stream.Connect(ctx); err != nil {
			return err
		}
		if err := s.stream.Subscribe(ctx); err != nil {
			return err
		}
	} else if err := s.stream.Reconnect(ctx); err != nil {
		return err
	}

	sctx, cancel := context.WithCancel(ctx)
	defer cancel()
	// diffs buffer in the stream while the snapshot is in flight
	diffs, errs := s.stream.Read(sctx)

	book, err := s.resync(sctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errs:
			if ok && err != nil {
				return err
			}
			errs = nil
		case d, ok := <-diffs:
			if !ok {
				return errStreamClosed
			}
			book, err = s.apply(sctx, book, d)
			if err != nil {
				return err
			}
		}
	}
}

func (s *OrderBookSync) apply(ctx context.Context, book models.OrderBook, d *models.DepthDiff) (models.OrderBook, error) {
	res := orderbook.TryApplyDiff(book, *d)
	s.metrics.RecordBookUpdate(s.symbol, res.Outcome.String())

	switch res.Outcome {
	case orderbook.OutcomeApplied:
		s.publish(res.Book)
		return res.Book, nil
	case orderbook.OutcomeStale:
		return book, nil
	case orderbook.OutcomeDesync:
		s.metrics.RecordDesync(s.symbol)
		s.l.Warn("orderbook.sync desync", applogger.String("symbol", s.symbol), applogger.Error(res.Err))
	default:
		s.metrics.RecordError("orderbook_invalid_diff")
		s.l.Error("orderbook.sync invalid diff", applogger.String("symbol", s.symbol), applogger.Error(res.Err))
	}
	// the book cannot be trusted past a rejected diff
	return s.resync(ctx)
}

func (s *OrderBookSync) resync(ctx context.Context) (models.OrderBook, error) {
	start := time.Now()
	snap, err := s.snapshots.FetchSnapshot(ctx, s.symbol, s.depthLimit)
	s.metrics.RecordLatency("orderbook_snapshot", time.Since(start).Seconds())
	if err != nil {
		return models.OrderBook{}, fmt.Errorf("snapshot: %w", err)
	}
	book, err := orderbook.FromSnapshot(s.symbol, snap)
	if err != nil {
		return models.OrderBook{}, err
	}
	s.publish(book)
	s.l.Info("orderbook.sync snapshot loaded",
		applogger.String("symbol", s.symbol),
		applogger.Uint64("last_update_id", book.LastUpdateID),
		applogger.Int("bids", len(book.Bids)),
		applogger.Int("asks", len(book.Asks)),
	)
	return book, nil
}

func (s *OrderBookSync) publish(b models.OrderBook) {
	s.book.Store(&b)
}

// BookRegistry looks up the sync for a symbol.
type BookRegistry struct {
	syncs map[string]*OrderBookSync
}

func NewBookRegistry(syncs ...*OrderBookSync) *BookRegistry {
	r := &BookRegistry{syncs: make(map[string]*OrderBookSync, len(syncs))}
	for _, s := range syncs {
		r.syncs[s.symbol] = s
	}
	return r
}

func (r *BookRegistry) All() []*OrderBookSync {
	out := make([]*OrderBookSync, 0, len(r.syncs))
	for _, s := range r.syncs {
		out = append(out, s)
	}
	return out
}

// Book returns the current book for symbol; ok is false for unknown or unsynced symbols.
func (r *BookRegistry) Book(symbol string) (models.OrderBook, bool) {
	s, ok := r.syncs[symbol]
	if !ok {
		return models.OrderBook{}, false
	}
	return s.Current()
}
