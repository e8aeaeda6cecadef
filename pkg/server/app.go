package server

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"SignalDesk/internal/service/scheduler"
	"SignalDesk/internal/usecase"
	"SignalDesk/pkg/config"
	xhttp "SignalDesk/pkg/http"
	pkgkafka "SignalDesk/pkg/kafka"
	applogger "SignalDesk/pkg/logger"
)

// Closers are released in order after every loop has stopped.
type Closers []io.Closer

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	books      *usecase.BookRegistry
	scheduler  *scheduler.Scheduler
	closers    Closers
}

// New creates a new App. consumer and kh may be nil when Kafka is disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	books *usecase.BookRegistry,
	sched *scheduler.Scheduler,
	closers Closers,
) *App {
	if log == nil {
		log = applogger.Nop()
	}
	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpServer,
		consumer:   consumer,
		kh:         kh,
		books:      books,
		scheduler:  sched,
		closers:    closers,
	}
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts every component and blocks until ctx is done or the HTTP
// listener fails.
func (a *App) RunContext(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if a.books != nil {
		for _, s := range a.books.All() {
			wg.Add(1)
			go func(s *usecase.OrderBookSync) {
				defer wg.Done()
				if err := s.Run(ctx); err != nil {
					a.log.Error("orderbook sync stopped", applogger.String("symbol", s.Symbol()), applogger.Error(err))
				}
			}(s)
		}
		a.log.Info("orderbook sync started", applogger.Int("symbols", len(a.books.All())))
	}

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer start error", applogger.Error(err))
			return a.shutdown(cancel, &wg, err)
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if a.scheduler != nil {
		a.scheduler.Start()
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return a.shutdown(cancel, &wg, err)
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case runErr = <-a.httpServer.Err():
		a.log.Error("http server failed", applogger.Error(runErr))
	}
	return a.shutdown(cancel, &wg, runErr)
}

// shutdown stops producers of work before the resources they use.
func (a *App) shutdown(cancel context.CancelFunc, wg *sync.WaitGroup, cause error) error {
	a.log.Info("shutting down...")
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, done := context.WithTimeout(context.Background(), timeout)
	defer done()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	cancel()
	wg.Wait()

	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.Warn("resource close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	a.log.Info("shutdown complete")
	if cause != nil {
		return cause
	}
	return errors.Join(errs...)
}
