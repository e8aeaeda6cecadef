package scheduler

import (
	"context"
	"fmt"
	"time"

	applogger "SignalDesk/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Recomputer rebuilds the analysis report for one symbol.
type Recomputer interface {
	Recompute(ctx context.Context, symbol string) error
}

// Locker grants a short exclusive lease so only one replica runs a tick.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Scheduler triggers periodic recomputation for a fixed symbol set.
type Scheduler struct {
	cron    *cron.Cron
	job     Recomputer
	symbols []string
	lock    Locker
	lockTTL time.Duration
	timeout time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
	l       *applogger.Logger
}

type Option func(*Scheduler)

// WithLocker enables cross-replica locking; ttl should be shorter than the cron period.
func WithLocker(lk Locker, ttl time.Duration) Option {
	return func(s *Scheduler) {
		s.lock = lk
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

func WithLogger(l *applogger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.l = l
		}
	}
}

// WithJobTimeout bounds one symbol's recompute.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a scheduler using the six-field (seconds) cron syntax.
func New(job Recomputer, symbols []string, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		job:     job,
		symbols: append([]string(nil), symbols...),
		lockTTL: 10 * time.Second,
		timeout: 30 * time.Second,
		ctx:     ctx,
		cancel:  cancel,
		l:       applogger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cron = cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cronLogger{l: s.l})))
	return s
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct {
	l *applogger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron "+msg, applogger.Any("kv", keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron "+msg, applogger.Error(err), applogger.Any("kv", keysAndValues))
}

// Register adds the recompute task on spec. An empty spec disables the timer.
func (s *Scheduler) Register(spec string) error {
	if spec == "" {
		return nil
	}
	if _, err := s.cron.AddFunc(spec, s.Tick); err != nil {
		return fmt.Errorf("register recompute task %q: %w", spec, err)
	}
	return nil
}

// RegisterFunc adds a housekeeping task. Panics in fn are recovered and logged.
func (s *Scheduler) RegisterFunc(spec, name string, fn func()) error {
	_, err := s.cron.AddFunc(spec, func() {
		defer func() {
			if r := recover(); r != nil {
				s.l.Error("scheduler task panic", applogger.String("task", name), applogger.Any("panic", r))
			}
		}()
		fn()
	})
	if err != nil {
		return fmt.Errorf("register %s task %q: %w", name, spec, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.l.Info("scheduler started", applogger.Int("symbols", len(s.symbols)))
}

// Stop waits for a running tick to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.l.Info("scheduler stopped")
}

// Tick recomputes every symbol once. Exported for manual triggers and tests.
func (s *Scheduler) Tick() {
	for _, sym := range s.symbols {
		if s.ctx.Err() != nil {
			return
		}
		s.runOne(sym)
	}
}

// runOne recovers a panicking job so the remaining symbols still run.
func (s *Scheduler) runOne(symbol string) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			s.l.Error("scheduler recompute panic", applogger.String("symbol", symbol), applogger.Any("panic", r))
		}
	}()

	if s.lock != nil {
		ok, err := s.lock.TryLock(ctx, "recompute:"+symbol, s.lockTTL)
		if err != nil {
			s.l.Warn("scheduler lock failed", applogger.String("symbol", symbol), applogger.Error(err))
			return
		}
		if !ok {
			s.l.Debug("scheduler lock held elsewhere", applogger.String("symbol", symbol))
			return
		}
	}

	start := time.Now()
	if err := s.job.Recompute(ctx, symbol); err != nil {
		s.l.Error("scheduler recompute failed", applogger.String("symbol", symbol), applogger.Error(err))
		return
	}
	s.l.Debug("scheduler recompute done", applogger.String("symbol", symbol), applogger.Duration("took", time.Since(start)))
}
