package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"SignalDesk/internal/domain/models"
	drepo "SignalDesk/internal/domain/repository"
	applogger "SignalDesk/pkg/logger"

	"github.com/gorilla/websocket"
)

// Stream is a DepthStream over the Binance websocket API for one symbol.
type Stream struct {
	wsURL          string
	symbol         string
	speed          string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	l              *applogger.Logger

	mu        sync.Mutex // guards conn and serializes writes
	conn      *websocket.Conn
	connected atomic.Bool
	nextID    atomic.Int64
}

type StreamOption func(*Stream)

func WithLogger(l *applogger.Logger) StreamOption {
	return func(s *Stream) {
		if l != nil {
			s.l = l
		}
	}
}

// WithUpdateSpeed selects the diff cadence suffix ("100ms" or "1000ms").
func WithUpdateSpeed(speed string) StreamOption {
	return func(s *Stream) { s.speed = speed }
}

// NewStream creates a depth-diff stream for symbol.
func NewStream(wsURL, symbol string, reconnectDelay, pingInterval time.Duration, opts ...StreamOption) drepo.DepthStream {
	s := &Stream{
		wsURL:          strings.TrimRight(wsURL, "/"),
		symbol:         strings.ToUpper(symbol),
		speed:          "100ms",
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		l:              applogger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Stream) streamName() string {
	name := strings.ToLower(s.symbol) + "@depth"
	if s.speed != "" {
		name += "@" + s.speed
	}
	return name
}

// Connect dials {wsURL}/ws.
func (s *Stream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.wsURL+"/ws", nil)
	if err != nil {
		return fmt.Errorf("binance connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	s.connected.Store(true)
	s.l.Info("binance.stream connected", applogger.String("symbol", s.symbol))
	return nil
}

type wsRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int64    `json:"id"`
}

// Subscribe requests the depth diff stream for the symbol.
func (s *Stream) Subscribe(ctx context.Context) error {
	if !s.connected.Load() {
		return fmt.Errorf("binance not connected")
	}
	req := wsRequest{Method: "SUBSCRIBE", Params: []string{s.streamName()}, ID: s.nextID.Add(1)}
	if err := s.write(func(c *websocket.Conn) error { return c.WriteJSON(req) }); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.streamName(), err)
	}
	s.l.Info("binance.stream subscribed", applogger.String("stream", s.streamName()))
	return nil
}

// Read streams depth diffs until ctx ends or the connection fails. Non-depth
// frames (subscription acks) are skipped. Both channels close when reading stops.
func (s *Stream) Read(ctx context.Context) (<-chan *models.DepthDiff, <-chan error) {
	diffs := make(chan *models.DepthDiff, 1024)
	errs := make(chan error, 1)

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		errs <- fmt.Errorf("binance conn nil")
		close(diffs)
		close(errs)
		return diffs, errs
	}

	readCtx, cancel := context.WithCancel(ctx)
	go s.pingLoop(readCtx)
	go func() {
		<-readCtx.Done()
		// unblock ReadMessage
		_ = conn.SetReadDeadline(time.Now())
	}()

	go func() {
		defer cancel()
		defer close(diffs)
		defer close(errs)
		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					errs <- fmt.Errorf("binance read: %w", err)
				}
				return
			}
			d, err := decodeDiff(b)
			if err != nil {
				s.l.Debug("binance.stream skip frame", applogger.Error(err))
				continue
			}
			if d == nil {
				continue
			}
			// order matters for the book; block rather than drop
			select {
			case diffs <- d:
			case <-ctx.Done():
				return
			}
		}
	}()
	return diffs, errs
}

var errNotDepth = errors.New("not a depth frame")

// decodeDiff accepts raw and combined-stream ({"stream","data"}) frames.
func decodeDiff(b []byte) (*models.DepthDiff, error) {
	var probe struct {
		EventType string          `json:"e"`
		EventTime json.RawMessage `json:"E"` // keeps "E" from folding onto "e"
		Stream    string          `json:"stream"`
		Data      json.RawMessage `json:"data"`
		Result    json.RawMessage `json:"result"`
		ID        *int64          `json:"id"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, err
	}
	if probe.ID != nil {
		return nil, nil // subscription ack
	}
	if probe.Stream != "" && len(probe.Data) > 0 {
		return decodeDiff(probe.Data)
	}
	if probe.EventType != "depthUpdate" {
		return nil, errNotDepth
	}
	var d models.DepthDiff
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Stream) pingLoop(ctx context.Context) {
	if s.pingInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := s.write(func(c *websocket.Conn) error {
				return c.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			})
			if err != nil {
				s.l.Warn("binance.stream ping failed", applogger.Error(err))
			}
		}
	}
}

func (s *Stream) write(fn func(*websocket.Conn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("binance conn nil")
	}
	return fn(s.conn)
}

// Reconnect closes, waits reconnectDelay, then connects and subscribes again.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	select {
	case <-time.After(s.reconnectDelay):
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

func (s *Stream) Close() error {
	s.connected.Store(false)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *Stream) IsConnected() bool { return s.connected.Load() }
