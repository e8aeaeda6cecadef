package repository

import (
	"context"

	"SignalDesk/internal/domain/models"
)

// DepthStream delivers incremental depth events for one symbol.
type DepthStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.DepthDiff, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// SnapshotSource fetches a full depth snapshot over REST.
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context, symbol string, limit int) (models.DepthSnapshot, error)
}

// ReportPublisher fans analysis reports out to downstream consumers.
type ReportPublisher interface {
	Publish(ctx context.Context, r *models.AnalysisReport) error
	Close() error
}

type Metrics interface {
	RecordMessageSent(backend, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordDesync(symbol string)
	RecordBookUpdate(symbol, outcome string)
	RecordScore(symbol string, score, confidence float64)
}
