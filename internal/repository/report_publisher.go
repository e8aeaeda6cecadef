package repository

import (
	"context"
	"fmt"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/domain/repository"
	pkgkafka "SignalDesk/pkg/kafka"
)

// KafkaReportPublisher publishes analysis reports keyed by symbol so one
// symbol's reports stay ordered within a partition.
type KafkaReportPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaReportPublisher creates Kafka publisher.
func NewKafkaReportPublisher(producer *pkgkafka.Producer, topic string) repository.ReportPublisher {
	return &KafkaReportPublisher{producer: producer, topic: topic}
}

func (p *KafkaReportPublisher) Publish(ctx context.Context, r *models.AnalysisReport) error {
	if r == nil {
		return nil
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(r.Symbol), r); err != nil {
		return fmt.Errorf("publish report %s: %w", r.Symbol, err)
	}
	return nil
}

func (p *KafkaReportPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
