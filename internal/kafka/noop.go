package kafka

import (
	"context"

	"github.com/astrolive/loyalty-engine/internal/domain"
)

// NoopProducer discards events. Used when the event stream is disabled.
type NoopProducer struct{}

func NewNoopProducer() *NoopProducer {
	return &NoopProducer{}
}

func (NoopProducer) ProduceEvent(_ context.Context, _ *domain.EngineEvent) error {
	return nil
}

func (NoopProducer) Close() error {
	return nil
}
