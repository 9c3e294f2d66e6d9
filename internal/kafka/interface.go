package kafka

import (
	"context"

	"github.com/astrolive/loyalty-engine/internal/domain"
)

// EventProducer publishes engine events for downstream consumers.
type EventProducer interface {
	ProduceEvent(ctx context.Context, ev *domain.EngineEvent) error
	Close() error
}
