package gateway

import (
	"context"

	"github.com/motowave/motowave/internal/pkg/constants"
	"github.com/motowave/motowave/internal/pkg/models"
	nsqpkg "github.com/motowave/motowave/internal/pkg/nsq"
	"github.com/motowave/motowave/internal/pkg/retry"
)

// EventGateway publishes trip events to NSQ. Publishes are retried with
// backoff; the producer is optional so deployments without a message bus
// still work.
type EventGateway struct {
	producer *nsqpkg.Producer
	retrier  *retry.Retrier
}

// NewEventGateway creates the trip event gateway
func NewEventGateway(producer *nsqpkg.Producer) *EventGateway {
	return &EventGateway{
		producer: producer,
		retrier:  retry.New(retry.DefaultConfig()),
	}
}

// PublishTripCompleted publishes a trip completion event
func (g *EventGateway) PublishTripCompleted(ctx context.Context, event models.TripCompletedEvent) error {
	if g.producer == nil {
		return nil
	}
	return g.retrier.Execute(ctx, func(context.Context) error {
		return g.producer.Publish(constants.TopicTripCompleted, event)
	})
}
