package trips

import (
	"context"

	"github.com/motowave/motowave/internal/pkg/models"
)

// TripGW publishes trip domain events
type TripGW interface {
	PublishTripCompleted(ctx context.Context, event models.TripCompletedEvent) error
}
