package recorder

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/motowave/motowave/internal/pkg/models"
)

// ErrGeocodeRateLimited is returned by the geocoding gateway when the
// provider rejects the call for quota reasons. It arms the city-check
// cooldown; any other geocoding error is logged and ignored.
var ErrGeocodeRateLimited = errors.New("geocoder rate limited")

// ErrNoCityFound is returned when the geocoder resolves the coordinate
// but has no city for it.
var ErrNoCityFound = errors.New("no city found for coordinate")

// GeocodingGW defines the reverse-geocoding boundary. Implementations
// must classify rate limiting as ErrGeocodeRateLimited rather than
// leaking provider error strings.
type GeocodingGW interface {
	ReverseGeocode(ctx context.Context, c models.Coordinate) (*models.GeocodeResult, error)
}

// LocationProvider is the source of device fixes. Watch yields a channel
// that delivers fixes until the context is cancelled; cancellation closes
// the channel and later pushes are dropped. At most one watch per owner
// is active: a new Watch replaces the previous one.
type LocationProvider interface {
	Watch(ctx context.Context, ownerID uuid.UUID) (<-chan models.Fix, error)
	Push(ownerID uuid.UUID, fix models.Fix) bool
}

// EventGW publishes recorder domain events
type EventGW interface {
	PublishCityDiscovered(ctx context.Context, event models.CityDiscoveredEvent) error
}
