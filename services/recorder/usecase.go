package recorder

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/motowave/motowave/internal/pkg/models"
)

// ErrTrackingActive is returned when a trip is finished while tracking is
// still running. It is guidance for the user, not a failure.
var ErrTrackingActive = errors.New("tracking must be paused before finishing the trip")

// ErrSaveInProgress is returned when a session operation arrives while an
// upload is running.
var ErrSaveInProgress = errors.New("trip save already in progress")

// SessionUC defines the interface for recording-session business logic
type SessionUC interface {
	// StartTracking transitions a session to Recording and subscribes to
	// the location provider. An already-active watch is replaced, never
	// stacked.
	StartTracking(ctx context.Context, ownerID uuid.UUID) error

	// PauseTracking stops fix ingestion; in-memory state is retained.
	PauseTracking(ctx context.Context, ownerID uuid.UUID) error

	// Status returns a live snapshot of the session.
	Status(ctx context.Context, ownerID uuid.UUID) (*models.SessionStatus, error)

	// FinishTrip uploads the session as a finalized trip and, on success,
	// resets the session and clears its persisted state. On failure the
	// session is left intact so the user can retry.
	FinishTrip(ctx context.Context, ownerID uuid.UUID, title string) (*models.Trip, error)

	// DiscardSession drops the session and clears its persisted state.
	DiscardSession(ctx context.Context, ownerID uuid.UUID) error

	// PushFix feeds a device fix into the active watch, if any.
	PushFix(ctx context.Context, ownerID uuid.UUID, fix models.Fix) error
}

// TripUploader is the boundary to the upload pipeline consumed when a
// session is finalized.
type TripUploader interface {
	Upload(ctx context.Context, trip models.FinalizedTrip, ownerID uuid.UUID) (*models.Trip, error)
}
