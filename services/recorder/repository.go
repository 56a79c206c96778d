package recorder

import (
	"context"

	"github.com/google/uuid"
	"github.com/motowave/motowave/internal/pkg/models"
)

// SessionRepo defines the durable session store. Persistence here is an
// optimization for crash recovery: load failures must fall back to an
// empty session, never fail startup.
type SessionRepo interface {
	// Load reads the persisted session for an owner. Returns nil without
	// error when no session is stored.
	Load(ctx context.Context, ownerID uuid.UUID) (*models.SessionSnapshot, error)

	// Save writes the full session state, overwriting any previous state.
	Save(ctx context.Context, ownerID uuid.UUID, snapshot models.SessionSnapshot) error

	// Schedule records the snapshot for a debounced write. Writes are
	// coalesced: only the latest scheduled state needs to land.
	Schedule(ownerID uuid.UUID, snapshot models.SessionSnapshot)

	// Flush forces any scheduled write for an owner to land now.
	Flush(ctx context.Context, ownerID uuid.UUID) error

	// Clear removes the persisted session, dropping any scheduled write.
	Clear(ctx context.Context, ownerID uuid.UUID) error
}
