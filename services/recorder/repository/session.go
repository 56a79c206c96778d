package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/motowave/motowave/internal/pkg/constants"
	"github.com/motowave/motowave/internal/pkg/database"
	"github.com/motowave/motowave/internal/pkg/logger"
	"github.com/motowave/motowave/internal/pkg/models"
)

// SessionRepository persists session snapshots in Redis across three keys
// per owner: the route polyline, the accumulated distance, and the visited
// cities. Scheduled writes are debounced per owner with last-write-wins
// coalescing, so a burst of fixes costs one write.
type SessionRepository struct {
	cache    *database.RedisClient
	debounce time.Duration

	mu      sync.Mutex
	pending map[uuid.UUID]*pendingWrite
	writers map[uuid.UUID]*sync.Mutex
}

type pendingWrite struct {
	snapshot models.SessionSnapshot
	timer    *time.Timer
}

// NewSessionRepository creates a Redis-backed session repository
func NewSessionRepository(cache *database.RedisClient, debounce time.Duration) *SessionRepository {
	return &SessionRepository{
		cache:    cache,
		debounce: debounce,
		pending:  make(map[uuid.UUID]*pendingWrite),
		writers:  make(map[uuid.UUID]*sync.Mutex),
	}
}

// writerLock returns the owner's write lock. Every path that touches the
// owner's Redis keys holds it, so a debounced flush can never land after
// a Clear and resurrect a finished session.
func (r *SessionRepository) writerLock(ownerID uuid.UUID) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.writers[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		r.writers[ownerID] = lock
	}
	return lock
}

func sessionKeys(ownerID uuid.UUID) (route, distance, cities string) {
	id := ownerID.String()
	return fmt.Sprintf(constants.KeySessionRoute, id),
		fmt.Sprintf(constants.KeySessionDistance, id),
		fmt.Sprintf(constants.KeySessionCities, id)
}

// Load reads the persisted session. A missing session returns nil without
// error; partially missing keys fall back to their zero values so a
// half-written session still loads.
func (r *SessionRepository) Load(ctx context.Context, ownerID uuid.UUID) (*models.SessionSnapshot, error) {
	routeKey, distanceKey, citiesKey := sessionKeys(ownerID)

	values, err := r.cache.MGet(ctx, routeKey, distanceKey, citiesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if values[0] == nil && values[1] == nil && values[2] == nil {
		return nil, nil
	}

	snapshot := &models.SessionSnapshot{}

	if raw, ok := values[0].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &snapshot.Route); err != nil {
			return nil, fmt.Errorf("failed to decode session route: %w", err)
		}
	}
	if raw, ok := values[1].(string); ok && raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode session distance: %w", err)
		}
		snapshot.DistanceKm = d
	}
	if raw, ok := values[2].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &snapshot.Cities); err != nil {
			return nil, fmt.Errorf("failed to decode session cities: %w", err)
		}
	}

	return snapshot, nil
}

// Save writes the full session state, overwriting any previous state
func (r *SessionRepository) Save(ctx context.Context, ownerID uuid.UUID, snapshot models.SessionSnapshot) error {
	lock := r.writerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	return r.save(ctx, ownerID, snapshot)
}

// save performs the write. Caller holds the owner's writer lock.
func (r *SessionRepository) save(ctx context.Context, ownerID uuid.UUID, snapshot models.SessionSnapshot) error {
	routeKey, distanceKey, citiesKey := sessionKeys(ownerID)

	route, err := json.Marshal(snapshot.Route)
	if err != nil {
		return fmt.Errorf("failed to encode session route: %w", err)
	}
	cities, err := json.Marshal(snapshot.Cities)
	if err != nil {
		return fmt.Errorf("failed to encode session cities: %w", err)
	}

	pairs := map[string]interface{}{
		routeKey:    string(route),
		distanceKey: strconv.FormatFloat(snapshot.DistanceKm, 'f', -1, 64),
		citiesKey:   string(cities),
	}
	if err := r.cache.MSet(ctx, pairs); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Schedule queues a debounced write of the snapshot. A newer schedule for
// the same owner replaces the queued state and restarts the timer.
func (r *SessionRepository) Schedule(ownerID uuid.UUID, snapshot models.SessionSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.pending[ownerID]; ok {
		p.snapshot = snapshot
		p.timer.Reset(r.debounce)
		return
	}

	p := &pendingWrite{snapshot: snapshot}
	p.timer = time.AfterFunc(r.debounce, func() {
		if err := r.Flush(context.Background(), ownerID); err != nil {
			logger.Warn("Debounced session write failed",
				logger.String("owner_id", ownerID.String()),
				logger.ErrorField(err))
		}
	})
	r.pending[ownerID] = p
}

// Flush writes any queued snapshot for the owner immediately
func (r *SessionRepository) Flush(ctx context.Context, ownerID uuid.UUID) error {
	lock := r.writerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	p, ok := r.pending[ownerID]
	if ok {
		delete(r.pending, ownerID)
		p.timer.Stop()
	}
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return r.save(ctx, ownerID, p.snapshot)
}

// Clear drops the persisted session and any queued write. It holds the
// owner's writer lock so an in-flight debounced flush is either fully
// landed before the delete or finds its queued write already gone.
func (r *SessionRepository) Clear(ctx context.Context, ownerID uuid.UUID) error {
	lock := r.writerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	if p, ok := r.pending[ownerID]; ok {
		delete(r.pending, ownerID)
		p.timer.Stop()
	}
	r.mu.Unlock()

	routeKey, distanceKey, citiesKey := sessionKeys(ownerID)
	if err := r.cache.Delete(ctx, routeKey, distanceKey, citiesKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
