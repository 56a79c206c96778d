package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/motowave/motowave/internal/pkg/logger"
	"github.com/motowave/motowave/internal/pkg/models"
	"github.com/motowave/motowave/internal/utils"
	"github.com/motowave/motowave/services/recorder"
)

// session is the mutable state of one owner's in-progress recording.
// All fields are guarded by mu; fixes are processed one at a time.
type session struct {
	mu sync.Mutex

	state     models.SessionState
	snap      models.SessionSnapshot
	startedAt *time.Time

	// city-check markers
	lastCityCheckDistanceKm float64
	lastCityCheckAt         time.Time
	cooldownUntil           time.Time
	checkInFlight           bool

	watchCancel context.CancelFunc
}

// SessionManager implements recorder.SessionUC. Each owner gets a session
// actor; its watch goroutine is the only fix consumer, so ingestion is
// serialized per session.
type SessionManager struct {
	cfg      *models.Config
	repo     recorder.SessionRepo
	geocoder recorder.GeocodingGW
	provider recorder.LocationProvider
	events   recorder.EventGW
	uploader recorder.TripUploader
	gate     ThrottleGate

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

// NewSessionManager creates the recording-session use case
func NewSessionManager(
	cfg *models.Config,
	repo recorder.SessionRepo,
	geocoder recorder.GeocodingGW,
	provider recorder.LocationProvider,
	events recorder.EventGW,
	uploader recorder.TripUploader,
) *SessionManager {
	return &SessionManager{
		cfg:      cfg,
		repo:     repo,
		geocoder: geocoder,
		provider: provider,
		events:   events,
		uploader: uploader,
		gate: ThrottleGate{
			MinDistanceKm: cfg.Recorder.CityCheckMinKm,
			MinInterval:   cfg.Recorder.CityCheckMinInterval,
		},
		sessions: make(map[uuid.UUID]*session),
	}
}

// getSession returns the owner's session, restoring persisted state on
// first access. A load failure falls back to an empty session: local
// durability is an optimization, never a startup requirement.
func (m *SessionManager) getSession(ctx context.Context, ownerID uuid.UUID) *session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[ownerID]; ok {
		return s
	}

	s := &session{state: models.SessionStateIdle}
	snapshot, err := m.repo.Load(ctx, ownerID)
	if err != nil {
		logger.Warn("Failed to load persisted session, starting empty",
			logger.String("owner_id", ownerID.String()),
			logger.ErrorField(err))
	} else if snapshot != nil {
		s.snap = *snapshot
		// Resumed sessions restart city-check accounting from the
		// restored distance
		s.lastCityCheckDistanceKm = snapshot.DistanceKm
		logger.Info("Restored persisted session",
			logger.String("owner_id", ownerID.String()),
			logger.Float64("distance_km", snapshot.DistanceKm),
			logger.Int("route_size", len(snapshot.Route)))
	}

	m.sessions[ownerID] = s
	return s
}

// StartTracking transitions to Recording and starts consuming fixes.
// A previous watch, if any, is replaced rather than stacked.
func (m *SessionManager) StartTracking(ctx context.Context, ownerID uuid.UUID) error {
	s := m.getSession(ctx, ownerID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == models.SessionStateFinalizing {
		return recorder.ErrSaveInProgress
	}

	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	fixes, err := m.provider.Watch(watchCtx, ownerID)
	if err != nil {
		cancel()
		return err
	}

	s.watchCancel = cancel
	s.state = models.SessionStateRecording
	if s.startedAt == nil {
		now := time.Now()
		s.startedAt = &now
	}

	go m.consume(ownerID, s, fixes)

	logger.Info("Tracking started", logger.String("owner_id", ownerID.String()))
	return nil
}

// consume is the single fix-ingestion loop for a watch. The channel is
// closed when the watch is cancelled.
func (m *SessionManager) consume(ownerID uuid.UUID, s *session, fixes <-chan models.Fix) {
	for fix := range fixes {
		m.handleFix(ownerID, s, fix)
	}
}

// handleFix runs the accumulation algorithm for one fix
func (m *SessionManager) handleFix(ownerID uuid.UUID, s *session, fix models.Fix) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A fix can already be in flight when tracking pauses; drop it
	if s.state != models.SessionStateRecording {
		return
	}

	point := fix.Coordinate

	if len(s.snap.Route) > 0 {
		last := s.snap.Route[len(s.snap.Route)-1]
		d := utils.DistanceKm(last, point)

		// GPS jitter while stationary: no route point, no distance,
		// no persistence
		if d < m.cfg.Recorder.MinMovementKm {
			return
		}

		s.snap.DistanceKm += d
	}
	s.snap.Route = append(s.snap.Route, point)

	m.maybeCheckCity(ownerID, s, point)

	m.repo.Schedule(ownerID, copySnapshot(s.snap))
}

// maybeCheckCity evaluates the throttle gate and fires an async city
// detection. Detections never overlap for a session. Caller holds s.mu.
func (m *SessionManager) maybeCheckCity(ownerID uuid.UUID, s *session, point models.Coordinate) {
	if s.checkInFlight {
		return
	}

	now := time.Now()
	state := ThrottleState{
		DistanceSinceLastCheckKm: s.snap.DistanceKm - s.lastCityCheckDistanceKm,
		TimeSinceLastCheck:       now.Sub(s.lastCityCheckAt),
		IsFirstCheck:             s.lastCityCheckAt.IsZero(),
		CooldownUntil:            s.cooldownUntil,
	}
	if !m.gate.ShouldCheckCity(state, now) {
		return
	}

	s.checkInFlight = true
	go m.detectCity(ownerID, s, point)
}

// detectCity reverse-geocodes a fix and records a newly visited city.
// Geocoding failures never interrupt ingestion: transient errors are
// logged, rate limiting arms the cooldown so the next eligible fix
// retries once it lifts.
func (m *SessionManager) detectCity(ownerID uuid.UUID, s *session, point models.Coordinate) {
	result, err := m.geocoder.ReverseGeocode(context.Background(), point)
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkInFlight = false

	if err != nil {
		switch {
		case errors.Is(err, recorder.ErrGeocodeRateLimited):
			s.cooldownUntil = now.Add(m.cfg.Recorder.RateLimitCooldown)
			logger.Warn("Geocoder rate limited, cooling down city checks",
				logger.String("owner_id", ownerID.String()),
				logger.Time("cooldown_until", s.cooldownUntil))
			return
		case errors.Is(err, recorder.ErrNoCityFound):
			// Successful call with nothing to record still counts as a check
		default:
			logger.Warn("City check failed",
				logger.String("owner_id", ownerID.String()),
				logger.ErrorField(err))
			return
		}
	}

	if err == nil {
		m.recordCity(ownerID, s, point, result)
	}

	s.lastCityCheckDistanceKm = s.snap.DistanceKm
	s.lastCityCheckAt = now
	m.repo.Schedule(ownerID, copySnapshot(s.snap))
}

// recordCity appends the visit unless its normalized name is already
// present. Caller holds s.mu.
func (m *SessionManager) recordCity(ownerID uuid.UUID, s *session, point models.Coordinate, result *models.GeocodeResult) {
	name := strings.TrimSpace(result.City)
	key := utils.NormalizeCityName(name)
	if key == "" {
		return
	}

	for _, visit := range s.snap.Cities {
		if utils.NormalizeCityName(visit.Name) == key {
			return
		}
	}

	visit := models.CityVisit{
		Name:      name,
		StateCode: utils.StateNameToCode(result.State),
		Latitude:  point.Latitude,
		Longitude: point.Longitude,
	}
	s.snap.Cities = append(s.snap.Cities, visit)

	logger.Info("City discovered",
		logger.String("owner_id", ownerID.String()),
		logger.String("city", visit.Name),
		logger.String("state", visit.StateCode))

	event := models.CityDiscoveredEvent{
		OwnerID:   ownerID,
		City:      visit,
		CreatedAt: time.Now(),
	}
	go func() {
		if err := m.events.PublishCityDiscovered(context.Background(), event); err != nil {
			logger.Warn("Failed to publish city discovered event", logger.ErrorField(err))
		}
	}()
}

// PauseTracking stops the watch synchronously; no fix is processed after
// it returns. Pausing when not recording is a no-op.
func (m *SessionManager) PauseTracking(ctx context.Context, ownerID uuid.UUID) error {
	s := m.getSession(ctx, ownerID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.SessionStateRecording {
		return nil
	}

	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	s.state = models.SessionStatePaused

	// Make sure the latest state is durable before going quiet
	if err := m.repo.Flush(ctx, ownerID); err != nil {
		logger.Warn("Failed to flush session on pause",
			logger.String("owner_id", ownerID.String()),
			logger.ErrorField(err))
	}

	logger.Info("Tracking paused",
		logger.String("owner_id", ownerID.String()),
		logger.Float64("distance_km", s.snap.DistanceKm))
	return nil
}

// Status returns a live snapshot of the session
func (m *SessionManager) Status(ctx context.Context, ownerID uuid.UUID) (*models.SessionStatus, error) {
	s := m.getSession(ctx, ownerID)

	s.mu.Lock()
	defer s.mu.Unlock()

	cities := make([]models.CityVisit, len(s.snap.Cities))
	copy(cities, s.snap.Cities)

	return &models.SessionStatus{
		State:      s.state,
		DistanceKm: s.snap.DistanceKm,
		RouteSize:  len(s.snap.Route),
		Cities:     cities,
		StartedAt:  s.startedAt,
	}, nil
}

// FinishTrip uploads the session as a finalized trip. Tracking must be
// paused first; that refusal is user guidance, not a failure. On upload
// failure the session stays intact so a retry loses nothing.
func (m *SessionManager) FinishTrip(ctx context.Context, ownerID uuid.UUID, title string) (*models.Trip, error) {
	s := m.getSession(ctx, ownerID)

	s.mu.Lock()
	switch s.state {
	case models.SessionStateRecording:
		s.mu.Unlock()
		return nil, recorder.ErrTrackingActive
	case models.SessionStateFinalizing:
		s.mu.Unlock()
		return nil, recorder.ErrSaveInProgress
	}

	previous := s.state
	s.state = models.SessionStateFinalizing

	trip := models.FinalizedTrip{
		Title:      title,
		DistanceKm: s.snap.DistanceKm,
		Route:      append([]models.Coordinate(nil), s.snap.Route...),
		Cities:     append([]models.CityVisit(nil), s.snap.Cities...),
	}
	s.mu.Unlock()

	created, err := m.uploader.Upload(ctx, trip, ownerID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = previous
		return nil, err
	}

	m.resetLocked(ctx, ownerID, s)

	logger.Info("Trip uploaded",
		logger.String("owner_id", ownerID.String()),
		logger.String("trip_id", created.ID.String()),
		logger.Float64("distance_km", created.TotalDistance))
	return created, nil
}

// DiscardSession drops the current session and its persisted state
func (m *SessionManager) DiscardSession(ctx context.Context, ownerID uuid.UUID) error {
	s := m.getSession(ctx, ownerID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == models.SessionStateFinalizing {
		return recorder.ErrSaveInProgress
	}

	m.resetLocked(ctx, ownerID, s)

	logger.Info("Session discarded", logger.String("owner_id", ownerID.String()))
	return nil
}

// PushFix feeds a device fix into the active watch. Fixes arriving with
// no watch are dropped silently; that is the paused/idle contract.
func (m *SessionManager) PushFix(ctx context.Context, ownerID uuid.UUID, fix models.Fix) error {
	if !m.provider.Push(ownerID, fix) {
		logger.Debug("Dropped fix without active watch",
			logger.String("owner_id", ownerID.String()))
	}
	return nil
}

// resetLocked empties the session and clears its persisted state.
// Caller holds s.mu.
func (m *SessionManager) resetLocked(ctx context.Context, ownerID uuid.UUID, s *session) {
	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}

	s.state = models.SessionStateIdle
	s.snap = models.SessionSnapshot{}
	s.startedAt = nil
	s.lastCityCheckDistanceKm = 0
	s.lastCityCheckAt = time.Time{}
	s.cooldownUntil = time.Time{}

	if err := m.repo.Clear(ctx, ownerID); err != nil {
		logger.Warn("Failed to clear persisted session",
			logger.String("owner_id", ownerID.String()),
			logger.ErrorField(err))
	}
}

func copySnapshot(snap models.SessionSnapshot) models.SessionSnapshot {
	return models.SessionSnapshot{
		Route:      append([]models.Coordinate(nil), snap.Route...),
		DistanceKm: snap.DistanceKm,
		Cities:     append([]models.CityVisit(nil), snap.Cities...),
	}
}
