package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motowave/motowave/internal/pkg/models"
	"github.com/motowave/motowave/internal/utils"
	"github.com/motowave/motowave/services/recorder"
	"github.com/motowave/motowave/services/recorder/gateway"
)

type memSessionRepo struct {
	mu     sync.Mutex
	stored map[uuid.UUID]models.SessionSnapshot
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{stored: make(map[uuid.UUID]models.SessionSnapshot)}
}

func (r *memSessionRepo) Load(_ context.Context, ownerID uuid.UUID) (*models.SessionSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.stored[ownerID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (r *memSessionRepo) Save(_ context.Context, ownerID uuid.UUID, snapshot models.SessionSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored[ownerID] = snapshot
	return nil
}

func (r *memSessionRepo) Schedule(ownerID uuid.UUID, snapshot models.SessionSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored[ownerID] = snapshot
}

func (r *memSessionRepo) Flush(context.Context, uuid.UUID) error { return nil }

func (r *memSessionRepo) Clear(_ context.Context, ownerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stored, ownerID)
	return nil
}

func (r *memSessionRepo) get(ownerID uuid.UUID) (models.SessionSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.stored[ownerID]
	return snap, ok
}

type stubGeocoder struct {
	mu    sync.Mutex
	calls int
	fn    func(call int, c models.Coordinate) (*models.GeocodeResult, error)
}

func (g *stubGeocoder) ReverseGeocode(_ context.Context, c models.Coordinate) (*models.GeocodeResult, error) {
	g.mu.Lock()
	g.calls++
	call := g.calls
	fn := g.fn
	g.mu.Unlock()
	if fn == nil {
		return nil, recorder.ErrNoCityFound
	}
	return fn(call, c)
}

func (g *stubGeocoder) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type stubUploader struct {
	fn func(trip models.FinalizedTrip, ownerID uuid.UUID) (*models.Trip, error)
}

func (u *stubUploader) Upload(_ context.Context, trip models.FinalizedTrip, ownerID uuid.UUID) (*models.Trip, error) {
	return u.fn(trip, ownerID)
}

type stubEvents struct {
	mu     sync.Mutex
	events []models.CityDiscoveredEvent
}

func (e *stubEvents) PublishCityDiscovered(_ context.Context, event models.CityDiscoveredEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func testRecorderConfig() *models.Config {
	return &models.Config{
		Recorder: models.RecorderConfig{
			MinMovementKm:        0.05,
			CityCheckMinKm:       2.0,
			CityCheckMinInterval: 0,
			RateLimitCooldown:    10 * time.Minute,
			SaveDebounce:         2 * time.Second,
		},
	}
}

type sessionFixture struct {
	manager  *SessionManager
	provider *gateway.PushProvider
	repo     *memSessionRepo
	geocoder *stubGeocoder
	uploader *stubUploader
	events   *stubEvents
	ownerID  uuid.UUID
}

func newSessionFixture(cfg *models.Config) *sessionFixture {
	f := &sessionFixture{
		provider: gateway.NewPushProvider(),
		repo:     newMemSessionRepo(),
		geocoder: &stubGeocoder{},
		uploader: &stubUploader{},
		events:   &stubEvents{},
		ownerID:  uuid.New(),
	}
	f.uploader.fn = func(models.FinalizedTrip, uuid.UUID) (*models.Trip, error) {
		return &models.Trip{ID: uuid.New()}, nil
	}
	f.manager = NewSessionManager(cfg, f.repo, f.geocoder, f.provider, f.events, f.uploader)
	return f
}

func (f *sessionFixture) push(t *testing.T, lat, lon float64) {
	t.Helper()
	ok := f.provider.Push(f.ownerID, models.Fix{
		Coordinate: models.Coordinate{Latitude: lat, Longitude: lon},
		Timestamp:  time.Now(),
	})
	require.True(t, ok)
}

func (f *sessionFixture) waitRouteSize(t *testing.T, size int) *models.SessionStatus {
	t.Helper()
	var status *models.SessionStatus
	require.Eventually(t, func() bool {
		var err error
		status, err = f.manager.Status(context.Background(), f.ownerID)
		return err == nil && status.RouteSize == size
	}, 2*time.Second, 10*time.Millisecond)
	return status
}

func TestSession_JitterFilteredAndDistanceAccumulated(t *testing.T) {
	f := newSessionFixture(testRecorderConfig())
	ctx := context.Background()

	require.NoError(t, f.manager.StartTracking(ctx, f.ownerID))

	a := models.Coordinate{Latitude: 0, Longitude: 0}
	b := models.Coordinate{Latitude: 0.001, Longitude: 0}
	d := models.Coordinate{Latitude: 0.01, Longitude: 0}

	f.push(t, 0, 0)          // first fix, always appended
	f.push(t, 0.001, 0)      // ~0.11 km, real movement
	f.push(t, 0.0011, 0)     // ~0.011 km from the last point, jitter
	f.push(t, 0.01, 0)       // ~1.0 km from the last appended point

	status := f.waitRouteSize(t, 3)

	expected := utils.DistanceKm(a, b) + utils.DistanceKm(b, d)
	assert.InDelta(t, expected, status.DistanceKm, 1e-9)
	assert.Equal(t, models.SessionStateRecording, status.State)
}

func TestSession_DistanceNeverDecreases(t *testing.T) {
	f := newSessionFixture(testRecorderConfig())
	ctx := context.Background()

	require.NoError(t, f.manager.StartTracking(ctx, f.ownerID))

	coords := []models.Coordinate{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0.002, Longitude: 0},
		{Latitude: 0.0021, Longitude: 0}, // jitter
		{Latitude: 0.001, Longitude: 0},  // going back still adds distance
		{Latitude: 0.01, Longitude: 0.01},
	}

	prev := 0.0
	appended := 0
	for _, c := range coords {
		f.push(t, c.Latitude, c.Longitude)
		if c != (models.Coordinate{Latitude: 0.0021, Longitude: 0}) {
			appended++
		}
		status := f.waitRouteSize(t, appended)
		assert.GreaterOrEqual(t, status.DistanceKm, prev)
		prev = status.DistanceKm
	}
}

func TestSession_FirstFixTriggersCityCheck(t *testing.T) {
	f := newSessionFixture(testRecorderConfig())
	f.geocoder.fn = func(int, models.Coordinate) (*models.GeocodeResult, error) {
		return &models.GeocodeResult{City: "Curitiba", State: "Paraná"}, nil
	}
	ctx := context.Background()

	require.NoError(t, f.manager.StartTracking(ctx, f.ownerID))
	f.push(t, -25.43, -49.27)

	require.Eventually(t, func() bool {
		status, err := f.manager.Status(ctx, f.ownerID)
		return err == nil && len(status.Cities) == 1
	}, 2*time.Second, 10*time.Millisecond)

	status, err := f.manager.Status(ctx, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, "Curitiba", status.Cities[0].Name)
	assert.Equal(t, "PR", status.Cities[0].StateCode)
}

func TestSession_CityDeduplicatedByNormalizedName(t *testing.T) {
	cfg := testRecorderConfig()
	cfg.Recorder.CityCheckMinKm = 0.1
	f := newSessionFixture(cfg)
	f.geocoder.fn = func(call int, _ models.Coordinate) (*models.GeocodeResult, error) {
		if call == 1 {
			return &models.GeocodeResult{City: "São Paulo", State: "São Paulo"}, nil
		}
		return &models.GeocodeResult{City: " são paulo ", State: "São Paulo"}, nil
	}
	ctx := context.Background()

	require.NoError(t, f.manager.StartTracking(ctx, f.ownerID))

	f.push(t, 0, 0)
	// Wait for the first check to complete so its markers are recorded
	require.Eventually(t, func() bool {
		status, err := f.manager.Status(ctx, f.ownerID)
		return err == nil && len(status.Cities) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Far enough to pass the distance threshold and trigger a second check
	f.push(t, 0.01, 0)
	require.Eventually(t, func() bool { return f.geocoder.callCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		status, err := f.manager.Status(ctx, f.ownerID)
		return err == nil && status.RouteSize == 2
	}, 2*time.Second, 10*time.Millisecond)

	status, err := f.manager.Status(ctx, f.ownerID)
	require.NoError(t, err)
	require.Len(t, status.Cities, 1)
	assert.Equal(t, "São Paulo", status.Cities[0].Name)
}

func TestSession_RateLimitArmsCooldown(t *testing.T) {
	cfg := testRecorderConfig()
	cfg.Recorder.CityCheckMinKm = 0.1
	f := newSessionFixture(cfg)
	f.geocoder.fn = func(int, models.Coordinate) (*models.GeocodeResult, error) {
		return nil, recorder.ErrGeocodeRateLimited
	}
	ctx := context.Background()

	require.NoError(t, f.manager.StartTracking(ctx, f.ownerID))

	f.push(t, 0, 0)
	require.Eventually(t, func() bool { return f.geocoder.callCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Give the rate-limit result time to land before the next fix
	time.Sleep(50 * time.Millisecond)

	f.push(t, 0.05, 0)
	f.waitRouteSize(t, 2)

	assert.Equal(t, 1, f.geocoder.callCount())
}

func TestSession_FinishWhileRecordingIsRefused(t *testing.T) {
	f := newSessionFixture(testRecorderConfig())
	ctx := context.Background()

	require.NoError(t, f.manager.StartTracking(ctx, f.ownerID))

	_, err := f.manager.FinishTrip(ctx, f.ownerID, "commute")
	assert.ErrorIs(t, err, recorder.ErrTrackingActive)

	// The session is untouched by the refusal
	status, err := f.manager.Status(ctx, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStateRecording, status.State)
}

func TestSession_FinishUploadsAndResets(t *testing.T) {
	f := newSessionFixture(testRecorderConfig())
	ctx := context.Background()

	var uploaded models.FinalizedTrip
	tripID := uuid.New()
	f.uploader.fn = func(trip models.FinalizedTrip, _ uuid.UUID) (*models.Trip, error) {
		uploaded = trip
		return &models.Trip{ID: tripID, Title: trip.Title, TotalDistance: trip.DistanceKm}, nil
	}

	require.NoError(t, f.manager.StartTracking(ctx, f.ownerID))
	f.push(t, 0, 0)
	f.push(t, 0.01, 0)
	f.waitRouteSize(t, 2)

	require.NoError(t, f.manager.PauseTracking(ctx, f.ownerID))

	trip, err := f.manager.FinishTrip(ctx, f.ownerID, "sunday ride")
	require.NoError(t, err)
	assert.Equal(t, tripID, trip.ID)
	assert.Equal(t, "sunday ride", uploaded.Title)
	assert.Len(t, uploaded.Route, 2)

	status, err := f.manager.Status(ctx, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStateIdle, status.State)
	assert.Zero(t, status.DistanceKm)
	assert.Zero(t, status.RouteSize)

	_, stored := f.repo.get(f.ownerID)
	assert.False(t, stored)
}

func TestSession_FailedUploadKeepsSessionIntact(t *testing.T) {
	f := newSessionFixture(testRecorderConfig())
	ctx := context.Background()

	f.uploader.fn = func(models.FinalizedTrip, uuid.UUID) (*models.Trip, error) {
		return nil, errors.New("upstream unavailable")
	}

	require.NoError(t, f.manager.StartTracking(ctx, f.ownerID))
	f.push(t, 0, 0)
	f.push(t, 0.01, 0)
	before := f.waitRouteSize(t, 2)

	require.NoError(t, f.manager.PauseTracking(ctx, f.ownerID))

	_, err := f.manager.FinishTrip(ctx, f.ownerID, "lost ride")
	require.Error(t, err)

	status, err := f.manager.Status(ctx, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatePaused, status.State)
	assert.Equal(t, before.DistanceKm, status.DistanceKm)
	assert.Equal(t, before.RouteSize, status.RouteSize)

	_, stored := f.repo.get(f.ownerID)
	assert.True(t, stored)
}

func TestSession_PauseStopsIngestion(t *testing.T) {
	f := newSessionFixture(testRecorderConfig())
	ctx := context.Background()

	require.NoError(t, f.manager.StartTracking(ctx, f.ownerID))
	f.push(t, 0, 0)
	f.waitRouteSize(t, 1)

	require.NoError(t, f.manager.PauseTracking(ctx, f.ownerID))

	// Pause cancels the watch before returning, so the very next push
	// is already rejected
	ok := f.provider.Push(f.ownerID, models.Fix{
		Coordinate: models.Coordinate{Latitude: 1, Longitude: 1},
		Timestamp:  time.Now(),
	})
	assert.False(t, ok)

	status, err := f.manager.Status(ctx, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, 1, status.RouteSize)
}

func TestSession_ResumesFromPersistedState(t *testing.T) {
	f := newSessionFixture(testRecorderConfig())
	ctx := context.Background()

	require.NoError(t, f.repo.Save(ctx, f.ownerID, models.SessionSnapshot{
		Route:      []models.Coordinate{{Latitude: 0, Longitude: 0}, {Latitude: 0.01, Longitude: 0}},
		DistanceKm: 1.0,
		Cities: []models.CityVisit{
			{Name: "Santos", StateCode: "SP", Latitude: 0, Longitude: 0},
		},
	}))

	status, err := f.manager.Status(ctx, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStateIdle, status.State)
	assert.Equal(t, 1.0, status.DistanceKm)
	assert.Equal(t, 2, status.RouteSize)
	require.Len(t, status.Cities, 1)
	assert.Equal(t, "Santos", status.Cities[0].Name)
}

func TestSession_DiscardClearsEverything(t *testing.T) {
	f := newSessionFixture(testRecorderConfig())
	ctx := context.Background()

	require.NoError(t, f.manager.StartTracking(ctx, f.ownerID))
	f.push(t, 0, 0)
	f.push(t, 0.01, 0)
	f.waitRouteSize(t, 2)

	require.NoError(t, f.manager.DiscardSession(ctx, f.ownerID))

	status, err := f.manager.Status(ctx, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStateIdle, status.State)
	assert.Zero(t, status.RouteSize)

	_, stored := f.repo.get(f.ownerID)
	assert.False(t, stored)
}
