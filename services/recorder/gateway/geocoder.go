package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/motowave/motowave/internal/pkg/circuitbreaker"
	"github.com/motowave/motowave/internal/pkg/constants"
	"github.com/motowave/motowave/internal/pkg/database"
	httpclient "github.com/motowave/motowave/internal/pkg/http"
	"github.com/motowave/motowave/internal/pkg/logger"
	"github.com/motowave/motowave/internal/pkg/models"
	"github.com/motowave/motowave/internal/utils"
	"github.com/motowave/motowave/services/recorder"
)

const geocoderUserAgent = "motowave-recorder/1.0"

// NominatimGateway reverse-geocodes coordinates against a Nominatim-style
// API. Results are cached in Redis by geohash cell so nearby fixes reuse
// the same answer instead of burning provider quota, and the provider is
// guarded by a circuit breaker.
type NominatimGateway struct {
	client    *httpclient.Client
	breaker   *circuitbreaker.CircuitBreaker
	cache     *database.RedisClient
	cacheTTL  time.Duration
	precision uint
}

// NewNominatimGateway creates a reverse-geocoding gateway. The cache is
// optional; a nil client disables caching.
func NewNominatimGateway(cfg models.GeocoderConfig, cache *database.RedisClient) *NominatimGateway {
	client := httpclient.NewClient(cfg.BaseURL, cfg.Timeout)
	client.UserAgent = geocoderUserAgent

	breakerCfg := circuitbreaker.DefaultConfig("geocoder")
	breakerCfg.IsFailure = func(err error) bool {
		// Rate limiting and empty results are provider answers, not
		// provider outages
		return err != nil &&
			!errors.Is(err, recorder.ErrGeocodeRateLimited) &&
			!errors.Is(err, recorder.ErrNoCityFound)
	}

	return &NominatimGateway{
		client:    client,
		breaker:   circuitbreaker.New(breakerCfg),
		cache:     cache,
		cacheTTL:  cfg.CacheTTL,
		precision: cfg.CachePrecision,
	}
}

type nominatimResponse struct {
	Address struct {
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Municipality string `json:"municipality"`
		State        string `json:"state"`
	} `json:"address"`
}

// ReverseGeocode resolves the city and state for a coordinate. HTTP 429
// from the provider is classified as recorder.ErrGeocodeRateLimited so
// the caller can arm its cooldown.
func (g *NominatimGateway) ReverseGeocode(ctx context.Context, c models.Coordinate) (*models.GeocodeResult, error) {
	cell := utils.EncodeCell(c, g.precision)

	if cached := g.fromCache(ctx, cell); cached != nil {
		center := utils.DecodeCell(cell)
		logger.Debug("Geocode served from cache",
			logger.String("cell", cell),
			logger.String("city", cached.City),
			logger.Float64("cell_lat", center.Latitude),
			logger.Float64("cell_lon", center.Longitude))
		return cached, nil
	}

	var result *models.GeocodeResult
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		var lookupErr error
		result, lookupErr = g.lookup(ctx, c)
		return lookupErr
	})
	if err != nil {
		return nil, err
	}

	g.toCache(ctx, cell, result)
	return result, nil
}

func (g *NominatimGateway) lookup(ctx context.Context, c models.Coordinate) (*models.GeocodeResult, error) {
	query := url.Values{}
	query.Set("format", "json")
	query.Set("lat", strconv.FormatFloat(c.Latitude, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(c.Longitude, 'f', -1, 64))

	resp, err := g.client.Get(ctx, "/reverse", query)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, recorder.ErrGeocodeRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var payload nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}

	city := firstNonEmpty(
		payload.Address.City,
		payload.Address.Town,
		payload.Address.Village,
		payload.Address.Municipality,
	)
	if city == "" {
		return nil, recorder.ErrNoCityFound
	}

	return &models.GeocodeResult{
		City:  city,
		State: payload.Address.State,
	}, nil
}

func (g *NominatimGateway) fromCache(ctx context.Context, cell string) *models.GeocodeResult {
	if g.cache == nil {
		return nil
	}

	raw, err := g.cache.Get(ctx, fmt.Sprintf(constants.KeyGeocodeCache, cell))
	if err != nil {
		if err != redis.Nil {
			logger.Warn("Geocode cache read failed", logger.ErrorField(err))
		}
		return nil
	}

	var result models.GeocodeResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		logger.Warn("Dropping corrupt geocode cache entry", logger.String("cell", cell))
		return nil
	}
	return &result
}

func (g *NominatimGateway) toCache(ctx context.Context, cell string, result *models.GeocodeResult) {
	if g.cache == nil {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	key := fmt.Sprintf(constants.KeyGeocodeCache, cell)
	if err := g.cache.Set(ctx, key, string(raw), g.cacheTTL); err != nil {
		logger.Warn("Geocode cache write failed", logger.ErrorField(err))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
