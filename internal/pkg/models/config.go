package models

import "time"

// Config represents application configuration
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NSQ      NSQConfig
	JWT      JWTConfig
	Logger   LoggerConfig
	Recorder RecorderConfig
	Geocoder GeocoderConfig
	Upload   UploadConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	SSLMode   string
	MaxConns  int
	IdleConns int
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NSQConfig contains NSQ producer configuration
type NSQConfig struct {
	Address string
	Enabled bool
}

// JWTConfig contains JWT authentication configuration
type JWTConfig struct {
	Secret     string
	Expiration int // in minutes
	Issuer     string
}

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// RecorderConfig holds the tunables of the fix-ingestion pipeline. The
// defaults come from field use: fixes closer than 50 m are GPS jitter,
// city checks are worth making every 2 km at most once per 5 minutes,
// and a geocoder rate limit backs the checks off for 10 minutes.
type RecorderConfig struct {
	MinMovementKm        float64
	CityCheckMinKm       float64
	CityCheckMinInterval time.Duration
	RateLimitCooldown    time.Duration
	SaveDebounce         time.Duration
}

// GeocoderConfig contains reverse-geocoding gateway configuration
type GeocoderConfig struct {
	BaseURL        string
	Timeout        time.Duration
	CacheTTL       time.Duration
	CachePrecision uint // geohash precision for cached results
}

// UploadConfig contains trip upload configuration
type UploadConfig struct {
	Timeout   time.Duration
	MinTripKm float64
}
