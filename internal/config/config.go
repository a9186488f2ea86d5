// Package config provides centralized configuration management for the
// forecast API. It loads values from a config.env file and the process
// environment, validates them, and provides sensible development
// defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the forecast API. Immutable after
// Load returns.
type Config struct {
	Server    ServerConfig
	Providers ProviderConfig
	Redis     RedisConfig
	App       AppConfig
	Security  SecurityConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host string
	Port int
	Env  string // development, staging, production
}

// ProviderConfig contains credentials and timeouts for the external
// data providers. Credentials are never logged.
type ProviderConfig struct {
	AnthropicAPIKey   string
	CensusAPIKey      string
	EIAAPIKey         string
	OpenWeatherAPIKey string
	MapsAPIKey        string

	LocationTimeout  time.Duration
	EnergyTimeout    time.Duration
	ClimateTimeout   time.Duration
	NarrativeTimeout time.Duration
}

// RedisConfig contains Redis connection and pool configuration for the
// provider response cache.
type RedisConfig struct {
	URL          string
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
	CacheTTL     time.Duration
}

// AppConfig contains general application settings.
type AppConfig struct {
	LogLevel   string
	ReportPath string // where the last forecast report is persisted
	RateLimit  RateLimitConfig
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	AllowedOrigins []string
}

// Load creates a Config from config.env and the environment, then
// validates it. A missing config.env is not an error; the process
// environment alone may carry everything.
func Load() (*Config, error) {
	_ = godotenv.Load("config.env")
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnvString("HOST", "0.0.0.0"),
			Port: getEnvInt("PORT", 5000),
			Env:  getEnvString("ENVIRONMENT", "development"),
		},
		Providers: ProviderConfig{
			AnthropicAPIKey:   getEnvString("ANTHROPIC_API_KEY", ""),
			CensusAPIKey:      getEnvString("CENSUS_API_KEY", ""),
			EIAAPIKey:         getEnvString("EIA_API_KEY", ""),
			OpenWeatherAPIKey: getEnvString("OPENWEATHER_API_KEY", ""),
			MapsAPIKey:        getEnvString("MAPS_API_KEY", ""),
			LocationTimeout:   time.Duration(getEnvInt("LOCATION_TIMEOUT_SECONDS", 15)) * time.Second,
			EnergyTimeout:     time.Duration(getEnvInt("ENERGY_TIMEOUT_SECONDS", 10)) * time.Second,
			ClimateTimeout:    time.Duration(getEnvInt("CLIMATE_TIMEOUT_SECONDS", 10)) * time.Second,
			NarrativeTimeout:  time.Duration(getEnvInt("NARRATIVE_TIMEOUT_SECONDS", 300)) * time.Second,
		},
		Redis: RedisConfig{
			URL:          getEnvString("REDIS_URL", "redis://localhost:6379"),
			MaxRetries:   getEnvInt("REDIS_MAX_RETRIES", 3),
			DialTimeout:  time.Duration(getEnvInt("REDIS_DIAL_TIMEOUT_MS", 5000)) * time.Millisecond,
			ReadTimeout:  time.Duration(getEnvInt("REDIS_READ_TIMEOUT_MS", 3000)) * time.Millisecond,
			WriteTimeout: time.Duration(getEnvInt("REDIS_WRITE_TIMEOUT_MS", 3000)) * time.Millisecond,
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			CacheTTL:     time.Duration(getEnvInt("CACHE_TTL_SECONDS", 600)) * time.Second,
		},
		App: AppConfig{
			LogLevel:   getEnvString("LOG_LEVEL", "info"),
			ReportPath: getEnvString("REPORT_PATH", "forecast_report.json"),
			RateLimit: RateLimitConfig{
				RequestsPerMinute: getEnvInt("RATE_LIMIT_RPM", 60),
				BurstSize:         getEnvInt("RATE_LIMIT_BURST", 10),
			},
		},
		Security: SecurityConfig{
			AllowedOrigins: parseStringSlice(getEnvString("ALLOWED_ORIGINS", "*")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration values are present
// and in range.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, "server port must be between 1 and 65535")
	}
	if c.Server.Env == "" {
		errs = append(errs, "ENVIRONMENT must be set")
	}

	if c.Server.Env == "production" && c.Providers.AnthropicAPIKey == "" {
		errs = append(errs, "ANTHROPIC_API_KEY is required in production")
	}

	if c.Redis.URL == "" {
		errs = append(errs, "REDIS_URL must be set")
	}
	if c.Redis.PoolSize <= 0 {
		errs = append(errs, "Redis pool size must be greater than 0")
	}
	if c.Redis.MinIdleConns < 0 {
		errs = append(errs, "Redis minimum idle connections cannot be negative")
	}
	if c.Redis.MinIdleConns > c.Redis.PoolSize {
		errs = append(errs, "Redis minimum idle connections cannot exceed pool size")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, "log level must be one of: debug, info, warn, error")
	}

	if c.App.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, "rate limit requests per minute must be positive")
	}
	if c.App.RateLimit.BurstSize <= 0 {
		errs = append(errs, "rate limit burst size must be positive")
	}

	if len(c.Security.AllowedOrigins) == 0 {
		errs = append(errs, "at least one allowed origin must be specified")
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// String returns a representation of the configuration with all
// credentials masked, safe for logging.
func (c *Config) String() string {
	return fmt.Sprintf(`Config{
  Server: {Host: %s, Port: %d, Env: %s}
  Providers: {Anthropic: %s, Census: %s, EIA: %s, OpenWeather: %s, Maps: %s}
  Redis: {URL: %s, PoolSize: %d}
  App: {LogLevel: %s, ReportPath: %s, RateLimit: %d rpm}
  Security: {AllowedOrigins: %v}
}`,
		c.Server.Host, c.Server.Port, c.Server.Env,
		maskKey(c.Providers.AnthropicAPIKey), maskKey(c.Providers.CensusAPIKey),
		maskKey(c.Providers.EIAAPIKey), maskKey(c.Providers.OpenWeatherAPIKey),
		maskKey(c.Providers.MapsAPIKey),
		maskRedisURL(c.Redis.URL), c.Redis.PoolSize,
		c.App.LogLevel, c.App.ReportPath, c.App.RateLimit.RequestsPerMinute,
		c.Security.AllowedOrigins,
	)
}

// IsProduction returns true when running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetServerAddress returns the full server address (host:port).
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func maskKey(key string) string {
	if key == "" {
		return "(unset)"
	}
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "***" + key[len(key)-4:]
}

func maskRedisURL(url string) string {
	if !strings.Contains(url, "@") {
		return url
	}
	parts := strings.Split(url, "@")
	schemeParts := strings.Split(parts[0], "://")
	if len(schemeParts) != 2 {
		return url
	}
	userParts := strings.Split(schemeParts[1], ":")
	if len(userParts) < 2 {
		return url
	}
	return schemeParts[0] + "://" + userParts[0] + ":***@" + strings.Join(parts[1:], "@")
}

// getEnvString returns the value of an environment variable or a
// default value.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a
// default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// parseStringSlice parses a comma-separated string into a slice.
func parseStringSlice(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
