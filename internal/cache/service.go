// Package cache provides a Redis-backed JSON cache for data provider
// responses. The cache is best-effort: when Redis is unreachable the
// service disables itself and every lookup is a miss, so the provider
// layer keeps working without it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voltcast/forecast-api/internal/config"
)

// Stats tracks cache effectiveness counters.
type Stats struct {
	Hits          int64     `json:"hits"`
	Misses        int64     `json:"misses"`
	Errors        int64     `json:"errors"`
	TotalRequests int64     `json:"total_requests"`
	LastReset     time.Time `json:"last_reset"`
}

// Service implements the JSON cache over Redis.
type Service struct {
	client  *redis.Client
	ttl     time.Duration
	enabled bool
	logger  *slog.Logger

	mu    sync.Mutex
	stats Stats
}

// New connects to Redis using the provided configuration. Connection
// failure disables the cache rather than failing startup.
func New(cfg config.RedisConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		ttl:    cfg.CacheTTL,
		logger: logger,
		stats:  Stats{LastReset: time.Now()},
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		logger.Warn("invalid Redis URL, cache disabled", "error", err)
		return s
	}
	opts.MaxRetries = cfg.MaxRetries
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable, cache disabled", "error", err)
		client.Close()
		return s
	}

	logger.Info("provider cache connected")
	s.client = client
	s.enabled = true
	return s
}

// Disabled returns a no-op cache, for tests and cacheless deployments.
func Disabled() *Service {
	return &Service{logger: slog.Default(), stats: Stats{LastReset: time.Now()}}
}

// Enabled reports whether the cache is usable.
func (s *Service) Enabled() bool {
	return s.enabled
}

// Get unmarshals the cached value for key into dest. The boolean is
// false on a miss or any error; errors are counted, logged at debug,
// and never propagated.
func (s *Service) Get(ctx context.Context, key string, dest interface{}) bool {
	s.count(func(st *Stats) { st.TotalRequests++ })
	if !s.enabled {
		s.count(func(st *Stats) { st.Misses++ })
		return false
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			s.count(func(st *Stats) { st.Misses++ })
		} else {
			s.count(func(st *Stats) { st.Errors++ })
			s.logger.Debug("cache get failed", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		s.count(func(st *Stats) { st.Errors++ })
		s.logger.Debug("cache decode failed", "key", key, "error", err)
		return false
	}

	s.count(func(st *Stats) { st.Hits++ })
	return true
}

// Set stores value under key with the configured TTL. Best-effort.
func (s *Service) Set(ctx context.Context, key string, value interface{}) {
	if !s.enabled {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		s.count(func(st *Stats) { st.Errors++ })
		s.logger.Debug("cache encode failed", "key", key, "error", err)
		return
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.count(func(st *Stats) { st.Errors++ })
		s.logger.Debug("cache set failed", "key", key, "error", err)
	}
}

// Snapshot returns a copy of the effectiveness counters.
func (s *Service) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close releases the Redis connection.
func (s *Service) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Key builds a namespaced cache key from parts.
func Key(parts ...interface{}) string {
	key := "forecast"
	for _, p := range parts {
		key += fmt.Sprintf(":%v", p)
	}
	return key
}

func (s *Service) count(fn func(*Stats)) {
	s.mu.Lock()
	fn(&s.stats)
	s.mu.Unlock()
}
