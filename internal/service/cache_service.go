package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/ulk-sapr/equipment-api/pkg/errors"
)

// Keys for cached listings.
const (
	CacheKeyItems         = "items"
	CacheKeyRooms         = "rooms"
	CacheKeyHardwareTypes = "hardware-types"
	CacheKeyStudents      = "students"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CacheService orchestrates cache operations and related metrics.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool

	mu          sync.Mutex
	generations map[string]uint64
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{
		repo:        repo,
		metrics:     metrics,
		defaultTTL:  defaultTTL,
		logger:      logger,
		enabled:     enabled,
		generations: map[string]uint64{},
	}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordCacheOperation(false, duration)
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	s.metrics.RecordCacheOperation(true, duration)
	return true
}

// Set stores the value in cache. Failures are logged; callers already hold the fresh value.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) {
	if !s.Enabled() {
		return
	}
	if err := s.repo.Set(ctx, key, value, s.defaultTTL); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Generation returns the invalidation counter for key. Read it before
// loading from the database and hand it to Fill.
func (s *CacheService) Generation(key string) uint64 {
	if !s.Enabled() {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[key]
}

// Fill stores a freshly loaded value unless key was invalidated after gen
// was read. An invalidation racing the write itself is caught by re-checking
// afterwards and dropping the entry.
func (s *CacheService) Fill(ctx context.Context, key string, value interface{}, gen uint64) {
	if !s.Enabled() || s.Generation(key) != gen {
		return
	}
	s.Set(ctx, key, value)
	if s.Generation(key) != gen {
		if err := s.repo.Delete(ctx, key); err != nil {
			s.logger.Warn("cache drop of stale fill failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// Invalidate removes the given keys. Generations are bumped before the
// delete so a concurrent Fill of an older read never survives it.
func (s *CacheService) Invalidate(ctx context.Context, keys ...string) {
	if !s.Enabled() {
		return
	}
	s.mu.Lock()
	for _, k := range keys {
		s.generations[k]++
	}
	s.mu.Unlock()
	if err := s.repo.Delete(ctx, keys...); err != nil {
		s.logger.Warn("cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
