package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/shavuson/recruit-api/pkg/errors"
)

// cacheStore is the subset of the cache repository the service consumes.
type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService provides instrumented helpers over the raw cache store.
type CacheService struct {
	store   cacheStore
	metrics *MetricsService
	logger  *zap.Logger
}

func NewCacheService(store cacheStore, metrics *MetricsService, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{store: store, metrics: metrics, logger: logger}
}

// GetJSON fetches key and unmarshals it into dest. Returns
// appErrors.ErrCacheMiss when the key is absent.
func (s *CacheService) GetJSON(ctx context.Context, key string, dest any) error {
	if s == nil || s.store == nil {
		return appErrors.ErrCacheMiss
	}
	start := time.Now()
	err := s.store.Get(ctx, key, dest)
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	}
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// SetJSON stores value under key for ttl.
func (s *CacheService) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if s == nil || s.store == nil {
		return nil
	}
	start := time.Now()
	if err := s.store.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		return err
	}
	if s.metrics != nil {
		s.metrics.ObserveCacheWrite(time.Since(start))
	}
	return nil
}

// InvalidateInstitution drops every cached aggregate for one tenant.
func (s *CacheService) InvalidateInstitution(ctx context.Context, institutionID string) {
	if s == nil || s.store == nil {
		return
	}
	pattern := fmt.Sprintf("recruit:%s:*", institutionID)
	if err := s.store.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

// DashboardKey builds the cache key for a tenant's dashboard aggregate.
func DashboardKey(institutionID string) string {
	return fmt.Sprintf("recruit:%s:dashboard", institutionID)
}

// ReportKey builds the cache key for a tenant's report aggregate.
func ReportKey(institutionID string) string {
	return fmt.Sprintf("recruit:%s:report", institutionID)
}
