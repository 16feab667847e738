package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/m-atef1999/Spotless-sub000/cache"
	catalogpkg "github.com/m-atef1999/Spotless-sub000/catalog"
	"github.com/m-atef1999/Spotless-sub000/entity"
)

// catalogService serves catalog reads through the cache store. Cache
// failures fall back to the database; they are logged, never surfaced.
type catalogService struct {
	repo  catalogpkg.Repository
	cache cache.Store
	ttl   time.Duration
	log   *zap.Logger
}

func NewCatalogService(repo catalogpkg.Repository, store cache.Store, ttl time.Duration, log *zap.Logger) catalogpkg.Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &catalogService{repo: repo, cache: store, ttl: ttl, log: log}
}

func (s *catalogService) ListServices(ctx context.Context) ([]entity.Service, error) {
	var services []entity.Service
	if s.readCached(ctx, cache.KeyServices, &services) {
		return services, nil
	}
	services, err := s.repo.ListActiveServices(ctx)
	if err != nil {
		return nil, err
	}
	s.writeCached(ctx, cache.KeyServices, services)
	return services, nil
}

func (s *catalogService) ListTimeSlots(ctx context.Context) ([]entity.TimeSlot, error) {
	var slots []entity.TimeSlot
	if s.readCached(ctx, cache.KeyTimeSlots, &slots) {
		return slots, nil
	}
	slots, err := s.repo.ListActiveTimeSlots(ctx)
	if err != nil {
		return nil, err
	}
	s.writeCached(ctx, cache.KeyTimeSlots, slots)
	return slots, nil
}

func (s *catalogService) readCached(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if err != cache.ErrMiss {
			s.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.log.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *catalogService) writeCached(ctx context.Context, key string, val any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
