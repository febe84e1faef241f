package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/boaz-housing/internal/domain"
	"github.com/spec-kit/boaz-housing/internal/events"
)

const statsCacheKey = "boaz:stats:logements"

// StatsService serves the dashboard occupancy figures from a Redis cache.
// A background poller refreshes the cache on a fixed interval and every
// mutation event invalidates it, so dashboards converge without polling
// Postgres on each request.
type StatsService struct {
	logements *LogementService
	client    *redis.Client
	ttl       time.Duration
	logger    *zap.Logger
}

// NewStatsService builds the service.
func NewStatsService(logements *LogementService, client *redis.Client, ttl time.Duration, logger *zap.Logger) *StatsService {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &StatsService{logements: logements, client: client, ttl: ttl, logger: logger}
}

// Get returns the cached stats, recomputing on a miss.
func (s *StatsService) Get(ctx context.Context) (*domain.LogementStats, error) {
	if s.client != nil {
		raw, err := s.client.Get(ctx, statsCacheKey).Bytes()
		if err == nil {
			var stats domain.LogementStats
			if jsonErr := json.Unmarshal(raw, &stats); jsonErr == nil {
				return &stats, nil
			}
			// corrupt cache entry: fall through and recompute
		} else if err != redis.Nil {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
	}
	return s.Refresh(ctx)
}

// Refresh recomputes the stats and rewrites the cache entry.
func (s *StatsService) Refresh(ctx context.Context) (*domain.LogementStats, error) {
	stats, err := s.logements.Stats(ctx)
	if err != nil {
		return nil, err
	}
	if s.client != nil {
		raw, err := json.Marshal(stats)
		if err == nil {
			if err := s.client.Set(ctx, statsCacheKey, raw, s.ttl).Err(); err != nil {
				s.logger.Warn("stats cache write failed", zap.Error(err))
			}
		}
	}
	return stats, nil
}

// Invalidate drops the cache entry so the next read recomputes.
func (s *StatsService) Invalidate(ctx context.Context) {
	if s.client == nil {
		return
	}
	if err := s.client.Del(ctx, statsCacheKey).Err(); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

// RegisterInvalidation subscribes the cache to every event that can move
// the occupancy figures.
func (s *StatsService) RegisterInvalidation(dispatcher events.Dispatcher) {
	handler := func(ctx context.Context, _ events.Event) error {
		s.Invalidate(ctx)
		return nil
	}
	for _, eventType := range []events.EventType{
		events.EventLogementCreated,
		events.EventLogementUpdated,
		events.EventLogementStatusChanged,
		events.EventLogementDeleted,
		events.EventSouscriptionStatusChanged,
		events.EventSouscriptionDeleted,
	} {
		dispatcher.Subscribe(eventType, handler)
	}
}
