package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/boaz-housing/internal/async"
	"github.com/spec-kit/boaz-housing/internal/events"
	"github.com/spec-kit/boaz-housing/internal/service"
)

// StartStatsWorker wires the stats cache: mutation events invalidate it
// and a fixed-interval poller keeps it warm so dashboards never hit
// Postgres per request. The returned poller must be stopped on shutdown.
func StartStatsWorker(stats *service.StatsService, dispatcher events.Dispatcher, interval time.Duration, logger *zap.Logger) (*async.Poller, error) {
	if dispatcher != nil {
		stats.RegisterInvalidation(dispatcher)
	}

	poller, err := async.NewPoller(interval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := stats.Refresh(ctx); err != nil {
			logger.Warn("stats refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}
	poller.Start()
	return poller, nil
}
