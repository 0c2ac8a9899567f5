package rates

import (
	"context"
	"log/slog"
	"time"
)

// RefreshInterval is the cadence of the scheduled cache refresh.
const RefreshInterval = 6 * time.Hour

// Scheduler refreshes the cache on a fixed cadence, independent of any user
// request. A failed refresh is logged and the loop keeps running.
type Scheduler struct {
	interval time.Duration
	cache    *Cache
}

func NewScheduler(interval time.Duration, cache *Cache) *Scheduler {
	return &Scheduler{interval: interval, cache: cache}
}

func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.cache.Refresh(ctx); err != nil {
				slog.Error("scheduled exchange rate refresh failed", "error", err)
			}
		}
	}
}
