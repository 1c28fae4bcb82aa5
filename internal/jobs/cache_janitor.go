package jobs

import (
	"context"
	"time"

	"github.com/dumpling2/steam-game-suggester/internal/cache"
	"github.com/dumpling2/steam-game-suggester/internal/logger"
)

// CacheJanitor sweeps expired response-cache entries on an interval and
// periodically logs a snapshot of the cache's on-disk footprint. Reads
// already drop expired entries lazily; the janitor keeps the directory
// from accumulating files for keys that are never read again.
type CacheJanitor struct {
	store         *cache.Store
	log           *logger.Logger
	sweepInterval time.Duration
	statsInterval time.Duration
}

func NewCacheJanitor(store *cache.Store, baseLog *logger.Logger, sweepInterval, statsInterval time.Duration) *CacheJanitor {
	if sweepInterval <= 0 {
		sweepInterval = time.Hour
	}
	if statsInterval <= 0 {
		statsInterval = 24 * time.Hour
	}
	return &CacheJanitor{
		store:         store,
		log:           baseLog.With("component", "CacheJanitor"),
		sweepInterval: sweepInterval,
		statsInterval: statsInterval,
	}
}

func (j *CacheJanitor) Start(ctx context.Context) {
	go func() {
		sweep := time.NewTicker(j.sweepInterval)
		defer sweep.Stop()
		stats := time.NewTicker(j.statsInterval)
		defer stats.Stop()

		j.sweep()
		for {
			select {
			case <-ctx.Done():
				return
			case <-sweep.C:
				j.sweep()
			case <-stats.C:
				j.logStats()
			}
		}
	}()
}

func (j *CacheJanitor) sweep() {
	removed := j.store.Cleanup()
	if removed > 0 {
		j.log.Info("Swept expired cache entries", "removed", removed)
	}
}

func (j *CacheJanitor) logStats() {
	s := j.store.GetStats()
	j.log.Info("Cache snapshot",
		"total_entries", s.TotalEntries,
		"valid_entries", s.ValidEntries,
		"expired_entries", s.ExpiredEntries,
		"total_size_bytes", s.TotalSizeBytes,
	)
}
