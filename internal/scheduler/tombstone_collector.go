package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/savelater/internal/logger"
)

const (
	// DefaultGCThreshold is the age after which unsyncable tombstones are purged
	DefaultGCThreshold = 30 * 24 * time.Hour // 30 days
)

// Collector purges tombstones last touched before a cutoff.
// Implemented by repository.Repository.
type Collector interface {
	CollectGarbage(ctx context.Context, before time.Time) (int, error)
}

// TombstoneCollector handles cleanup of tombstones no sync cycle will confirm
type TombstoneCollector struct {
	repo      Collector
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	now       func() time.Time
	stopCh    chan struct{}
}

// NewTombstoneCollector creates a new tombstone collector
func NewTombstoneCollector(
	repo Collector,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
) *TombstoneCollector {
	if threshold == 0 {
		threshold = DefaultGCThreshold
	}

	return &TombstoneCollector{
		repo:      repo,
		logger:    log,
		interval:  interval,
		threshold: threshold,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic collection
func (gc *TombstoneCollector) Start(ctx context.Context) error {
	// Run immediately on start
	if err := gc.Collect(ctx); err != nil {
		gc.logger.Warn("initial tombstone collection failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := gc.Collect(ctx); err != nil {
					gc.logger.Error("tombstone collection failed",
						logger.Error(err))
				}
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the collector
func (gc *TombstoneCollector) Stop() {
	close(gc.stopCh)
}

// Collect purges tombstones older than the threshold
func (gc *TombstoneCollector) Collect(ctx context.Context) error {
	cutoff := gc.now().Add(-gc.threshold)

	purged, err := gc.repo.CollectGarbage(ctx, cutoff)
	if err != nil {
		return err
	}

	if purged > 0 {
		gc.logger.Info("tombstone collection completed",
			logger.Int("purged", purged),
			logger.String("older_than", gc.threshold.String()))
	} else {
		gc.logger.Debug("no tombstones to collect")
	}

	return nil
}
