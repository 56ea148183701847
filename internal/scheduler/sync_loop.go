package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/MrSnakeDoc/savelater/internal/domain"
	"github.com/MrSnakeDoc/savelater/internal/logger"
	"github.com/MrSnakeDoc/savelater/internal/syncer"
)

const (
	// DefaultRetryInitial is the first delay after a failed cycle.
	DefaultRetryInitial = 5 * time.Second
)

// Syncer runs one sync cycle. Implemented by repository.Repository.
type Syncer interface {
	Sync(ctx context.Context) ([]domain.Hyperlink, syncer.Report)
}

// SyncLoop runs sync cycles on start, on every interval and on demand.
// After a failed cycle the next one comes sooner, backing off exponentially
// up to maxBackoff; a successful cycle restores the regular interval.
type SyncLoop struct {
	repo          Syncer
	logger        logger.Logger
	interval      time.Duration
	retry         *backoff.ExponentialBackOff
	stopCh        chan struct{}
	doneCh        chan struct{}
	stopOnce      sync.Once
	started       atomic.Bool
	manualTrigger chan struct{}
}

// NewSyncLoop creates a loop. retryInitial <= 0 uses DefaultRetryInitial.
func NewSyncLoop(
	repo Syncer,
	log logger.Logger,
	interval time.Duration,
	retryInitial time.Duration,
	maxBackoff time.Duration,
) *SyncLoop {
	if retryInitial <= 0 {
		retryInitial = DefaultRetryInitial
	}
	if maxBackoff < retryInitial {
		maxBackoff = retryInitial
	}

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = retryInitial
	retry.Multiplier = 2
	retry.RandomizationFactor = 0
	retry.MaxInterval = maxBackoff
	retry.MaxElapsedTime = 0 // never give up
	retry.Reset()

	return &SyncLoop{
		repo:          repo,
		logger:        log.With(logger.String("component", "sync_loop")),
		interval:      interval,
		retry:         retry,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
		manualTrigger: make(chan struct{}, 1),
	}
}

// Trigger asks for a cycle as soon as possible. It returns false when one
// is already pending.
func (l *SyncLoop) Trigger() bool {
	select {
	case l.manualTrigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Start runs a first cycle, then keeps syncing in the background until
// Stop is called or ctx ends.
func (l *SyncLoop) Start(ctx context.Context) error {
	delay := l.RunOnce(ctx)

	l.started.Store(true)
	go func() {
		defer close(l.doneCh)

		timer := time.NewTimer(delay)
		defer timer.Stop()

		for {
			select {
			case <-timer.C:
				delay = l.RunOnce(ctx)
			case <-l.manualTrigger:
				l.logger.Info("manual sync triggered")
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				delay = l.RunOnce(ctx)
			case <-l.stopCh:
				return
			case <-ctx.Done():
				return
			}
			timer.Reset(delay)
		}
	}()

	return nil
}

// Stop ends the loop and waits for a running cycle to finish.
func (l *SyncLoop) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
	})
	if l.started.Load() {
		<-l.doneCh
	}
}

// RunOnce runs a cycle and returns the delay before the next one.
func (l *SyncLoop) RunOnce(ctx context.Context) time.Duration {
	_, rep := l.repo.Sync(ctx)
	return l.nextDelay(rep)
}

func (l *SyncLoop) nextDelay(rep syncer.Report) time.Duration {
	if !rep.Failed() {
		l.retry.Reset()
		return l.interval
	}

	delay := l.retry.NextBackOff()
	l.logger.Warn("sync cycle incomplete, retrying later",
		logger.Duration("retry_in", delay),
		logger.Int("push_failed", rep.PushFailed),
		logger.Int("purge_failed", rep.PurgeFailed),
		logger.Error(rep.Err))
	return delay
}
