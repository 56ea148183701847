package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/savelater/internal/domain"
	"github.com/MrSnakeDoc/savelater/internal/logger"
	"github.com/MrSnakeDoc/savelater/internal/syncer"
)

type scriptedSyncer struct {
	mu      sync.Mutex
	reports []syncer.Report
	calls   int
}

func (s *scriptedSyncer) Sync(ctx context.Context) ([]domain.Hyperlink, syncer.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rep syncer.Report
	if s.calls < len(s.reports) {
		rep = s.reports[s.calls]
	}
	s.calls++
	return nil, rep
}

func (s *scriptedSyncer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestSyncLoopBackoff(t *testing.T) {
	down := syncer.Report{Err: domain.ErrRemoteUnavailable}
	partial := syncer.Report{PushFailed: 1}
	ok := syncer.Report{Pushed: 1}

	l := NewSyncLoop(&scriptedSyncer{}, logger.Nop(), time.Hour, time.Second, 5*time.Second)

	tests := []struct {
		name   string
		report syncer.Report
		want   time.Duration
	}{
		{name: "first failure", report: down, want: time.Second},
		{name: "second failure", report: partial, want: 2 * time.Second},
		{name: "third failure", report: down, want: 4 * time.Second},
		{name: "capped", report: down, want: 5 * time.Second},
		{name: "success restores interval", report: ok, want: time.Hour},
		{name: "failure after success starts over", report: down, want: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.nextDelay(tt.report))
		})
	}
}

func TestSyncLoopRetriesSoonerAfterFailure(t *testing.T) {
	fail := syncer.Report{Err: errors.New("offline")}
	s := &scriptedSyncer{reports: []syncer.Report{fail, fail, fail}}

	l := NewSyncLoop(s, logger.Nop(), time.Hour, 10*time.Millisecond, 20*time.Millisecond)
	require.NoError(t, l.Start(context.Background()))
	defer l.Stop()

	assert.Eventually(t, func() bool { return s.Calls() >= 4 }, 2*time.Second, 5*time.Millisecond)
}

func TestSyncLoopManualTrigger(t *testing.T) {
	s := &scriptedSyncer{}
	l := NewSyncLoop(s, logger.Nop(), time.Hour, 0, 0)

	require.NoError(t, l.Start(context.Background()))
	defer l.Stop()
	assert.Equal(t, 1, s.Calls(), "Start runs a first cycle")

	assert.True(t, l.Trigger())
	assert.Eventually(t, func() bool { return s.Calls() == 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestSyncLoopTriggerAlreadyPending(t *testing.T) {
	l := NewSyncLoop(&scriptedSyncer{}, logger.Nop(), time.Hour, 0, 0)

	assert.True(t, l.Trigger())
	assert.False(t, l.Trigger(), "second trigger while one is pending")
}

func TestSyncLoopStopsWithContext(t *testing.T) {
	s := &scriptedSyncer{}
	l := NewSyncLoop(s, logger.Nop(), 5*time.Millisecond, 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, l.Start(ctx))
	cancel()
	l.Stop()

	calls := s.Calls()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, s.Calls(), "no cycle after stop")
}

func TestSyncLoopStopWithoutStart(t *testing.T) {
	l := NewSyncLoop(&scriptedSyncer{}, logger.Nop(), time.Hour, 0, 0)
	l.Stop()
	l.Stop()
}
