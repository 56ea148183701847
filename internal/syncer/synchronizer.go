// Package syncer reconciles the local record store with the remote store.
//
// A cycle runs four phases, always in this order:
//
//  1. push creates/updates: every dirty, non-deleted record is upserted remotely
//     and replaced locally by the canonical copy, now clean;
//  2. push deletes: every tombstone is deleted remotely, then purged locally;
//  3. pull: the owner's remote records are listed;
//  4. merge: remote records are folded into the local store. A dirty local
//     copy always wins; a clean one is overwritten. Clean local records the
//     remote no longer has were deleted on another device and are removed.
//
// A failed push leaves the record dirty for the next cycle. A failed pull
// ends the cycle before merge, leaving the local store as phases 1-2 left it.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/MrSnakeDoc/savelater/internal/domain"
	"github.com/MrSnakeDoc/savelater/internal/logger"
	"github.com/MrSnakeDoc/savelater/internal/remote"
	"github.com/MrSnakeDoc/savelater/internal/store"
)

// DefaultCallTimeout bounds every single remote call.
const DefaultCallTimeout = 10 * time.Second

// ErrNoOwner is returned when a cycle is started without an active owner.
var ErrNoOwner = errors.New("sync requires an active owner")

// Report summarizes one cycle.
type Report struct {
	Pushed      int // records upserted remotely
	PushFailed  int // records left dirty after a failed upsert
	Purged      int // tombstones confirmed remotely and purged
	PurgeFailed int // tombstones kept after a failed delete
	Pulled      int // records listed remotely
	Inserted    int // remote-only records added locally
	Overwritten int // clean local records replaced by the remote copy
	Removed     int // clean local records gone remotely
	KeptDirty   int // local records kept over the remote copy

	Duration time.Duration
	// Err is the cycle failure, if any: a failed pull (wraps
	// domain.ErrRemoteUnavailable) or a local store failure (wraps
	// domain.ErrPersistence). Per-record push failures are only counted.
	Err error
}

// Failed reports whether any part of the cycle needs a retry.
func (r Report) Failed() bool {
	return r.Err != nil || r.PushFailed > 0 || r.PurgeFailed > 0
}

// Synchronizer runs sync cycles for one owner. It is not safe for
// concurrent use; the repository serializes cycles.
type Synchronizer struct {
	local       store.LocalStore
	remote      remote.Client
	owner       string
	callTimeout time.Duration
	logger      logger.Logger
}

type Option func(*Synchronizer)

// WithCallTimeout sets the per-remote-call timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.callTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Synchronizer) {
		s.logger = log
	}
}

// New returns a synchronizer pushing and pulling on behalf of owner.
func New(local store.LocalStore, rc remote.Client, owner string, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		local:       local,
		remote:      rc,
		owner:       owner,
		callTimeout: DefaultCallTimeout,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.String("component", "syncer"))
	return s
}

// Owner returns the account the synchronizer acts for.
func (s *Synchronizer) Owner() string { return s.owner }

// Run executes one cycle. The returned error equals Report.Err.
func (s *Synchronizer) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	var rep Report

	finish := func(err error) (Report, error) {
		rep.Err = err
		rep.Duration = time.Since(start)
		s.logReport(rep)
		return rep, err
	}

	if s.owner == "" {
		return finish(ErrNoOwner)
	}

	records, err := s.local.GetAll(ctx)
	if err != nil {
		return finish(persistence("read local records", err))
	}

	var localErr error
	keep := func(err error) {
		if localErr == nil {
			localErr = err
		}
	}

	// 1. push creates/updates
	for _, h := range s.pending(records, func(h domain.Hyperlink) bool { return h.Dirty && !h.Deleted }) {
		if h.Owner == "" {
			h.Owner = s.owner
		}

		canonical, err := s.upsertRemote(ctx, h)
		if err != nil {
			rep.PushFailed++
			s.logger.Warn("push failed, record stays dirty",
				logger.String("id", h.ID), logger.Error(err))
			continue
		}

		canonical.Dirty = false
		canonical.Deleted = false
		if err := s.local.Upsert(ctx, canonical); err != nil {
			keep(persistence("store pushed record", err))
			continue
		}
		records[h.ID] = canonical
		rep.Pushed++
	}

	// 2. push deletes
	for _, h := range s.pending(records, func(h domain.Hyperlink) bool { return h.Deleted }) {
		if err := s.deleteRemote(ctx, h.ID); err != nil {
			rep.PurgeFailed++
			s.logger.Warn("remote delete failed, tombstone kept",
				logger.String("id", h.ID), logger.Error(err))
			continue
		}

		if err := s.local.Delete(ctx, h.ID); err != nil {
			keep(persistence("purge tombstone", err))
			continue
		}
		delete(records, h.ID)
		rep.Purged++
	}

	// 3. pull
	remoteList, err := s.listRemote(ctx)
	if err != nil {
		return finish(err)
	}
	rep.Pulled = len(remoteList)

	// 4. merge
	s.merge(ctx, records, remoteList, &rep, keep)

	return finish(localErr)
}

func (s *Synchronizer) merge(ctx context.Context, records map[string]domain.Hyperlink, remoteList []domain.Hyperlink, rep *Report, keep func(error)) {
	seen := make(map[string]struct{}, len(remoteList))

	for _, r := range remoteList {
		r = r.RemoteView()
		seen[r.ID] = struct{}{}

		l, ok := records[r.ID]
		switch {
		case !ok:
			if err := s.local.Upsert(ctx, r); err != nil {
				keep(persistence("insert remote record", err))
				continue
			}
			rep.Inserted++
		case !s.owns(l):
			// id collision with another account's record: leave it alone
		case l.Dirty:
			rep.KeptDirty++
		case !sameContent(l, r):
			if err := s.local.Upsert(ctx, r); err != nil {
				keep(persistence("overwrite local record", err))
				continue
			}
			rep.Overwritten++
		}
	}

	for id, l := range records {
		if _, ok := seen[id]; ok || !s.owns(l) || l.Dirty || l.Deleted {
			continue
		}
		if err := s.local.Delete(ctx, id); err != nil {
			keep(persistence("remove record deleted remotely", err))
			continue
		}
		rep.Removed++
	}
}

// pending returns the owner's records matching keep, oldest first.
func (s *Synchronizer) pending(records map[string]domain.Hyperlink, keep func(domain.Hyperlink) bool) []domain.Hyperlink {
	out := make([]domain.Hyperlink, 0)
	for _, h := range records {
		if s.owns(h) && keep(h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedOn.Equal(out[j].CreatedOn) {
			return out[i].CreatedOn.Before(out[j].CreatedOn)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// owns reports whether a local record is the active owner's. Unassigned
// records are adopted by the active owner on push.
func (s *Synchronizer) owns(h domain.Hyperlink) bool {
	return h.Owner == "" || h.Owner == s.owner
}

func (s *Synchronizer) upsertRemote(ctx context.Context, h domain.Hyperlink) (domain.Hyperlink, error) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.remote.Upsert(ctx, h.RemoteView())
}

func (s *Synchronizer) deleteRemote(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.remote.Delete(ctx, id)
}

func (s *Synchronizer) listRemote(ctx context.Context) ([]domain.Hyperlink, error) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	list, err := s.remote.List(ctx, s.owner)
	if err != nil {
		if !errors.Is(err, domain.ErrRemoteUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
		}
		return nil, err
	}
	return list, nil
}

func (s *Synchronizer) logReport(rep Report) {
	fields := []logger.Field{
		logger.Int("pushed", rep.Pushed),
		logger.Int("push_failed", rep.PushFailed),
		logger.Int("purged", rep.Purged),
		logger.Int("purge_failed", rep.PurgeFailed),
		logger.Int("pulled", rep.Pulled),
		logger.Int("inserted", rep.Inserted),
		logger.Int("overwritten", rep.Overwritten),
		logger.Int("removed", rep.Removed),
		logger.Int("kept_dirty", rep.KeptDirty),
		logger.Duration("duration", rep.Duration),
	}

	if rep.Err != nil {
		s.logger.Warn("sync cycle failed", append(fields, logger.Error(rep.Err))...)
		return
	}
	s.logger.Info("sync cycle finished", fields...)
}

func persistence(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, what, err)
}

// sameContent compares everything the remote store is authoritative for.
func sameContent(a, b domain.Hyperlink) bool {
	return a.URL == b.URL &&
		a.Title == b.Title &&
		a.Visited == b.Visited &&
		a.Owner == b.Owner &&
		a.Deleted == b.Deleted &&
		a.CreatedOn.Equal(b.CreatedOn) &&
		a.UpdatedOn.Equal(b.UpdatedOn)
}
