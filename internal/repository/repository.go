// Package repository is the single entry point the presentation layer talks
// to. Every mutation is persisted locally before anything goes to the
// network, and the visible list is always served from the local store.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MrSnakeDoc/savelater/internal/domain"
	"github.com/MrSnakeDoc/savelater/internal/logger"
	"github.com/MrSnakeDoc/savelater/internal/store"
	"github.com/MrSnakeDoc/savelater/internal/syncer"
)

// Repository owns the local store and, when an account is configured, the
// synchronizer. Mutations and sync cycles are serialized.
type Repository struct {
	local  store.LocalStore
	sync   *syncer.Synchronizer
	owner  string
	now    func() time.Time
	logger logger.Logger

	mu     sync.Mutex
	flight singleflight.Group

	snapMu   sync.RWMutex
	snapshot []domain.Hyperlink
}

type Option func(*Repository)

// WithSynchronizer enables Sync. Without it the repository is offline only.
func WithSynchronizer(s *syncer.Synchronizer) Option {
	return func(r *Repository) {
		r.sync = s
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

func WithLogger(log logger.Logger) Option {
	return func(r *Repository) {
		r.logger = log
	}
}

// New returns a repository over an initialized local store. owner is
// stamped on new records and may be empty.
func New(local store.LocalStore, owner string, opts ...Option) *Repository {
	r := &Repository{
		local:  local,
		owner:  owner,
		now:    time.Now,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.String("component", "repository"))
	return r
}

// Owner returns the active account, empty when offline only.
func (r *Repository) Owner() string { return r.owner }

// FetchAll reads the visible list from the local store. It never fails: on
// a read error it logs and returns the last known list.
func (r *Repository) FetchAll(ctx context.Context) []domain.Hyperlink {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.reload(ctx, nil)
}

// Create validates and stores a new dirty record.
func (r *Repository) Create(ctx context.Context, in domain.NewHyperlink) ([]domain.Hyperlink, error) {
	h, err := in.Build(r.owner, r.now())
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.local.Upsert(ctx, h); err != nil {
		return nil, persistence("create", err)
	}

	r.logger.Debug("hyperlink created", logger.String("id", h.ID))
	return r.reload(ctx, &h), nil
}

// Import creates a record for every link whose URL is not saved yet.
// Invalid links fail the whole import before anything is stored.
func (r *Repository) Import(ctx context.Context, links []domain.NewHyperlink) ([]domain.Hyperlink, int, error) {
	built := make([]domain.Hyperlink, 0, len(links))
	for _, in := range links {
		h, err := in.Build(r.owner, r.now())
		if err != nil {
			return nil, 0, err
		}
		built = append(built, h)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.local.GetAll(ctx)
	if err != nil {
		return nil, 0, persistence("import", err)
	}
	saved := make(map[string]bool, len(all))
	for _, h := range all {
		if h.Visible() {
			saved[h.URL] = true
		}
	}

	added := 0
	for _, h := range built {
		if saved[h.URL] {
			continue
		}
		if err := r.local.Upsert(ctx, h); err != nil {
			return nil, added, persistence("import", err)
		}
		saved[h.URL] = true
		added++
	}

	r.logger.Info("hyperlinks imported", logger.Int("added", added), logger.Int("skipped", len(built)-added))
	return r.reload(ctx, nil), added, nil
}

// Update applies a partial change to a visible record.
func (r *Repository) Update(ctx context.Context, p domain.Patch) ([]domain.Hyperlink, error) {
	if p.URL != nil {
		url := strings.TrimSpace(*p.URL)
		if err := domain.ValidateURL(url); err != nil {
			return nil, err
		}
		p.URL = &url
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		p.Title = &title
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	h, err := r.find(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if p.IsEmpty() {
		return r.reload(ctx, nil), nil
	}

	p.Apply(&h)
	if h.Owner == "" {
		h.Owner = r.owner
	}
	h.Touch(r.now())

	if err := r.local.Upsert(ctx, h); err != nil {
		return nil, persistence("update", err)
	}

	r.logger.Debug("hyperlink updated", logger.String("id", h.ID))
	return r.reload(ctx, &h), nil
}

// Visit flags a record as opened.
func (r *Repository) Visit(ctx context.Context, id string) ([]domain.Hyperlink, error) {
	visited := true
	return r.Update(ctx, domain.Patch{ID: id, Visited: &visited})
}

// Delete turns a visible record into a tombstone. The record disappears
// from the list at once and is purged after the remote confirms.
func (r *Repository) Delete(ctx context.Context, id string) ([]domain.Hyperlink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, err := r.find(ctx, id)
	if err != nil {
		return nil, err
	}

	h.MarkDeleted(r.now())
	if err := r.local.Upsert(ctx, h); err != nil {
		return nil, persistence("delete", err)
	}

	r.logger.Debug("hyperlink deleted", logger.String("id", id))
	return r.reload(ctx, &h), nil
}

type syncResult struct {
	list   []domain.Hyperlink
	report syncer.Report
}

// Sync runs one cycle and returns the refreshed list. Transient failures
// are reported in Report.Err, never as an error: the list is always usable.
// Callers arriving while a cycle is running share its result.
func (r *Repository) Sync(ctx context.Context) ([]domain.Hyperlink, syncer.Report) {
	if r.sync == nil {
		return r.FetchAll(ctx), syncer.Report{}
	}

	v, _, _ := r.flight.Do("sync", func() (interface{}, error) {
		r.mu.Lock()
		defer r.mu.Unlock()

		rep, _ := r.sync.Run(ctx)
		return syncResult{list: r.reload(ctx, nil), report: rep}, nil
	})

	res := v.(syncResult)
	return clone(res.list), res.report
}

// Snapshot returns the last list handed out, without touching the store.
func (r *Repository) Snapshot() []domain.Hyperlink {
	r.snapMu.RLock()
	defer r.snapMu.RUnlock()
	return clone(r.snapshot)
}

// Wipe removes every local record, tombstones and unsynced changes included.
func (r *Repository) Wipe(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.local.Wipe(ctx); err != nil {
		return persistence("wipe", err)
	}
	r.setSnapshot(nil)
	r.logger.Info("local records wiped")
	return nil
}

// CollectGarbage purges tombstones older than before that no sync cycle
// will ever confirm: every tombstone when offline only, otherwise those of
// other accounts. It returns the number of purged records.
func (r *Repository) CollectGarbage(ctx context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.local.GetAll(ctx)
	if err != nil {
		return 0, persistence("collect garbage", err)
	}

	purged := 0
	for id, h := range all {
		if !h.Deleted || !h.UpdatedOn.Before(before) || r.pushable(h) {
			continue
		}
		if err := r.local.Delete(ctx, id); err != nil {
			return purged, persistence("collect garbage", err)
		}
		purged++
	}
	return purged, nil
}

func (r *Repository) pushable(h domain.Hyperlink) bool {
	if r.sync == nil {
		return false
	}
	return h.Owner == "" || h.Owner == r.sync.Owner()
}

// find returns the visible record with the given id.
func (r *Repository) find(ctx context.Context, id string) (domain.Hyperlink, error) {
	all, err := r.local.GetAll(ctx)
	if err != nil {
		return domain.Hyperlink{}, persistence("read", err)
	}

	h, ok := all[id]
	if !ok || h.Deleted {
		return domain.Hyperlink{}, fmt.Errorf("%w: %q", domain.ErrNotFound, id)
	}
	return h, nil
}

// reload rebuilds the snapshot from the local store. If the read fails, the
// last snapshot is kept, with changed folded in when given.
func (r *Repository) reload(ctx context.Context, changed *domain.Hyperlink) []domain.Hyperlink {
	all, err := r.local.GetAll(ctx)
	if err == nil {
		list := domain.VisibleList(all)
		r.setSnapshot(list)
		return clone(list)
	}

	r.logger.Warn("failed to read local records, serving last known list", logger.Error(err))

	list := r.Snapshot()
	if changed != nil {
		list = fold(list, *changed)
		r.setSnapshot(list)
	}
	return clone(list)
}

func (r *Repository) setSnapshot(list []domain.Hyperlink) {
	r.snapMu.Lock()
	defer r.snapMu.Unlock()
	r.snapshot = list
}

// fold replaces h in list, dropping it when it is a tombstone.
func fold(list []domain.Hyperlink, h domain.Hyperlink) []domain.Hyperlink {
	out := make([]domain.Hyperlink, 0, len(list)+1)
	for _, l := range list {
		if l.ID != h.ID {
			out = append(out, l)
		}
	}
	if h.Visible() {
		out = append(out, h)
	}
	domain.SortNewestFirst(out)
	return out
}

func clone(list []domain.Hyperlink) []domain.Hyperlink {
	out := make([]domain.Hyperlink, len(list))
	copy(out, list)
	return out
}

func persistence(op string, err error) error {
	if errors.Is(err, domain.ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}
