// Package remotetest provides an in-process remote.Client with failure
// injection for synchronizer and repository tests.
package remotetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/savelater/internal/domain"
	"github.com/MrSnakeDoc/savelater/internal/hyperlinkdb"
)

// Fake behaves like the server: canonical copies, idempotent deletes.
type Fake struct {
	store *hyperlinkdb.MemoryStore

	mu         sync.Mutex
	now        func() time.Time
	down       bool
	failUpsert map[string]bool
	failDelete map[string]bool
	failList   bool
	block      bool
	calls      []string
}

func NewFake() *Fake {
	return &Fake{
		store:      hyperlinkdb.NewMemoryStore(),
		now:        time.Now,
		failUpsert: map[string]bool{},
		failDelete: map[string]bool{},
	}
}

// SetClock fixes the server clock used for canonical UpdatedOn.
func (f *Fake) SetClock(now func() time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

// SetDown makes every call fail.
func (f *Fake) SetDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

// FailUpsert toggles failures for upserts of id.
func (f *Fake) FailUpsert(id string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failUpsert[id] = fail
}

// FailDelete toggles failures for deletes of id.
func (f *Fake) FailDelete(id string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failDelete[id] = fail
}

// FailList makes List fail.
func (f *Fake) FailList(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failList = fail
}

// Block makes every call wait for its context to end.
func (f *Fake) Block(block bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.block = block
}

// Seed stores h as if another device had pushed it.
func (f *Fake) Seed(h domain.Hyperlink) domain.Hyperlink {
	saved, _ := f.store.Upsert(context.Background(), h.RemoteView())
	return saved
}

// Remove deletes a record as if another device had deleted it.
func (f *Fake) Remove(id string) {
	_ = f.store.Delete(context.Background(), id)
}

// Records returns the owner's remote records.
func (f *Fake) Records(owner string) []domain.Hyperlink {
	list, _ := f.store.List(context.Background(), owner)
	return list
}

// Calls returns the calls received so far, ex: "upsert:abc".
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *Fake) enter(ctx context.Context, call string, fail bool) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	down, block := f.down, f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return fmt.Errorf("%w: %s: %v", domain.ErrRemoteUnavailable, call, ctx.Err())
	}
	if down || fail {
		return fmt.Errorf("%w: %s: injected failure", domain.ErrRemoteUnavailable, call)
	}
	return nil
}

func (f *Fake) List(ctx context.Context, owner string) ([]domain.Hyperlink, error) {
	f.mu.Lock()
	fail := f.failList
	f.mu.Unlock()

	if err := f.enter(ctx, "list:"+owner, fail); err != nil {
		return nil, err
	}
	return f.store.List(ctx, owner)
}

func (f *Fake) Upsert(ctx context.Context, h domain.Hyperlink) (domain.Hyperlink, error) {
	f.mu.Lock()
	fail := f.failUpsert[h.ID]
	now := f.now
	f.mu.Unlock()

	if err := f.enter(ctx, "upsert:"+h.ID, fail); err != nil {
		return domain.Hyperlink{}, err
	}
	if h.Owner == "" {
		return domain.Hyperlink{}, fmt.Errorf("%w: upsert:%s: owner is required", domain.ErrRemoteUnavailable, h.ID)
	}
	return f.store.Upsert(ctx, hyperlinkdb.Canonical(h, now()))
}

func (f *Fake) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	fail := f.failDelete[id]
	f.mu.Unlock()

	if err := f.enter(ctx, "delete:"+id, fail); err != nil {
		return err
	}
	return f.store.Delete(ctx, id)
}
