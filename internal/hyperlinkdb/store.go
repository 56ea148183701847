// Package hyperlinkdb is the authoritative store behind the remote API.
package hyperlinkdb

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/savelater/internal/domain"
)

// Store persists the canonical copy of every owner's hyperlinks.
type Store interface {
	// List returns the owner's hyperlinks, newest first.
	List(ctx context.Context, owner string) ([]domain.Hyperlink, error)
	// Upsert stores h and returns the canonical copy. The first-seen
	// CreatedOn of an existing id is kept.
	Upsert(ctx context.Context, h domain.Hyperlink) (domain.Hyperlink, error)
	// Delete removes a hyperlink. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// Canonical prepares an incoming record for storage: the server clock
// stamps UpdatedOn at millisecond precision and local bookkeeping is dropped.
func Canonical(h domain.Hyperlink, now time.Time) domain.Hyperlink {
	now = now.UTC().Truncate(time.Millisecond)

	h = h.RemoteView()
	h.UpdatedOn = now
	if h.CreatedOn.IsZero() {
		h.CreatedOn = now
	} else {
		h.CreatedOn = h.CreatedOn.UTC().Truncate(time.Millisecond)
	}
	return h
}
