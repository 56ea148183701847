// Package remote reaches the authoritative hyperlink store.
package remote

import (
	"context"

	"github.com/MrSnakeDoc/savelater/internal/domain"
)

// Client is the remote store as seen by the synchronizer. Every failure,
// transport or server side, wraps domain.ErrRemoteUnavailable.
type Client interface {
	// List returns every remote record of owner.
	List(ctx context.Context, owner string) ([]domain.Hyperlink, error)
	// Upsert stores h and returns the canonical copy, which may differ
	// from h (server-normalized UpdatedOn).
	Upsert(ctx context.Context, h domain.Hyperlink) (domain.Hyperlink, error)
	// Delete removes a record. Deleting an unknown id succeeds.
	Delete(ctx context.Context, id string) error
}
