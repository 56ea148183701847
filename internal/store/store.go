// Package store defines the local record store capability shared by every
// on-device backend. Backends live in sub-packages and are selected once at
// composition time.
package store

import (
	"context"

	"github.com/MrSnakeDoc/savelater/internal/domain"
)

// LocalStore persists hyperlink records keyed by id, tombstones included.
//
// Init must be called once before any other method; it is idempotent.
// Every other method fails with domain.ErrStoreNotInitialized before Init.
type LocalStore interface {
	Init(ctx context.Context) error
	GetAll(ctx context.Context) (map[string]domain.Hyperlink, error)
	// Upsert inserts or replaces the record with the same id.
	Upsert(ctx context.Context, h domain.Hyperlink) error
	// Delete physically removes a record. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
	// Wipe removes every record (account reset / logout).
	Wipe(ctx context.Context) error
	Close() error
}
