// Package redis is the key-value/document LocalStore: one JSON document per
// hyperlink plus a set indexing every id of the namespace.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/savelater/internal/domain"
)

// Store handles Redis operations for hyperlinks
type Store struct {
	client      *redis.Client
	keys        Keys
	initialized atomic.Bool
}

// NewStore creates a new Redis store scoped to namespace
func NewStore(client *redis.Client, namespace string) *Store {
	return &Store{
		client: client,
		keys:   NewKeys(namespace),
	}
}

// Init checks that Redis answers. Safe to call more than once.
func (s *Store) Init(ctx context.Context) error {
	if s.initialized.Load() {
		return nil
	}
	if s.client == nil {
		return fmt.Errorf("%w: no redis client configured", domain.ErrStoreUnsupported)
	}
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}
	s.initialized.Store(true)
	return nil
}

func (s *Store) ready() error {
	if !s.initialized.Load() {
		return domain.ErrStoreNotInitialized
	}
	return nil
}

// GetAll retrieves every hyperlink of the namespace, tombstones included
func (s *Store) GetAll(ctx context.Context) (map[string]domain.Hyperlink, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	ids, err := s.client.SMembers(ctx, s.keys.All()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get hyperlink IDs: %w", err)
	}

	out := make(map[string]domain.Hyperlink, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.keys.Hyperlink(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get hyperlinks: %w", err)
	}

	for i, v := range values {
		// Indexed id without a document: skip it, the next Upsert or Delete repairs the set
		raw, ok := v.(string)
		if !ok {
			continue
		}

		var h domain.Hyperlink
		if err := json.Unmarshal([]byte(raw), &h); err != nil {
			return nil, fmt.Errorf("failed to unmarshal hyperlink %s: %w", ids[i], err)
		}
		out[h.ID] = h
	}

	return out, nil
}

// Upsert stores a hyperlink document and indexes its ID
func (s *Store) Upsert(ctx context.Context, h domain.Hyperlink) error {
	if err := s.ready(); err != nil {
		return err
	}

	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("failed to marshal hyperlink: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.keys.Hyperlink(h.ID), data, 0)
		pipe.SAdd(ctx, s.keys.All(), h.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save hyperlink: %w", err)
	}

	return nil
}

// Delete removes a hyperlink document and its index entry
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.keys.Hyperlink(id))
		pipe.SRem(ctx, s.keys.All(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete hyperlink: %w", err)
	}

	return nil
}

// Wipe removes every key of the namespace
func (s *Store) Wipe(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}

	iter := s.client.Scan(ctx, 0, s.keys.Pattern(), 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed to delete key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to wipe hyperlinks: %w", err)
	}
	return nil
}

// Close releases the underlying client
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
