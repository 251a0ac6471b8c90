package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"labreserve-backend/internal/logger"
)

// Loader fetches the authoritative row on a miss.
type Loader[T any] func(ctx context.Context, id uuid.UUID) (*T, error)

// View is a read-through cache of one entity type. Explicit fetches and
// change events both land in Merge, so the cached copy is whichever was
// written last. Cache failures never fail a read: the loader result is
// returned and the error only logged.
type View[T any] struct {
	name  string
	store Store
	ttl   time.Duration
	load  Loader[T]
	// generation is part of every key; Flush moves to a fresh keyspace and
	// leaves the old entries to expire.
	generation atomic.Uint64
}

func NewView[T any](name string, store Store, ttl time.Duration, load Loader[T]) *View[T] {
	return &View[T]{name: name, store: store, ttl: ttl, load: load}
}

func (v *View[T]) Name() string {
	return v.name
}

func (v *View[T]) key(id uuid.UUID) string {
	return v.name + ":" + strconv.FormatUint(v.generation.Load(), 10) + ":" + id.String()
}

func (v *View[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	if b, err := v.store.Get(ctx, v.key(id)); err == nil {
		var out T
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		logger.Warn("Dropping undecodable cache entry", "view", v.name, "id", id)
	} else if !errors.Is(err, ErrMiss) {
		logger.Warn("Cache read failed", "view", v.name, "id", id, "error", err)
	}

	item, err := v.load(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Merge(ctx, id, item)
	return item, nil
}

// Merge upserts item under id.
func (v *View[T]) Merge(ctx context.Context, id uuid.UUID, item *T) {
	b, err := json.Marshal(item)
	if err != nil {
		logger.Warn("Cache encode failed", "view", v.name, "id", id, "error", err)
		return
	}
	if err := v.store.Set(ctx, v.key(id), b, v.ttl); err != nil {
		logger.Warn("Cache write failed", "view", v.name, "id", id, "error", err)
	}
}

// MergeJSON upserts a raw JSON row, as carried by change events.
func (v *View[T]) MergeJSON(ctx context.Context, id uuid.UUID, raw json.RawMessage) error {
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return err
	}
	v.Merge(ctx, id, &item)
	return nil
}

func (v *View[T]) Invalidate(ctx context.Context, ids ...uuid.UUID) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = v.key(id)
	}
	if err := v.store.Delete(ctx, keys...); err != nil {
		logger.Warn("Cache invalidate failed", "view", v.name, "error", err)
	}
}

// Flush drops every entry at once, for when change events may have been
// missed and any cached row could be stale.
func (v *View[T]) Flush(_ context.Context) {
	v.generation.Add(1)
}
