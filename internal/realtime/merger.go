package realtime

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"labreserve-backend/internal/logger"
)

// Mergeable is a keyed view that accepts rows from change events.
type Mergeable interface {
	MergeJSON(ctx context.Context, id uuid.UUID, raw json.RawMessage) error
	Invalidate(ctx context.Context, ids ...uuid.UUID)
	Flush(ctx context.Context)
}

// CacheMerger is the single consumer that folds change events into the
// views, using the same upsert-by-id merge as explicit fetches.
type CacheMerger struct {
	hub   *Hub
	views map[string]Mergeable
}

// NewCacheMerger maps table names to the view holding their rows.
func NewCacheMerger(hub *Hub, views map[string]Mergeable) *CacheMerger {
	return &CacheMerger{hub: hub, views: views}
}

// Run consumes until ctx is cancelled or the hub stops. If the hub drops the
// merger for lagging it subscribes again and flushes every view, since the
// events it missed are gone.
func (m *CacheMerger) Run(ctx context.Context) error {
	for resubscribed := false; ; resubscribed = true {
		sub, err := m.hub.Subscribe(ctx, Filter{})
		if err != nil {
			if errors.Is(err, ErrHubClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if resubscribed {
			m.Flush(ctx)
		}
		for ev := range sub.Events() {
			m.Apply(ctx, ev)
		}
		if ctx.Err() != nil {
			return nil
		}
		logger.Warn("Cache merger lost its subscription, resubscribing")
	}
}

// Flush empties every view. Reads fall through to the store until change
// events repopulate them.
func (m *CacheMerger) Flush(ctx context.Context) {
	for table, view := range m.views {
		view.Flush(ctx)
		logger.Debug("Flushed view", "table", table)
	}
}

func (m *CacheMerger) Apply(ctx context.Context, ev ChangeEvent) {
	view, ok := m.views[ev.Table]
	if !ok {
		return
	}
	if ev.Type == EventDelete || ev.Record == nil {
		view.Invalidate(ctx, ev.ID)
		return
	}
	if err := view.MergeJSON(ctx, ev.ID, ev.Record); err != nil {
		logger.Warn("Change event did not decode, invalidating", "table", ev.Table, "id", ev.ID, "error", err)
		view.Invalidate(ctx, ev.ID)
	}
}
