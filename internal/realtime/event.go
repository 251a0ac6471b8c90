// Package realtime turns PostgreSQL change notifications into a stream of
// ChangeEvents and fans them out to in-process subscribers: the view cache
// merger and websocket clients.
package realtime

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// ChangeEvent mirrors the payload built by the notify_table_change trigger.
// Record is nil for deletes and for rows too large to carry in a notification.
type ChangeEvent struct {
	Table  string          `json:"table"`
	Type   EventType       `json:"type"`
	ID     uuid.UUID       `json:"id"`
	Record json.RawMessage `json:"record,omitempty"`
}

var ErrMalformedEvent = errors.New("malformed change event")

func DecodeEvent(payload string) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ChangeEvent{}, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	if ev.Table == "" || ev.ID == uuid.Nil {
		return ChangeEvent{}, fmt.Errorf("%w: missing table or id", ErrMalformedEvent)
	}
	switch ev.Type {
	case EventInsert, EventUpdate, EventDelete:
	default:
		return ChangeEvent{}, fmt.Errorf("%w: unknown type %q", ErrMalformedEvent, ev.Type)
	}
	if bytes.Equal(bytes.TrimSpace(ev.Record), []byte("null")) {
		ev.Record = nil
	}
	return ev, nil
}
