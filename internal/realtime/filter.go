package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"labreserve-backend/internal/domain"
)

var (
	ErrInvalidFilter = errors.New("invalid filter")
	ErrUnknownTable  = errors.New("unknown table")
	ErrForbidden     = errors.New("subscription not allowed")
)

// Tables lists every table with a change trigger.
var Tables = map[string]bool{
	"equipment":              true,
	"labs":                   true,
	"reservations":           true,
	"lab_reservations":       true,
	"maintenance_schedules":  true,
	"auto_approval_settings": true,
	"notifications":          true,
	"messages":               true,
}

// ownerColumns are the columns a non-admin must pin to their own id when
// subscribing to a private table.
var ownerColumns = map[string][]string{
	"notifications": {"user_id"},
	"messages":      {"recipient_id", "sender_id"},
}

// Filter selects events by table and an optional equality predicate on one
// column of the record. The zero Filter matches everything.
type Filter struct {
	Table  string
	Column string
	Value  string
}

// ParseFilter accepts a table name and an optional "column=eq.value"
// expression.
func ParseFilter(table, expr string) (Filter, error) {
	if table != "" && !Tables[table] {
		return Filter{}, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	f := Filter{Table: table}
	if expr == "" {
		return f, nil
	}
	if table == "" {
		return Filter{}, fmt.Errorf("%w: a predicate needs a table", ErrInvalidFilter)
	}

	col, rest, ok := strings.Cut(expr, "=")
	if !ok || col == "" {
		return Filter{}, fmt.Errorf("%w: %q", ErrInvalidFilter, expr)
	}
	value, ok := strings.CutPrefix(rest, "eq.")
	if !ok || value == "" {
		return Filter{}, fmt.Errorf("%w: only eq. predicates are supported", ErrInvalidFilter)
	}
	f.Column = col
	f.Value = value
	return f, nil
}

func (f Filter) Matches(ev ChangeEvent) bool {
	if f.Table != "" && f.Table != ev.Table {
		return false
	}
	if f.Column == "" {
		return true
	}
	if f.Column == "id" {
		return ev.ID.String() == f.Value
	}
	if ev.Record == nil {
		return false
	}

	var row map[string]any
	if err := json.Unmarshal(ev.Record, &row); err != nil {
		return false
	}
	v, ok := row[f.Column]
	if !ok || v == nil {
		return false
	}
	return fmt.Sprint(v) == f.Value
}

// Authorize checks that actor may receive the events f selects. Admins may
// subscribe to anything; everyone else must name a table, and private tables
// must be pinned to the actor's own id.
func (f Filter) Authorize(actor domain.Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	if f.Table == "" {
		return fmt.Errorf("%w: a table is required", ErrForbidden)
	}
	cols, private := ownerColumns[f.Table]
	if !private {
		return nil
	}
	for _, c := range cols {
		if f.Column == c && f.Value == actor.UserID.String() {
			return nil
		}
	}
	return fmt.Errorf("%w: %s must be filtered by %s=eq.<your id>", ErrForbidden, f.Table, strings.Join(cols, " or "))
}
