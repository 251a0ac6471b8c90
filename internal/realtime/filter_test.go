package realtime

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labreserve-backend/internal/domain"
)

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("reservations", "user_id=eq.abc")
	require.NoError(t, err)
	assert.Equal(t, Filter{Table: "reservations", Column: "user_id", Value: "abc"}, f)

	f, err = ParseFilter("", "")
	require.NoError(t, err)
	assert.Equal(t, Filter{}, f)

	_, err = ParseFilter("users", "")
	assert.ErrorIs(t, err, ErrUnknownTable)

	for _, expr := range []string{"user_id", "=eq.x", "user_id=gt.3", "user_id=eq."} {
		_, err = ParseFilter("reservations", expr)
		assert.ErrorIs(t, err, ErrInvalidFilter, expr)
	}

	_, err = ParseFilter("", "user_id=eq.x")
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestFilter_Matches(t *testing.T) {
	id := uuid.New()
	owner := uuid.New()
	record, _ := json.Marshal(map[string]any{"id": id, "user_id": owner, "quantity": 3})
	ev := ChangeEvent{Table: "reservations", Type: EventInsert, ID: id, Record: record}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"everything", Filter{}, true},
		{"same table", Filter{Table: "reservations"}, true},
		{"other table", Filter{Table: "labs"}, false},
		{"column match", Filter{Table: "reservations", Column: "user_id", Value: owner.String()}, true},
		{"column mismatch", Filter{Table: "reservations", Column: "user_id", Value: uuid.NewString()}, false},
		{"numeric column", Filter{Table: "reservations", Column: "quantity", Value: "3"}, true},
		{"missing column", Filter{Table: "reservations", Column: "lab_id", Value: "x"}, false},
		{"id column", Filter{Table: "reservations", Column: "id", Value: id.String()}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(ev))
		})
	}
}

func TestFilter_MatchesDeleteOnlyById(t *testing.T) {
	id := uuid.New()
	ev := ChangeEvent{Table: "labs", Type: EventDelete, ID: id}

	assert.True(t, Filter{Table: "labs", Column: "id", Value: id.String()}.Matches(ev))
	assert.False(t, Filter{Table: "labs", Column: "status", Value: "available"}.Matches(ev))
}

func TestFilter_Authorize(t *testing.T) {
	me := uuid.New()
	user := domain.Actor{UserID: me, Role: domain.UserRoleUser}
	admin := domain.Actor{UserID: uuid.New(), Role: domain.UserRoleAdmin}

	assert.NoError(t, Filter{}.Authorize(admin))
	assert.ErrorIs(t, Filter{}.Authorize(user), ErrForbidden)
	assert.NoError(t, Filter{Table: "equipment"}.Authorize(user))

	assert.ErrorIs(t, Filter{Table: "notifications"}.Authorize(user), ErrForbidden)
	assert.ErrorIs(t, Filter{Table: "notifications", Column: "user_id", Value: uuid.NewString()}.Authorize(user), ErrForbidden)
	assert.NoError(t, Filter{Table: "notifications", Column: "user_id", Value: me.String()}.Authorize(user))
	assert.NoError(t, Filter{Table: "messages", Column: "sender_id", Value: me.String()}.Authorize(user))
}
