package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"labreserve-backend/internal/domain"
)

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func hours(from, to int) Window {
	return NewWindow(base.Add(time.Duration(from)*time.Hour), base.Add(time.Duration(to)*time.Hour))
}

func holding(w Window, qty int, status domain.ReservationStatus) Holding {
	return Holding{ID: uuid.New(), Window: w, Quantity: qty, Status: status}
}

func TestWindowOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Window
		want bool
	}{
		{"identical", hours(0, 2), hours(0, 2), true},
		{"partial left", hours(0, 2), hours(1, 3), true},
		{"contained", hours(0, 4), hours(1, 2), true},
		{"touching end to start", hours(0, 2), hours(2, 4), false},
		{"touching start to end", hours(2, 4), hours(0, 2), false},
		{"disjoint", hours(0, 1), hours(5, 6), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestWindowValidate(t *testing.T) {
	now := base

	t.Run("Start in past", func(t *testing.T) {
		err := hours(-1, 2).Validate(now)
		assert.ErrorIs(t, err, ErrStartInPast)
	})

	t.Run("Start equal to now", func(t *testing.T) {
		err := hours(0, 2).Validate(now)
		assert.ErrorIs(t, err, ErrStartInPast)
	})

	t.Run("End before start", func(t *testing.T) {
		err := hours(3, 2).Validate(now)
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})

	t.Run("Empty window", func(t *testing.T) {
		err := hours(3, 3).Validate(now)
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, hours(1, 2).Validate(now))
	})
}

func TestReservedInWindow(t *testing.T) {
	w := hours(10, 12)
	holdings := []Holding{
		holding(hours(9, 11), 2, domain.ReservationStatusApproved),
		holding(hours(11, 13), 3, domain.ReservationStatusPending),
		holding(hours(10, 12), 5, domain.ReservationStatusDenied),
		holding(hours(10, 12), 5, domain.ReservationStatusCancelled),
		holding(hours(10, 12), 5, domain.ReservationStatusCompleted),
		holding(hours(12, 14), 7, domain.ReservationStatusApproved),
		holding(hours(8, 10), 7, domain.ReservationStatusApproved),
	}

	assert.Equal(t, 5, ReservedInWindow(w, holdings))
	assert.Equal(t, 0, ReservedInWindow(w, nil))
}

func TestRemaining(t *testing.T) {
	tests := []struct {
		quantity, maintenance, reserved, want int
	}{
		{10, 0, 0, 10},
		{10, 2, 0, 8},
		{10, 0, 4, 6},
		{10, 3, 4, 3},
		{10, 5, 9, 0},
		{0, 0, 0, 0},
		{-5, 3, 2, 0},
		{3, -10, 0, 13},
	}

	for _, tt := range tests {
		got := Remaining(tt.quantity, tt.maintenance, tt.reserved)
		assert.Equal(t, tt.want, got, "Remaining(%d, %d, %d)", tt.quantity, tt.maintenance, tt.reserved)
		assert.GreaterOrEqual(t, got, 0)
	}
}

func TestAvailability(t *testing.T) {
	eq := &domain.Equipment{ID: uuid.New(), Quantity: 10, UnitsUnderMaintenance: 1}
	w := hours(1, 3)

	t.Run("No overlapping reservations", func(t *testing.T) {
		a := Availability(eq, w, nil)
		assert.Equal(t, 9, a.RemainingUnits)
		assert.Equal(t, 0, a.ReservedUnits)
	})

	t.Run("Mixed reservations", func(t *testing.T) {
		a := Availability(eq, w, []Holding{
			holding(hours(2, 4), 4, domain.ReservationStatusApproved),
			holding(hours(0, 2), 2, domain.ReservationStatusPending),
			holding(hours(1, 3), 6, domain.ReservationStatusDenied),
		})
		assert.Equal(t, 6, a.ReservedUnits)
		assert.Equal(t, 3, a.RemainingUnits)
		assert.Equal(t, eq.ID, a.EquipmentID)
	})
}

func TestWithout(t *testing.T) {
	a := holding(hours(0, 1), 1, domain.ReservationStatusPending)
	b := holding(hours(0, 1), 1, domain.ReservationStatusPending)

	out := Without([]Holding{a, b}, a.ID)
	assert.Len(t, out, 1)
	assert.Equal(t, b.ID, out[0].ID)
}
