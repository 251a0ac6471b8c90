package booking

import (
	"github.com/google/uuid"

	"labreserve-backend/internal/domain"
)

// Holding is a claim on units of a resource during a window. Equipment
// reservations hold Quantity units; lab reservations always hold the room.
type Holding struct {
	ID       uuid.UUID
	Window   Window
	Quantity int
	Status   domain.ReservationStatus
}

func HoldingFromReservation(r domain.Reservation) Holding {
	return Holding{
		ID:       r.ID,
		Window:   NewWindow(r.StartTime, r.EndTime),
		Quantity: r.Quantity,
		Status:   r.Status,
	}
}

func HoldingFromLabReservation(r domain.LabReservation) Holding {
	return Holding{
		ID:       r.ID,
		Window:   NewWindow(r.StartTime, r.EndTime),
		Quantity: 1,
		Status:   r.Status,
	}
}

func HoldingsFromReservations(rs []domain.Reservation) []Holding {
	out := make([]Holding, 0, len(rs))
	for _, r := range rs {
		out = append(out, HoldingFromReservation(r))
	}
	return out
}

func HoldingsFromLabReservations(rs []domain.LabReservation) []Holding {
	out := make([]Holding, 0, len(rs))
	for _, r := range rs {
		out = append(out, HoldingFromLabReservation(r))
	}
	return out
}

// Without drops the holding with the given id, used when re-checking a
// reservation against everything except itself.
func Without(holdings []Holding, id uuid.UUID) []Holding {
	out := make([]Holding, 0, len(holdings))
	for _, h := range holdings {
		if h.ID != id {
			out = append(out, h)
		}
	}
	return out
}

// ReservedInWindow sums the units of active holdings overlapping w.
// Denied, cancelled and completed holdings never count.
func ReservedInWindow(w Window, holdings []Holding) int {
	total := 0
	for _, h := range holdings {
		if !h.Status.IsActive() || !h.Window.Overlaps(w) {
			continue
		}
		if h.Quantity > 0 {
			total += h.Quantity
		}
	}
	return total
}

// Remaining is max(0, quantity - reserved - underMaintenance).
func Remaining(quantity, underMaintenance, reserved int) int {
	r := quantity - reserved - underMaintenance
	if r < 0 {
		return 0
	}
	return r
}

// Availability computes the reservable units of eq during w.
func Availability(eq *domain.Equipment, w Window, holdings []Holding) domain.EquipmentAvailability {
	reserved := ReservedInWindow(w, holdings)
	return domain.EquipmentAvailability{
		EquipmentID:           eq.ID,
		Quantity:              eq.Quantity,
		ReservedUnits:         reserved,
		UnitsUnderMaintenance: eq.UnitsUnderMaintenance,
		RemainingUnits:        Remaining(eq.Quantity, eq.UnitsUnderMaintenance, reserved),
		StartTime:             w.Start,
		EndTime:               w.End,
	}
}
