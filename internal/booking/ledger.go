package booking

import (
	"labreserve-backend/internal/domain"
)

// LedgerEntry is the part of a maintenance schedule the unit ledger cares about.
type LedgerEntry struct {
	Units  int
	Status domain.MaintenanceStatus
}

func EntryOf(s *domain.MaintenanceSchedule) LedgerEntry {
	return LedgerEntry{Units: s.Units, Status: s.Status}
}

// Holds returns the units this entry keeps out of the reservable pool.
func (e LedgerEntry) Holds() int {
	if e.Status.IsTerminal() {
		return 0
	}
	return e.Units
}

// LedgerOutcome is the new equipment counter and status after a transition.
type LedgerOutcome struct {
	UnitsUnderMaintenance int
	Status                domain.EquipmentStatus
}

func (o LedgerOutcome) ApplyTo(eq *domain.Equipment) {
	eq.UnitsUnderMaintenance = o.UnitsUnderMaintenance
	eq.Status = o.Status
}

// RequiredUnits is how many more units a transition pulls out of the pool.
// Only positive values need a capacity check.
func RequiredUnits(prev *LedgerEntry, next LedgerEntry) int {
	if prev == nil {
		return next.Holds()
	}
	return next.Holds() - prev.Holds()
}

// ValidateUnits enforces 1 <= units <= quantity.
func ValidateUnits(units, quantity int) error {
	if units < 1 || units > quantity {
		return ErrInvalidUnits
	}
	return nil
}

// LedgerCreate books a new schedule's units against eq.
func LedgerCreate(eq *domain.Equipment, next LedgerEntry) (LedgerOutcome, error) {
	if err := ValidateUnits(next.Units, eq.Quantity); err != nil {
		return LedgerOutcome{}, err
	}
	return outcome(eq, eq.UnitsUnderMaintenance+next.Holds()), nil
}

// LedgerUpdate recomputes eq's counter for a schedule moving from prev to next.
//
// Terminal schedules are locked except for re-opening them, and the lock is
// reported ahead of ErrNoChanges for an update that changes neither status
// nor units.
func LedgerUpdate(eq *domain.Equipment, prev, next LedgerEntry) (LedgerOutcome, error) {
	if prev.Status.IsTerminal() && next.Status.IsTerminal() {
		return LedgerOutcome{}, ErrScheduleLocked
	}
	if prev.Status == next.Status && prev.Units == next.Units {
		return LedgerOutcome{}, ErrNoChanges
	}
	if err := ValidateUnits(next.Units, eq.Quantity); err != nil {
		return LedgerOutcome{}, err
	}

	current := eq.UnitsUnderMaintenance
	switch {
	case !prev.Status.IsTerminal() && next.Status.IsTerminal():
		// units go back to the pool
		return outcome(eq, current-prev.Units), nil
	case prev.Status.IsTerminal() && !next.Status.IsTerminal():
		units := current + next.Units
		if units < next.Units {
			units = next.Units
		}
		return outcome(eq, units), nil
	default:
		return outcome(eq, current+(next.Units-prev.Units)), nil
	}
}

// LedgerDelete releases whatever units a deleted schedule still held.
func LedgerDelete(eq *domain.Equipment, prev LedgerEntry) LedgerOutcome {
	return outcome(eq, eq.UnitsUnderMaintenance-prev.Holds())
}

func outcome(eq *domain.Equipment, units int) LedgerOutcome {
	if units < 0 {
		units = 0
	}
	if units > eq.Quantity {
		units = eq.Quantity
	}
	return LedgerOutcome{UnitsUnderMaintenance: units, Status: statusFor(eq, units)}
}

// statusFor derives the aggregate equipment status from the counter. A
// manual out_of_order flag survives partial maintenance.
func statusFor(eq *domain.Equipment, units int) domain.EquipmentStatus {
	if eq.Quantity > 0 && units >= eq.Quantity {
		return domain.EquipmentStatusMaintenance
	}
	if eq.Status == domain.EquipmentStatusOutOfOrder {
		return domain.EquipmentStatusOutOfOrder
	}
	return domain.EquipmentStatusOperational
}
