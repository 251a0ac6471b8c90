package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labreserve-backend/internal/domain"
)

func equipment(quantity, underMaintenance int) *domain.Equipment {
	return &domain.Equipment{
		Quantity:              quantity,
		UnitsUnderMaintenance: underMaintenance,
		Status:                domain.EquipmentStatusOperational,
	}
}

func entry(units int, status domain.MaintenanceStatus) LedgerEntry {
	return LedgerEntry{Units: units, Status: status}
}

func TestLedgerCreate(t *testing.T) {
	eq := equipment(10, 0)

	out, err := LedgerCreate(eq, entry(3, domain.MaintenanceStatusScheduled))
	require.NoError(t, err)
	assert.Equal(t, 3, out.UnitsUnderMaintenance)
	assert.Equal(t, domain.EquipmentStatusOperational, out.Status)
	out.ApplyTo(eq)

	out, err = LedgerCreate(eq, entry(7, domain.MaintenanceStatusScheduled))
	require.NoError(t, err)
	assert.Equal(t, 10, out.UnitsUnderMaintenance)
	assert.Equal(t, domain.EquipmentStatusMaintenance, out.Status)
}

func TestLedgerCreate_Clamp(t *testing.T) {
	eq := equipment(10, 8)

	out, err := LedgerCreate(eq, entry(5, domain.MaintenanceStatusScheduled))
	require.NoError(t, err)
	assert.Equal(t, 10, out.UnitsUnderMaintenance)
	assert.Equal(t, domain.EquipmentStatusMaintenance, out.Status)
}

func TestLedgerCreate_InvalidUnits(t *testing.T) {
	eq := equipment(4, 0)

	_, err := LedgerCreate(eq, entry(0, domain.MaintenanceStatusScheduled))
	assert.ErrorIs(t, err, ErrInvalidUnits)

	_, err = LedgerCreate(eq, entry(5, domain.MaintenanceStatusScheduled))
	assert.ErrorIs(t, err, ErrInvalidUnits)
}

func TestLedgerCreate_TerminalHoldsNothing(t *testing.T) {
	eq := equipment(10, 2)

	out, err := LedgerCreate(eq, entry(4, domain.MaintenanceStatusCompleted))
	require.NoError(t, err)
	assert.Equal(t, 2, out.UnitsUnderMaintenance)
}

func TestLedgerUpdate(t *testing.T) {
	t.Run("Into completed releases units", func(t *testing.T) {
		eq := equipment(10, 10)
		eq.Status = domain.EquipmentStatusMaintenance

		out, err := LedgerUpdate(eq, entry(7, domain.MaintenanceStatusInProgress), entry(7, domain.MaintenanceStatusCompleted))
		require.NoError(t, err)
		assert.Equal(t, 3, out.UnitsUnderMaintenance)
		assert.Equal(t, domain.EquipmentStatusOperational, out.Status)
	})

	t.Run("Into cancelled releases units", func(t *testing.T) {
		eq := equipment(10, 3)
		out, err := LedgerUpdate(eq, entry(3, domain.MaintenanceStatusScheduled), entry(3, domain.MaintenanceStatusCancelled))
		require.NoError(t, err)
		assert.Equal(t, 0, out.UnitsUnderMaintenance)
	})

	t.Run("Re-open adds units back", func(t *testing.T) {
		eq := equipment(10, 2)
		out, err := LedgerUpdate(eq, entry(4, domain.MaintenanceStatusCancelled), entry(5, domain.MaintenanceStatusScheduled))
		require.NoError(t, err)
		assert.Equal(t, 7, out.UnitsUnderMaintenance)
	})

	t.Run("Re-open is at least the requested units", func(t *testing.T) {
		eq := equipment(10, 0)
		out, err := LedgerUpdate(eq, entry(4, domain.MaintenanceStatusCompleted), entry(4, domain.MaintenanceStatusInProgress))
		require.NoError(t, err)
		assert.Equal(t, 4, out.UnitsUnderMaintenance)
	})

	t.Run("Units change adjusts by delta", func(t *testing.T) {
		eq := equipment(10, 5)
		out, err := LedgerUpdate(eq, entry(3, domain.MaintenanceStatusScheduled), entry(6, domain.MaintenanceStatusScheduled))
		require.NoError(t, err)
		assert.Equal(t, 8, out.UnitsUnderMaintenance)

		out, err = LedgerUpdate(eq, entry(3, domain.MaintenanceStatusScheduled), entry(1, domain.MaintenanceStatusScheduled))
		require.NoError(t, err)
		assert.Equal(t, 3, out.UnitsUnderMaintenance)
	})

	t.Run("Status change between open states keeps units", func(t *testing.T) {
		eq := equipment(10, 4)
		out, err := LedgerUpdate(eq, entry(4, domain.MaintenanceStatusScheduled), entry(4, domain.MaintenanceStatusInProgress))
		require.NoError(t, err)
		assert.Equal(t, 4, out.UnitsUnderMaintenance)
	})

	t.Run("Terminal to terminal is locked", func(t *testing.T) {
		eq := equipment(10, 0)
		_, err := LedgerUpdate(eq, entry(4, domain.MaintenanceStatusCompleted), entry(2, domain.MaintenanceStatusCompleted))
		assert.ErrorIs(t, err, ErrScheduleLocked)

		_, err = LedgerUpdate(eq, entry(4, domain.MaintenanceStatusCompleted), entry(4, domain.MaintenanceStatusCancelled))
		assert.ErrorIs(t, err, ErrScheduleLocked)

		// an unchanged terminal entry reports the lock, not the no-op
		_, err = LedgerUpdate(eq, entry(4, domain.MaintenanceStatusCompleted), entry(4, domain.MaintenanceStatusCompleted))
		assert.ErrorIs(t, err, ErrScheduleLocked)
	})

	t.Run("No-op update is rejected and leaves the counter alone", func(t *testing.T) {
		eq := equipment(10, 4)
		out, err := LedgerUpdate(eq, entry(4, domain.MaintenanceStatusScheduled), entry(4, domain.MaintenanceStatusScheduled))
		assert.ErrorIs(t, err, ErrNoChanges)
		assert.Equal(t, LedgerOutcome{}, out)
		assert.Equal(t, 4, eq.UnitsUnderMaintenance)
	})

	t.Run("Out of order survives partial maintenance", func(t *testing.T) {
		eq := equipment(10, 2)
		eq.Status = domain.EquipmentStatusOutOfOrder
		out, err := LedgerUpdate(eq, entry(2, domain.MaintenanceStatusInProgress), entry(2, domain.MaintenanceStatusCompleted))
		require.NoError(t, err)
		assert.Equal(t, domain.EquipmentStatusOutOfOrder, out.Status)
	})
}

func TestLedgerDelete(t *testing.T) {
	eq := equipment(10, 6)

	out := LedgerDelete(eq, entry(4, domain.MaintenanceStatusInProgress))
	assert.Equal(t, 2, out.UnitsUnderMaintenance)

	out = LedgerDelete(eq, entry(4, domain.MaintenanceStatusCompleted))
	assert.Equal(t, 6, out.UnitsUnderMaintenance)
}

func TestRequiredUnits(t *testing.T) {
	prev := entry(3, domain.MaintenanceStatusScheduled)
	assert.Equal(t, 5, RequiredUnits(nil, entry(5, domain.MaintenanceStatusScheduled)))
	assert.Equal(t, 2, RequiredUnits(&prev, entry(5, domain.MaintenanceStatusScheduled)))
	assert.Equal(t, -3, RequiredUnits(&prev, entry(3, domain.MaintenanceStatusCompleted)))

	done := entry(3, domain.MaintenanceStatusCompleted)
	assert.Equal(t, 4, RequiredUnits(&done, entry(4, domain.MaintenanceStatusInProgress)))
}
