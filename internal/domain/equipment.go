package domain

import (
	"time"

	"github.com/google/uuid"
)

type EquipmentStatus string

const (
	EquipmentStatusOperational EquipmentStatus = "operational"
	EquipmentStatusMaintenance EquipmentStatus = "maintenance"
	EquipmentStatusOutOfOrder  EquipmentStatus = "out_of_order"
	EquipmentStatusReserved    EquipmentStatus = "reserved"
)

func (s EquipmentStatus) Valid() bool {
	switch s {
	case EquipmentStatusOperational, EquipmentStatusMaintenance, EquipmentStatusOutOfOrder, EquipmentStatusReserved:
		return true
	}
	return false
}

// Equipment is a pooled resource: Quantity fungible units, some of which may
// be pulled out of the reservable pool for maintenance.
type Equipment struct {
	ID                    uuid.UUID       `json:"id"`
	Name                  string          `json:"name"`
	Description           string          `json:"description"`
	Category              string          `json:"category"`
	LabID                 *uuid.UUID      `json:"lab_id,omitempty"`
	Quantity              int             `json:"quantity"`
	UnitsUnderMaintenance int             `json:"units_under_maintenance"`
	Status                EquipmentStatus `json:"status"`
	// Version is bumped on every counter write and guards compare-and-swap updates.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type EquipmentFilter struct {
	LabID    *uuid.UUID
	Category string
	Status   EquipmentStatus
}

type EquipmentAvailability struct {
	EquipmentID           uuid.UUID `json:"equipment_id"`
	Quantity              int       `json:"quantity"`
	ReservedUnits         int       `json:"reserved_units"`
	UnitsUnderMaintenance int       `json:"units_under_maintenance"`
	RemainingUnits        int       `json:"remaining_units"`
	StartTime             time.Time `json:"start_time"`
	EndTime               time.Time `json:"end_time"`
}

// CounterUpdate is a compare-and-swap write of the maintenance counter. It
// only succeeds while the stored row still has ExpectedVersion.
type CounterUpdate struct {
	EquipmentID           uuid.UUID
	ExpectedVersion       int64
	UnitsUnderMaintenance int
	Status                EquipmentStatus
}
