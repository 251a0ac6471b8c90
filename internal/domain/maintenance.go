package domain

import (
	"time"

	"github.com/google/uuid"
)

type MaintenanceStatus string

const (
	MaintenanceStatusScheduled  MaintenanceStatus = "scheduled"
	MaintenanceStatusInProgress MaintenanceStatus = "in_progress"
	MaintenanceStatusCompleted  MaintenanceStatus = "completed"
	MaintenanceStatusCancelled  MaintenanceStatus = "cancelled"
)

// IsTerminal reports whether the schedule no longer holds units.
func (s MaintenanceStatus) IsTerminal() bool {
	return s == MaintenanceStatusCompleted || s == MaintenanceStatusCancelled
}

func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenanceStatusScheduled, MaintenanceStatusInProgress, MaintenanceStatusCompleted, MaintenanceStatusCancelled:
		return true
	}
	return false
}

type MaintenanceSchedule struct {
	ID            uuid.UUID         `json:"id"`
	EquipmentID   uuid.UUID         `json:"equipment_id"`
	ScheduledDate time.Time         `json:"scheduled_date"`
	EstimatedEnd  *time.Time        `json:"estimated_end,omitempty"`
	Units         int               `json:"units"`
	Status        MaintenanceStatus `json:"status"`
	Description   string            `json:"description"`
	Technician    string            `json:"technician"`
	CreatedBy     uuid.UUID         `json:"created_by"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// DefaultMaintenanceDuration is used when a schedule has no estimated end.
const DefaultMaintenanceDuration = 24 * time.Hour

func (m MaintenanceSchedule) End() time.Time {
	if m.EstimatedEnd != nil {
		return *m.EstimatedEnd
	}
	return m.ScheduledDate.Add(DefaultMaintenanceDuration)
}
