package domain

import (
	"time"

	"github.com/google/uuid"
)

type LabStatus string

const (
	LabStatusAvailable   LabStatus = "available"
	LabStatusOccupied    LabStatus = "occupied"
	LabStatusMaintenance LabStatus = "maintenance"
)

func (s LabStatus) Valid() bool {
	switch s {
	case LabStatusAvailable, LabStatusOccupied, LabStatusMaintenance:
		return true
	}
	return false
}

// Lab is an exclusive resource: one active reservation at a time.
type Lab struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	Capacity    int        `json:"capacity"`
	Status      LabStatus  `json:"status"`
	ManagerID   *uuid.UUID `json:"manager_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type LabAvailability struct {
	LabID     uuid.UUID        `json:"lab_id"`
	Available bool             `json:"available"`
	Blocking  []LabReservation `json:"blocking"`
	StartTime time.Time        `json:"start_time"`
	EndTime   time.Time        `json:"end_time"`
}
