package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusApproved  ReservationStatus = "approved"
	ReservationStatusDenied    ReservationStatus = "denied"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusCompleted ReservationStatus = "completed"
)

// ActiveReservationStatuses hold capacity: pending requests reserve units
// optimistically while they wait for a decision.
var ActiveReservationStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusApproved,
}

func (s ReservationStatus) IsActive() bool {
	return s == ReservationStatusPending || s == ReservationStatusApproved
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusApproved, ReservationStatusDenied,
		ReservationStatusCancelled, ReservationStatusCompleted:
		return true
	}
	return false
}

type Reservation struct {
	ID           uuid.UUID         `json:"id"`
	UserID       uuid.UUID         `json:"user_id"`
	EquipmentID  uuid.UUID         `json:"equipment_id"`
	Quantity     int               `json:"quantity"`
	StartTime    time.Time         `json:"start_time"`
	EndTime      time.Time         `json:"end_time"`
	Status       ReservationStatus `json:"status"`
	Purpose      string            `json:"purpose"`
	DecidedBy    *uuid.UUID        `json:"decided_by,omitempty"`
	DecisionNote string            `json:"decision_note"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type LabReservation struct {
	ID           uuid.UUID         `json:"id"`
	UserID       uuid.UUID         `json:"user_id"`
	LabID        uuid.UUID         `json:"lab_id"`
	Attendees    int               `json:"attendees"`
	StartTime    time.Time         `json:"start_time"`
	EndTime      time.Time         `json:"end_time"`
	Status       ReservationStatus `json:"status"`
	Purpose      string            `json:"purpose"`
	DecidedBy    *uuid.UUID        `json:"decided_by,omitempty"`
	DecisionNote string            `json:"decision_note"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type ReservationFilter struct {
	UserID      *uuid.UUID
	EquipmentID *uuid.UUID
	LabID       *uuid.UUID
	Status      ReservationStatus
	Page        int32
	PageSize    int32
}
