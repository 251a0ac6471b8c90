package booking

import (
	"errors"
	"fmt"
)

var (
	ErrStartInPast              = errors.New("start time must be in the future")
	ErrInvalidWindow            = errors.New("end time must be after start time")
	ErrInvalidQuantity          = errors.New("quantity must be at least 1")
	ErrInvalidUnits             = errors.New("maintenance units must be between 1 and the equipment quantity")
	ErrInsufficientCapacity     = errors.New("insufficient capacity")
	ErrLabAlreadyReserved       = errors.New("lab is already reserved for the requested time")
	ErrCapacityExceeded         = errors.New("attendees exceed lab capacity")
	ErrAutoApprovalLookupFailed = errors.New("auto-approval lookup failed")
	ErrScheduleLocked           = errors.New("maintenance schedule is completed or cancelled and cannot be edited")
	ErrNoChanges                = errors.New("no changes to apply")
	ErrStoreUnavailable         = errors.New("store unavailable")
)

// CapacityError reports a pooled-resource overbooking together with the
// units that were actually left.
type CapacityError struct {
	Requested int
	Remaining int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity: requested %d unit(s), only %d remaining", e.Requested, e.Remaining)
}

func (e *CapacityError) Is(target error) bool {
	return target == ErrInsufficientCapacity
}

// AttendeesError reports a lab request larger than the room.
type AttendeesError struct {
	Attendees int
	Capacity  int
}

func (e *AttendeesError) Error() string {
	return fmt.Sprintf("attendees exceed lab capacity: %d requested, capacity is %d", e.Attendees, e.Capacity)
}

func (e *AttendeesError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

// StoreError wraps a backend failure so callers can match ErrStoreUnavailable
// while keeping the underlying cause.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
