package service

import (
	"context"
	"errors"

	"labreserve-backend/internal/booking"
	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/logger"
)

var (
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidState       = errors.New("reservation cannot make this transition")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
)

// knownErrors are returned to callers as they are; anything else coming out
// of a repository is a store failure.
var knownErrors = []error{
	domain.ErrNotFound,
	domain.ErrConcurrentUpdate,
	domain.ErrAlreadyExists,
	booking.ErrStartInPast,
	booking.ErrInvalidWindow,
	booking.ErrInvalidQuantity,
	booking.ErrInvalidUnits,
	booking.ErrInsufficientCapacity,
	booking.ErrLabAlreadyReserved,
	booking.ErrCapacityExceeded,
	booking.ErrAutoApprovalLookupFailed,
	booking.ErrScheduleLocked,
	booking.ErrNoChanges,
	booking.ErrStoreUnavailable,
	ErrPermissionDenied,
	ErrInvalidState,
	ErrInvalidInput,
	ErrInvalidCredentials,
	ErrEmailTaken,
}

func isKnown(err error) bool {
	for _, target := range knownErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// fail logs err against method and returns it, wrapped as StoreUnavailable
// when it is not one of the errors callers act on.
func fail(method string, err error, args ...any) error {
	if isKnown(err) {
		logger.Rejected(method, err, args...)
		return err
	}
	logger.ExitMethodWithError(method, err, args...)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return booking.StoreError(method, err)
}

func requireManager(actor domain.Actor) error {
	if !actor.CanApprove() {
		return ErrPermissionDenied
	}
	return nil
}

func requireAdmin(actor domain.Actor) error {
	if !actor.IsAdmin() {
		return ErrPermissionDenied
	}
	return nil
}
