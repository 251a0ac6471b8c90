package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"labreserve-backend/internal/booking"
	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/logger"
	"labreserve-backend/internal/realtime"
	"labreserve-backend/internal/security"
	"labreserve-backend/internal/service"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type errorMapping struct {
	target error
	status int
	code   string
}

// errorMappings is checked in order; the first match wins.
var errorMappings = []errorMapping{
	{booking.ErrStartInPast, http.StatusBadRequest, "start_in_past"},
	{booking.ErrInvalidWindow, http.StatusBadRequest, "invalid_window"},
	{booking.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{booking.ErrInvalidUnits, http.StatusBadRequest, "invalid_units"},
	{service.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{realtime.ErrInvalidFilter, http.StatusBadRequest, "invalid_filter"},
	{realtime.ErrUnknownTable, http.StatusBadRequest, "unknown_table"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{security.ErrExpiredToken, http.StatusUnauthorized, "token_expired"},
	{security.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
	{security.ErrWrongTokenType, http.StatusUnauthorized, "invalid_token"},
	{service.ErrPermissionDenied, http.StatusForbidden, "forbidden"},
	{realtime.ErrForbidden, http.StatusForbidden, "forbidden"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{booking.ErrInsufficientCapacity, http.StatusConflict, "insufficient_capacity"},
	{booking.ErrLabAlreadyReserved, http.StatusConflict, "lab_already_reserved"},
	{booking.ErrScheduleLocked, http.StatusConflict, "schedule_locked"},
	{booking.ErrNoChanges, http.StatusConflict, "no_changes"},
	{domain.ErrConcurrentUpdate, http.StatusConflict, "concurrent_update"},
	{domain.ErrAlreadyExists, http.StatusConflict, "already_exists"},
	{service.ErrEmailTaken, http.StatusConflict, "email_taken"},
	{service.ErrInvalidState, http.StatusConflict, "invalid_state"},
	{booking.ErrCapacityExceeded, http.StatusUnprocessableEntity, "capacity_exceeded"},
	{booking.ErrAutoApprovalLookupFailed, http.StatusServiceUnavailable, "auto_approval_lookup_failed"},
	{booking.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"},
}

// statusFor maps err to an HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest, "validation_failed"
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable, "timeout"
	}
	return http.StatusInternalServerError, "internal"
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Unhandled request error", "path", r.URL.Path, "error", err)
		msg = "internal server error"
	}
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}
