package domain

import (
	"time"

	"github.com/google/uuid"
)

type ApprovalScope string

const (
	ApprovalScopeSystem    ApprovalScope = "system"
	ApprovalScopeLab       ApprovalScope = "lab"
	ApprovalScopeEquipment ApprovalScope = "equipment"
)

func (s ApprovalScope) Valid() bool {
	switch s {
	case ApprovalScopeSystem, ApprovalScopeLab, ApprovalScopeEquipment:
		return true
	}
	return false
}

// AutoApprovalSetting is scoped to the whole system (TargetID nil), a lab
// or a single equipment item.
type AutoApprovalSetting struct {
	ID         uuid.UUID     `json:"id"`
	TargetType ApprovalScope `json:"target_type"`
	TargetID   *uuid.UUID    `json:"target_id,omitempty"`
	Enabled    bool          `json:"enabled"`
	UpdatedBy  *uuid.UUID    `json:"updated_by,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

type AutoApprovalAction string

const (
	AutoApprovalActionEnabled  AutoApprovalAction = "enabled"
	AutoApprovalActionDisabled AutoApprovalAction = "disabled"
)

func ActionFor(enabled bool) AutoApprovalAction {
	if enabled {
		return AutoApprovalActionEnabled
	}
	return AutoApprovalActionDisabled
}

// AutoApprovalLog rows are append-only.
type AutoApprovalLog struct {
	ID          uuid.UUID          `json:"id"`
	SettingID   uuid.UUID          `json:"setting_id"`
	Action      AutoApprovalAction `json:"action"`
	PerformedBy uuid.UUID          `json:"performed_by"`
	CreatedAt   time.Time          `json:"created_at"`
}
