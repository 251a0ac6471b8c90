package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"labreserve-backend/internal/domain"
)

// SettingLookup finds the auto-approval setting for one scope. A missing
// setting is reported as domain.ErrNotFound.
type SettingLookup interface {
	FindSetting(ctx context.Context, scope domain.ApprovalScope, targetID *uuid.UUID) (*domain.AutoApprovalSetting, error)
}

// Target is one level of the override chain.
type Target struct {
	Scope domain.ApprovalScope
	ID    *uuid.UUID
}

// Resolution is the outcome of walking the chain. Setting is nil when no
// level had a row and the manual-approval default applied.
type Resolution struct {
	AutoApprove bool
	Scope       domain.ApprovalScope
	Setting     *domain.AutoApprovalSetting
}

// EquipmentChain is equipment -> lab -> system. The lab level is skipped
// for equipment that belongs to no lab.
func EquipmentChain(eq *domain.Equipment) []Target {
	id := eq.ID
	chain := []Target{{Scope: domain.ApprovalScopeEquipment, ID: &id}}
	if eq.LabID != nil {
		labID := *eq.LabID
		chain = append(chain, Target{Scope: domain.ApprovalScopeLab, ID: &labID})
	}
	return append(chain, Target{Scope: domain.ApprovalScopeSystem})
}

// LabChain is lab -> system.
func LabChain(lab *domain.Lab) []Target {
	id := lab.ID
	return []Target{
		{Scope: domain.ApprovalScopeLab, ID: &id},
		{Scope: domain.ApprovalScopeSystem},
	}
}

// ResolveAutoApproval walks chain in order and returns the first setting
// found. Any lookup error other than not-found aborts the walk.
func ResolveAutoApproval(ctx context.Context, lookup SettingLookup, chain []Target) (Resolution, error) {
	for _, t := range chain {
		setting, err := lookup.FindSetting(ctx, t.Scope, t.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return Resolution{}, fmt.Errorf("%w: %s level: %w", ErrAutoApprovalLookupFailed, t.Scope, err)
		}
		if setting == nil {
			continue
		}
		return Resolution{AutoApprove: setting.Enabled, Scope: t.Scope, Setting: setting}, nil
	}
	return Resolution{AutoApprove: false}, nil
}

// InitialStatus maps a resolution to the status a new reservation is created with.
func (r Resolution) InitialStatus() domain.ReservationStatus {
	if r.AutoApprove {
		return domain.ReservationStatusApproved
	}
	return domain.ReservationStatusPending
}
