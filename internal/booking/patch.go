package booking

import (
	"github.com/google/uuid"

	"labreserve-backend/internal/domain"
)

// SettingKey identifies an auto-approval setting by scope and target.
type SettingKey struct {
	Scope    domain.ApprovalScope
	TargetID uuid.UUID // uuid.Nil for the system scope
}

func KeyFor(scope domain.ApprovalScope, target *uuid.UUID) SettingKey {
	k := SettingKey{Scope: scope}
	if target != nil && scope != domain.ApprovalScopeSystem {
		k.TargetID = *target
	}
	return k
}

func KeyOf(s *domain.AutoApprovalSetting) SettingKey {
	return KeyFor(s.TargetType, s.TargetID)
}

// SettingView is the in-memory copy of the settings a patch is applied to.
type SettingView interface {
	PutSetting(s domain.AutoApprovalSetting)
	RemoveSetting(key SettingKey)
}

// SettingPatch moves one setting from Before to After. Before is nil when
// the setting did not exist yet. Inverse swaps the two sides, so applying
// a patch and then its inverse restores the view.
type SettingPatch struct {
	Key    SettingKey
	Before *domain.AutoApprovalSetting
	After  *domain.AutoApprovalSetting
}

// NewTogglePatch builds the forward patch that sets enabled on the setting
// for key, starting from current (nil if absent).
func NewTogglePatch(key SettingKey, current *domain.AutoApprovalSetting, enabled bool, actor uuid.UUID) SettingPatch {
	next := domain.AutoApprovalSetting{TargetType: key.Scope, Enabled: enabled, UpdatedBy: &actor}
	if current != nil {
		next = *current
		next.Enabled = enabled
		next.UpdatedBy = &actor
	} else if key.Scope != domain.ApprovalScopeSystem {
		target := key.TargetID
		next.TargetID = &target
	}

	var before *domain.AutoApprovalSetting
	if current != nil {
		c := *current
		before = &c
	}
	return SettingPatch{Key: key, Before: before, After: &next}
}

func (p SettingPatch) Inverse() SettingPatch {
	return SettingPatch{Key: p.Key, Before: p.After, After: p.Before}
}

// Changed reports whether applying the patch alters the enabled flag.
func (p SettingPatch) Changed() bool {
	if p.Before == nil || p.After == nil {
		return p.Before != p.After
	}
	return p.Before.Enabled != p.After.Enabled
}

func (p SettingPatch) Apply(view SettingView) {
	if p.After == nil {
		view.RemoveSetting(p.Key)
		return
	}
	view.PutSetting(*p.After)
}
