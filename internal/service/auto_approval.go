package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"labreserve-backend/internal/booking"
	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/logger"
	"labreserve-backend/internal/repository"
)

type autoApprovalService struct {
	repo          repository.AutoApprovalRepository
	labRepo       repository.LabRepository
	equipmentRepo repository.EquipmentRepository
	view          *SettingsView
}

func NewAutoApprovalService(
	repo repository.AutoApprovalRepository,
	labRepo repository.LabRepository,
	equipmentRepo repository.EquipmentRepository,
	view *SettingsView,
) AutoApprovalService {
	return &autoApprovalService{repo: repo, labRepo: labRepo, equipmentRepo: equipmentRepo, view: view}
}

func validateScope(scope domain.ApprovalScope, targetID *uuid.UUID) error {
	if !scope.Valid() {
		return fmt.Errorf("%w: unknown scope %q", ErrInvalidInput, scope)
	}
	if scope != domain.ApprovalScopeSystem && (targetID == nil || *targetID == uuid.Nil) {
		return fmt.Errorf("%w: %s scope needs a target id", ErrInvalidInput, scope)
	}
	return nil
}

func (s *autoApprovalService) GetSetting(ctx context.Context, scope domain.ApprovalScope, targetID *uuid.UUID) (*domain.AutoApprovalSetting, error) {
	const method = "autoApprovalService.GetSetting"
	if err := validateScope(scope, targetID); err != nil {
		return nil, fail(method, err)
	}
	if cached, ok := s.view.Lookup(booking.KeyFor(scope, targetID)); ok {
		return &cached, nil
	}
	setting, err := s.repo.FindSetting(ctx, scope, targetID)
	if err != nil {
		return nil, fail(method, err, "scope", scope)
	}
	s.view.PutSetting(*setting)
	return setting, nil
}

func (s *autoApprovalService) ListSettings(ctx context.Context) ([]domain.AutoApprovalSetting, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, fail("autoApprovalService.ListSettings", err)
	}
	s.view.Replace(settings)
	return settings, nil
}

// ToggleSetting applies the change to the view first and rolls it back with
// the inverse patch if the write fails. A toggle that changes nothing is not
// logged.
func (s *autoApprovalService) ToggleSetting(ctx context.Context, actor domain.Actor, scope domain.ApprovalScope, targetID *uuid.UUID, enabled bool) (*domain.AutoApprovalSetting, error) {
	const method = "autoApprovalService.ToggleSetting"
	logger.EnterMethod(method, "actorID", actor.UserID, "scope", scope, "enabled", enabled)

	if err := validateScope(scope, targetID); err != nil {
		return nil, fail(method, err)
	}
	if err := s.authorizeToggle(ctx, actor, scope, targetID); err != nil {
		return nil, fail(method, err, "scope", scope)
	}

	current, err := s.repo.FindSetting(ctx, scope, targetID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fail(method, err, "scope", scope)
	}

	patch := booking.NewTogglePatch(booking.KeyFor(scope, targetID), current, enabled, actor.UserID)
	if !patch.Changed() {
		logger.ExitMethod(method, "scope", scope, "changed", false)
		return current, nil
	}

	patch.Apply(s.view)
	stored := *patch.After
	entry := &domain.AutoApprovalLog{Action: domain.ActionFor(enabled), PerformedBy: actor.UserID}
	if err := s.repo.Upsert(ctx, &stored, entry); err != nil {
		patch.Inverse().Apply(s.view)
		return nil, fail(method, err, "scope", scope)
	}
	s.view.PutSetting(stored)

	logger.ExitMethod(method, "settingID", stored.ID, "action", entry.Action)
	return &stored, nil
}

// authorizeToggle limits lab and equipment settings to the manager of the
// lab involved. Admins may toggle anything; a lab without a manager, or
// equipment outside any lab, is open to every lab manager.
func (s *autoApprovalService) authorizeToggle(ctx context.Context, actor domain.Actor, scope domain.ApprovalScope, targetID *uuid.UUID) error {
	if scope == domain.ApprovalScopeSystem {
		return requireAdmin(actor)
	}
	if err := requireManager(actor); err != nil {
		return err
	}
	if actor.IsAdmin() {
		return nil
	}

	labID := targetID
	if scope == domain.ApprovalScopeEquipment {
		eq, err := s.equipmentRepo.GetByID(ctx, *targetID)
		if err != nil {
			return err
		}
		if eq.LabID == nil {
			return nil
		}
		labID = eq.LabID
	}
	lab, err := s.labRepo.GetByID(ctx, *labID)
	if err != nil {
		return err
	}
	if lab.ManagerID != nil && *lab.ManagerID != actor.UserID {
		return ErrPermissionDenied
	}
	return nil
}

func (s *autoApprovalService) ListLogs(ctx context.Context, actor domain.Actor, settingID uuid.UUID) ([]domain.AutoApprovalLog, error) {
	const method = "autoApprovalService.ListLogs"
	if err := requireManager(actor); err != nil {
		return nil, fail(method, err)
	}
	logs, err := s.repo.ListLogs(ctx, settingID)
	if err != nil {
		return nil, fail(method, err, "settingID", settingID)
	}
	return logs, nil
}
