package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"labreserve-backend/internal/booking"
	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/service"
)

func TestAutoApprovalService_Toggle(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{UserID: uuid.New(), Role: domain.UserRoleAdmin}
	manager := domain.Actor{UserID: uuid.New(), Role: domain.UserRoleLabManager}
	labID := uuid.New()
	lab := &domain.Lab{ID: labID, Name: "Wet lab", ManagerID: &manager.UserID}

	newService := func(repo *MockAutoApprovalRepo, view *service.SettingsView) service.AutoApprovalService {
		labs := new(MockLabRepo)
		labs.On("GetByID", mock.Anything, labID).Return(lab, nil)
		return service.NewAutoApprovalService(repo, labs, new(MockEquipmentRepo), view)
	}

	t.Run("Creates a setting and logs the action", func(t *testing.T) {
		repo := new(MockAutoApprovalRepo)
		view := service.NewSettingsView()
		svc := newService(repo, view)
		repo.On("FindSetting", mock.Anything, domain.ApprovalScopeLab, &labID).Return(nil, domain.ErrNotFound)
		repo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.AutoApprovalSetting"), mock.MatchedBy(func(l *domain.AutoApprovalLog) bool {
			return l.Action == domain.AutoApprovalActionEnabled && l.PerformedBy == manager.UserID
		})).Return(nil)

		got, err := svc.ToggleSetting(ctx, manager, domain.ApprovalScopeLab, &labID, true)
		require.NoError(t, err)
		assert.True(t, got.Enabled)
		assert.NotEqual(t, uuid.Nil, got.ID)

		cached, ok := view.Lookup(booking.KeyFor(domain.ApprovalScopeLab, &labID))
		require.True(t, ok)
		assert.Equal(t, got.ID, cached.ID)
	})

	t.Run("Failed write rolls the view back", func(t *testing.T) {
		repo := new(MockAutoApprovalRepo)
		view := service.NewSettingsView()
		existing := domain.AutoApprovalSetting{ID: uuid.New(), TargetType: domain.ApprovalScopeSystem, Enabled: false}
		view.PutSetting(existing)
		svc := newService(repo, view)
		repo.On("FindSetting", mock.Anything, domain.ApprovalScopeSystem, mock.Anything).Return(&existing, nil)
		repo.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("deadlock detected"))

		_, err := svc.ToggleSetting(ctx, admin, domain.ApprovalScopeSystem, nil, true)
		assert.ErrorIs(t, err, booking.ErrStoreUnavailable)

		cached, ok := view.Lookup(booking.KeyFor(domain.ApprovalScopeSystem, nil))
		require.True(t, ok)
		assert.False(t, cached.Enabled)
	})

	t.Run("Failed write of a new setting leaves no trace", func(t *testing.T) {
		repo := new(MockAutoApprovalRepo)
		view := service.NewSettingsView()
		svc := newService(repo, view)
		repo.On("FindSetting", mock.Anything, domain.ApprovalScopeLab, mock.Anything).Return(nil, domain.ErrNotFound)
		repo.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("deadlock detected"))

		_, err := svc.ToggleSetting(ctx, manager, domain.ApprovalScopeLab, &labID, true)
		require.Error(t, err)
		_, ok := view.Lookup(booking.KeyFor(domain.ApprovalScopeLab, &labID))
		assert.False(t, ok)
	})

	t.Run("No-op toggle writes nothing", func(t *testing.T) {
		repo := new(MockAutoApprovalRepo)
		svc := newService(repo, service.NewSettingsView())
		current := &domain.AutoApprovalSetting{ID: uuid.New(), TargetType: domain.ApprovalScopeLab, TargetID: &labID, Enabled: true}
		repo.On("FindSetting", mock.Anything, domain.ApprovalScopeLab, mock.Anything).Return(current, nil)

		got, err := svc.ToggleSetting(ctx, manager, domain.ApprovalScopeLab, &labID, true)
		require.NoError(t, err)
		assert.Equal(t, current, got)
		repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("System scope needs an admin", func(t *testing.T) {
		repo := new(MockAutoApprovalRepo)
		svc := newService(repo, service.NewSettingsView())

		_, err := svc.ToggleSetting(ctx, manager, domain.ApprovalScopeSystem, nil, true)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("Lab scope needs a target", func(t *testing.T) {
		repo := new(MockAutoApprovalRepo)
		svc := newService(repo, service.NewSettingsView())

		_, err := svc.ToggleSetting(ctx, manager, domain.ApprovalScopeLab, nil, true)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestAutoApprovalService_GetSettingReadsThrough(t *testing.T) {
	ctx := context.Background()
	repo := new(MockAutoApprovalRepo)
	svc := service.NewAutoApprovalService(repo, new(MockLabRepo), new(MockEquipmentRepo), service.NewSettingsView())
	eqID := uuid.New()
	stored := &domain.AutoApprovalSetting{ID: uuid.New(), TargetType: domain.ApprovalScopeEquipment, TargetID: &eqID, Enabled: true}
	repo.On("FindSetting", mock.Anything, domain.ApprovalScopeEquipment, mock.Anything).Return(stored, nil).Once()

	for i := 0; i < 2; i++ {
		got, err := svc.GetSetting(ctx, domain.ApprovalScopeEquipment, &eqID)
		require.NoError(t, err)
		assert.True(t, got.Enabled)
	}
	repo.AssertNumberOfCalls(t, "FindSetting", 1)
}

func TestAutoApprovalService_ToggleScopedToLabManager(t *testing.T) {
	ctx := context.Background()
	owner := domain.Actor{UserID: uuid.New(), Role: domain.UserRoleLabManager}
	other := domain.Actor{UserID: uuid.New(), Role: domain.UserRoleLabManager}
	admin := domain.Actor{UserID: uuid.New(), Role: domain.UserRoleAdmin}
	lab := &domain.Lab{ID: uuid.New(), Name: "Optics", ManagerID: &owner.UserID}
	inLab := &domain.Equipment{ID: uuid.New(), Name: "Laser", LabID: &lab.ID}
	loose := &domain.Equipment{ID: uuid.New(), Name: "Cart"}

	setup := func() (*MockAutoApprovalRepo, service.AutoApprovalService) {
		repo := new(MockAutoApprovalRepo)
		labs := new(MockLabRepo)
		equipment := new(MockEquipmentRepo)
		labs.On("GetByID", mock.Anything, lab.ID).Return(lab, nil)
		equipment.On("GetByID", mock.Anything, inLab.ID).Return(inLab, nil)
		equipment.On("GetByID", mock.Anything, loose.ID).Return(loose, nil)
		repo.On("FindSetting", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
		repo.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		return repo, service.NewAutoApprovalService(repo, labs, equipment, service.NewSettingsView())
	}

	tests := []struct {
		name    string
		actor   domain.Actor
		scope   domain.ApprovalScope
		target  uuid.UUID
		allowed bool
	}{
		{"Manager of the lab", owner, domain.ApprovalScopeLab, lab.ID, true},
		{"Manager of another lab", other, domain.ApprovalScopeLab, lab.ID, false},
		{"Equipment in a managed lab", owner, domain.ApprovalScopeEquipment, inLab.ID, true},
		{"Equipment in someone else's lab", other, domain.ApprovalScopeEquipment, inLab.ID, false},
		{"Equipment outside any lab", other, domain.ApprovalScopeEquipment, loose.ID, true},
		{"Admin overrides ownership", admin, domain.ApprovalScopeLab, lab.ID, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, svc := setup()
			target := tt.target
			_, err := svc.ToggleSetting(ctx, tt.actor, tt.scope, &target, true)
			if tt.allowed {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, service.ErrPermissionDenied)
			repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
