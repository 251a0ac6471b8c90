package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"labreserve-backend/internal/booking"
	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/service"
)

func TestLabReservationService_Submit(t *testing.T) {
	ctx := context.Background()
	owner := &domain.User{ID: uuid.New(), Email: "owner@lab.test", Name: "Owner"}
	actor := domain.Actor{UserID: owner.ID, Role: domain.UserRoleUser}
	lab := &domain.Lab{ID: uuid.New(), Name: "Clean Room", Capacity: 20, Status: domain.LabStatusAvailable}

	t.Run("Too many attendees is rejected before reading reservations", func(t *testing.T) {
		f := newFixture()
		f.labs.On("GetByID", mock.Anything, lab.ID).Return(lab, nil)

		res, err := f.labReservations().SubmitLabReservation(ctx, actor, service.LabReservationRequest{
			LabID: lab.ID, Attendees: 25, StartTime: hours(2), EndTime: hours(4),
		})
		assert.Nil(t, res)
		require.ErrorIs(t, err, booking.ErrCapacityExceeded)
		var attErr *booking.AttendeesError
		require.ErrorAs(t, err, &attErr)
		assert.Equal(t, 20, attErr.Capacity)
		f.labRes.AssertNotCalled(t, "CreateChecked", mock.Anything, mock.Anything)
		f.labRes.AssertNotCalled(t, "ListOverlapping", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Overlapping booking is rejected", func(t *testing.T) {
		f := newFixture()
		f.noSettings()
		f.labs.On("GetByID", mock.Anything, lab.ID).Return(lab, nil)
		taken := []domain.LabReservation{{ID: uuid.New(), LabID: lab.ID, Attendees: 5,
			StartTime: hours(3), EndTime: hours(5), Status: domain.ReservationStatusPending}}
		f.labRes.On("CreateChecked", mock.Anything, mock.AnythingOfType("*domain.LabReservation")).Return(nil, lab, taken)

		_, err := f.labReservations().SubmitLabReservation(ctx, actor, service.LabReservationRequest{
			LabID: lab.ID, Attendees: 10, StartTime: hours(2), EndTime: hours(4),
		})
		assert.ErrorIs(t, err, booking.ErrLabAlreadyReserved)
	})

	t.Run("Back-to-back booking is accepted", func(t *testing.T) {
		f := newFixture()
		f.quietNotifications(owner)
		f.labs.On("GetByID", mock.Anything, lab.ID).Return(lab, nil)
		f.settings.On("FindSetting", mock.Anything, domain.ApprovalScopeLab, mock.Anything).
			Return(&domain.AutoApprovalSetting{ID: uuid.New(), TargetType: domain.ApprovalScopeLab, Enabled: true}, nil)
		before := []domain.LabReservation{{ID: uuid.New(), LabID: lab.ID, Attendees: 5,
			StartTime: hours(1), EndTime: hours(2), Status: domain.ReservationStatusApproved}}
		f.labRes.On("CreateChecked", mock.Anything, mock.AnythingOfType("*domain.LabReservation")).Return(nil, lab, before)

		res, err := f.labReservations().SubmitLabReservation(ctx, actor, service.LabReservationRequest{
			LabID: lab.ID, Attendees: 20, StartTime: hours(2), EndTime: hours(4),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusApproved, res.Status)
		f.settings.AssertNotCalled(t, "FindSetting", mock.Anything, domain.ApprovalScopeSystem, mock.Anything)
	})

	t.Run("Unknown lab", func(t *testing.T) {
		f := newFixture()
		f.labs.On("GetByID", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)

		_, err := f.labReservations().SubmitLabReservation(ctx, actor, service.LabReservationRequest{
			LabID: uuid.New(), Attendees: 1, StartTime: hours(2), EndTime: hours(4),
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestLabReservationService_ApproveRechecksOverlap(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	manager := domain.Actor{UserID: uuid.New(), Role: domain.UserRoleAdmin}
	lab := &domain.Lab{ID: uuid.New(), Name: "Wet Lab", Capacity: 8}
	pending := &domain.LabReservation{ID: uuid.New(), UserID: uuid.New(), LabID: lab.ID, Attendees: 3,
		StartTime: hours(2), EndTime: hours(4), Status: domain.ReservationStatusPending}
	rival := domain.LabReservation{ID: uuid.New(), LabID: lab.ID, Attendees: 2,
		StartTime: hours(3), EndTime: hours(6), Status: domain.ReservationStatusApproved}
	f.labRes.On("Transition", mock.Anything, pending.ID).Return(nil, pending, lab, []domain.LabReservation{*pending, rival})

	_, err := f.labReservations().DecideLabReservation(ctx, manager, pending.ID, true, "")
	assert.ErrorIs(t, err, booking.ErrLabAlreadyReserved)
}
