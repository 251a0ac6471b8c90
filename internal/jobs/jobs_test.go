package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"labreserve-backend/internal/config"
	"labreserve-backend/internal/service"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type mockReservationService struct {
	mock.Mock
	service.ReservationService
}

func (m *mockReservationService) CompleteElapsed(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *mockReservationService) SendReminders(ctx context.Context, now time.Time, lead time.Duration) (int, error) {
	args := m.Called(ctx, now, lead)
	return args.Int(0), args.Error(1)
}

type mockLabReservationService struct {
	mock.Mock
	service.LabReservationService
}

func (m *mockLabReservationService) CompleteElapsed(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *mockLabReservationService) SendReminders(ctx context.Context, now time.Time, lead time.Duration) (int, error) {
	args := m.Called(ctx, now, lead)
	return args.Int(0), args.Error(1)
}

type mockMaintenanceService struct {
	mock.Mock
	service.MaintenanceService
}

func (m *mockMaintenanceService) StartDue(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

type fixture struct {
	runner *JobRunner
	res    *mockReservationService
	labRes *mockLabReservationService
	maint  *mockMaintenanceService
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		res:    &mockReservationService{},
		labRes: &mockLabReservationService{},
		maint:  &mockMaintenanceService{},
	}
	cfg := &config.Config{Scheduler: config.SchedulerConfig{ReminderLeadMinutes: 30}}
	f.runner = NewJobRunner(&Services{
		Reservation:    f.res,
		LabReservation: f.labRes,
		Maintenance:    f.maint,
	}, cfg, func() time.Time { return testNow })
	t.Cleanup(func() {
		f.res.AssertExpectations(t)
		f.labRes.AssertExpectations(t)
		f.maint.AssertExpectations(t)
	})
	return f
}

func TestCompleteReservations(t *testing.T) {
	f := newFixture(t)
	f.res.On("CompleteElapsed", mock.Anything, testNow).Return(3, nil).Once()
	f.labRes.On("CompleteElapsed", mock.Anything, testNow).Return(1, nil).Once()

	f.runner.CompleteReservations()
}

func TestCompleteReservations_LabsRunWhenEquipmentFails(t *testing.T) {
	f := newFixture(t)
	f.res.On("CompleteElapsed", mock.Anything, testNow).Return(0, errors.New("db down")).Once()
	f.labRes.On("CompleteElapsed", mock.Anything, testNow).Return(2, nil).Once()

	f.runner.CompleteReservations()
}

func TestSendReminders_UsesConfiguredLead(t *testing.T) {
	f := newFixture(t)
	f.res.On("SendReminders", mock.Anything, testNow, 30*time.Minute).Return(2, nil).Once()
	f.labRes.On("SendReminders", mock.Anything, testNow, 30*time.Minute).Return(0, nil).Once()

	f.runner.SendReminders()
}

func TestStartMaintenance(t *testing.T) {
	f := newFixture(t)
	f.maint.On("StartDue", mock.Anything, testNow).Return(4, nil).Once()

	f.runner.StartMaintenance()
}

func TestRunWithRecovery_SwallowsPanic(t *testing.T) {
	f := newFixture(t)
	ran := false
	assert.NotPanics(t, func() {
		f.runner.runWithRecovery("boom", func(ctx context.Context) {
			ran = true
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			panic("unexpected")
		})
	})
	assert.True(t, ran)
}
