package service_test

import (
	"time"

	"github.com/stretchr/testify/mock"

	"labreserve-backend/internal/booking"
	"labreserve-backend/internal/cache"
	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/service"
)

var testNow = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

type fixture struct {
	users     *MockUserRepo
	equipment *MockEquipmentRepo
	labs      *MockLabRepo
	res       *MockReservationRepo
	labRes    *MockLabReservationRepo
	maint     *MockMaintenanceRepo
	settings  *MockAutoApprovalRepo
	notes     *MockNotificationRepo
	msgs      *MockMessageRepo
	email     *MockEmailService
	views     *service.Views
	detector  *booking.Detector
}

func newFixture() *fixture {
	f := &fixture{
		users:     new(MockUserRepo),
		equipment: new(MockEquipmentRepo),
		labs:      new(MockLabRepo),
		res:       new(MockReservationRepo),
		labRes:    new(MockLabReservationRepo),
		maint:     new(MockMaintenanceRepo),
		settings:  new(MockAutoApprovalRepo),
		notes:     new(MockNotificationRepo),
		msgs:      new(MockMessageRepo),
		email:     new(MockEmailService),
		detector:  booking.NewDetector(func() time.Time { return testNow }),
	}
	f.views = service.NewViews(cache.NewMemoryStore(), time.Minute, f.equipment, f.labs, f.res, f.labRes, f.maint)
	return f
}

// quietNotifications accepts every notification, manager lookup and email.
func (f *fixture) quietNotifications(owner *domain.User) {
	f.notes.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)
	f.users.On("ListByRole", mock.Anything, mock.Anything).Return([]domain.User{}, nil)
	if owner != nil {
		f.users.On("GetByID", mock.Anything, owner.ID).Return(owner, nil)
	}
	f.email.On("SendReservationDecision", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.email.On("SendMaintenanceNotice", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.email.On("SendReservationReminder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
}

// noSettings makes every auto-approval level report not found.
func (f *fixture) noSettings() {
	f.settings.On("FindSetting", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
}

func (f *fixture) reservations() service.ReservationService {
	return service.NewReservationService(f.res, f.equipment, f.settings, f.users, f.notes, f.email, f.detector, f.views)
}

func (f *fixture) labReservations() service.LabReservationService {
	return service.NewLabReservationService(f.labRes, f.settings, f.users, f.notes, f.email, f.detector, f.views)
}

func (f *fixture) maintenance() service.MaintenanceService {
	return service.NewMaintenanceService(f.maint, f.equipment, f.res, f.users, f.notes, f.email, f.views)
}

func hours(n int) time.Time {
	return testNow.Add(time.Duration(n) * time.Hour)
}

func ptr[T any](v T) *T {
	return &v
}
