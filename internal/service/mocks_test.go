package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/repository"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) ListByRole(ctx context.Context, roles ...domain.UserRole) ([]domain.User, error) {
	args := m.Called(ctx, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockEquipmentRepo
type MockEquipmentRepo struct {
	mock.Mock
}

func (m *MockEquipmentRepo) Create(ctx context.Context, eq *domain.Equipment) error {
	args := m.Called(ctx, eq)
	return args.Error(0)
}
func (m *MockEquipmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Hand out a copy so services mutating the row do not touch the fixture.
	eq := *args.Get(0).(*domain.Equipment)
	return &eq, args.Error(1)
}
func (m *MockEquipmentRepo) List(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Equipment), args.Error(1)
}
func (m *MockEquipmentRepo) Update(ctx context.Context, eq *domain.Equipment) error {
	args := m.Called(ctx, eq)
	return args.Error(0)
}
func (m *MockEquipmentRepo) UpdateCounters(ctx context.Context, upd domain.CounterUpdate) (int64, error) {
	args := m.Called(ctx, upd)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockEquipmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLabRepo
type MockLabRepo struct {
	mock.Mock
}

func (m *MockLabRepo) Create(ctx context.Context, lab *domain.Lab) error {
	args := m.Called(ctx, lab)
	return args.Error(0)
}
func (m *MockLabRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lab, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	lab := *args.Get(0).(*domain.Lab)
	return &lab, args.Error(1)
}
func (m *MockLabRepo) List(ctx context.Context, status domain.LabStatus) ([]domain.Lab, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Lab), args.Error(1)
}
func (m *MockLabRepo) Update(ctx context.Context, lab *domain.Lab) error {
	args := m.Called(ctx, lab)
	return args.Error(0)
}
func (m *MockLabRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockReservationRepo plays the locked transaction: CreateChecked and
// Transition are stubbed with the rows the callback would see, and the
// callback runs for real.
type MockReservationRepo struct {
	mock.Mock
}

func (m *MockReservationRepo) CreateChecked(ctx context.Context, r *domain.Reservation, check repository.EquipmentCheck) error {
	args := m.Called(ctx, r)
	if err := args.Error(0); err != nil {
		return err
	}
	status, err := check(args.Get(1).(*domain.Equipment), args.Get(2).([]domain.Reservation))
	if err != nil {
		return err
	}
	r.ID = uuid.New()
	r.Status = status
	return nil
}
func (m *MockReservationRepo) Transition(ctx context.Context, id uuid.UUID, decide repository.ReservationDecision) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	r := *args.Get(1).(*domain.Reservation)
	if err := decide(&r, args.Get(2).(*domain.Equipment), args.Get(3).([]domain.Reservation)); err != nil {
		return nil, err
	}
	return &r, nil
}
func (m *MockReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, int32, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Reservation), args.Get(1).(int32), args.Error(2)
}
func (m *MockReservationRepo) ListOverlapping(ctx context.Context, equipmentID uuid.UUID, start, end time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, equipmentID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) CompleteElapsed(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

// MockLabReservationRepo
type MockLabReservationRepo struct {
	mock.Mock
}

func (m *MockLabReservationRepo) CreateChecked(ctx context.Context, r *domain.LabReservation, check repository.LabCheck) error {
	args := m.Called(ctx, r)
	if err := args.Error(0); err != nil {
		return err
	}
	status, err := check(args.Get(1).(*domain.Lab), args.Get(2).([]domain.LabReservation))
	if err != nil {
		return err
	}
	r.ID = uuid.New()
	r.Status = status
	return nil
}
func (m *MockLabReservationRepo) Transition(ctx context.Context, id uuid.UUID, decide repository.LabReservationDecision) (*domain.LabReservation, error) {
	args := m.Called(ctx, id)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	r := *args.Get(1).(*domain.LabReservation)
	if err := decide(&r, args.Get(2).(*domain.Lab), args.Get(3).([]domain.LabReservation)); err != nil {
		return nil, err
	}
	return &r, nil
}
func (m *MockLabReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.LabReservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LabReservation), args.Error(1)
}
func (m *MockLabReservationRepo) List(ctx context.Context, filter domain.ReservationFilter) ([]domain.LabReservation, int32, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.LabReservation), args.Get(1).(int32), args.Error(2)
}
func (m *MockLabReservationRepo) ListOverlapping(ctx context.Context, labID uuid.UUID, start, end time.Time) ([]domain.LabReservation, error) {
	args := m.Called(ctx, labID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LabReservation), args.Error(1)
}
func (m *MockLabReservationRepo) CompleteElapsed(ctx context.Context, now time.Time) ([]domain.LabReservation, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LabReservation), args.Error(1)
}
func (m *MockLabReservationRepo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.LabReservation, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LabReservation), args.Error(1)
}

// MockMaintenanceRepo
type MockMaintenanceRepo struct {
	mock.Mock
}

func (m *MockMaintenanceRepo) Create(ctx context.Context, s *domain.MaintenanceSchedule, counters *domain.CounterUpdate) error {
	args := m.Called(ctx, s, counters)
	if args.Error(0) == nil && s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return args.Error(0)
}
func (m *MockMaintenanceRepo) Update(ctx context.Context, s *domain.MaintenanceSchedule, counters *domain.CounterUpdate) error {
	args := m.Called(ctx, s, counters)
	return args.Error(0)
}
func (m *MockMaintenanceRepo) Delete(ctx context.Context, id uuid.UUID, counters *domain.CounterUpdate) error {
	args := m.Called(ctx, id, counters)
	return args.Error(0)
}
func (m *MockMaintenanceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceSchedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	s := *args.Get(0).(*domain.MaintenanceSchedule)
	return &s, args.Error(1)
}
func (m *MockMaintenanceRepo) ListByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]domain.MaintenanceSchedule, error) {
	args := m.Called(ctx, equipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MaintenanceSchedule), args.Error(1)
}
func (m *MockMaintenanceRepo) ListDue(ctx context.Context, now time.Time) ([]domain.MaintenanceSchedule, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MaintenanceSchedule), args.Error(1)
}

// MockAutoApprovalRepo
type MockAutoApprovalRepo struct {
	mock.Mock
}

func (m *MockAutoApprovalRepo) FindSetting(ctx context.Context, scope domain.ApprovalScope, targetID *uuid.UUID) (*domain.AutoApprovalSetting, error) {
	args := m.Called(ctx, scope, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AutoApprovalSetting), args.Error(1)
}
func (m *MockAutoApprovalRepo) List(ctx context.Context) ([]domain.AutoApprovalSetting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AutoApprovalSetting), args.Error(1)
}
func (m *MockAutoApprovalRepo) Upsert(ctx context.Context, s *domain.AutoApprovalSetting, entry *domain.AutoApprovalLog) error {
	args := m.Called(ctx, s, entry)
	if args.Error(0) == nil && s.ID == uuid.Nil {
		s.ID = uuid.New()
		entry.SettingID = s.ID
	}
	return args.Error(0)
}
func (m *MockAutoApprovalRepo) ListLogs(ctx context.Context, settingID uuid.UUID) ([]domain.AutoApprovalLog, error) {
	args := m.Called(ctx, settingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AutoApprovalLog), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockMessageRepo
type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	if args.Error(0) == nil {
		msg.ID = uuid.New()
	}
	return args.Error(0)
}
func (m *MockMessageRepo) ListInbox(ctx context.Context, recipientID uuid.UUID, limit, offset int32) ([]domain.Message, int32, error) {
	args := m.Called(ctx, recipientID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Message), args.Get(1).(int32), args.Error(2)
}
func (m *MockMessageRepo) ListConversation(ctx context.Context, userA, userB uuid.UUID, limit, offset int32) ([]domain.Message, error) {
	args := m.Called(ctx, userA, userB, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}
func (m *MockMessageRepo) MarkAsRead(ctx context.Context, id, recipientID uuid.UUID) error {
	args := m.Called(ctx, id, recipientID)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendReservationDecision(ctx context.Context, email, name, resourceName string, status domain.ReservationStatus, note string) error {
	args := m.Called(ctx, email, name, resourceName, status, note)
	return args.Error(0)
}
func (m *MockEmailService) SendReservationReminder(ctx context.Context, email, name, resourceName string, start time.Time) error {
	args := m.Called(ctx, email, name, resourceName, start)
	return args.Error(0)
}
func (m *MockEmailService) SendMaintenanceNotice(ctx context.Context, email, name, resourceName string, start, end time.Time) error {
	args := m.Called(ctx, email, name, resourceName, start, end)
	return args.Error(0)
}
