package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"labreserve-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	ListByRole(ctx context.Context, roles ...domain.UserRole) ([]domain.User, error)
}

type EquipmentRepository interface {
	Create(ctx context.Context, eq *domain.Equipment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error)
	List(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error)
	// Update writes catalog fields guarded by eq.Version, which is bumped on
	// success. The maintenance counter is owned by UpdateCounters.
	Update(ctx context.Context, eq *domain.Equipment) error
	// UpdateCounters is a compare-and-swap on version. It returns the new
	// version, or domain.ErrConcurrentUpdate when the row moved on.
	UpdateCounters(ctx context.Context, upd domain.CounterUpdate) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type LabRepository interface {
	Create(ctx context.Context, lab *domain.Lab) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Lab, error)
	List(ctx context.Context, status domain.LabStatus) ([]domain.Lab, error)
	Update(ctx context.Context, lab *domain.Lab) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EquipmentCheck runs while the equipment row is locked. It sees the active
// reservations overlapping the new one and returns the status to insert
// with, or an error to abort.
type EquipmentCheck func(eq *domain.Equipment, overlapping []domain.Reservation) (domain.ReservationStatus, error)

// ReservationDecision runs while both the reservation and its equipment are
// locked. It mutates r in place; returning an error aborts the write.
type ReservationDecision func(r *domain.Reservation, eq *domain.Equipment, overlapping []domain.Reservation) error

type ReservationRepository interface {
	// CreateChecked inserts r after check passes, all inside one transaction
	// holding the equipment row lock.
	CreateChecked(ctx context.Context, r *domain.Reservation, check EquipmentCheck) error
	// Transition loads r, locks it with its equipment and persists whatever
	// decide changed.
	Transition(ctx context.Context, id uuid.UUID, decide ReservationDecision) (*domain.Reservation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, int32, error)
	// ListOverlapping returns active reservations of equipmentID overlapping [start, end).
	ListOverlapping(ctx context.Context, equipmentID uuid.UUID, start, end time.Time) ([]domain.Reservation, error)
	CompleteElapsed(ctx context.Context, now time.Time) ([]domain.Reservation, error)
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Reservation, error)
}

type LabCheck func(lab *domain.Lab, overlapping []domain.LabReservation) (domain.ReservationStatus, error)

type LabReservationDecision func(r *domain.LabReservation, lab *domain.Lab, overlapping []domain.LabReservation) error

type LabReservationRepository interface {
	CreateChecked(ctx context.Context, r *domain.LabReservation, check LabCheck) error
	Transition(ctx context.Context, id uuid.UUID, decide LabReservationDecision) (*domain.LabReservation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LabReservation, error)
	List(ctx context.Context, filter domain.ReservationFilter) ([]domain.LabReservation, int32, error)
	ListOverlapping(ctx context.Context, labID uuid.UUID, start, end time.Time) ([]domain.LabReservation, error)
	CompleteElapsed(ctx context.Context, now time.Time) ([]domain.LabReservation, error)
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.LabReservation, error)
}

// MaintenanceRepository writes a schedule and the equipment counter in one
// transaction. A nil counter update leaves the equipment row alone.
type MaintenanceRepository interface {
	Create(ctx context.Context, s *domain.MaintenanceSchedule, counters *domain.CounterUpdate) error
	Update(ctx context.Context, s *domain.MaintenanceSchedule, counters *domain.CounterUpdate) error
	Delete(ctx context.Context, id uuid.UUID, counters *domain.CounterUpdate) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceSchedule, error)
	ListByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]domain.MaintenanceSchedule, error)
	ListDue(ctx context.Context, now time.Time) ([]domain.MaintenanceSchedule, error)
}

type AutoApprovalRepository interface {
	// FindSetting returns domain.ErrNotFound when no row exists for the scope.
	FindSetting(ctx context.Context, scope domain.ApprovalScope, targetID *uuid.UUID) (*domain.AutoApprovalSetting, error)
	List(ctx context.Context) ([]domain.AutoApprovalSetting, error)
	// Upsert stores s and appends entry for it in the same transaction.
	// entry.SettingID is filled in from the stored row.
	Upsert(ctx context.Context, s *domain.AutoApprovalSetting, entry *domain.AutoApprovalLog) error
	ListLogs(ctx context.Context, settingID uuid.UUID) ([]domain.AutoApprovalLog, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListInbox(ctx context.Context, recipientID uuid.UUID, limit, offset int32) ([]domain.Message, int32, error)
	ListConversation(ctx context.Context, userA, userB uuid.UUID, limit, offset int32) ([]domain.Message, error)
	MarkAsRead(ctx context.Context, id, recipientID uuid.UUID) error
}
