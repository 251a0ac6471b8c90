package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"labreserve-backend/internal/domain"
)

type AuthService interface {
	SignUp(ctx context.Context, req SignUpRequest) (*AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
}

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, name, department string) (*domain.User, error)
}

type AdminService interface {
	ListUsers(ctx context.Context, actor domain.Actor, roles ...domain.UserRole) ([]domain.User, error)
	SetRole(ctx context.Context, actor domain.Actor, userID uuid.UUID, role domain.UserRole) (*domain.User, error)
}

type EquipmentService interface {
	CreateEquipment(ctx context.Context, actor domain.Actor, eq *domain.Equipment) error
	GetEquipment(ctx context.Context, id uuid.UUID) (*domain.Equipment, error)
	ListEquipment(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error)
	UpdateEquipment(ctx context.Context, actor domain.Actor, id uuid.UUID, upd EquipmentUpdate) (*domain.Equipment, error)
	DeleteEquipment(ctx context.Context, actor domain.Actor, id uuid.UUID) error
	GetAvailability(ctx context.Context, id uuid.UUID, start, end time.Time) (*domain.EquipmentAvailability, error)
}

type LabService interface {
	CreateLab(ctx context.Context, actor domain.Actor, lab *domain.Lab) error
	GetLab(ctx context.Context, id uuid.UUID) (*domain.Lab, error)
	ListLabs(ctx context.Context, status domain.LabStatus) ([]domain.Lab, error)
	UpdateLab(ctx context.Context, actor domain.Actor, id uuid.UUID, upd LabUpdate) (*domain.Lab, error)
	DeleteLab(ctx context.Context, actor domain.Actor, id uuid.UUID) error
	GetAvailability(ctx context.Context, id uuid.UUID, start, end time.Time) (*domain.LabAvailability, error)
}

type ReservationService interface {
	SubmitReservation(ctx context.Context, actor domain.Actor, req ReservationRequest) (*domain.Reservation, error)
	DecideReservation(ctx context.Context, actor domain.Actor, id uuid.UUID, approve bool, note string) (*domain.Reservation, error)
	CancelReservation(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Reservation, error)
	GetReservation(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Reservation, error)
	ListReservations(ctx context.Context, actor domain.Actor, filter domain.ReservationFilter) ([]domain.Reservation, int32, error)
	CompleteElapsed(ctx context.Context, now time.Time) (int, error)
	SendReminders(ctx context.Context, now time.Time, lead time.Duration) (int, error)
}

type LabReservationService interface {
	SubmitLabReservation(ctx context.Context, actor domain.Actor, req LabReservationRequest) (*domain.LabReservation, error)
	DecideLabReservation(ctx context.Context, actor domain.Actor, id uuid.UUID, approve bool, note string) (*domain.LabReservation, error)
	CancelLabReservation(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.LabReservation, error)
	GetLabReservation(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.LabReservation, error)
	ListLabReservations(ctx context.Context, actor domain.Actor, filter domain.ReservationFilter) ([]domain.LabReservation, int32, error)
	CompleteElapsed(ctx context.Context, now time.Time) (int, error)
	SendReminders(ctx context.Context, now time.Time, lead time.Duration) (int, error)
}

type MaintenanceService interface {
	CreateSchedule(ctx context.Context, actor domain.Actor, req MaintenanceRequest) (*domain.MaintenanceSchedule, error)
	UpdateSchedule(ctx context.Context, actor domain.Actor, id uuid.UUID, upd MaintenanceUpdate) (*domain.MaintenanceSchedule, error)
	DeleteSchedule(ctx context.Context, actor domain.Actor, id uuid.UUID) error
	GetSchedule(ctx context.Context, id uuid.UUID) (*domain.MaintenanceSchedule, error)
	ListSchedules(ctx context.Context, equipmentID uuid.UUID) ([]domain.MaintenanceSchedule, error)
	StartDue(ctx context.Context, now time.Time) (int, error)
}

type AutoApprovalService interface {
	GetSetting(ctx context.Context, scope domain.ApprovalScope, targetID *uuid.UUID) (*domain.AutoApprovalSetting, error)
	ListSettings(ctx context.Context) ([]domain.AutoApprovalSetting, error)
	ToggleSetting(ctx context.Context, actor domain.Actor, scope domain.ApprovalScope, targetID *uuid.UUID, enabled bool) (*domain.AutoApprovalSetting, error)
	ListLogs(ctx context.Context, actor domain.Actor, settingID uuid.UUID) ([]domain.AutoApprovalLog, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID uuid.UUID, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error
}

type MessageService interface {
	SendMessage(ctx context.Context, actor domain.Actor, recipientID uuid.UUID, subject, body string) (*domain.Message, error)
	ListInbox(ctx context.Context, actor domain.Actor, page, pageSize int32) ([]domain.Message, int32, error)
	ListConversation(ctx context.Context, actor domain.Actor, otherID uuid.UUID, page, pageSize int32) ([]domain.Message, error)
	MarkAsRead(ctx context.Context, actor domain.Actor, messageID uuid.UUID) error
}

type EmailService interface {
	SendReservationDecision(ctx context.Context, email, name, resourceName string, status domain.ReservationStatus, note string) error
	SendReservationReminder(ctx context.Context, email, name, resourceName string, start time.Time) error
	SendMaintenanceNotice(ctx context.Context, email, name, resourceName string, start, end time.Time) error
}

type SignUpRequest struct {
	Email      string
	Password   string
	Name       string
	Department string
}

type AuthResult struct {
	User        *domain.User
	AccessToken string
	ExpiresAt   time.Time
}

type ReservationRequest struct {
	EquipmentID uuid.UUID
	Quantity    int
	StartTime   time.Time
	EndTime     time.Time
	Purpose     string
}

type LabReservationRequest struct {
	LabID     uuid.UUID
	Attendees int
	StartTime time.Time
	EndTime   time.Time
	Purpose   string
}

// EquipmentUpdate carries catalog fields; nil leaves a field unchanged.
type EquipmentUpdate struct {
	Name        *string
	Description *string
	Category    *string
	LabID       *uuid.UUID
	Quantity    *int
	Status      *domain.EquipmentStatus
}

type LabUpdate struct {
	Name        *string
	Location    *string
	Description *string
	Capacity    *int
	Status      *domain.LabStatus
	ManagerID   *uuid.UUID
}

type MaintenanceRequest struct {
	EquipmentID   uuid.UUID
	ScheduledDate time.Time
	EstimatedEnd  *time.Time
	Units         int
	Status        domain.MaintenanceStatus
	Description   string
	Technician    string
}

type MaintenanceUpdate struct {
	ScheduledDate *time.Time
	EstimatedEnd  *time.Time
	Units         *int
	Status        *domain.MaintenanceStatus
	Description   *string
	Technician    *string
}
