package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/service"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

const maxBodyBytes = 1 << 20

// decode reads a JSON body into dst and validates its struct tags.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", service.ErrInvalidInput, err)
	}
	return validate.Struct(dst)
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a uuid", service.ErrInvalidInput, name)
	}
	return id, nil
}

func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a uuid", service.ErrInvalidInput, name)
	}
	return &id, nil
}

func queryTime(r *http.Request, name string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, r.URL.Query().Get(name))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be an RFC 3339 timestamp", service.ErrInvalidInput, name)
	}
	return t, nil
}

func queryPage(r *http.Request) (page, pageSize int32) {
	q := r.URL.Query()
	p, _ := strconv.Atoi(q.Get("page"))
	ps, _ := strconv.Atoi(q.Get("page_size"))
	return int32(p), int32(ps)
}

func mustActor(r *http.Request) domain.Actor {
	actor, _ := ActorFromContext(r.Context())
	return actor
}

type signUpRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Name       string `json:"name" validate:"required,max=200"`
	Department string `json:"department" validate:"max=200"`
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

type profileRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	Department string `json:"department" validate:"max=200"`
}

type equipmentRequest struct {
	Name        string                 `json:"name" validate:"required,max=200"`
	Description string                 `json:"description" validate:"max=2000"`
	Category    string                 `json:"category" validate:"max=200"`
	LabID       *uuid.UUID             `json:"lab_id"`
	Quantity    int                    `json:"quantity" validate:"gte=0"`
	Status      domain.EquipmentStatus `json:"status" validate:"omitempty,oneof=operational out_of_order reserved"`
}

type equipmentPatch struct {
	Name        *string                 `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string                 `json:"description" validate:"omitempty,max=2000"`
	Category    *string                 `json:"category" validate:"omitempty,max=200"`
	LabID       *uuid.UUID              `json:"lab_id"`
	Quantity    *int                    `json:"quantity" validate:"omitempty,gte=0"`
	Status      *domain.EquipmentStatus `json:"status" validate:"omitempty,oneof=operational out_of_order reserved"`
}

type labRequest struct {
	Name        string           `json:"name" validate:"required,max=200"`
	Location    string           `json:"location" validate:"max=200"`
	Description string           `json:"description" validate:"max=2000"`
	Capacity    int              `json:"capacity" validate:"gte=1"`
	Status      domain.LabStatus `json:"status" validate:"omitempty,oneof=available occupied maintenance"`
	ManagerID   *uuid.UUID       `json:"manager_id"`
}

type labPatch struct {
	Name        *string           `json:"name" validate:"omitempty,min=1,max=200"`
	Location    *string           `json:"location" validate:"omitempty,max=200"`
	Description *string           `json:"description" validate:"omitempty,max=2000"`
	Capacity    *int              `json:"capacity" validate:"omitempty,gte=1"`
	Status      *domain.LabStatus `json:"status" validate:"omitempty,oneof=available occupied maintenance"`
	ManagerID   *uuid.UUID        `json:"manager_id"`
}

type reservationRequest struct {
	EquipmentID uuid.UUID `json:"equipment_id" validate:"required"`
	Quantity    int       `json:"quantity" validate:"required"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	Purpose     string    `json:"purpose" validate:"max=1000"`
}

type labReservationRequest struct {
	LabID     uuid.UUID `json:"lab_id" validate:"required"`
	Attendees int       `json:"attendees" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
	Purpose   string    `json:"purpose" validate:"max=1000"`
}

type decisionRequest struct {
	Approve *bool  `json:"approve" validate:"required"`
	Note    string `json:"note" validate:"max=1000"`
}

type maintenanceRequest struct {
	EquipmentID   uuid.UUID                `json:"equipment_id" validate:"required"`
	ScheduledDate time.Time                `json:"scheduled_date" validate:"required"`
	EstimatedEnd  *time.Time               `json:"estimated_end"`
	Units         int                      `json:"units" validate:"required"`
	Status        domain.MaintenanceStatus `json:"status" validate:"omitempty,oneof=scheduled in_progress completed cancelled"`
	Description   string                   `json:"description" validate:"max=2000"`
	Technician    string                   `json:"technician" validate:"max=200"`
}

type maintenancePatch struct {
	ScheduledDate *time.Time                `json:"scheduled_date"`
	EstimatedEnd  *time.Time                `json:"estimated_end"`
	Units         *int                      `json:"units"`
	Status        *domain.MaintenanceStatus `json:"status" validate:"omitempty,oneof=scheduled in_progress completed cancelled"`
	Description   *string                   `json:"description" validate:"omitempty,max=2000"`
	Technician    *string                   `json:"technician" validate:"omitempty,max=200"`
}

type toggleRequest struct {
	Scope    domain.ApprovalScope `json:"scope" validate:"required,oneof=system lab equipment"`
	TargetID *uuid.UUID           `json:"target_id" validate:"required_unless=Scope system"`
	Enabled  *bool                `json:"enabled" validate:"required"`
}

type roleRequest struct {
	Role domain.UserRole `json:"role" validate:"required,oneof=user lab_manager admin"`
}

type messageRequest struct {
	RecipientID uuid.UUID `json:"recipient_id" validate:"required"`
	Subject     string    `json:"subject" validate:"max=200"`
	Body        string    `json:"body" validate:"required,max=4000"`
}

type listResponse[T any] struct {
	Items []T   `json:"items"`
	Total int32 `json:"total"`
}

func (p equipmentPatch) toUpdate() service.EquipmentUpdate {
	return service.EquipmentUpdate{
		Name: p.Name, Description: p.Description, Category: p.Category,
		LabID: p.LabID, Quantity: p.Quantity, Status: p.Status,
	}
}

func (p labPatch) toUpdate() service.LabUpdate {
	return service.LabUpdate{
		Name: p.Name, Location: p.Location, Description: p.Description,
		Capacity: p.Capacity, Status: p.Status, ManagerID: p.ManagerID,
	}
}

func (p maintenancePatch) toUpdate() service.MaintenanceUpdate {
	return service.MaintenanceUpdate{
		ScheduledDate: p.ScheduledDate, EstimatedEnd: p.EstimatedEnd, Units: p.Units,
		Status: p.Status, Description: p.Description, Technician: p.Technician,
	}
}
