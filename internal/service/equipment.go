package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"labreserve-backend/internal/booking"
	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/logger"
	"labreserve-backend/internal/repository"
)

type equipmentService struct {
	equipmentRepo repository.EquipmentRepository
	resRepo       repository.ReservationRepository
	views         *Views
}

func NewEquipmentService(equipmentRepo repository.EquipmentRepository, resRepo repository.ReservationRepository, views *Views) EquipmentService {
	return &equipmentService{
		equipmentRepo: equipmentRepo,
		resRepo:       resRepo,
		views:         views,
	}
}

// settableStatus reports whether a status may be written through the catalog.
// The maintenance status belongs to the unit ledger.
func settableStatus(s domain.EquipmentStatus) bool {
	return s.Valid() && s != domain.EquipmentStatusMaintenance
}

func (s *equipmentService) CreateEquipment(ctx context.Context, actor domain.Actor, eq *domain.Equipment) error {
	const method = "equipmentService.CreateEquipment"
	logger.EnterMethod(method, "actorID", actor.UserID, "name", eq.Name)

	if err := requireManager(actor); err != nil {
		return fail(method, err)
	}
	if eq.Quantity < 0 {
		return fail(method, fmt.Errorf("%w: quantity cannot be negative", ErrInvalidInput))
	}
	if eq.Status == "" {
		eq.Status = domain.EquipmentStatusOperational
	}
	if !settableStatus(eq.Status) {
		return fail(method, fmt.Errorf("%w: status %q cannot be set directly", ErrInvalidInput, eq.Status))
	}
	eq.UnitsUnderMaintenance = 0
	eq.Version = 0

	if err := s.equipmentRepo.Create(ctx, eq); err != nil {
		return fail(method, err)
	}
	s.views.Equipment.Merge(ctx, eq.ID, eq)

	logger.ExitMethod(method, "equipmentID", eq.ID)
	return nil
}

func (s *equipmentService) GetEquipment(ctx context.Context, id uuid.UUID) (*domain.Equipment, error) {
	eq, err := s.views.Equipment.Get(ctx, id)
	if err != nil {
		return nil, fail("equipmentService.GetEquipment", err, "equipmentID", id)
	}
	return eq, nil
}

func (s *equipmentService) ListEquipment(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error) {
	items, err := s.equipmentRepo.List(ctx, filter)
	if err != nil {
		return nil, fail("equipmentService.ListEquipment", err)
	}
	return items, nil
}

func (s *equipmentService) UpdateEquipment(ctx context.Context, actor domain.Actor, id uuid.UUID, upd EquipmentUpdate) (*domain.Equipment, error) {
	const method = "equipmentService.UpdateEquipment"
	logger.EnterMethod(method, "actorID", actor.UserID, "equipmentID", id)

	if err := requireManager(actor); err != nil {
		return nil, fail(method, err, "equipmentID", id)
	}
	eq, err := s.equipmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fail(method, err, "equipmentID", id)
	}

	if upd.Name != nil {
		eq.Name = *upd.Name
	}
	if upd.Description != nil {
		eq.Description = *upd.Description
	}
	if upd.Category != nil {
		eq.Category = *upd.Category
	}
	if upd.LabID != nil {
		labID := *upd.LabID
		eq.LabID = &labID
	}
	if upd.Quantity != nil {
		if *upd.Quantity < eq.UnitsUnderMaintenance {
			return nil, fail(method, fmt.Errorf("%w: quantity cannot drop below the %d unit(s) under maintenance",
				ErrInvalidInput, eq.UnitsUnderMaintenance), "equipmentID", id)
		}
		eq.Quantity = *upd.Quantity
	}
	if upd.Status != nil && *upd.Status != eq.Status {
		if !settableStatus(*upd.Status) || eq.Status == domain.EquipmentStatusMaintenance {
			return nil, fail(method, fmt.Errorf("%w: status %q is managed by maintenance schedules",
				ErrInvalidInput, eq.Status), "equipmentID", id)
		}
		eq.Status = *upd.Status
	}

	if err := s.equipmentRepo.Update(ctx, eq); err != nil {
		return nil, fail(method, err, "equipmentID", id)
	}
	s.views.Equipment.Merge(ctx, eq.ID, eq)

	logger.ExitMethod(method, "equipmentID", id, "version", eq.Version)
	return eq, nil
}

func (s *equipmentService) DeleteEquipment(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	const method = "equipmentService.DeleteEquipment"
	if err := requireManager(actor); err != nil {
		return fail(method, err, "equipmentID", id)
	}
	if err := s.equipmentRepo.Delete(ctx, id); err != nil {
		return fail(method, err, "equipmentID", id)
	}
	s.views.Equipment.Invalidate(ctx, id)
	return nil
}

// GetAvailability reads the equipment row and reservations fresh rather than
// from the view.
func (s *equipmentService) GetAvailability(ctx context.Context, id uuid.UUID, start, end time.Time) (*domain.EquipmentAvailability, error) {
	const method = "equipmentService.GetAvailability"
	w := booking.NewWindow(start, end)
	if !w.End.After(w.Start) {
		return nil, fail(method, booking.ErrInvalidWindow, "equipmentID", id)
	}

	eq, err := s.equipmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fail(method, err, "equipmentID", id)
	}
	overlapping, err := s.resRepo.ListOverlapping(ctx, id, start, end)
	if err != nil {
		return nil, fail(method, err, "equipmentID", id)
	}
	s.views.Equipment.Merge(ctx, eq.ID, eq)

	avail := booking.Availability(eq, w, booking.HoldingsFromReservations(overlapping))
	return &avail, nil
}
