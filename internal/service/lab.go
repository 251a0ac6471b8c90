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

type labService struct {
	labRepo    repository.LabRepository
	labResRepo repository.LabReservationRepository
	views      *Views
}

func NewLabService(labRepo repository.LabRepository, labResRepo repository.LabReservationRepository, views *Views) LabService {
	return &labService{
		labRepo:    labRepo,
		labResRepo: labResRepo,
		views:      views,
	}
}

func (s *labService) CreateLab(ctx context.Context, actor domain.Actor, lab *domain.Lab) error {
	const method = "labService.CreateLab"
	logger.EnterMethod(method, "actorID", actor.UserID, "name", lab.Name)

	if err := requireManager(actor); err != nil {
		return fail(method, err)
	}
	if lab.Capacity < 1 {
		return fail(method, fmt.Errorf("%w: capacity must be at least 1", ErrInvalidInput))
	}
	if lab.Status == "" {
		lab.Status = domain.LabStatusAvailable
	}
	if !lab.Status.Valid() {
		return fail(method, fmt.Errorf("%w: unknown lab status %q", ErrInvalidInput, lab.Status))
	}

	if err := s.labRepo.Create(ctx, lab); err != nil {
		return fail(method, err)
	}
	s.views.Labs.Merge(ctx, lab.ID, lab)

	logger.ExitMethod(method, "labID", lab.ID)
	return nil
}

func (s *labService) GetLab(ctx context.Context, id uuid.UUID) (*domain.Lab, error) {
	lab, err := s.views.Labs.Get(ctx, id)
	if err != nil {
		return nil, fail("labService.GetLab", err, "labID", id)
	}
	return lab, nil
}

func (s *labService) ListLabs(ctx context.Context, status domain.LabStatus) ([]domain.Lab, error) {
	labs, err := s.labRepo.List(ctx, status)
	if err != nil {
		return nil, fail("labService.ListLabs", err)
	}
	return labs, nil
}

func (s *labService) UpdateLab(ctx context.Context, actor domain.Actor, id uuid.UUID, upd LabUpdate) (*domain.Lab, error) {
	const method = "labService.UpdateLab"
	logger.EnterMethod(method, "actorID", actor.UserID, "labID", id)

	if err := requireManager(actor); err != nil {
		return nil, fail(method, err, "labID", id)
	}
	lab, err := s.labRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fail(method, err, "labID", id)
	}

	if upd.Name != nil {
		lab.Name = *upd.Name
	}
	if upd.Location != nil {
		lab.Location = *upd.Location
	}
	if upd.Description != nil {
		lab.Description = *upd.Description
	}
	if upd.Capacity != nil {
		if *upd.Capacity < 1 {
			return nil, fail(method, fmt.Errorf("%w: capacity must be at least 1", ErrInvalidInput), "labID", id)
		}
		lab.Capacity = *upd.Capacity
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, fail(method, fmt.Errorf("%w: unknown lab status %q", ErrInvalidInput, *upd.Status), "labID", id)
		}
		lab.Status = *upd.Status
	}
	if upd.ManagerID != nil {
		managerID := *upd.ManagerID
		lab.ManagerID = &managerID
	}

	if err := s.labRepo.Update(ctx, lab); err != nil {
		return nil, fail(method, err, "labID", id)
	}
	s.views.Labs.Merge(ctx, lab.ID, lab)

	logger.ExitMethod(method, "labID", id)
	return lab, nil
}

func (s *labService) DeleteLab(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	const method = "labService.DeleteLab"
	if err := requireManager(actor); err != nil {
		return fail(method, err, "labID", id)
	}
	if err := s.labRepo.Delete(ctx, id); err != nil {
		return fail(method, err, "labID", id)
	}
	s.views.Labs.Invalidate(ctx, id)
	return nil
}

func (s *labService) GetAvailability(ctx context.Context, id uuid.UUID, start, end time.Time) (*domain.LabAvailability, error) {
	const method = "labService.GetAvailability"
	w := booking.NewWindow(start, end)
	if !w.End.After(w.Start) {
		return nil, fail(method, booking.ErrInvalidWindow, "labID", id)
	}
	if _, err := s.views.Labs.Get(ctx, id); err != nil {
		return nil, fail(method, err, "labID", id)
	}

	overlapping, err := s.labResRepo.ListOverlapping(ctx, id, start, end)
	if err != nil {
		return nil, fail(method, err, "labID", id)
	}
	blocking := make([]domain.LabReservation, 0, len(overlapping))
	for _, r := range overlapping {
		if r.Status.IsActive() && booking.NewWindow(r.StartTime, r.EndTime).Overlaps(w) {
			blocking = append(blocking, r)
		}
	}
	return &domain.LabAvailability{
		LabID:     id,
		Available: len(blocking) == 0,
		Blocking:  blocking,
		StartTime: start,
		EndTime:   end,
	}, nil
}
