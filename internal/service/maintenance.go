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

type maintenanceService struct {
	maintRepo     repository.MaintenanceRepository
	equipmentRepo repository.EquipmentRepository
	resRepo       repository.ReservationRepository
	views         *Views
	notifier
}

func NewMaintenanceService(
	maintRepo repository.MaintenanceRepository,
	equipmentRepo repository.EquipmentRepository,
	resRepo repository.ReservationRepository,
	userRepo repository.UserRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
	views *Views,
) MaintenanceService {
	return &maintenanceService{
		maintRepo:     maintRepo,
		equipmentRepo: equipmentRepo,
		resRepo:       resRepo,
		views:         views,
		notifier:      notifier{noteRepo: noteRepo, userRepo: userRepo, emailSvc: emailSvc},
	}
}

func maintenanceWindow(s *domain.MaintenanceSchedule) booking.Window {
	return booking.NewWindow(s.ScheduledDate, s.End())
}

// counterUpdate returns the compare-and-swap write for outcome, or nil when
// the equipment row already matches it. A checked write is always returned:
// every reservation insert bumps the equipment version, so the swap fails if
// a booking landed after the capacity check read the row.
func counterUpdate(eq *domain.Equipment, outcome booking.LedgerOutcome, checked bool) *domain.CounterUpdate {
	if !checked && outcome.UnitsUnderMaintenance == eq.UnitsUnderMaintenance && outcome.Status == eq.Status {
		return nil
	}
	return &domain.CounterUpdate{
		EquipmentID:           eq.ID,
		ExpectedVersion:       eq.Version,
		UnitsUnderMaintenance: outcome.UnitsUnderMaintenance,
		Status:                outcome.Status,
	}
}

// checkCapacity treats the units the schedule newly takes out of the pool as a
// reservation over the maintenance window. Transitions that release units
// skip the read.
func (s *maintenanceService) checkCapacity(ctx context.Context, eq *domain.Equipment, sched *domain.MaintenanceSchedule, extra int) ([]domain.Reservation, error) {
	if extra <= 0 {
		return nil, nil
	}
	w := maintenanceWindow(sched)
	overlapping, err := s.resRepo.ListOverlapping(ctx, eq.ID, w.Start, w.End)
	if err != nil {
		return nil, err
	}
	if err := booking.CheckMaintenanceCapacity(eq, w, extra, booking.HoldingsFromReservations(overlapping)); err != nil {
		return nil, err
	}
	return overlapping, nil
}

func validateSchedule(sched *domain.MaintenanceSchedule) error {
	if !sched.Status.Valid() {
		return fmt.Errorf("%w: unknown maintenance status %q", ErrInvalidInput, sched.Status)
	}
	if sched.EstimatedEnd != nil && !sched.EstimatedEnd.After(sched.ScheduledDate) {
		return booking.ErrInvalidWindow
	}
	return nil
}

func (s *maintenanceService) CreateSchedule(ctx context.Context, actor domain.Actor, req MaintenanceRequest) (*domain.MaintenanceSchedule, error) {
	const method = "maintenanceService.CreateSchedule"
	logger.EnterMethod(method, "actorID", actor.UserID, "equipmentID", req.EquipmentID, "units", req.Units)

	if err := requireManager(actor); err != nil {
		return nil, fail(method, err)
	}

	sched := &domain.MaintenanceSchedule{
		EquipmentID:   req.EquipmentID,
		ScheduledDate: req.ScheduledDate,
		EstimatedEnd:  req.EstimatedEnd,
		Units:         req.Units,
		Status:        req.Status,
		Description:   req.Description,
		Technician:    req.Technician,
		CreatedBy:     actor.UserID,
	}
	if sched.Status == "" {
		sched.Status = domain.MaintenanceStatusScheduled
	}
	if err := validateSchedule(sched); err != nil {
		return nil, fail(method, err)
	}

	eq, err := s.equipmentRepo.GetByID(ctx, req.EquipmentID)
	if err != nil {
		return nil, fail(method, err, "equipmentID", req.EquipmentID)
	}
	next := booking.EntryOf(sched)
	outcome, err := booking.LedgerCreate(eq, next)
	if err != nil {
		return nil, fail(method, err, "equipmentID", eq.ID)
	}
	extra := booking.RequiredUnits(nil, next)
	affected, err := s.checkCapacity(ctx, eq, sched, extra)
	if err != nil {
		return nil, fail(method, err, "equipmentID", eq.ID)
	}

	if err := s.maintRepo.Create(ctx, sched, counterUpdate(eq, outcome, extra > 0)); err != nil {
		return nil, fail(method, err, "equipmentID", eq.ID)
	}
	s.views.Maintenance.Merge(ctx, sched.ID, sched)
	s.views.Equipment.Invalidate(ctx, eq.ID)

	if next.Holds() > 0 {
		s.noticeAffected(ctx, eq, sched, affected)
	}

	logger.ExitMethod(method, "scheduleID", sched.ID, "unitsUnderMaintenance", outcome.UnitsUnderMaintenance, "equipmentStatus", outcome.Status)
	return sched, nil
}

func applyMaintenanceUpdate(sched *domain.MaintenanceSchedule, upd MaintenanceUpdate) bool {
	changed := false
	if upd.ScheduledDate != nil && !upd.ScheduledDate.Equal(sched.ScheduledDate) {
		sched.ScheduledDate = *upd.ScheduledDate
		changed = true
	}
	if upd.EstimatedEnd != nil && (sched.EstimatedEnd == nil || !upd.EstimatedEnd.Equal(*sched.EstimatedEnd)) {
		end := *upd.EstimatedEnd
		sched.EstimatedEnd = &end
		changed = true
	}
	if upd.Units != nil && *upd.Units != sched.Units {
		sched.Units = *upd.Units
		changed = true
	}
	if upd.Status != nil && *upd.Status != sched.Status {
		sched.Status = *upd.Status
		changed = true
	}
	if upd.Description != nil && *upd.Description != sched.Description {
		sched.Description = *upd.Description
		changed = true
	}
	if upd.Technician != nil && *upd.Technician != sched.Technician {
		sched.Technician = *upd.Technician
		changed = true
	}
	return changed
}

// UpdateSchedule runs the ledger when status or units change. Edits that
// touch neither are saved without a counter write; an edit that changes
// nothing at all is rejected.
func (s *maintenanceService) UpdateSchedule(ctx context.Context, actor domain.Actor, id uuid.UUID, upd MaintenanceUpdate) (*domain.MaintenanceSchedule, error) {
	const method = "maintenanceService.UpdateSchedule"
	logger.EnterMethod(method, "actorID", actor.UserID, "scheduleID", id)

	if err := requireManager(actor); err != nil {
		return nil, fail(method, err, "scheduleID", id)
	}
	sched, err := s.update(ctx, id, upd)
	if err != nil {
		return nil, fail(method, err, "scheduleID", id)
	}

	logger.ExitMethod(method, "scheduleID", id, "status", sched.Status, "units", sched.Units)
	return sched, nil
}

func (s *maintenanceService) update(ctx context.Context, id uuid.UUID, upd MaintenanceUpdate) (*domain.MaintenanceSchedule, error) {
	current, err := s.maintRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := *current
	changed := applyMaintenanceUpdate(&next, upd)

	prevEntry, nextEntry := booking.EntryOf(current), booking.EntryOf(&next)
	if prevEntry.Status.IsTerminal() && nextEntry.Status.IsTerminal() {
		return nil, booking.ErrScheduleLocked
	}
	if !changed {
		return nil, booking.ErrNoChanges
	}
	if err := validateSchedule(&next); err != nil {
		return nil, err
	}

	var counters *domain.CounterUpdate
	var affected []domain.Reservation
	eq, err := s.equipmentRepo.GetByID(ctx, current.EquipmentID)
	if err != nil {
		return nil, err
	}
	if prevEntry != nextEntry {
		outcome, err := booking.LedgerUpdate(eq, prevEntry, nextEntry)
		if err != nil {
			return nil, err
		}
		extra := booking.RequiredUnits(&prevEntry, nextEntry)
		affected, err = s.checkCapacity(ctx, eq, &next, extra)
		if err != nil {
			return nil, err
		}
		counters = counterUpdate(eq, outcome, extra > 0)
	} else if err := booking.ValidateUnits(next.Units, eq.Quantity); err != nil {
		return nil, err
	}

	if err := s.maintRepo.Update(ctx, &next, counters); err != nil {
		return nil, err
	}
	s.views.Maintenance.Merge(ctx, next.ID, &next)
	if counters != nil {
		s.views.Equipment.Invalidate(ctx, eq.ID)
	}
	if nextEntry.Holds() > prevEntry.Holds() {
		s.noticeAffected(ctx, eq, &next, affected)
	}
	return &next, nil
}

// DeleteSchedule returns the units of a schedule that still held them.
func (s *maintenanceService) DeleteSchedule(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	const method = "maintenanceService.DeleteSchedule"
	logger.EnterMethod(method, "actorID", actor.UserID, "scheduleID", id)

	if err := requireManager(actor); err != nil {
		return fail(method, err, "scheduleID", id)
	}
	sched, err := s.maintRepo.GetByID(ctx, id)
	if err != nil {
		return fail(method, err, "scheduleID", id)
	}
	eq, err := s.equipmentRepo.GetByID(ctx, sched.EquipmentID)
	if err != nil {
		return fail(method, err, "scheduleID", id)
	}

	counters := counterUpdate(eq, booking.LedgerDelete(eq, booking.EntryOf(sched)), false)
	if err := s.maintRepo.Delete(ctx, id, counters); err != nil {
		return fail(method, err, "scheduleID", id)
	}
	s.views.Maintenance.Invalidate(ctx, id)
	if counters != nil {
		s.views.Equipment.Invalidate(ctx, eq.ID)
	}

	logger.ExitMethod(method, "scheduleID", id, "restored", counters != nil)
	return nil
}

func (s *maintenanceService) GetSchedule(ctx context.Context, id uuid.UUID) (*domain.MaintenanceSchedule, error) {
	sched, err := s.views.Maintenance.Get(ctx, id)
	if err != nil {
		return nil, fail("maintenanceService.GetSchedule", err, "scheduleID", id)
	}
	return sched, nil
}

func (s *maintenanceService) ListSchedules(ctx context.Context, equipmentID uuid.UUID) ([]domain.MaintenanceSchedule, error) {
	items, err := s.maintRepo.ListByEquipment(ctx, equipmentID)
	if err != nil {
		return nil, fail("maintenanceService.ListSchedules", err, "equipmentID", equipmentID)
	}
	return items, nil
}

// StartDue moves scheduled entries whose date has arrived to in_progress.
// Both states hold units, so the counter is left alone. Failures on one
// schedule do not stop the rest.
func (s *maintenanceService) StartDue(ctx context.Context, now time.Time) (int, error) {
	const method = "maintenanceService.StartDue"
	logger.EnterMethod(method, "now", now)

	due, err := s.maintRepo.ListDue(ctx, now)
	if err != nil {
		return 0, fail(method, err)
	}

	inProgress := domain.MaintenanceStatusInProgress
	started := 0
	for _, sched := range due {
		next := sched
		next.Status = inProgress
		if err := s.maintRepo.Update(ctx, &next, nil); err != nil {
			logger.Error("Failed to start maintenance", "scheduleID", sched.ID, "error", err)
			continue
		}
		s.views.Maintenance.Merge(ctx, next.ID, &next)
		started++
	}

	logger.ExitMethod(method, "started", started, "due", len(due))
	return started, nil
}

func (s *maintenanceService) noticeAffected(ctx context.Context, eq *domain.Equipment, sched *domain.MaintenanceSchedule, affected []domain.Reservation) {
	attrs := map[string]string{
		"type":         "MAINTENANCE",
		"schedule_id":  sched.ID.String(),
		"equipment_id": eq.ID.String(),
	}
	seen := make(map[uuid.UUID]bool)
	for _, r := range affected {
		if seen[r.UserID] {
			continue
		}
		seen[r.UserID] = true
		s.notify(ctx, r.UserID, "Maintenance Scheduled",
			fmt.Sprintf("%d unit(s) of %s are under maintenance from %s", sched.Units, eq.Name, sched.ScheduledDate.Format(time.RFC1123)), attrs)
		if u := s.user(ctx, r.UserID); u != nil {
			if err := s.emailSvc.SendMaintenanceNotice(ctx, u.Email, u.Name, eq.Name, sched.ScheduledDate, sched.End()); err != nil {
				logger.Warn("Failed to send maintenance email", "userID", r.UserID, "error", err)
			}
		}
	}
}
