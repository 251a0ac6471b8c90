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

type reservationService struct {
	resRepo       repository.ReservationRepository
	equipmentRepo repository.EquipmentRepository
	settings      booking.SettingLookup
	detector      *booking.Detector
	views         *Views
	notifier
}

func NewReservationService(
	resRepo repository.ReservationRepository,
	equipmentRepo repository.EquipmentRepository,
	settings booking.SettingLookup,
	userRepo repository.UserRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
	detector *booking.Detector,
	views *Views,
) ReservationService {
	return &reservationService{
		resRepo:       resRepo,
		equipmentRepo: equipmentRepo,
		settings:      settings,
		detector:      detector,
		views:         views,
		notifier:      notifier{noteRepo: noteRepo, userRepo: userRepo, emailSvc: emailSvc},
	}
}

func reservationAttrs(r *domain.Reservation) map[string]string {
	return map[string]string{
		"type":           "RESERVATION",
		"reservation_id": r.ID.String(),
		"equipment_id":   r.EquipmentID.String(),
		"status":         string(r.Status),
	}
}

func (s *reservationService) SubmitReservation(ctx context.Context, actor domain.Actor, req ReservationRequest) (*domain.Reservation, error) {
	const method = "reservationService.SubmitReservation"
	logger.EnterMethod(method, "userID", actor.UserID, "equipmentID", req.EquipmentID, "quantity", req.Quantity)

	request := booking.Request{Window: booking.NewWindow(req.StartTime, req.EndTime), Quantity: req.Quantity}
	if err := s.detector.ValidateEquipmentRequest(request); err != nil {
		return nil, fail(method, err, "equipmentID", req.EquipmentID)
	}

	res := &domain.Reservation{
		UserID:      actor.UserID,
		EquipmentID: req.EquipmentID,
		Quantity:    req.Quantity,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Purpose:     req.Purpose,
	}

	// The chain is resolved before the insert transaction opens: the
	// transaction must not wait on a second pooled connection while it holds
	// the equipment row lock.
	cached, err := s.views.Equipment.Get(ctx, req.EquipmentID)
	if err != nil {
		return nil, fail(method, err, "equipmentID", req.EquipmentID)
	}
	resolution, err := booking.ResolveAutoApproval(ctx, s.settings, booking.EquipmentChain(cached))
	if err != nil {
		return nil, fail(method, err, "equipmentID", req.EquipmentID)
	}

	var equipment *domain.Equipment
	err = s.resRepo.CreateChecked(ctx, res, func(eq *domain.Equipment, overlapping []domain.Reservation) (domain.ReservationStatus, error) {
		if err := s.detector.CheckEquipment(eq, request, booking.HoldingsFromReservations(overlapping)); err != nil {
			return "", err
		}
		equipment = eq
		return resolution.InitialStatus(), nil
	})
	if err != nil {
		return nil, fail(method, err, "equipmentID", req.EquipmentID)
	}
	s.views.Reservations.Merge(ctx, res.ID, res)

	attrs := reservationAttrs(res)
	if res.Status == domain.ReservationStatusApproved {
		attrs["auto_approved_by"] = string(resolution.Scope)
		s.notify(ctx, res.UserID, "Reservation Approved",
			fmt.Sprintf("Your reservation of %d x %s was approved automatically", res.Quantity, equipment.Name), attrs)
		s.emailDecision(ctx, res.UserID, equipment.Name, res.Status, "")
	} else {
		s.notify(ctx, res.UserID, "Reservation Submitted",
			fmt.Sprintf("Your reservation of %d x %s is awaiting approval", res.Quantity, equipment.Name), attrs)
		s.notifyManagers(ctx, "New Reservation Request",
			fmt.Sprintf("%d x %s requested for %s", res.Quantity, equipment.Name, res.StartTime.Format(time.RFC1123)), attrs)
	}

	logger.ExitMethod(method, "reservationID", res.ID, "status", res.Status)
	return res, nil
}

func (s *reservationService) DecideReservation(ctx context.Context, actor domain.Actor, id uuid.UUID, approve bool, note string) (*domain.Reservation, error) {
	const method = "reservationService.DecideReservation"
	logger.EnterMethod(method, "actorID", actor.UserID, "reservationID", id, "approve", approve)

	if err := requireManager(actor); err != nil {
		return nil, fail(method, err, "reservationID", id)
	}

	var equipmentName string
	res, err := s.resRepo.Transition(ctx, id, func(r *domain.Reservation, eq *domain.Equipment, overlapping []domain.Reservation) error {
		if r.Status != domain.ReservationStatusPending {
			return ErrInvalidState
		}
		if approve {
			// Re-check against committed state without counting this request twice.
			others := booking.Without(booking.HoldingsFromReservations(overlapping), r.ID)
			req := booking.Request{Window: booking.NewWindow(r.StartTime, r.EndTime), Quantity: r.Quantity}
			if err := booking.CheckConflicts(booking.PooledFor(eq), req, others); err != nil {
				return err
			}
			r.Status = domain.ReservationStatusApproved
		} else {
			r.Status = domain.ReservationStatusDenied
		}
		decidedBy := actor.UserID
		r.DecidedBy = &decidedBy
		r.DecisionNote = note
		equipmentName = eq.Name
		return nil
	})
	if err != nil {
		return nil, fail(method, err, "reservationID", id)
	}
	s.views.Reservations.Merge(ctx, res.ID, res)

	title := "Reservation Denied"
	if res.Status == domain.ReservationStatusApproved {
		title = "Reservation Approved"
	}
	s.notify(ctx, res.UserID, title, fmt.Sprintf("Your reservation of %s was %s", equipmentName, res.Status), reservationAttrs(res))
	s.emailDecision(ctx, res.UserID, equipmentName, res.Status, note)

	logger.ExitMethod(method, "reservationID", id, "status", res.Status)
	return res, nil
}

func (s *reservationService) CancelReservation(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Reservation, error) {
	const method = "reservationService.CancelReservation"
	logger.EnterMethod(method, "actorID", actor.UserID, "reservationID", id)

	now := s.detector.Now()
	res, err := s.resRepo.Transition(ctx, id, func(r *domain.Reservation, _ *domain.Equipment, _ []domain.Reservation) error {
		if r.UserID != actor.UserID && !actor.IsAdmin() {
			return ErrPermissionDenied
		}
		if !r.Status.IsActive() || !r.StartTime.After(now) {
			return ErrInvalidState
		}
		r.Status = domain.ReservationStatusCancelled
		return nil
	})
	if err != nil {
		return nil, fail(method, err, "reservationID", id)
	}
	s.views.Reservations.Merge(ctx, res.ID, res)

	if res.UserID != actor.UserID {
		s.notify(ctx, res.UserID, "Reservation Cancelled", "Your reservation was cancelled by an administrator", reservationAttrs(res))
	}

	logger.ExitMethod(method, "reservationID", id)
	return res, nil
}

func (s *reservationService) GetReservation(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Reservation, error) {
	const method = "reservationService.GetReservation"
	res, err := s.views.Reservations.Get(ctx, id)
	if err != nil {
		return nil, fail(method, err, "reservationID", id)
	}
	if res.UserID != actor.UserID && !actor.CanApprove() {
		return nil, fail(method, ErrPermissionDenied, "reservationID", id)
	}
	return res, nil
}

// ListReservations scopes plain users to their own reservations.
func (s *reservationService) ListReservations(ctx context.Context, actor domain.Actor, filter domain.ReservationFilter) ([]domain.Reservation, int32, error) {
	const method = "reservationService.ListReservations"
	if !actor.CanApprove() {
		filter.UserID = &actor.UserID
	}
	items, count, err := s.resRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fail(method, err)
	}
	return items, count, nil
}

func (s *reservationService) CompleteElapsed(ctx context.Context, now time.Time) (int, error) {
	const method = "reservationService.CompleteElapsed"
	logger.EnterMethod(method, "now", now)

	done, err := s.resRepo.CompleteElapsed(ctx, now)
	if err != nil {
		return 0, fail(method, err)
	}
	for i := range done {
		s.views.Reservations.Merge(ctx, done[i].ID, &done[i])
	}

	logger.ExitMethod(method, "completed", len(done))
	return len(done), nil
}

// SendReminders emails owners of approved reservations starting within lead
// of now. Runs on a cadence equal to lead so each reservation is reminded once.
func (s *reservationService) SendReminders(ctx context.Context, now time.Time, lead time.Duration) (int, error) {
	const method = "reservationService.SendReminders"
	logger.EnterMethod(method, "now", now, "lead", lead)

	upcoming, err := s.resRepo.ListStartingBetween(ctx, now, now.Add(lead))
	if err != nil {
		return 0, fail(method, err)
	}

	sent := 0
	for _, r := range upcoming {
		eq, err := s.views.Equipment.Get(ctx, r.EquipmentID)
		if err != nil {
			logger.Warn("Skipping reminder, equipment not loadable", "reservationID", r.ID, "error", err)
			continue
		}
		s.notify(ctx, r.UserID, "Upcoming Reservation",
			fmt.Sprintf("Your reservation of %s starts at %s", eq.Name, r.StartTime.Format(time.RFC1123)), reservationAttrs(&r))
		u := s.user(ctx, r.UserID)
		if u == nil {
			continue
		}
		if err := s.emailSvc.SendReservationReminder(ctx, u.Email, u.Name, eq.Name, r.StartTime); err != nil {
			logger.Warn("Failed to send reminder email", "reservationID", r.ID, "error", err)
			continue
		}
		sent++
	}

	logger.ExitMethod(method, "sent", sent)
	return sent, nil
}
