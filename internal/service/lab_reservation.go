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

type labReservationService struct {
	labResRepo repository.LabReservationRepository
	settings   booking.SettingLookup
	detector   *booking.Detector
	views      *Views
	notifier
}

func NewLabReservationService(
	labResRepo repository.LabReservationRepository,
	settings booking.SettingLookup,
	userRepo repository.UserRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
	detector *booking.Detector,
	views *Views,
) LabReservationService {
	return &labReservationService{
		labResRepo: labResRepo,
		settings:   settings,
		detector:   detector,
		views:      views,
		notifier:   notifier{noteRepo: noteRepo, userRepo: userRepo, emailSvc: emailSvc},
	}
}

func labReservationAttrs(r *domain.LabReservation) map[string]string {
	return map[string]string{
		"type":               "LAB_RESERVATION",
		"lab_reservation_id": r.ID.String(),
		"lab_id":             r.LabID.String(),
		"status":             string(r.Status),
	}
}

// SubmitLabReservation checks attendees against the lab's capacity before any
// reservation is read; the cached lab row is enough for that, and for
// resolving auto-approval. The exclusive check then runs against the locked
// lab inside the insert transaction.
func (s *labReservationService) SubmitLabReservation(ctx context.Context, actor domain.Actor, req LabReservationRequest) (*domain.LabReservation, error) {
	const method = "labReservationService.SubmitLabReservation"
	logger.EnterMethod(method, "userID", actor.UserID, "labID", req.LabID, "attendees", req.Attendees)

	window := booking.NewWindow(req.StartTime, req.EndTime)
	cached, err := s.views.Labs.Get(ctx, req.LabID)
	if err != nil {
		return nil, fail(method, err, "labID", req.LabID)
	}
	if err := s.detector.ValidateLabRequest(cached, window, req.Attendees); err != nil {
		return nil, fail(method, err, "labID", req.LabID)
	}

	res := &domain.LabReservation{
		UserID:    actor.UserID,
		LabID:     req.LabID,
		Attendees: req.Attendees,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Purpose:   req.Purpose,
	}

	resolution, err := booking.ResolveAutoApproval(ctx, s.settings, booking.LabChain(cached))
	if err != nil {
		return nil, fail(method, err, "labID", req.LabID)
	}

	var lab *domain.Lab
	err = s.labResRepo.CreateChecked(ctx, res, func(l *domain.Lab, overlapping []domain.LabReservation) (domain.ReservationStatus, error) {
		if err := s.detector.CheckLab(l, window, req.Attendees, booking.HoldingsFromLabReservations(overlapping)); err != nil {
			return "", err
		}
		lab = l
		return resolution.InitialStatus(), nil
	})
	if err != nil {
		return nil, fail(method, err, "labID", req.LabID)
	}
	s.views.LabReservations.Merge(ctx, res.ID, res)

	attrs := labReservationAttrs(res)
	if res.Status == domain.ReservationStatusApproved {
		attrs["auto_approved_by"] = string(resolution.Scope)
		s.notify(ctx, res.UserID, "Lab Reservation Approved",
			fmt.Sprintf("Your booking of %s was approved automatically", lab.Name), attrs)
		s.emailDecision(ctx, res.UserID, lab.Name, res.Status, "")
	} else {
		s.notify(ctx, res.UserID, "Lab Reservation Submitted",
			fmt.Sprintf("Your booking of %s is awaiting approval", lab.Name), attrs)
		s.notifyManagers(ctx, "New Lab Reservation Request",
			fmt.Sprintf("%s requested for %d attendees at %s", lab.Name, res.Attendees, res.StartTime.Format(time.RFC1123)), attrs)
	}

	logger.ExitMethod(method, "labReservationID", res.ID, "status", res.Status)
	return res, nil
}

func (s *labReservationService) DecideLabReservation(ctx context.Context, actor domain.Actor, id uuid.UUID, approve bool, note string) (*domain.LabReservation, error) {
	const method = "labReservationService.DecideLabReservation"
	logger.EnterMethod(method, "actorID", actor.UserID, "labReservationID", id, "approve", approve)

	if err := requireManager(actor); err != nil {
		return nil, fail(method, err, "labReservationID", id)
	}

	var labName string
	res, err := s.labResRepo.Transition(ctx, id, func(r *domain.LabReservation, lab *domain.Lab, overlapping []domain.LabReservation) error {
		if r.Status != domain.ReservationStatusPending {
			return ErrInvalidState
		}
		if approve {
			others := booking.Without(booking.HoldingsFromLabReservations(overlapping), r.ID)
			req := booking.Request{Window: booking.NewWindow(r.StartTime, r.EndTime), Quantity: 1}
			if err := booking.CheckConflicts(booking.Exclusive{}, req, others); err != nil {
				return err
			}
			r.Status = domain.ReservationStatusApproved
		} else {
			r.Status = domain.ReservationStatusDenied
		}
		decidedBy := actor.UserID
		r.DecidedBy = &decidedBy
		r.DecisionNote = note
		labName = lab.Name
		return nil
	})
	if err != nil {
		return nil, fail(method, err, "labReservationID", id)
	}
	s.views.LabReservations.Merge(ctx, res.ID, res)

	title := "Lab Reservation Denied"
	if res.Status == domain.ReservationStatusApproved {
		title = "Lab Reservation Approved"
	}
	s.notify(ctx, res.UserID, title, fmt.Sprintf("Your booking of %s was %s", labName, res.Status), labReservationAttrs(res))
	s.emailDecision(ctx, res.UserID, labName, res.Status, note)

	logger.ExitMethod(method, "labReservationID", id, "status", res.Status)
	return res, nil
}

func (s *labReservationService) CancelLabReservation(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.LabReservation, error) {
	const method = "labReservationService.CancelLabReservation"
	logger.EnterMethod(method, "actorID", actor.UserID, "labReservationID", id)

	now := s.detector.Now()
	res, err := s.labResRepo.Transition(ctx, id, func(r *domain.LabReservation, _ *domain.Lab, _ []domain.LabReservation) error {
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
		return nil, fail(method, err, "labReservationID", id)
	}
	s.views.LabReservations.Merge(ctx, res.ID, res)

	if res.UserID != actor.UserID {
		s.notify(ctx, res.UserID, "Lab Reservation Cancelled", "Your lab booking was cancelled by an administrator", labReservationAttrs(res))
	}

	logger.ExitMethod(method, "labReservationID", id)
	return res, nil
}

func (s *labReservationService) GetLabReservation(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.LabReservation, error) {
	const method = "labReservationService.GetLabReservation"
	res, err := s.views.LabReservations.Get(ctx, id)
	if err != nil {
		return nil, fail(method, err, "labReservationID", id)
	}
	if res.UserID != actor.UserID && !actor.CanApprove() {
		return nil, fail(method, ErrPermissionDenied, "labReservationID", id)
	}
	return res, nil
}

func (s *labReservationService) ListLabReservations(ctx context.Context, actor domain.Actor, filter domain.ReservationFilter) ([]domain.LabReservation, int32, error) {
	const method = "labReservationService.ListLabReservations"
	if !actor.CanApprove() {
		filter.UserID = &actor.UserID
	}
	items, count, err := s.labResRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fail(method, err)
	}
	return items, count, nil
}

func (s *labReservationService) CompleteElapsed(ctx context.Context, now time.Time) (int, error) {
	const method = "labReservationService.CompleteElapsed"
	logger.EnterMethod(method, "now", now)

	done, err := s.labResRepo.CompleteElapsed(ctx, now)
	if err != nil {
		return 0, fail(method, err)
	}
	for i := range done {
		s.views.LabReservations.Merge(ctx, done[i].ID, &done[i])
	}

	logger.ExitMethod(method, "completed", len(done))
	return len(done), nil
}

func (s *labReservationService) SendReminders(ctx context.Context, now time.Time, lead time.Duration) (int, error) {
	const method = "labReservationService.SendReminders"
	logger.EnterMethod(method, "now", now, "lead", lead)

	upcoming, err := s.labResRepo.ListStartingBetween(ctx, now, now.Add(lead))
	if err != nil {
		return 0, fail(method, err)
	}

	sent := 0
	for _, r := range upcoming {
		lab, err := s.views.Labs.Get(ctx, r.LabID)
		if err != nil {
			logger.Warn("Skipping reminder, lab not loadable", "labReservationID", r.ID, "error", err)
			continue
		}
		s.notify(ctx, r.UserID, "Upcoming Lab Booking",
			fmt.Sprintf("Your booking of %s starts at %s", lab.Name, r.StartTime.Format(time.RFC1123)), labReservationAttrs(&r))
		u := s.user(ctx, r.UserID)
		if u == nil {
			continue
		}
		if err := s.emailSvc.SendReservationReminder(ctx, u.Email, u.Name, lab.Name, r.StartTime); err != nil {
			logger.Warn("Failed to send reminder email", "labReservationID", r.ID, "error", err)
			continue
		}
		sent++
	}

	logger.ExitMethod(method, "sent", sent)
	return sent, nil
}
