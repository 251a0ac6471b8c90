package jobs

import (
	"context"

	"labreserve-backend/internal/logger"
)

// CompleteReservations moves approved equipment and lab reservations whose
// end time has passed to completed.
func (jr *JobRunner) CompleteReservations() {
	jr.runWithRecovery("CompleteReservations", func(ctx context.Context) {
		now := jr.now()

		n, err := jr.services.Reservation.CompleteElapsed(ctx, now)
		if err != nil {
			logger.Error("Failed to complete equipment reservations", "error", err)
		} else {
			logger.Info("Completed equipment reservations", "count", n)
		}

		n, err = jr.services.LabReservation.CompleteElapsed(ctx, now)
		if err != nil {
			logger.Error("Failed to complete lab reservations", "error", err)
			return
		}
		logger.Info("Completed lab reservations", "count", n)
	})
}

// SendReminders notifies owners of approved reservations starting within
// the configured lead time. The job runs once per lead window.
func (jr *JobRunner) SendReminders() {
	jr.runWithRecovery("SendReminders", func(ctx context.Context) {
		now := jr.now()
		lead := jr.config.ReminderLead()

		n, err := jr.services.Reservation.SendReminders(ctx, now, lead)
		if err != nil {
			logger.Error("Failed to send equipment reservation reminders", "error", err)
		} else {
			logger.Info("Sent equipment reservation reminders", "count", n)
		}

		n, err = jr.services.LabReservation.SendReminders(ctx, now, lead)
		if err != nil {
			logger.Error("Failed to send lab reservation reminders", "error", err)
			return
		}
		logger.Info("Sent lab reservation reminders", "count", n)
	})
}
