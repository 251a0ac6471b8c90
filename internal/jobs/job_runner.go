package jobs

import (
	"context"
	"time"

	"labreserve-backend/internal/config"
	"labreserve-backend/internal/logger"
	"labreserve-backend/internal/service"
)

// jobTimeout bounds a single run so a stuck query cannot pile up runs.
const jobTimeout = 5 * time.Minute

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
	now      func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Reservation    service.ReservationService
	LabReservation service.LabReservationService
	Maintenance    service.MaintenanceService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config, now func() time.Time) *JobRunner {
	if now == nil {
		now = time.Now
	}
	return &JobRunner{
		services: services,
		config:   cfg,
		now:      now,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	logger.Info("Starting job", "job", jobName)
	jobFunc(ctx)
	logger.Info("Job completed", "job", jobName)
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.CompleteReservations()
	jr.StartMaintenance()
	jr.SendReminders()
}
