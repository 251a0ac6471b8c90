package jobs

import (
	"context"

	"labreserve-backend/internal/logger"
)

// StartMaintenance flips scheduled maintenance whose start has arrived to
// in_progress.
func (jr *JobRunner) StartMaintenance() {
	jr.runWithRecovery("StartMaintenance", func(ctx context.Context) {
		n, err := jr.services.Maintenance.StartDue(ctx, jr.now())
		if err != nil {
			logger.Error("Failed to start due maintenance", "error", err)
			return
		}
		logger.Info("Started due maintenance", "count", n)
	})
}
