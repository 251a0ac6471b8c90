package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"labreserve-backend/internal/booking"
	"labreserve-backend/internal/cache"
	"labreserve-backend/internal/config"
	"labreserve-backend/internal/jobs"
	"labreserve-backend/internal/logger"
	"labreserve-backend/internal/repository/postgres"
	"labreserve-backend/internal/scheduler"
	"labreserve-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'complete-reservations', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Lab Reservation Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := postgres.Open(context.Background(), cfg.GetDatabaseConnectionString(), cfg.Database.MaxOpenConns)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Jobs only write; a private in-memory view is enough to satisfy the
	// services, the API process learns about changes through notifications.
	views := service.NewViews(
		cache.NewMemoryStore(),
		cfg.CacheTTL(),
		store.EquipmentRepository,
		store.LabRepository,
		store.ReservationRepository,
		store.LabReservationRepository,
		store.MaintenanceRepository,
	)

	// Initialize Services
	var mailer service.Mailer
	if cfg.SendGrid.APIKey != "" {
		mailer = service.NewSendGridMailer(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	} else {
		mailer = service.NewLogMailer()
	}
	emailSvc := service.NewEmailService(mailer)
	detector := booking.NewDetector(time.Now)

	jobServices := &jobs.Services{
		Reservation: service.NewReservationService(
			store.ReservationRepository,
			store.EquipmentRepository,
			store.AutoApprovalRepository,
			store.UserRepository,
			store.NotificationRepository,
			emailSvc,
			detector,
			views,
		),
		LabReservation: service.NewLabReservationService(
			store.LabReservationRepository,
			store.AutoApprovalRepository,
			store.UserRepository,
			store.NotificationRepository,
			emailSvc,
			detector,
			views,
		),
		Maintenance: service.NewMaintenanceService(
			store.MaintenanceRepository,
			store.EquipmentRepository,
			store.ReservationRepository,
			store.UserRepository,
			store.NotificationRepository,
			emailSvc,
			views,
		),
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(jobServices, cfg, time.Now)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to register cron jobs: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "complete-reservations":
		jobRunner.CompleteReservations()
	case "start-maintenance":
		jobRunner.StartMaintenance()
	case "send-reminders":
		jobRunner.SendReminders()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - complete-reservations\n")
		fmt.Printf("  - start-maintenance\n")
		fmt.Printf("  - send-reminders\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
