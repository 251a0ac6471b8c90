package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	httpapi "labreserve-backend/internal/api/http"
	"labreserve-backend/internal/booking"
	"labreserve-backend/internal/cache"
	"labreserve-backend/internal/config"
	"labreserve-backend/internal/logger"
	"labreserve-backend/internal/realtime"
	"labreserve-backend/internal/repository/postgres"
	"labreserve-backend/internal/security"
	"labreserve-backend/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Lab Reservation Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http_address", cfg.GetServerAddress(), "grpc_address", cfg.GetGRPCAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString(), cfg.Database.MaxOpenConns)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize view cache
	var cacheStore cache.Store
	switch cfg.Cache.Backend {
	case "redis":
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()
		cacheStore = cache.NewRedisStore(client, "labreserve:")
		logger.Info("Using redis view cache", "addr", cfg.Redis.Addr)
	default:
		cacheStore = cache.NewMemoryStore()
		logger.Info("Using in-memory view cache")
	}
	views := service.NewViews(
		cacheStore,
		cfg.CacheTTL(),
		store.EquipmentRepository,
		store.LabRepository,
		store.ReservationRepository,
		store.LabReservationRepository,
		store.MaintenanceRepository,
	)

	// Initialize Email Service
	var mailer service.Mailer
	if cfg.SendGrid.APIKey != "" {
		mailer = service.NewSendGridMailer(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	} else {
		logger.Warn("SendGrid API key not set, emails will only be logged")
		mailer = service.NewLogMailer()
	}
	emailSvc := service.NewEmailService(mailer)

	// Initialize Services
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL())
	detector := booking.NewDetector(time.Now)

	authSvc := service.NewAuthService(store.UserRepository, tokenManager)
	userSvc := service.NewUserService(store.UserRepository)
	adminSvc := service.NewAdminService(store.UserRepository)
	equipmentSvc := service.NewEquipmentService(store.EquipmentRepository, store.ReservationRepository, views)
	labSvc := service.NewLabService(store.LabRepository, store.LabReservationRepository, views)
	reservationSvc := service.NewReservationService(
		store.ReservationRepository,
		store.EquipmentRepository,
		store.AutoApprovalRepository,
		store.UserRepository,
		store.NotificationRepository,
		emailSvc,
		detector,
		views,
	)
	labReservationSvc := service.NewLabReservationService(
		store.LabReservationRepository,
		store.AutoApprovalRepository,
		store.UserRepository,
		store.NotificationRepository,
		emailSvc,
		detector,
		views,
	)
	maintenanceSvc := service.NewMaintenanceService(
		store.MaintenanceRepository,
		store.EquipmentRepository,
		store.ReservationRepository,
		store.UserRepository,
		store.NotificationRepository,
		emailSvc,
		views,
	)
	autoApprovalSvc := service.NewAutoApprovalService(store.AutoApprovalRepository, store.LabRepository, store.EquipmentRepository, views.Settings)
	noteSvc := service.NewNotificationService(store.NotificationRepository)
	messageSvc := service.NewMessageService(store.MessageRepository, store.UserRepository, store.NotificationRepository)

	// Realtime: database notifications fan out to websocket clients and
	// keep the views current.
	hub := realtime.NewHub(cfg.Realtime.SubscriberBuffer)
	listener := realtime.NewPGListener(cfg.GetDatabaseConnectionString(), cfg.Realtime.Channel, hub)
	merger := realtime.NewCacheMerger(hub, views.Tables())
	listener.OnReconnect(merger.Flush)

	router := httpapi.NewRouter(httpapi.Handlers{
		Auth:         httpapi.NewAuthHandler(authSvc, userSvc),
		Catalog:      httpapi.NewCatalogHandler(equipmentSvc, labSvc),
		Reservation:  httpapi.NewReservationHandler(reservationSvc, labReservationSvc),
		Maintenance:  httpapi.NewMaintenanceHandler(maintenanceSvc),
		AutoApproval: httpapi.NewAutoApprovalHandler(autoApprovalSvc),
		Inbox:        httpapi.NewInboxHandler(noteSvc, messageSvc),
		Admin:        httpapi.NewAdminHandler(adminSvc),
		Realtime:     httpapi.NewRealtimeHandler(hub),
	}, tokenManager, db)

	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	// gRPC carries the standard health service for orchestrators
	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	// Register reflection service for grpcurl
	reflection.Register(grpcServer)

	grpcLis, err := net.Listen("tcp", cfg.GetGRPCAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
		log.Fatalf("Failed to listen: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error { return listener.Run(gctx) })
	g.Go(func() error { return merger.Run(gctx) })
	g.Go(func() error {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("gRPC health server listening", "address", cfg.GetGRPCAddress())
		healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		return grpcServer.Serve(grpcLis)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		healthSrv.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown failed", "error", err)
		}
		grpcServer.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped. Goodbye!")
}
