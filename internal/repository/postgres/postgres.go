package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"labreserve-backend/internal/logger"
	"labreserve-backend/internal/repository"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// psql builds queries with $n placeholders for lib/pq.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.EquipmentRepository
	repository.LabRepository
	repository.ReservationRepository
	repository.LabReservationRepository
	repository.MaintenanceRepository
	repository.AutoApprovalRepository
	repository.NotificationRepository
	repository.MessageRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                       db,
		UserRepository:           NewUserRepository(db),
		EquipmentRepository:      NewEquipmentRepository(db),
		LabRepository:            NewLabRepository(db),
		ReservationRepository:    NewReservationRepository(db),
		LabReservationRepository: NewLabReservationRepository(db),
		MaintenanceRepository:    NewMaintenanceRepository(db),
		AutoApprovalRepository:   NewAutoApprovalRepository(db),
		NotificationRepository:   NewNotificationRepository(db),
		MessageRepository:        NewMessageRepository(db),
	}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string, maxOpenConns int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns / 2)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded goose migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())

	logger.Info("Applying database migrations")
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func (s *Store) DB() *sql.DB {
	return s.db
}
