package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/logger"
	"labreserve-backend/internal/repository"
)

const maintenanceColumns = `id, equipment_id, scheduled_date, estimated_end, units, status, description, technician, created_by, created_at, updated_at`

type maintenanceRepository struct {
	db *sql.DB
}

func NewMaintenanceRepository(db *sql.DB) repository.MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

func scanMaintenance(row rowScanner) (*domain.MaintenanceSchedule, error) {
	s := &domain.MaintenanceSchedule{}
	var estimatedEnd sql.NullTime
	err := row.Scan(&s.ID, &s.EquipmentID, &s.ScheduledDate, &estimatedEnd, &s.Units, &s.Status,
		&s.Description, &s.Technician, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	if estimatedEnd.Valid {
		end := estimatedEnd.Time
		s.EstimatedEnd = &end
	}
	return s, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func (r *maintenanceRepository) queryMany(ctx context.Context, query string, args ...any) ([]domain.MaintenanceSchedule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MaintenanceSchedule
	for rows.Next() {
		s, err := scanMaintenance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// applyCounters writes the counter update when there is one. The schedule
// write is rolled back with it when the version check fails.
func applyCounters(ctx context.Context, tx *sql.Tx, counters *domain.CounterUpdate) error {
	if counters == nil {
		return nil
	}
	_, err := updateCounters(ctx, tx, *counters)
	return err
}

func (r *maintenanceRepository) Create(ctx context.Context, s *domain.MaintenanceSchedule, counters *domain.CounterUpdate) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `INSERT INTO maintenance_schedules (` + maintenanceColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
		logger.DatabaseCall("INSERT", "maintenance_schedules", "scheduleID", s.ID)
		_, err := tx.ExecContext(ctx, query, s.ID, s.EquipmentID, s.ScheduledDate, nullTime(s.EstimatedEnd), s.Units, s.Status,
			s.Description, s.Technician, s.CreatedBy, s.CreatedAt, s.UpdatedAt)
		logger.DatabaseResult("INSERT", 1, err, "scheduleID", s.ID)
		if err != nil {
			return translate(err)
		}
		return applyCounters(ctx, tx, counters)
	})
}

func (r *maintenanceRepository) Update(ctx context.Context, s *domain.MaintenanceSchedule, counters *domain.CounterUpdate) error {
	s.UpdatedAt = time.Now().UTC()

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `UPDATE maintenance_schedules SET scheduled_date=$1, estimated_end=$2, units=$3, status=$4,
		          description=$5, technician=$6, updated_at=$7 WHERE id=$8`
		err := expectOne(tx.ExecContext(ctx, query, s.ScheduledDate, nullTime(s.EstimatedEnd), s.Units, s.Status,
			s.Description, s.Technician, s.UpdatedAt, s.ID))
		if err != nil {
			return err
		}
		return applyCounters(ctx, tx, counters)
	})
}

func (r *maintenanceRepository) Delete(ctx context.Context, id uuid.UUID, counters *domain.CounterUpdate) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := expectOne(tx.ExecContext(ctx, `DELETE FROM maintenance_schedules WHERE id = $1`, id)); err != nil {
			return err
		}
		return applyCounters(ctx, tx, counters)
	})
}

func (r *maintenanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceSchedule, error) {
	return scanMaintenance(r.db.QueryRowContext(ctx, `SELECT `+maintenanceColumns+` FROM maintenance_schedules WHERE id = $1`, id))
}

func (r *maintenanceRepository) ListByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]domain.MaintenanceSchedule, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_schedules WHERE equipment_id = $1 ORDER BY scheduled_date DESC`
	return r.queryMany(ctx, query, equipmentID)
}

// ListDue returns scheduled entries whose date has arrived.
func (r *maintenanceRepository) ListDue(ctx context.Context, now time.Time) ([]domain.MaintenanceSchedule, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_schedules
	          WHERE status = 'scheduled' AND scheduled_date <= $1 ORDER BY scheduled_date`
	return r.queryMany(ctx, query, now)
}
