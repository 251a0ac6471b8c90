package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/logger"
	"labreserve-backend/internal/repository"
)

const equipmentColumns = `id, name, description, category, lab_id, quantity, units_under_maintenance, status, version, created_at, updated_at`

type equipmentRepository struct {
	db *sql.DB
}

func NewEquipmentRepository(db *sql.DB) repository.EquipmentRepository {
	return &equipmentRepository{db: db}
}

func scanEquipment(row rowScanner) (*domain.Equipment, error) {
	eq := &domain.Equipment{}
	var labID uuid.NullUUID
	err := row.Scan(&eq.ID, &eq.Name, &eq.Description, &eq.Category, &labID, &eq.Quantity,
		&eq.UnitsUnderMaintenance, &eq.Status, &eq.Version, &eq.CreatedAt, &eq.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	eq.LabID = uuidPtr(labID)
	return eq, nil
}

func (r *equipmentRepository) Create(ctx context.Context, eq *domain.Equipment) error {
	if eq.ID == uuid.Nil {
		eq.ID = uuid.New()
	}
	now := time.Now().UTC()
	eq.CreatedAt, eq.UpdatedAt = now, now

	query := `INSERT INTO equipment (` + equipmentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	logger.DatabaseCall("INSERT", "equipment", "equipmentID", eq.ID)
	_, err := r.db.ExecContext(ctx, query, eq.ID, eq.Name, eq.Description, eq.Category, nullUUID(eq.LabID),
		eq.Quantity, eq.UnitsUnderMaintenance, eq.Status, eq.Version, eq.CreatedAt, eq.UpdatedAt)
	logger.DatabaseResult("INSERT", 1, err, "equipmentID", eq.ID)
	return translate(err)
}

func (r *equipmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE id = $1`
	return scanEquipment(r.db.QueryRowContext(ctx, query, id))
}

func (r *equipmentRepository) List(ctx context.Context, filter domain.EquipmentFilter) ([]domain.Equipment, error) {
	b := psql.Select(equipmentColumns).From("equipment").OrderBy("name")
	if filter.LabID != nil {
		b = b.Where(sq.Eq{"lab_id": *filter.LabID})
	}
	if filter.Category != "" {
		b = b.Where(sq.Eq{"category": filter.Category})
	}
	if filter.Status != "" {
		b = b.Where(sq.Eq{"status": filter.Status})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Equipment
	for rows.Next() {
		eq, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *eq)
	}
	return items, rows.Err()
}

// Update writes catalog fields and the manual status. Quantity may not drop
// below the units currently under maintenance; the table check enforces it.
func (r *equipmentRepository) Update(ctx context.Context, eq *domain.Equipment) error {
	eq.UpdatedAt = time.Now().UTC()
	query := `UPDATE equipment SET name=$1, description=$2, category=$3, lab_id=$4, quantity=$5, status=$6,
	          version=version+1, updated_at=$7 WHERE id=$8 AND version=$9 RETURNING version`
	logger.DatabaseCall("UPDATE", "equipment", "equipmentID", eq.ID, "expectedVersion", eq.Version)
	err := r.db.QueryRowContext(ctx, query, eq.Name, eq.Description, eq.Category, nullUUID(eq.LabID),
		eq.Quantity, eq.Status, eq.UpdatedAt, eq.ID, eq.Version).Scan(&eq.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrConcurrentUpdate
	}
	logger.DatabaseResult("UPDATE", 1, err, "equipmentID", eq.ID)
	return translate(err)
}

func (r *equipmentRepository) UpdateCounters(ctx context.Context, upd domain.CounterUpdate) (int64, error) {
	return updateCounters(ctx, r.db, upd)
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// updateCounters is shared with the maintenance repository, which runs it
// inside the same transaction as the schedule write.
func updateCounters(ctx context.Context, q execQuerier, upd domain.CounterUpdate) (int64, error) {
	query := `UPDATE equipment SET units_under_maintenance=$1, status=$2, version=version+1, updated_at=$3
	          WHERE id=$4 AND version=$5 RETURNING version`
	logger.DatabaseCall("UPDATE", "equipment counters", "equipmentID", upd.EquipmentID, "expectedVersion", upd.ExpectedVersion)

	var version int64
	err := q.QueryRowContext(ctx, query, upd.UnitsUnderMaintenance, upd.Status, time.Now().UTC(),
		upd.EquipmentID, upd.ExpectedVersion).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult("UPDATE", 0, nil, "equipmentID", upd.EquipmentID, "stale", true)
		return 0, domain.ErrConcurrentUpdate
	}
	logger.DatabaseResult("UPDATE", 1, err, "equipmentID", upd.EquipmentID)
	if err != nil {
		return 0, translate(err)
	}
	return version, nil
}

func (r *equipmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM equipment WHERE id = $1`, id))
}
