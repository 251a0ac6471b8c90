package postgres

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/repository"
)

const labColumns = `id, name, location, description, capacity, status, manager_id, created_at, updated_at`

type labRepository struct {
	db *sql.DB
}

func NewLabRepository(db *sql.DB) repository.LabRepository {
	return &labRepository{db: db}
}

func scanLab(row rowScanner) (*domain.Lab, error) {
	lab := &domain.Lab{}
	var managerID uuid.NullUUID
	err := row.Scan(&lab.ID, &lab.Name, &lab.Location, &lab.Description, &lab.Capacity, &lab.Status,
		&managerID, &lab.CreatedAt, &lab.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	lab.ManagerID = uuidPtr(managerID)
	return lab, nil
}

func (r *labRepository) Create(ctx context.Context, lab *domain.Lab) error {
	if lab.ID == uuid.Nil {
		lab.ID = uuid.New()
	}
	now := time.Now().UTC()
	lab.CreatedAt, lab.UpdatedAt = now, now

	query := `INSERT INTO labs (` + labColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query, lab.ID, lab.Name, lab.Location, lab.Description, lab.Capacity,
		lab.Status, nullUUID(lab.ManagerID), lab.CreatedAt, lab.UpdatedAt)
	return translate(err)
}

func (r *labRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lab, error) {
	query := `SELECT ` + labColumns + ` FROM labs WHERE id = $1`
	return scanLab(r.db.QueryRowContext(ctx, query, id))
}

func (r *labRepository) List(ctx context.Context, status domain.LabStatus) ([]domain.Lab, error) {
	b := psql.Select(labColumns).From("labs").OrderBy("name")
	if status != "" {
		b = b.Where(sq.Eq{"status": status})
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

	var labs []domain.Lab
	for rows.Next() {
		lab, err := scanLab(rows)
		if err != nil {
			return nil, err
		}
		labs = append(labs, *lab)
	}
	return labs, rows.Err()
}

func (r *labRepository) Update(ctx context.Context, lab *domain.Lab) error {
	lab.UpdatedAt = time.Now().UTC()
	query := `UPDATE labs SET name=$1, location=$2, description=$3, capacity=$4, status=$5, manager_id=$6, updated_at=$7 WHERE id=$8`
	return expectOne(r.db.ExecContext(ctx, query, lab.Name, lab.Location, lab.Description, lab.Capacity,
		lab.Status, nullUUID(lab.ManagerID), lab.UpdatedAt, lab.ID))
}

func (r *labRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM labs WHERE id = $1`, id))
}
