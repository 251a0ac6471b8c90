package postgres

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/logger"
	"labreserve-backend/internal/repository"
)

const labReservationColumns = `id, user_id, lab_id, attendees, start_time, end_time, status, purpose, decided_by, decision_note, created_at, updated_at`

const overlappingLabReservationsQuery = `SELECT ` + labReservationColumns + ` FROM lab_reservations
	WHERE lab_id = $1 AND status IN ('pending', 'approved') AND start_time < $3 AND end_time > $2
	ORDER BY start_time`

type labReservationRepository struct {
	db *sql.DB
}

func NewLabReservationRepository(db *sql.DB) repository.LabReservationRepository {
	return &labReservationRepository{db: db}
}

func scanLabReservation(row rowScanner) (*domain.LabReservation, error) {
	res := &domain.LabReservation{}
	var decidedBy uuid.NullUUID
	err := row.Scan(&res.ID, &res.UserID, &res.LabID, &res.Attendees, &res.StartTime, &res.EndTime,
		&res.Status, &res.Purpose, &decidedBy, &res.DecisionNote, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	res.DecidedBy = uuidPtr(decidedBy)
	return res, nil
}

func queryLabReservations(ctx context.Context, q execQuerier, query string, args ...any) ([]domain.LabReservation, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LabReservation
	for rows.Next() {
		res, err := scanLabReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func lockLab(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Lab, error) {
	return scanLab(tx.QueryRowContext(ctx, `SELECT `+labColumns+` FROM labs WHERE id = $1 FOR UPDATE`, id))
}

func (r *labReservationRepository) CreateChecked(ctx context.Context, res *domain.LabReservation, check repository.LabCheck) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		logger.DatabaseCall("SELECT FOR UPDATE", "labs", "labID", res.LabID)
		lab, err := lockLab(ctx, tx, res.LabID)
		if err != nil {
			return err
		}

		overlapping, err := queryLabReservations(ctx, tx, overlappingLabReservationsQuery, res.LabID, res.StartTime, res.EndTime)
		if err != nil {
			return err
		}

		status, err := check(lab, overlapping)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		res.Status = status
		res.CreatedAt, res.UpdatedAt = now, now

		query := `INSERT INTO lab_reservations (` + labReservationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
		_, err = tx.ExecContext(ctx, query, res.ID, res.UserID, res.LabID, res.Attendees, res.StartTime, res.EndTime,
			res.Status, res.Purpose, nullUUID(res.DecidedBy), res.DecisionNote, res.CreatedAt, res.UpdatedAt)
		logger.DatabaseResult("INSERT", 1, err, "labReservationID", res.ID, "status", res.Status)
		return translate(err)
	})
}

func (r *labReservationRepository) Transition(ctx context.Context, id uuid.UUID, decide repository.LabReservationDecision) (*domain.LabReservation, error) {
	var out *domain.LabReservation
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := scanLabReservation(tx.QueryRowContext(ctx, `SELECT `+labReservationColumns+` FROM lab_reservations WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		lab, err := lockLab(ctx, tx, res.LabID)
		if err != nil {
			return err
		}
		overlapping, err := queryLabReservations(ctx, tx, overlappingLabReservationsQuery, res.LabID, res.StartTime, res.EndTime)
		if err != nil {
			return err
		}

		if err := decide(res, lab, overlapping); err != nil {
			return err
		}

		res.UpdatedAt = time.Now().UTC()
		query := `UPDATE lab_reservations SET status=$1, decided_by=$2, decision_note=$3, updated_at=$4 WHERE id=$5`
		if _, err := tx.ExecContext(ctx, query, res.Status, nullUUID(res.DecidedBy), res.DecisionNote, res.UpdatedAt, res.ID); err != nil {
			return translate(err)
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *labReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LabReservation, error) {
	return scanLabReservation(r.db.QueryRowContext(ctx, `SELECT `+labReservationColumns+` FROM lab_reservations WHERE id = $1`, id))
}

func (r *labReservationRepository) List(ctx context.Context, filter domain.ReservationFilter) ([]domain.LabReservation, int32, error) {
	where := sq.And{}
	if filter.UserID != nil {
		where = append(where, sq.Eq{"user_id": *filter.UserID})
	}
	if filter.LabID != nil {
		where = append(where, sq.Eq{"lab_id": *filter.LabID})
	}
	if filter.Status != "" {
		where = append(where, sq.Eq{"status": filter.Status})
	}

	countQuery, countArgs, err := psql.Select("count(*)").From("lab_reservations").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var count int32
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&count); err != nil {
		return nil, 0, err
	}

	limit, offset := offsetFor(filter.Page, filter.PageSize)
	query, args, err := psql.Select(labReservationColumns).From("lab_reservations").Where(where).
		OrderBy("start_time DESC").Limit(limit).Offset(offset).ToSql()
	if err != nil {
		return nil, 0, err
	}
	items, err := queryLabReservations(ctx, r.db, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

func (r *labReservationRepository) ListOverlapping(ctx context.Context, labID uuid.UUID, start, end time.Time) ([]domain.LabReservation, error) {
	return queryLabReservations(ctx, r.db, overlappingLabReservationsQuery, labID, start, end)
}

func (r *labReservationRepository) CompleteElapsed(ctx context.Context, now time.Time) ([]domain.LabReservation, error) {
	query := `UPDATE lab_reservations SET status = 'completed', updated_at = $1
	          WHERE status = 'approved' AND end_time <= $1 RETURNING ` + labReservationColumns
	return queryLabReservations(ctx, r.db, query, now)
}

func (r *labReservationRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.LabReservation, error) {
	query := `SELECT ` + labReservationColumns + ` FROM lab_reservations
	          WHERE status = 'approved' AND start_time >= $1 AND start_time < $2 ORDER BY start_time`
	return queryLabReservations(ctx, r.db, query, from, to)
}
