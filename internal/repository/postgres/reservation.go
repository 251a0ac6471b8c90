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

const reservationColumns = `id, user_id, equipment_id, quantity, start_time, end_time, status, purpose, decided_by, decision_note, created_at, updated_at`

// Half-open overlap: existing.start < new.end AND new.start < existing.end.
const overlappingReservationsQuery = `SELECT ` + reservationColumns + ` FROM reservations
	WHERE equipment_id = $1 AND status IN ('pending', 'approved') AND start_time < $3 AND end_time > $2
	ORDER BY start_time`

type reservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	res := &domain.Reservation{}
	var decidedBy uuid.NullUUID
	err := row.Scan(&res.ID, &res.UserID, &res.EquipmentID, &res.Quantity, &res.StartTime, &res.EndTime,
		&res.Status, &res.Purpose, &decidedBy, &res.DecisionNote, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	res.DecidedBy = uuidPtr(decidedBy)
	return res, nil
}

func queryReservations(ctx context.Context, q execQuerier, query string, args ...any) ([]domain.Reservation, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func lockEquipment(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE id = $1 FOR UPDATE`
	return scanEquipment(tx.QueryRowContext(ctx, query, id))
}

func (r *reservationRepository) CreateChecked(ctx context.Context, res *domain.Reservation, check repository.EquipmentCheck) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		logger.DatabaseCall("SELECT FOR UPDATE", "equipment", "equipmentID", res.EquipmentID)
		eq, err := lockEquipment(ctx, tx, res.EquipmentID)
		if err != nil {
			return err
		}

		overlapping, err := queryReservations(ctx, tx, overlappingReservationsQuery, res.EquipmentID, res.StartTime, res.EndTime)
		if err != nil {
			return err
		}

		status, err := check(eq, overlapping)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		res.Status = status
		res.CreatedAt, res.UpdatedAt = now, now

		query := `INSERT INTO reservations (` + reservationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
		_, err = tx.ExecContext(ctx, query, res.ID, res.UserID, res.EquipmentID, res.Quantity, res.StartTime, res.EndTime,
			res.Status, res.Purpose, nullUUID(res.DecidedBy), res.DecisionNote, res.CreatedAt, res.UpdatedAt)
		logger.DatabaseResult("INSERT", 1, err, "reservationID", res.ID, "status", res.Status)
		if err != nil {
			return translate(err)
		}
		return bumpVersion(ctx, tx, res.EquipmentID)
	})
}

// bumpVersion invalidates any counter swap prepared against a capacity read
// taken before this reservation existed.
func bumpVersion(ctx context.Context, tx *sql.Tx, equipmentID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `UPDATE equipment SET version = version + 1 WHERE id = $1`, equipmentID)
	return err
}

func (r *reservationRepository) Transition(ctx context.Context, id uuid.UUID, decide repository.ReservationDecision) (*domain.Reservation, error) {
	var out *domain.Reservation
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := scanReservation(tx.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		eq, err := lockEquipment(ctx, tx, res.EquipmentID)
		if err != nil {
			return err
		}
		overlapping, err := queryReservations(ctx, tx, overlappingReservationsQuery, res.EquipmentID, res.StartTime, res.EndTime)
		if err != nil {
			return err
		}

		if err := decide(res, eq, overlapping); err != nil {
			return err
		}

		res.UpdatedAt = time.Now().UTC()
		query := `UPDATE reservations SET status=$1, decided_by=$2, decision_note=$3, updated_at=$4 WHERE id=$5`
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

func (r *reservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	return scanReservation(r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id))
}

func (r *reservationRepository) List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, int32, error) {
	where := sq.And{}
	if filter.UserID != nil {
		where = append(where, sq.Eq{"user_id": *filter.UserID})
	}
	if filter.EquipmentID != nil {
		where = append(where, sq.Eq{"equipment_id": *filter.EquipmentID})
	}
	if filter.Status != "" {
		where = append(where, sq.Eq{"status": filter.Status})
	}

	countQuery, countArgs, err := psql.Select("count(*)").From("reservations").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var count int32
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&count); err != nil {
		return nil, 0, err
	}

	limit, offset := offsetFor(filter.Page, filter.PageSize)
	query, args, err := psql.Select(reservationColumns).From("reservations").Where(where).
		OrderBy("start_time DESC").Limit(limit).Offset(offset).ToSql()
	if err != nil {
		return nil, 0, err
	}
	items, err := queryReservations(ctx, r.db, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

func (r *reservationRepository) ListOverlapping(ctx context.Context, equipmentID uuid.UUID, start, end time.Time) ([]domain.Reservation, error) {
	return queryReservations(ctx, r.db, overlappingReservationsQuery, equipmentID, start, end)
}

func (r *reservationRepository) CompleteElapsed(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	query := `UPDATE reservations SET status = 'completed', updated_at = $1
	          WHERE status = 'approved' AND end_time <= $1 RETURNING ` + reservationColumns
	logger.DatabaseCall("UPDATE", "reservations complete elapsed", "now", now)
	items, err := queryReservations(ctx, r.db, query, now)
	logger.DatabaseResult("UPDATE", int64(len(items)), err)
	return items, err
}

func (r *reservationRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE status = 'approved' AND start_time >= $1 AND start_time < $2 ORDER BY start_time`
	return queryReservations(ctx, r.db, query, from, to)
}
