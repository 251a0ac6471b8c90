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

const settingColumns = `id, target_type, target_id, enabled, updated_by, created_at, updated_at`

type autoApprovalRepository struct {
	db *sql.DB
}

func NewAutoApprovalRepository(db *sql.DB) repository.AutoApprovalRepository {
	return &autoApprovalRepository{db: db}
}

// storedTarget is the target_id column value: the nil uuid for the system scope.
func storedTarget(scope domain.ApprovalScope, target *uuid.UUID) uuid.UUID {
	if scope == domain.ApprovalScopeSystem || target == nil {
		return uuid.Nil
	}
	return *target
}

func scanSetting(row rowScanner) (*domain.AutoApprovalSetting, error) {
	s := &domain.AutoApprovalSetting{}
	var target uuid.UUID
	var updatedBy uuid.NullUUID
	if err := row.Scan(&s.ID, &s.TargetType, &target, &s.Enabled, &updatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	if s.TargetType != domain.ApprovalScopeSystem {
		s.TargetID = &target
	}
	s.UpdatedBy = uuidPtr(updatedBy)
	return s, nil
}

func (r *autoApprovalRepository) FindSetting(ctx context.Context, scope domain.ApprovalScope, targetID *uuid.UUID) (*domain.AutoApprovalSetting, error) {
	query := `SELECT ` + settingColumns + ` FROM auto_approval_settings WHERE target_type = $1 AND target_id = $2`
	logger.DatabaseCall("SELECT", "auto_approval_settings", "scope", scope)
	return scanSetting(r.db.QueryRowContext(ctx, query, scope, storedTarget(scope, targetID)))
}

func (r *autoApprovalRepository) List(ctx context.Context) ([]domain.AutoApprovalSetting, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+settingColumns+` FROM auto_approval_settings ORDER BY target_type, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AutoApprovalSetting
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *autoApprovalRepository) Upsert(ctx context.Context, s *domain.AutoApprovalSetting, entry *domain.AutoApprovalLog) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now().UTC()

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `INSERT INTO auto_approval_settings (` + settingColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $6)
		          ON CONFLICT (target_type, target_id)
		          DO UPDATE SET enabled = EXCLUDED.enabled, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at
		          RETURNING id, created_at, updated_at`
		logger.DatabaseCall("UPSERT", "auto_approval_settings", "scope", s.TargetType, "enabled", s.Enabled)
		err := tx.QueryRowContext(ctx, query, s.ID, s.TargetType, storedTarget(s.TargetType, s.TargetID), s.Enabled,
			nullUUID(s.UpdatedBy), now).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return translate(err)
		}

		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		entry.SettingID = s.ID
		entry.CreatedAt = now
		_, err = tx.ExecContext(ctx, `INSERT INTO auto_approval_logs (id, setting_id, action, performed_by, created_at) VALUES ($1, $2, $3, $4, $5)`,
			entry.ID, entry.SettingID, entry.Action, entry.PerformedBy, entry.CreatedAt)
		logger.DatabaseResult("INSERT", 1, err, "settingID", s.ID, "action", entry.Action)
		return translate(err)
	})
}

func (r *autoApprovalRepository) ListLogs(ctx context.Context, settingID uuid.UUID) ([]domain.AutoApprovalLog, error) {
	query := `SELECT id, setting_id, action, performed_by, created_at FROM auto_approval_logs WHERE setting_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, settingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AutoApprovalLog
	for rows.Next() {
		var l domain.AutoApprovalLog
		if err := rows.Scan(&l.ID, &l.SettingID, &l.Action, &l.PerformedBy, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
