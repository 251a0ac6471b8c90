package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/repository"
)

const messageColumns = `id, sender_id, recipient_id, subject, body, is_read, created_at`

type messageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) repository.MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, m *domain.Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now().UTC()
	query := `INSERT INTO messages (` + messageColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, m.ID, m.SenderID, m.RecipientID, m.Subject, m.Body, m.IsRead, m.CreatedAt)
	return translate(err)
}

func (r *messageRepository) queryMany(ctx context.Context, query string, args ...any) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Subject, &m.Body, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *messageRepository) ListInbox(ctx context.Context, recipientID uuid.UUID, limit, offset int32) ([]domain.Message, int32, error) {
	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM messages WHERE recipient_id = $1`, recipientID).Scan(&count); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + messageColumns + ` FROM messages WHERE recipient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	msgs, err := r.queryMany(ctx, query, recipientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return msgs, count, nil
}

func (r *messageRepository) ListConversation(ctx context.Context, userA, userB uuid.UUID, limit, offset int32) ([]domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
	          WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)
	          ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	return r.queryMany(ctx, query, userA, userB, limit, offset)
}

func (r *messageRepository) MarkAsRead(ctx context.Context, id, recipientID uuid.UUID) error {
	query := `UPDATE messages SET is_read = TRUE WHERE id = $1 AND recipient_id = $2`
	return expectOne(r.db.ExecContext(ctx, query, id, recipientID))
}
