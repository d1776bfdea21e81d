package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/chisomo/loan-ledger/internal/domain"
)

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	query := `
		INSERT INTO messages (id, type, customer_id, loan_id, title, body,
			priority, action_required, is_read, created_at)
		VALUES (:id, :type, :customer_id, :loan_id, :title, :body,
			:priority, :action_required, :is_read, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, message)
	return err
}

func (r *messageRepository) ListByType(ctx context.Context, msgType string, limit int) ([]*domain.Message, error) {
	query := `
		SELECT id, type, customer_id, loan_id, title, body, priority,
		       action_required, is_read, created_at
		FROM messages
		WHERE type = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	var messages []*domain.Message
	if err := r.db.SelectContext(ctx, &messages, query, msgType, limit); err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *messageRepository) CountUnread(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages WHERE is_read = FALSE`)
	return count, err
}
