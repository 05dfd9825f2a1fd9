package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/teamops/muster-bot/entity"
)

type MessageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create appends one observed message to the audit log.
func (r *MessageRepository) Create(ctx context.Context, m entity.LoggedMessage) error {
	query, args, err := sq.
		Insert("messages").
		Columns(
			"sender_id",
			"sender_name",
			"destination_id",
			"sent_timestamp",
			"message",
		).
		Values(
			m.SenderID,
			m.SenderName,
			m.DestinationID,
			m.SentTimestamp,
			m.Message,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("to sql: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}

	return nil
}
