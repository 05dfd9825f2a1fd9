package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/teamops/muster-bot/entity"
)

type ResponseRepository struct {
	db *sqlx.DB
}

func NewResponseRepository(db *sqlx.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Upsert records a user's check-in for a date, replacing any earlier
// check-in for the same user and date.
func (r *ResponseRepository) Upsert(ctx context.Context, userID, userName, date, responseText, details string) error {
	query, args, err := sq.
		Insert("responses").
		Options("OR REPLACE").
		Columns(
			"user_id",
			"user_name",
			"response_date",
			"response_text",
			"details",
		).
		Values(
			userID,
			userName,
			date,
			responseText,
			details,
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

func (r *ResponseRepository) ListByDate(ctx context.Context, date string) ([]entity.CheckinResponse, error) {
	b := sq.
		Select(
			"id",
			"user_id",
			"user_name",
			"response_date",
			"response_text",
			"details",
		).
		From("responses").
		Where(sq.Eq{"response_date": date})

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql: %w", err)
	}

	var responses []entity.CheckinResponse
	if err := r.db.SelectContext(ctx, &responses, query, args...); err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}

	return responses, nil
}
