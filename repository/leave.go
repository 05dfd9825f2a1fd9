package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/teamops/muster-bot/entity"
)

type LeaveRepository struct {
	db *sqlx.DB
}

func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) Create(ctx context.Context, userID, userName, startDate, endDate string) error {
	query, args, err := sq.
		Insert("leave").
		Columns(
			"user_id",
			"user_name",
			"start_date",
			"end_date",
		).
		Values(
			userID,
			userName,
			startDate,
			endDate,
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

func (r *LeaveRepository) ListByUser(ctx context.Context, userID string) ([]entity.LeavePeriod, error) {
	b := sq.
		Select(
			"id",
			"user_id",
			"user_name",
			"start_date",
			"end_date",
		).
		From("leave").
		Where(sq.Eq{"user_id": userID})

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql: %w", err)
	}

	var periods []entity.LeavePeriod
	if err := r.db.SelectContext(ctx, &periods, query, args...); err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}

	return periods, nil
}
