package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type HolidayRepository struct {
	db *sqlx.DB
}

func NewHolidayRepository(db *sqlx.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

// Upsert registers a holiday, replacing the description if the date is
// already registered.
func (r *HolidayRepository) Upsert(ctx context.Context, date, description string) error {
	query, args, err := sq.
		Insert("holidays").
		Options("OR REPLACE").
		Columns(
			"holiday_date",
			"description",
		).
		Values(
			date,
			description,
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

func (r *HolidayRepository) Exists(ctx context.Context, date string) (bool, error) {
	b := sq.
		Select("1").
		From("holidays").
		Where(sq.Eq{"holiday_date": date})

	query, args, err := b.ToSql()
	if err != nil {
		return false, fmt.Errorf("to sql: %w", err)
	}

	var one int
	if err := r.db.GetContext(ctx, &one, query, args...); errors.Is(err, sql.ErrNoRows) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("get: %w", err)
	}

	return true, nil
}
