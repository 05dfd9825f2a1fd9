package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// DailyThreadRepository persists the date to prompt-message-timestamp
// mapping so thread linkage survives a mid-day restart.
type DailyThreadRepository struct {
	db *sqlx.DB
}

func NewDailyThreadRepository(db *sqlx.DB) *DailyThreadRepository {
	return &DailyThreadRepository{db: db}
}

func (r *DailyThreadRepository) Set(ctx context.Context, date, threadTS string) error {
	query, args, err := sq.
		Insert("daily_threads").
		Options("OR REPLACE").
		Columns(
			"thread_date",
			"thread_ts",
		).
		Values(
			date,
			threadTS,
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

// Get returns the thread timestamp for a date, or "" if no prompt was
// posted that day.
func (r *DailyThreadRepository) Get(ctx context.Context, date string) (string, error) {
	b := sq.
		Select("thread_ts").
		From("daily_threads").
		Where(sq.Eq{"thread_date": date})

	query, args, err := b.ToSql()
	if err != nil {
		return "", fmt.Errorf("to sql: %w", err)
	}

	var ts string
	if err := r.db.GetContext(ctx, &ts, query, args...); errors.Is(err, sql.ErrNoRows) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("get: %w", err)
	}

	return ts, nil
}
