package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type AdminRepository struct {
	db *sqlx.DB
}

func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Add grants admin rights. Adding an existing admin is a no-op.
func (r *AdminRepository) Add(ctx context.Context, userID string) error {
	query, args, err := sq.
		Insert("admins").
		Options("OR IGNORE").
		Columns("user_id").
		Values(userID).
		ToSql()
	if err != nil {
		return fmt.Errorf("to sql: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}

	return nil
}

func (r *AdminRepository) Exists(ctx context.Context, userID string) (bool, error) {
	b := sq.
		Select("1").
		From("admins").
		Where(sq.Eq{"user_id": userID})

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
