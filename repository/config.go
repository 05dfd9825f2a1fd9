package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/teamops/muster-bot/entity"
)

// Config keys for the three scheduled times.
const (
	ConfigKeyCheckinTime  = "checkin_time"
	ConfigKeyReminderTime = "reminder_time"
	ConfigKeySummaryTime  = "summary_time"
)

var configDefaults = map[string]string{
	ConfigKeyCheckinTime:  "08:00",
	ConfigKeyReminderTime: "10:00",
	ConfigKeySummaryTime:  "11:00",
}

type ConfigRepository struct {
	db *sqlx.DB
}

func NewConfigRepository(db *sqlx.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// SeedDefaults inserts the default schedule times, keeping any value
// already present.
func (r *ConfigRepository) SeedDefaults(ctx context.Context) error {
	for key, value := range configDefaults {
		query, args, err := sq.
			Insert("config").
			Options("OR IGNORE").
			Columns(
				"key",
				"value",
			).
			Values(
				key,
				value,
			).
			ToSql()
		if err != nil {
			return fmt.Errorf("to sql: %w", err)
		}

		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("exec: %w", err)
		}
	}

	return nil
}

// Map returns every config row as a key to value map.
func (r *ConfigRepository) Map(ctx context.Context) (map[string]string, error) {
	b := sq.
		Select(
			"key",
			"value",
		).
		From("config")

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql: %w", err)
	}

	var entries []entity.ConfigEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}

	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.Key] = e.Value
	}

	return m, nil
}
