package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS responses (
		id INTEGER PRIMARY KEY,
		user_id TEXT NOT NULL,
		user_name TEXT NOT NULL,
		response_date TEXT NOT NULL,
		response_text TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		UNIQUE (user_id, response_date)
	)`,
	`CREATE TABLE IF NOT EXISTS leave (
		id INTEGER PRIMARY KEY,
		user_id TEXT NOT NULL,
		user_name TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS holidays (
		holiday_date TEXT PRIMARY KEY,
		description TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS admins (
		user_id TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS config (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY,
		sender_id TEXT NOT NULL,
		sender_name TEXT NOT NULL,
		destination_id TEXT NOT NULL,
		sent_timestamp TEXT NOT NULL,
		message TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS daily_threads (
		thread_date TEXT PRIMARY KEY,
		thread_ts TEXT NOT NULL
	)`,
}

// Migrate creates every table the bot needs if it does not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}

	return nil
}
