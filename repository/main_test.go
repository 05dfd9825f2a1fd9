package repository

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

var testDB *sqlx.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	db, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		log.Fatalf("Open database: %v.", err)
	}
	// One connection so every query sees the same in-memory database.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Ping database: %v.", err)
	}
	if err := Migrate(ctx, db); err != nil {
		log.Fatalf("Migrate: %v.", err)
	}
	testDB = db

	os.Exit(m.Run())
}

func cleanupTable(t *testing.T, table string) {
	t.Helper()
	t.Cleanup(func() {
		if _, err := testDB.ExecContext(context.Background(), "DELETE FROM "+table); err != nil {
			t.Fatalf("Fail cleanup: %v.", err)
		}
	})
}
