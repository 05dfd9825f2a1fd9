package repository

import (
	"context"
	"testing"
)

func TestConfigRepository_SeedDefaults_KeepsExistingValues(t *testing.T) {
	ctx := context.Background()
	r := NewConfigRepository(testDB)
	cleanupTable(t, "config")

	if err := r.SeedDefaults(ctx); err != nil {
		t.Fatalf("Should not be fail: %v.", err)
	}

	m, err := r.Map(ctx)
	if err != nil {
		t.Fatalf("Should not be fail: %v.", err)
	}
	if got, want := m[ConfigKeyCheckinTime], "08:00"; got != want {
		t.Fatalf("checkin_time is %q, but want %q.", got, want)
	}
	if got, want := m[ConfigKeyReminderTime], "10:00"; got != want {
		t.Fatalf("reminder_time is %q, but want %q.", got, want)
	}
	if got, want := m[ConfigKeySummaryTime], "11:00"; got != want {
		t.Fatalf("summary_time is %q, but want %q.", got, want)
	}

	if _, err := testDB.ExecContext(ctx, "UPDATE config SET value = ? WHERE key = ?", "09:15", ConfigKeyCheckinTime); err != nil {
		t.Fatalf("Should not be fail: %v.", err)
	}
	if err := r.SeedDefaults(ctx); err != nil {
		t.Fatalf("Should not be fail: %v.", err)
	}

	m, err = r.Map(ctx)
	if err != nil {
		t.Fatalf("Should not be fail: %v.", err)
	}
	if got, want := m[ConfigKeyCheckinTime], "09:15"; got != want {
		t.Fatalf("checkin_time is %q, but want %q.", got, want)
	}
}
