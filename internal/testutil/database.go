// Package testutil provides test fixtures: an isolated in-memory database
// and builders for the event and claim data the analysis pipeline consumes.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/soleview/worklens/internal/model"
	"github.com/soleview/worklens/internal/service"
	"github.com/soleview/worklens/internal/storage"
)

// TestDB wraps an in-memory SQLiteStorage with seeding helpers. Cleanup is
// registered automatically.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory database.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	return &TestDB{Storage: store, t: t}
}

// SeedEmployees inserts employee master records.
func (db *TestDB) SeedEmployees(profiles ...model.EmployeeProfile) {
	db.t.Helper()
	if err := db.Storage.SaveEmployees(context.Background(), profiles); err != nil {
		db.t.Fatalf("failed to seed employees: %v", err)
	}
}

// SeedClaims inserts claim records.
func (db *TestDB) SeedClaims(claims ...model.ClaimRecord) {
	db.t.Helper()
	if err := db.Storage.SaveClaims(context.Background(), claims); err != nil {
		db.t.Fatalf("failed to seed claims: %v", err)
	}
}

// SeedBadgeRows inserts badge events for one employee.
func (db *TestDB) SeedBadgeRows(employeeID string, rows ...service.BadgeRow) {
	db.t.Helper()
	if err := db.Storage.InsertBadgeRows(context.Background(), employeeID, rows); err != nil {
		db.t.Fatalf("failed to seed badge rows: %v", err)
	}
}

// SeedTeamStats inserts team tag aggregates.
func (db *TestDB) SeedTeamStats(stats ...model.TeamTagStats) {
	db.t.Helper()
	if err := db.Storage.SaveTeamStats(context.Background(), stats); err != nil {
		db.t.Fatalf("failed to seed team stats: %v", err)
	}
}

// Badge is shorthand for a badge row at a clock time on a given day.
func Badge(day time.Time, hour, minute int, location string) service.BadgeRow {
	return service.BadgeRow{
		Timestamp: time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location()),
		Location:  location,
	}
}
