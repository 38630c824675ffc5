// Package testutil provides shared test helpers for setting up databases
// and seed records.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/nordvik/vizdeck/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "vizdeck-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SeedUser inserts a user and returns it with its generated id and token.
func SeedUser(t *testing.T, db *store.DB, name, email string) *store.User {
	t.Helper()
	u := &store.User{Name: name, Email: email}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	return u
}

// SeedReport inserts a report owned by userID in workspaceID.
func SeedReport(t *testing.T, db *store.DB, userID, workspaceID, name string) *store.Report {
	t.Helper()
	r := &store.Report{Name: name, UserID: userID, WorkspaceID: workspaceID}
	if err := db.CreateReport(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	return r
}
