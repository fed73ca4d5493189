package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/erazemk/borza/internal/auth"
	"github.com/erazemk/borza/internal/model"
)

func syncTestUser(t *testing.T, database *sql.DB, subject, email string) *model.User {
	t.Helper()

	user, err := SyncUser(context.Background(), database, &auth.Identity{Subject: subject, Email: email}, "")
	if err != nil {
		t.Fatalf("syncing test user %s: %v", subject, err)
	}
	return user
}

func mustBalance(t *testing.T, database *sql.DB, userID int64) int {
	t.Helper()

	balance, err := Balance(context.Background(), database, userID)
	if err != nil {
		t.Fatalf("reading balance of user %d: %v", userID, err)
	}
	return balance
}
