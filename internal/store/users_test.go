package store

import (
	"context"
	"strings"
	"testing"

	"github.com/erazemk/borza/internal/apperr"
	"github.com/erazemk/borza/internal/auth"
	"github.com/erazemk/borza/internal/avatar"
	"github.com/erazemk/borza/internal/db"
	"github.com/erazemk/borza/internal/model"
)

func TestSyncUserCreatesWithDefaults(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := SyncUser(ctx, database, &auth.Identity{Subject: "sub-1", Email: "ana@example.com"}, "")
	if err != nil {
		t.Fatalf("syncing user: %v", err)
	}

	if user.Name != "ana" {
		t.Errorf("expected name derived from email local part, got %q", user.Name)
	}
	if !avatar.IsPlaceholder(user.AvatarURL) {
		t.Errorf("expected placeholder avatar, got %q", user.AvatarURL)
	}
	if user.Chips != model.StartingChips {
		t.Errorf("expected %d starting chips, got %d", model.StartingChips, user.Chips)
	}
	if user.Role != model.RoleUser {
		t.Errorf("expected role user, got %q", user.Role)
	}
}

func TestSyncUserFallbackName(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := SyncUser(ctx, database, &auth.Identity{Subject: "sub-1"}, "")
	if err != nil {
		t.Fatalf("syncing user: %v", err)
	}

	if user.Name != model.FallbackName {
		t.Errorf("expected fallback name %q, got %q", model.FallbackName, user.Name)
	}
	if !strings.HasPrefix(user.AvatarURL, avatar.PathPrefix) {
		t.Errorf("expected placeholder avatar, got %q", user.AvatarURL)
	}
}

func TestSyncUserIsIdempotent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, _ := SyncUser(ctx, database, &auth.Identity{Subject: "sub-1", Email: "ana@example.com"}, "")
	second, err := SyncUser(ctx, database, &auth.Identity{Subject: "sub-1", Email: "ana@example.com"}, "")
	if err != nil {
		t.Fatalf("re-syncing user: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected the same user on re-sync, got %d and %d", first.ID, second.ID)
	}
	count, _ := CountUsers(ctx, database)
	if count != 1 {
		t.Errorf("expected 1 user, got %d", count)
	}
}

func TestSyncUserNeverClobbersWithPlaceholders(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	full := &auth.Identity{
		Subject:   "sub-1",
		Email:     "ana@example.com",
		Name:      "Ana Novak",
		AvatarURL: "https://cdn.example.com/ana.png",
	}
	if _, err := SyncUser(ctx, database, full, ""); err != nil {
		t.Fatalf("syncing full identity: %v", err)
	}

	// A sparse payload on a later sync must not erase captured data.
	user, err := SyncUser(ctx, database, &auth.Identity{Subject: "sub-1"}, "")
	if err != nil {
		t.Fatalf("syncing sparse identity: %v", err)
	}

	if user.Name != "Ana Novak" {
		t.Errorf("sparse sync overwrote name: %q", user.Name)
	}
	if user.Email != "ana@example.com" {
		t.Errorf("sparse sync overwrote email: %q", user.Email)
	}
	if user.AvatarURL != "https://cdn.example.com/ana.png" {
		t.Errorf("sparse sync overwrote avatar: %q", user.AvatarURL)
	}
}

func TestSyncUserUpdatesRealValues(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	syncTestUser(t, database, "sub-1", "ana@example.com")

	user, err := SyncUser(ctx, database, &auth.Identity{
		Subject: "sub-1",
		Email:   "ana@example.com",
		Name:    "Ana Novak",
	}, "")
	if err != nil {
		t.Fatalf("re-syncing user: %v", err)
	}

	if user.Name != "Ana Novak" {
		t.Errorf("expected updated name, got %q", user.Name)
	}
	// No picture in the payload, so the placeholder stays.
	if !avatar.IsPlaceholder(user.AvatarURL) {
		t.Errorf("expected placeholder avatar to remain, got %q", user.AvatarURL)
	}
}

func TestSyncUserBootstrapAdmin(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	admin, _ := SyncUser(ctx, database, &auth.Identity{Subject: "sub-1", Email: "root@example.com"}, "root@example.com")
	if admin.Role != model.RoleAdmin {
		t.Errorf("expected bootstrap admin role, got %q", admin.Role)
	}

	user, _ := SyncUser(ctx, database, &auth.Identity{Subject: "sub-2", Email: "ana@example.com"}, "root@example.com")
	if user.Role != model.RoleUser {
		t.Errorf("expected regular user role, got %q", user.Role)
	}
}

func TestSyncUserNilIdentity(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := SyncUser(ctx, database, nil, "")
	if err != nil || user != nil {
		t.Errorf("expected nil, nil for nil identity, got %v, %v", user, err)
	}

	user, err = SyncUser(ctx, database, &auth.Identity{}, "")
	if err != nil || user != nil {
		t.Errorf("expected nil, nil for empty subject, got %v, %v", user, err)
	}
}

func TestSetUserRole(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	admin := syncTestUser(t, database, "sub-1", "root@example.com")
	user := syncTestUser(t, database, "sub-2", "ana@example.com")

	if err := SetUserRole(ctx, database, admin.ID, user.ID, model.RoleAdmin); err != nil {
		t.Fatalf("promoting user: %v", err)
	}

	promoted, _ := GetUser(ctx, database, user.ID)
	if promoted.Role != model.RoleAdmin {
		t.Errorf("expected admin role, got %q", promoted.Role)
	}

	if err := SetUserRole(ctx, database, admin.ID, user.ID, model.RoleUser); err != nil {
		t.Fatalf("demoting other admin: %v", err)
	}
}

func TestSetUserRoleSelfDemotion(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	admin := syncTestUser(t, database, "sub-1", "root@example.com")

	err := SetUserRole(ctx, database, admin.ID, admin.ID, model.RoleUser)
	if apperr.CodeOf(err) != apperr.CodeSelfDemotion {
		t.Errorf("expected SELF_DEMOTION, got %v", err)
	}

	// Promoting yourself again is harmless and allowed.
	if err := SetUserRole(ctx, database, admin.ID, admin.ID, model.RoleAdmin); err != nil {
		t.Errorf("expected self-promotion to be allowed, got %v", err)
	}
}

func TestSetUserRoleUnknownUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	admin := syncTestUser(t, database, "sub-1", "root@example.com")

	err := SetUserRole(ctx, database, admin.ID, 42, model.RoleAdmin)
	if apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}

	if err := SetUserRole(ctx, database, admin.ID, admin.ID, "superuser"); err == nil {
		t.Error("expected error for invalid role")
	}
}

func TestListUsersIncludesCoefficients(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a := syncTestUser(t, database, "sub-1", "ana@example.com")
	syncTestUser(t, database, "sub-2", "bor@example.com")
	SetCoefficient(ctx, database, a.ID, 2.5)

	users, err := ListUsers(ctx, database)
	if err != nil {
		t.Fatalf("listing users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Coefficient != 2.5 {
		t.Errorf("expected coefficient 2.5, got %v", users[0].Coefficient)
	}
	if users[1].Coefficient != 1 {
		t.Errorf("expected default coefficient 1, got %v", users[1].Coefficient)
	}
}
