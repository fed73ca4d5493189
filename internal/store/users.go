package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/borza/internal/apperr"
	"github.com/erazemk/borza/internal/auth"
	"github.com/erazemk/borza/internal/avatar"
	"github.com/erazemk/borza/internal/model"
)

// userColumns is the select list for user scans. Balances resolve through
// the ledger's chipsExpr so legacy NULL rows read as the default.
const userColumns = "id, identifier, email, name, avatar_url, role, " + chipsExpr + ", created_at"

func scanUser(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Identifier, &u.Email, &u.Name, &u.AvatarURL, &u.Role, &u.Chips, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return u, nil
}

// SyncUser resolves a verified external identity to an internal user,
// creating the record on first sight. Missing fields are filled with
// deterministic placeholders; on later sightings only fields carrying real
// (non-placeholder) values are written, so a partial payload never clobbers
// previously captured data. bootstrapAdminEmail, when non-empty, names the
// identity created with the admin role.
func SyncUser(ctx context.Context, db *sql.DB, id *auth.Identity, bootstrapAdminEmail string) (*model.User, error) {
	if id == nil || id.Subject == "" {
		return nil, nil
	}

	name := id.Name
	if name == "" {
		if at := strings.Index(id.Email, "@"); at > 0 {
			name = id.Email[:at]
		} else {
			name = model.FallbackName
		}
	}

	avatarURL := id.AvatarURL
	if avatarURL == "" {
		seed := id.Name
		if seed == "" {
			seed = id.Email
		}
		if seed == "" {
			seed = model.FallbackName
		}
		avatarURL = avatar.URL(seed)
	}

	existing, err := GetUserByIdentifier(ctx, db, id.Subject)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		// Asymmetric update: never overwrite real data with placeholders.
		var sets []string
		var args []any
		if id.Email != "" {
			sets = append(sets, "email = ?")
			args = append(args, id.Email)
		}
		if name != "" && name != model.FallbackName {
			sets = append(sets, "name = ?")
			args = append(args, name)
		}
		if avatarURL != "" && !avatar.IsPlaceholder(avatarURL) {
			sets = append(sets, "avatar_url = ?")
			args = append(args, avatarURL)
		}

		if len(sets) > 0 {
			args = append(args, existing.ID)
			_, err = db.ExecContext(ctx,
				`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
			)
			if err != nil {
				return nil, fmt.Errorf("updating user: %w", err)
			}
		}
		return GetUser(ctx, db, existing.ID)
	}

	role := model.RoleUser
	if bootstrapAdminEmail != "" && id.Email == bootstrapAdminEmail {
		role = model.RoleAdmin
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO users (identifier, email, name, avatar_url, role, chips)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id.Subject, id.Email, name, avatarURL, role, model.StartingChips,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	userID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}
	return GetUser(ctx, db, userID)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	return scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
}

// GetUserByIdentifier returns a user by their external identifier.
func GetUserByIdentifier(ctx context.Context, db *sql.DB, identifier string) (*model.User, error) {
	return scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE identifier = ?`, identifier,
	))
}

// UserWithCoefficient pairs a user with their priority coefficient.
type UserWithCoefficient struct {
	model.User
	Coefficient float64 `json:"coefficient"`
}

// ListUsers returns all users with their coefficients (default 1).
func ListUsers(ctx context.Context, db *sql.DB) ([]UserWithCoefficient, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT u.id, u.identifier, u.email, u.name, u.avatar_url, u.role, `+chipsExpr+`, u.created_at,
		        COALESCE(c.value, 1)
		 FROM users u
		 LEFT JOIN coefficients c ON c.user_id = u.id
		 ORDER BY u.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []UserWithCoefficient
	for rows.Next() {
		var u UserWithCoefficient
		if err := rows.Scan(&u.ID, &u.Identifier, &u.Email, &u.Name, &u.AvatarURL, &u.Role,
			&u.Chips, &u.CreatedAt, &u.Coefficient); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers returns the total number of users.
func CountUsers(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// SetUserRole changes a user's role. Admins cannot demote their own account.
func SetUserRole(ctx context.Context, db *sql.DB, actingAdminID, userID int64, role string) error {
	if role != model.RoleAdmin && role != model.RoleUser {
		return fmt.Errorf("invalid role %q", role)
	}
	if actingAdminID == userID && role == model.RoleUser {
		return apperr.New(apperr.CodeSelfDemotion, "cannot demote yourself")
	}

	user, err := GetUser(ctx, db, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.New(apperr.CodeNotFound, "user not found")
	}

	_, err = db.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, userID)
	if err != nil {
		return fmt.Errorf("updating role: %w", err)
	}
	return nil
}
