package model

import "time"

// User represents an account synced from the external identity provider.
// Chips holds the resolved balance (the legacy nil-means-100 default is
// applied by the store's read paths, never here).
type User struct {
	ID         int64     `json:"id"`
	Identifier string    `json:"identifier"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	AvatarURL  string    `json:"avatar_url"`
	Role       string    `json:"role"`
	Chips      int       `json:"chips"`
	CreatedAt  time.Time `json:"created_at"`
}

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// FallbackName is the display name assigned when an identity payload carries
// no usable name. Sync must never overwrite a real name with it.
const FallbackName = "User"

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
