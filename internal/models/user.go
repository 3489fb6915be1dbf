package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user role
type Role string

const (
	RoleRegular    Role = "regular"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleRegular, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// CanOperate reports whether the role may log into the console
func (r Role) CanOperate() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// User represents a media user profile held in the record store
type User struct {
	ID           uuid.UUID   `json:"id"`
	Username     string      `json:"username"`
	PasswordHash string      `json:"-"`
	Role         Role        `json:"role"`
	Active       bool        `json:"active"`
	Channels     []uuid.UUID `json:"channels"`
	CreatedAt    *time.Time  `json:"created_at,omitempty"`
}

// CreateUserRequest represents a request to create a user
type CreateUserRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     Role        `json:"role,omitempty"`
	Active   *bool       `json:"active,omitempty"`
	Channels []uuid.UUID `json:"channels,omitempty"`
}

// UpdateUserRequest represents a partial user update; nil fields are left untouched
type UpdateUserRequest struct {
	Username *string      `json:"username,omitempty"`
	Password *string      `json:"password,omitempty"`
	Role     *Role        `json:"role,omitempty"`
	Active   *bool        `json:"active,omitempty"`
	Channels *[]uuid.UUID `json:"channels,omitempty"`
}

// UserPatch holds the validated fields written by a user update
type UserPatch struct {
	Username     *string
	PasswordHash *string
	Role         *Role
	Active       *bool
	Channels     *[]uuid.UUID
}

// Empty reports whether the patch changes nothing
func (p *UserPatch) Empty() bool {
	return p.Username == nil && p.PasswordHash == nil && p.Role == nil && p.Active == nil && p.Channels == nil
}

// AuthUserAttributes holds the fields pushed to the auth provider on update
type AuthUserAttributes struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}
