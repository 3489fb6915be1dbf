package models

import "time"

// SuperAdmin represents a console operator account with a user quota
type SuperAdmin struct {
	ID           int64      `json:"id"`
	Username     string     `json:"admin_super_user"`
	PasswordHash string     `json:"-"`
	UserLimit    int        `json:"user_limit"`
	UserCount    int        `json:"user_count"`
	CreatedBy    string     `json:"created_by,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// QuotaReached reports whether the admin may not create more users.
// A zero limit means unlimited.
func (a *SuperAdmin) QuotaReached() bool {
	return a.UserLimit > 0 && a.UserCount >= a.UserLimit
}

// CreateSuperAdminRequest represents a request to create a super admin
type CreateSuperAdminRequest struct {
	Username  string `json:"admin_super_user"`
	Password  string `json:"admin_super_password"`
	UserLimit *int   `json:"user_limit"`
}
