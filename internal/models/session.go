package models

import "time"

// Session represents an authenticated console session
type Session struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Role         Role      `json:"role"`
	SuperAdminID int64     `json:"super_admin_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// IsSuperAdmin reports whether the session belongs to a SuperAdmin record
func (s *Session) IsSuperAdmin() bool {
	return s.SuperAdminID != 0
}

// LoginRequest represents a console login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CurrentUserResponse describes the session owner
type CurrentUserResponse struct {
	ID              int64  `json:"id,omitempty"`
	Username        string `json:"username"`
	Role            Role   `json:"role"`
	IsAuthenticated bool   `json:"is_authenticated"`
	UserLimit       *int   `json:"user_limit,omitempty"`
	UserCount       *int   `json:"user_count,omitempty"`
}
