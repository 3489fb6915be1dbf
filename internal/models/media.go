package models

import "github.com/google/uuid"

// AuthIdentity is the result of a password grant against the auth provider
type AuthIdentity struct {
	AccessToken string
	UserID      uuid.UUID
	Email       string
}

// ClientAuthRequest represents a media client asking for room tokens
type ClientAuthRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	ServerURL string `json:"server_url,omitempty"`
}

// MediaToken is a signed room token for one channel
type MediaToken struct {
	Token string `json:"token"`
	Room  string `json:"room"`
	Name  string `json:"name"`
}

// ClientAuthResponse lists the caller's channels with one token per channel
type ClientAuthResponse struct {
	Success   bool                  `json:"success"`
	UserID    uuid.UUID             `json:"user_id"`
	Username  string                `json:"username"`
	Channels  []Channel             `json:"channels"`
	Tokens    map[string]MediaToken `json:"tokens"`
	ServerURL string                `json:"server_url"`
}
