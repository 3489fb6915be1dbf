package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Channel represents a media room users can be authorised for
type Channel struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	AuthorizedUsers []uuid.UUID `json:"authorized_users"`
	CreatedAt       *time.Time  `json:"created_at,omitempty"`
}

// RoomName returns the media room bound to the channel
func (c *Channel) RoomName() string {
	return RoomName(c.ID)
}

// RoomName returns the media room name for a channel ID
func RoomName(channelID uuid.UUID) string {
	return fmt.Sprintf("channel-%s", channelID)
}

// PlaceholderChannel stands in for a channel listed on a user but missing from the store
func PlaceholderChannel(channelID uuid.UUID) Channel {
	return Channel{
		ID:              channelID,
		Name:            fmt.Sprintf("Channel %s", channelID),
		AuthorizedUsers: []uuid.UUID{},
	}
}

// CreateChannelRequest represents a request to create a channel
type CreateChannelRequest struct {
	Name            string      `json:"name"`
	AuthorizedUsers []uuid.UUID `json:"authorized_users,omitempty"`
}

// UpdateChannelRequest represents a partial channel update; nil fields are left untouched
type UpdateChannelRequest struct {
	Name            *string      `json:"name,omitempty"`
	AuthorizedUsers *[]uuid.UUID `json:"authorized_users,omitempty"`
}

// ChannelPatch holds the validated fields written by a channel update
type ChannelPatch struct {
	Name            *string
	AuthorizedUsers *[]uuid.UUID
}

// Empty reports whether the patch changes nothing
func (p *ChannelPatch) Empty() bool {
	return p.Name == nil && p.AuthorizedUsers == nil
}
