package models

import "github.com/google/uuid"

// ReconcileTaskType is the queue task type of a reconciliation pass
const ReconcileTaskType = "reconcile:relations"

// ReconcileTaskPayload is the queued reconciliation request; an empty ChannelName means every channel
type ReconcileTaskPayload struct {
	ChannelName string `json:"channel_name,omitempty"`
}

// ReconcileReport summarises a reconciliation pass
type ReconcileReport struct {
	ChannelsScanned int `json:"channels_scanned"`
	ChannelsSkipped int `json:"channels_skipped"`
	UsersUpdated    int `json:"users_updated"`

	// Failures lists users whose channel list could not be repaired
	Failures []uuid.UUID `json:"failures,omitempty"`
}

// ReconcileRequest represents a request to queue a reconciliation pass
type ReconcileRequest struct {
	ChannelName string `json:"channel_name,omitempty"`
}
