package models

import "github.com/google/uuid"

// EntityKind names one side of the user/channel relation
type EntityKind int

const (
	// EntityUser owns User.channels
	EntityUser EntityKind = iota + 1
	// EntityChannel owns Channel.authorized_users
	EntityChannel
)

// String returns the entity name used in logs
func (k EntityKind) String() string {
	switch k {
	case EntityUser:
		return "user"
	case EntityChannel:
		return "channel"
	default:
		return "unknown"
	}
}

// SyncReport summarises one relation sync call
type SyncReport struct {
	// Added counts counterparts whose relation list gained the owner
	Added int `json:"added"`
	// Removed counts counterparts whose relation list lost the owner
	Removed int `json:"removed"`
	// Unchanged counts counterparts that already matched
	Unchanged int `json:"unchanged"`
	// Failed lists counterparts that could not be read or written
	Failed []uuid.UUID `json:"failed,omitempty"`
}

// Merge adds the counters of other to r
func (r *SyncReport) Merge(other *SyncReport) {
	if other == nil {
		return
	}
	r.Added += other.Added
	r.Removed += other.Removed
	r.Unchanged += other.Unchanged
	r.Failed = append(r.Failed, other.Failed...)
}
