package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a lifecycle event published to the message broker.
type EventType string

const (
	EventUserRegistered EventType = "user.registered"
	EventUserDeleted    EventType = "user.deleted"
	EventAudioUploaded  EventType = "audio.uploaded"
	EventAudioDeleted   EventType = "audio.deleted"
)

// Event is a user or audio lifecycle notification for downstream consumers.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	UserID    int64     `json:"user_id"`
	ActorID   int64     `json:"actor_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	FileName  string    `json:"file_name,omitempty"`
	Size      int64     `json:"size,omitempty"`
}

// NewEvent creates an event of the given type about userID.
func NewEvent(t EventType, userID int64) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().Unix(),
		UserID:    userID,
	}
}
