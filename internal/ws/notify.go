package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ProfileUpdatedEvent struct {
	Type       string `json:"type"`
	ProfileID  string `json:"profile_id"`
	Completion int    `json:"completion"`
	Timestamp  string `json:"timestamp"`
}

// Notifier adapts the hub to the profile usecase's EventPublisher.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) ProfileUpdated(userID, profileID uuid.UUID, completion int) {
	if n == nil || n.hub == nil {
		return
	}

	evt := ProfileUpdatedEvent{
		Type:       "profile_updated",
		ProfileID:  profileID.String(),
		Completion: completion,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	n.hub.Publish(userID, b)
}
