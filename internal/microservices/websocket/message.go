package websocket

import (
	"time"

	"eventhub/internal/microservices/http-api/models"
)

// Message protocol definitions

type MessageType string

const (
	TypeNotification MessageType = "notification" // a notification was created for the user
)

// Message is one frame pushed to the client.
type Message struct {
	Type         MessageType          `json:"type"`
	Notification *models.Notification `json:"notification,omitempty"`
	Timestamp    time.Time            `json:"timestamp"`
}

func NewNotificationMessage(n models.Notification) *Message {
	return &Message{
		Type:         TypeNotification,
		Notification: &n,
		Timestamp:    time.Now().UTC(),
	}
}
