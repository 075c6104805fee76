package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationStatusChange  = "status_change"
	NotificationEventUpdate   = "event_update"
	NotificationNewSubscriber = "new_subscriber"
	NotificationEventReminder = "event_reminder"
)

// Notification is written only by server-side fan-out; users can only flip Read.
type Notification struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID     string    `json:"userId" gorm:"type:uuid;not null;index"`
	Title      string    `json:"title" gorm:"not null"`
	Message    string    `json:"message" gorm:"not null"`
	EventID    *string   `json:"eventId,omitempty" gorm:"type:uuid;index"`
	EventTitle *string   `json:"eventTitle,omitempty"`
	Type       string    `json:"type" gorm:"not null"`
	Status     *string   `json:"status,omitempty"` // event status snapshot
	Read       bool      `json:"read" gorm:"default:false"`
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return
}

func (Notification) TableName() string {
	return "notifications"
}
