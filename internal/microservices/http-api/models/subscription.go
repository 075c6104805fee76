package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Subscription struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID    string    `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_subscriptions_user_event"`
	EventID   string    `json:"eventId" gorm:"type:uuid;not null;uniqueIndex:idx_subscriptions_user_event;index"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return
}

func (Subscription) TableName() string {
	return "subscriptions"
}

