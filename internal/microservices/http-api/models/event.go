package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EventStatusActive    = "active"
	EventStatusPending   = "pending"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"
)

// EventStatuses is the fixed moderation lifecycle enumeration.
var EventStatuses = []string{EventStatusActive, EventStatusPending, EventStatusCancelled, EventStatusCompleted}

// EventCategories lists the categories an event may be filed under.
var EventCategories = []string{"technology", "business", "arts", "sports", "music", "education", "food", "other"}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Event struct {
	ID             string     `json:"id" gorm:"primaryKey;type:uuid"`
	Title          string     `json:"title" gorm:"not null"`
	Description    string     `json:"description" gorm:"not null;type:text"`
	Date           string     `json:"date" gorm:"not null;size:10"`
	Time           string     `json:"time" gorm:"not null;size:5"`
	Location       string     `json:"location" gorm:"not null"`
	Category       string     `json:"category" gorm:"not null;index"`
	Status         string     `json:"status" gorm:"not null;default:'pending';index"`
	Banner         *string    `json:"banner,omitempty"`
	CreatedBy      string     `json:"createdBy" gorm:"type:uuid;not null;index"`
	ReminderSentAt *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return
}

func (Event) TableName() string {
	return "events"
}

// StartsAt combines the event's date and time in loc.
func (e *Event) StartsAt(loc *time.Location) (time.Time, error) {
	return ParseStart(e.Date, e.Time, loc)
}

// ParseStart parses a YYYY-MM-DD date and an HH:MM time into an instant in loc.
func ParseStart(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+"T"+TimeLayout, date+"T"+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse event start %q %q: %w", date, clock, err)
	}
	return t, nil
}

// Creator is the public projection of an event's owner.
type Creator struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// EventSummary is an event with its subscriber count and creator, as listed by the API.
type EventSummary struct {
	Event
	SubscriberCount int64   `json:"subscriberCount"`
	Creator         Creator `json:"creator" gorm:"embedded;embeddedPrefix:creator_"`
}

// Subscriber is one entry of an event's subscriber list in the admin view.
type Subscriber struct {
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
}
