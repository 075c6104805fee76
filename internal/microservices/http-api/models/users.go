package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// only 2 roles: "user", "admin"
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

var (
	UserRoles    = []string{RoleAdmin, RoleUser}
	UserStatuses = []string{UserStatusActive, UserStatusSuspended}
)

type User struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"column:password_hash;not null" json:"-"` // Not show in JSON
	Role      string    `gorm:"default:'user';not null" json:"role"`
	Status    string    `gorm:"default:'active';not null" json:"status"`
	Avatar    *string   `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return
}

func (User) TableName() string {
	return "users"
}

func (user *User) IsAdmin() bool {
	return user != nil && user.Role == RoleAdmin
}

func (user *User) IsSuspended() bool {
	return user != nil && user.Status == UserStatusSuspended
}

// UserWithStats is a user row as listed in the admin console.
type UserWithStats struct {
	User
	EventsCreated    int64 `json:"eventsCreated"`
	EventsSubscribed int64 `json:"eventsSubscribed"`
}
