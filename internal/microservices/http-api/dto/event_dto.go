package dto

import (
	"time"

	"eventhub/internal/microservices/http-api/models"
)

// CreateEventRequest: payload for POST /events
type CreateEventRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"required,max=5000"`
	Date        string  `json:"date" validate:"required,date"`
	Time        string  `json:"time" validate:"required,clock"`
	Location    string  `json:"location" validate:"required,max=200"`
	Category    string  `json:"category" validate:"required,category"`
	Banner      *string `json:"banner,omitempty"`
}

// UpdateEventRequest: partial update; nil fields are left unchanged and an
// empty banner clears it. CreatedBy is honoured on the admin route only.
type UpdateEventRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Date        *string `json:"date,omitempty" validate:"omitempty,date"`
	Time        *string `json:"time,omitempty" validate:"omitempty,clock"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=200"`
	Category    *string `json:"category,omitempty" validate:"omitempty,category"`
	Banner      *string `json:"banner,omitempty"`
	Status      *string `json:"status,omitempty" validate:"omitempty,event_status"`
	CreatedBy   *string `json:"createdBy,omitempty" validate:"omitempty,uuid"`
}

// StatusRequest: payload for PATCH /admin/events/:id/status
type StatusRequest struct {
	Status string `json:"status" validate:"required,event_status"`
}

// ListEventsQuery: query string of GET /events
type ListEventsQuery struct {
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	Category string `form:"category"`
	Status   string `form:"status"`
	Search   string `form:"search"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

type EventList struct {
	Events     []models.EventSummary `json:"events"`
	Pagination Pagination            `json:"pagination"`
}

// AdminEventView: event detail with its full subscriber list
type AdminEventView struct {
	models.EventSummary
	Subscribers []models.Subscriber `json:"subscribers"`
}

// UpdateResult: data returned after an event update
type UpdateResult struct {
	EventID              string `json:"eventId"`
	NotificationsCreated int    `json:"notificationsCreated"`
	StatusChanged        bool   `json:"statusChanged"`
}

// DeleteResult: data returned after an event deletion
type DeleteResult struct {
	EventID             string `json:"eventId"`
	EventTitle          string `json:"eventTitle"`
	SubscribersNotified int    `json:"subscribersNotified"`
	ImageDeleted        bool   `json:"imageDeleted"`
}

// StatusChangeResult: data returned after an admin status change
type StatusChangeResult struct {
	EventID              string `json:"eventId"`
	PreviousStatus       string `json:"previousStatus"`
	Status               string `json:"status"`
	NotificationsCreated int    `json:"notificationsCreated"`
}

// SubscribedEvent: one entry of GET /user/subscriptions
type SubscribedEvent struct {
	ID        string              `json:"id"`
	CreatedAt time.Time           `json:"createdAt"`
	Event     models.EventSummary `json:"event"`
}
