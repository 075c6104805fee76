package dto

import "eventhub/internal/microservices/http-api/models"

// ListNotificationsQuery: query string of GET /notifications
type ListNotificationsQuery struct {
	Page       int  `form:"page"`
	Limit      int  `form:"limit"`
	UnreadOnly bool `form:"unreadOnly"`
}

type NotificationList struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unreadCount"`
	Pagination    Pagination            `json:"pagination"`
}
